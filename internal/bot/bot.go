package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/llm"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/scan"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

// Bot is the main Telegram bot handler.
type Bot struct {
	tg    BotAPI
	state BotState
	store storage.Store

	// Handlers
	onboardingHandler *OnboardingHandler
	scanHandler       *ScanHandler
	offerHandler      *OfferHandler
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, store storage.Store, analyzer llm.Analyzer, scans *scan.Service) *Bot {
	bot := &Bot{
		tg:    tg,
		store: store,
	}

	bot.state = bot.NewBotState()
	bot.onboardingHandler = NewOnboardingHandler(store)
	bot.scanHandler = NewScanHandler(tg, analyzer, scans)
	bot.offerHandler = NewOfferHandler(tg, store, scans)

	return bot
}

// HandleUpdate is the main message router.
// It dispatches updates to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync is like HandleUpdate but waits for message processing to
// complete. Used in tests where we need synchronous behavior.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

// dispatchUpdate routes updates to the appropriate session worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	var userId int64

	// Determine user ID from the update
	if update.CallbackQuery != nil {
		userId = update.CallbackQuery.From.ID
	} else if update.Message != nil {
		userId = update.Message.From.ID
	} else {
		return
	}

	session := b.state.getUserSession(userId)

	// Helper to send sync or async based on flag
	send := func(msg SessionMessage) {
		if sync {
			session.SendSync(msg)
		} else {
			session.Send(msg)
		}
	}

	if update.CallbackQuery != nil {
		send(SessionMessage{
			Type:          "callback",
			Ctx:           ctx,
			CallbackQuery: update.CallbackQuery,
		})
		return
	}

	if update.Message != nil {
		log.Info().Str("text", update.Message.Text).Msg("got message")

		if len(update.Message.Photo) > 0 {
			send(SessionMessage{
				Type:    "photo",
				Ctx:     ctx,
				Message: update.Message,
			})
		} else {
			send(SessionMessage{
				Type:    "text",
				Ctx:     ctx,
				Message: update.Message,
			})
		}
	}
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the session worker goroutine for sequential processing.
// No mutex locking is needed here since only one goroutine accesses session state.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	switch msg.Type {
	case "callback":
		b.handleCallbackQuery(ctx, session, msg.CallbackQuery)
	case "photo":
		b.handlePhotoMessage(ctx, session, msg.Message)
	case "text":
		b.handleTextMessage(ctx, session, msg.Message)
	}
}

// loadProfile ensures the session has the user's profile cached.
// Returns nil when the user has not onboarded yet.
func (b *Bot) loadProfile(session *UserSession) *lunchbox.Profile {
	if session.profile != nil {
		return session.profile
	}
	profile, err := b.store.GetProfile(session.userId)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to load profile")
		return nil
	}
	session.profile = profile
	return profile
}

// handlePhotoMessage processes photo messages.
// Called from session worker - no locking needed.
func (b *Bot) handlePhotoMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	if b.loadProfile(session) == nil {
		session.reply(MsgOnboardingRequired)
		return
	}

	b.scanHandler.HandlePhoto(ctx, session, message)
}

// handleTextMessage processes text messages.
// Called from session worker - no locking needed.
func (b *Bot) handleTextMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	// Handle onboarding flow answers
	if b.onboardingHandler.HandleMessage(session, message.Text) {
		return
	}

	// Handle pending offer message input
	if b.offerHandler.HandleMessage(session, message.Text) {
		return
	}

	b.handleCommand(ctx, session, message)
}

// handleCommand processes bot commands.
// Called from session worker - no locking needed.
func (b *Bot) handleCommand(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	argsStr := strings.Join(args, " ")

	if command == "/start" {
		b.onboardingHandler.HandleStart(session)
		return
	}

	if b.loadProfile(session) == nil {
		session.reply(MsgOnboardingRequired)
		return
	}

	switch command {
	case "/add":
		b.scanHandler.HandleAdd(session, argsStr)
	case "/remove":
		b.scanHandler.HandleRemove(session, argsStr)
	case "/save":
		b.scanHandler.HandleSave(ctx, session)
	case "/cancel":
		session.reset()
		session.reply(MsgCancelled)
	case "/today":
		b.scanHandler.HandleToday(session)
	case "/offer":
		b.offerHandler.HandleOfferCommand(session)
	case "/market":
		b.offerHandler.HandleMarketCommand(session)
	default:
		if session.hasScanDraft() {
			session.reply(MsgItemListHelp)
			return
		}
		session.reply(MsgStartPrompt)
	}
}

// handleCallbackQuery handles inline keyboard button presses.
// Called from session worker - no locking needed.
func (b *Bot) handleCallbackQuery(_ context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	// Answer the callback to remove the loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	b.tg.Request(callback)

	if strings.HasPrefix(query.Data, "offer:") {
		b.offerHandler.HandleOfferCallback(session, query)
	}
}
