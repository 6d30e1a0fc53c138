package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
)

// MessageSender abstracts the ability to send Telegram messages.
// This interface decouples UserSession from the full Bot struct,
// improving testability.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SessionMessage represents a message to be processed by the session worker.
type SessionMessage struct {
	Type string
	Ctx  context.Context
	Done chan struct{} // Closed when processing is complete (for synchronous dispatch)

	// Message data (only one is set based on Type)
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
}

// sessionStep tracks where a user is in a multi-message flow.
type sessionStep int

const (
	stepIdle sessionStep = iota
	stepAskName
	stepAskGrade
	stepAskSchool
	stepOfferMessage
)

// OnboardingState holds the answers collected so far during registration.
type OnboardingState struct {
	Name  string
	Grade string
}

// ScanDraft holds an in-progress lunchbox scan: the photo bytes and the
// editable item list, before the user confirms with /save.
type ScanDraft struct {
	Image []byte
	Items *lunchbox.ItemList
}

// OfferDraft holds an in-progress trade offer: the scan it is based on and
// the item picked from it, while we wait for the optional message.
type OfferDraft struct {
	Scan *lunchbox.Scan
	Item string
}

// MessageHandler is the interface for processing session messages.
// This allows the session to dispatch to external handlers without circular dependencies.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage)
}

// UserSession represents a user's session with the bot.
//
// Threading model:
//   - Each session has a dedicated worker goroutine that processes messages
//     sequentially, so a second photo or /save cannot race an in-flight one
//   - Handlers are called only from the worker and can access session state
//     without locks
type UserSession struct {
	userId int64
	sender MessageSender

	// Worker channel for sequential message processing
	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler // Set after construction to avoid circular deps

	// Flow state - accessed only from the worker goroutine
	step       sessionStep
	onboarding OnboardingState
	profile    *lunchbox.Profile // Cached after onboarding check
	scanDraft  *ScanDraft
	offerDraft *OfferDraft
}

func (s *UserSession) hasScanDraft() bool {
	return s.scanDraft != nil
}

// reset clears all flow state. Called from session worker - no locking needed.
func (s *UserSession) reset() {
	log.Info().Int64("userId", s.userId).Msg("reset user session")
	s.step = stepIdle
	s.onboarding = OnboardingState{}
	s.scanDraft = nil
	s.offerDraft = nil
}

func (s *UserSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Send()
	return s.reply(MsgUnexpectedErr, err)
}

func (s *UserSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.userId
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	}

	return sent
}

func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	msg := tgbotapi.MessageConfig{
		Text:      formatReplyText(text, a...),
		ParseMode: tgbotapi.ModeMarkdown,
	}
	return s.replyWithMessage(msg)
}

// sendTypingAction sends a "typing" chat action to show the user that the bot
// is processing. The indicator expires on its own after ~5 seconds.
func (s *UserSession) sendTypingAction() {
	action := tgbotapi.NewChatAction(s.userId, tgbotapi.ChatTyping)
	// Request instead of Send because sendChatAction returns a boolean, not a Message
	if _, err := s.sender.Request(action); err != nil {
		log.Debug().Err(err).Int64("userId", s.userId).Msg("failed to send typing action")
	}
}

// --- Worker methods ---

// StartWorker starts the session's message processing worker goroutine.
// Must be called after setting the handler.
func (s *UserSession) StartWorker() {
	s.wg.Add(1)
	go s.runWorker()
}

// SetHandler sets the message handler for this session.
func (s *UserSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

// runWorker is the main worker loop that processes messages sequentially.
func (s *UserSession) runWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain any remaining messages and signal completion
			for {
				select {
				case msg := <-s.inbox:
					if msg.Done != nil {
						close(msg.Done)
					}
				default:
					return
				}
			}
		case msg := <-s.inbox:
			s.processMessage(msg)
		}
	}
}

// processMessage handles a single message from the inbox.
func (s *UserSession) processMessage(msg SessionMessage) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", s.userId).
				Interface("panic", r).
				Msg("recovered from panic in session worker")
		}
		if msg.Done != nil {
			close(msg.Done)
		}
	}()

	if s.handler == nil {
		log.Error().Int64("userId", s.userId).Msg("session handler not set")
		return
	}

	s.handler.HandleSessionMessage(msg.Ctx, s, msg)
}

// Send queues a message for processing by the worker.
// This is non-blocking - it returns immediately after queuing.
func (s *UserSession) Send(msg SessionMessage) {
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		if msg.Done != nil {
			close(msg.Done)
		}
	}
}

// SendSync queues a message and waits for it to be processed.
// Returns when the message has been fully processed by the worker.
func (s *UserSession) SendSync(msg SessionMessage) {
	msg.Done = make(chan struct{})
	s.Send(msg)
	<-msg.Done
}

// Stop stops the worker and waits for it to finish.
func (s *UserSession) Stop() {
	s.cancel()
	s.wg.Wait()
}
