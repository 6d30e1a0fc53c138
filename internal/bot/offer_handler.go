package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/scan"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

// OfferHandler runs the trade offer flow and the schoolyard marketplace view.
// Offering requires a committed scan from today.
type OfferHandler struct {
	tg    BotAPI
	store storage.Store
	scans *scan.Service
}

func NewOfferHandler(tg BotAPI, store storage.Store, scans *scan.Service) *OfferHandler {
	return &OfferHandler{
		tg:    tg,
		store: store,
		scans: scans,
	}
}

// HandleOfferCommand handles /offer - shows an item picker from today's scan.
// Called from session worker - no locking needed.
func (h *OfferHandler) HandleOfferCommand(session *UserSession) {
	todayScan, err := h.scans.GetTodayScan(session.userId)
	if errors.Is(err, scan.ErrNoScanToday) {
		session.reply(MsgNoScanToday)
		return
	}
	if err != nil {
		session.replyWithError(err)
		return
	}

	session.offerDraft = &OfferDraft{Scan: todayScan}

	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(todayScan.Items))
	for i, item := range todayScan.Items {
		label := fmt.Sprintf("%s %s", item.Icon, item.Name)
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("offer:%d", i)),
		})
	}

	msg := tgbotapi.NewMessage(session.userId, MsgOfferPickItem)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	session.replyWithMessage(msg)
}

// HandleOfferCallback handles offer:<index> item selections.
// Called from session worker - no locking needed.
func (h *OfferHandler) HandleOfferCallback(session *UserSession, query *tgbotapi.CallbackQuery) {
	index, err := strconv.Atoi(strings.TrimPrefix(query.Data, "offer:"))
	if err != nil {
		return
	}

	draft := session.offerDraft
	if draft == nil || index < 0 || index >= len(draft.Scan.Items) {
		session.reply(MsgOfferStale)
		return
	}

	draft.Item = draft.Scan.Items[index].Name
	session.step = stepOfferMessage
	session.reply(MsgOfferAskMessage)
}

// HandleMessage consumes the optional offer message while one is pending.
// Returns true if the message was handled.
// Called from session worker - no locking needed.
func (h *OfferHandler) HandleMessage(session *UserSession, text string) bool {
	if session.step != stepOfferMessage {
		return false
	}

	draft := session.offerDraft
	if draft == nil || draft.Item == "" {
		session.step = stepIdle
		session.reply(MsgOfferStale)
		return true
	}

	message := strings.TrimSpace(text)
	if message == "/skip" {
		message = ""
	}

	offer := &lunchbox.TradeOffer{
		ID:        uuid.NewString(),
		CreatorID: session.userId,
		ScanID:    draft.Scan.ID,
		ItemName:  draft.Item,
		Message:   message,
		Status:    lunchbox.OfferStatusActive,
		CreatedAt: time.Now(),
	}

	if err := h.store.InsertOffer(offer); err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to insert offer")
		session.reply(MsgOfferFailed)
		return true
	}

	session.step = stepIdle
	session.offerDraft = nil

	log.Info().
		Int64("user_id", offer.CreatorID).
		Str("offer_id", offer.ID).
		Str("item", offer.ItemName).
		Msg("trade offer created")

	session.reply(MsgOfferCreated)
	return true
}

// HandleMarketCommand handles /market - lists schoolmates' active offers.
// Called from session worker - no locking needed.
func (h *OfferHandler) HandleMarketCommand(session *UserSession) {
	offers, err := h.store.ListActiveOffers(session.profile.SchoolCode, session.userId)
	if err != nil {
		session.replyWithError(err)
		return
	}

	if len(offers) == 0 {
		session.reply(MsgMarketEmpty)
		return
	}

	var sb strings.Builder
	sb.WriteString(MsgMarketHeader)
	sb.WriteString("\n")
	for _, offer := range offers {
		sb.WriteString(fmt.Sprintf("• %s — %s (כיתה %s)", offer.ItemName, offer.CreatorName, offer.CreatorGrade))
		if offer.Message != "" {
			sb.WriteString(fmt.Sprintf("\n  _%s_", offer.Message))
		}
		sb.WriteString("\n")
	}
	session.reply(sb.String())
}
