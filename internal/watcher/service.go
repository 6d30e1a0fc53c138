package watcher

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

const (
	// PollInterval is the time between polling cycles.
	PollInterval = 30 * time.Second

	// StartupDelay lets the bot finish starting before the first poll.
	StartupDelay = 5 * time.Second
)

// BotSender abstracts the Telegram bot API for sending messages.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Service is the background offer feed: it polls for new trade offers and
// notifies schoolmates of the offer's creator.
type Service struct {
	store    storage.Store
	bot      BotSender
	lastPoll time.Time
	now      func() time.Time
}

// NewService creates a new offer feed service.
func NewService(store storage.Store, bot BotSender) *Service {
	now := time.Now
	return &Service{
		store:    store,
		bot:      bot,
		lastPoll: now(),
		now:      now,
	}
}

// Run starts the polling loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", PollInterval).Msg("starting offer feed service")

	select {
	case <-ctx.Done():
		return
	case <-time.After(StartupDelay):
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("offer feed service stopped")
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

// poll executes one polling cycle: finds offers created since the last poll
// and notifies each creator's schoolmates.
func (s *Service) poll() {
	cutoff := s.lastPoll
	s.lastPoll = s.now()

	offers, err := s.store.ListOffersSince(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch new offers")
		// Retry the same window next cycle rather than dropping it.
		s.lastPoll = cutoff
		return
	}

	if len(offers) == 0 {
		return
	}

	log.Info().Int("offers", len(offers)).Msg("found new trade offers")

	for _, offer := range offers {
		s.notifySchoolmates(offer)
	}
}

// notifySchoolmates sends a notification about a new offer to everyone in the
// creator's school except the creator.
func (s *Service) notifySchoolmates(offer storage.OfferWithCreator) {
	schoolmates, err := s.store.ListProfilesBySchool(offer.SchoolCode, offer.CreatorID)
	if err != nil {
		log.Error().Err(err).Str("offerID", offer.ID).Msg("failed to list schoolmates")
		return
	}

	text := fmt.Sprintf(notificationText, offer.CreatorName, offer.CreatorGrade, offer.ItemName)
	if offer.Message != "" {
		text += fmt.Sprintf("\n_%s_", offer.Message)
	}

	for _, schoolmate := range schoolmates {
		msg := tgbotapi.NewMessage(schoolmate.UserID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown

		if _, err := s.bot.Send(msg); err != nil {
			log.Error().
				Err(err).
				Int64("userID", schoolmate.UserID).
				Str("offerID", offer.ID).
				Msg("failed to send offer notification")
		}
	}

	log.Debug().
		Str("offerID", offer.ID).
		Int("recipients", len(schoolmates)).
		Msg("offer notifications sent")
}

const notificationText = "הצעה חדשה במגרש ההחלפות!\n%s (כיתה %s) מציע/ה: %s"
