package watcher

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func setupFeedTest(t *testing.T) (*storage.SQLiteStore, *recordingSender, *Service) {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sender := &recordingSender{}
	service := NewService(store, sender)

	require.NoError(t, store.SaveProfile(&lunchbox.Profile{UserID: 1, DisplayName: "נועה", Grade: "ג", SchoolCode: "hofim-1"}))
	require.NoError(t, store.SaveProfile(&lunchbox.Profile{UserID: 2, DisplayName: "איתי", Grade: "ד", SchoolCode: "hofim-1"}))
	require.NoError(t, store.SaveProfile(&lunchbox.Profile{UserID: 3, DisplayName: "דנה", Grade: "ב", SchoolCode: "galim-2"}))

	return store, sender, service
}

func TestPollNotifiesSchoolmatesOnly(t *testing.T) {
	store, sender, service := setupFeedTest(t)

	require.NoError(t, store.InsertOffer(&lunchbox.TradeOffer{
		ID: "o1", CreatorID: 1, ScanID: "s1", ItemName: "תפוח",
		Message: "מתוק במיוחד", Status: lunchbox.OfferStatusActive,
		CreatedAt: service.lastPoll.Add(time.Second),
	}))

	service.poll()

	// Only the schoolmate gets notified - not the creator, not other schools.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(2), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "נועה")
	assert.Contains(t, sender.sent[0].Text, "תפוח")
	assert.Contains(t, sender.sent[0].Text, "מתוק במיוחד")
}

func TestPollSkipsAlreadySeenOffers(t *testing.T) {
	store, sender, service := setupFeedTest(t)

	require.NoError(t, store.InsertOffer(&lunchbox.TradeOffer{
		ID: "o1", CreatorID: 1, ScanID: "s1", ItemName: "תפוח",
		Status:    lunchbox.OfferStatusActive,
		CreatedAt: service.lastPoll.Add(time.Second),
	}))

	service.poll()
	require.Len(t, sender.sent, 1)

	// Second cycle starts from the previous poll time and finds nothing new.
	service.poll()
	assert.Len(t, sender.sent, 1)
}

func TestPollIgnoresOffersBeforeStart(t *testing.T) {
	store, sender, service := setupFeedTest(t)

	require.NoError(t, store.InsertOffer(&lunchbox.TradeOffer{
		ID: "old", CreatorID: 1, ScanID: "s1", ItemName: "כריך",
		Status:    lunchbox.OfferStatusActive,
		CreatedAt: service.lastPoll.Add(-time.Hour),
	}))

	service.poll()
	assert.Empty(t, sender.sent)
}

func TestNotificationWithoutMessage(t *testing.T) {
	store, sender, service := setupFeedTest(t)

	require.NoError(t, store.InsertOffer(&lunchbox.TradeOffer{
		ID: "o1", CreatorID: 1, ScanID: "s1", ItemName: "במבה",
		Status:    lunchbox.OfferStatusActive,
		CreatedAt: service.lastPoll.Add(time.Second),
	}))

	service.poll()

	require.Len(t, sender.sent, 1)
	// No trailing italics line when the offer has no message.
	assert.False(t, strings.HasSuffix(sender.sent[0].Text, "_"))
}
