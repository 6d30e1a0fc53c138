package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/blob"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

// Service commits confirmed lunchbox scans and answers the daily scan gate
// used by the trade flow.
type Service struct {
	store storage.Store
	blobs blob.Store
	now   func() time.Time
}

func NewService(store storage.Store, blobs blob.Store) *Service {
	return &Service{
		store: store,
		blobs: blobs,
		now:   time.Now,
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CommitScan uploads the lunchbox photo and persists the scan as today's
// active scan for the owner. The item list must not be empty; that check
// happens before any network call.
//
// The upload and the insert are two steps without a rollback: if the insert
// fails the blob stays behind as an orphan. Blobs are keyed by owner and
// timestamp so a retry never collides with the orphan.
func (s *Service) CommitScan(ctx context.Context, ownerID int64, rawImage []byte, items []lunchbox.FoodItem) (*lunchbox.Scan, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItemList
	}

	now := s.now()
	key := fmt.Sprintf("%d/%d.jpg", ownerID, now.UnixMilli())

	if err := s.blobs.Upload(ctx, key, rawImage, "image/jpeg"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	scan := &lunchbox.Scan{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		ScanDate: lunchbox.LocalDate(now),
		ImageURL: s.blobs.PublicURL(key),
		Items:    items,
		IsActive: true,
	}

	if err := s.store.InsertScan(scan); err != nil {
		if errors.Is(err, storage.ErrScanExists) {
			return nil, ErrScanExists
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistUnavailable, err)
	}

	log.Info().
		Int64("user_id", ownerID).
		Str("scan_id", scan.ID).
		Str("scan_date", scan.ScanDate).
		Int("items", len(items)).
		Msg("Lunchbox scan committed")

	return scan, nil
}

// GetTodayScan returns the owner's active scan for the current date, or
// ErrNoScanToday when none exists. Trade offers require a scan from today.
func (s *Service) GetTodayScan(ownerID int64) (*lunchbox.Scan, error) {
	scan, err := s.store.GetActiveScan(ownerID, lunchbox.LocalDate(s.now()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if scan == nil {
		return nil, ErrNoScanToday
	}
	return scan, nil
}
