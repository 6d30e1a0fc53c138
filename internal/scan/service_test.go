package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

type fakeBlobStore struct {
	uploads   map[string][]byte
	uploadErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeBlobStore) PublicURL(key string) string {
	return "https://blobs.example.com/" + key
}

type fakeStore struct {
	storage.Store

	scans      map[string]*lunchbox.Scan // keyed by owner/date
	insertErr  error
	getScanErr error
	inserted   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{scans: make(map[string]*lunchbox.Scan)}
}

func scanKey(ownerID int64, scanDate string) string {
	return fmt.Sprintf("%d/%s", ownerID, scanDate)
}

func (f *fakeStore) InsertScan(scan *lunchbox.Scan) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	key := scanKey(scan.OwnerID, scan.ScanDate)
	if _, ok := f.scans[key]; ok {
		return storage.ErrScanExists
	}
	f.scans[key] = scan
	f.inserted++
	return nil
}

func (f *fakeStore) GetActiveScan(ownerID int64, scanDate string) (*lunchbox.Scan, error) {
	if f.getScanErr != nil {
		return nil, f.getScanErr
	}
	return f.scans[scanKey(ownerID, scanDate)], nil
}

var testItems = []lunchbox.FoodItem{
	{Name: "תפוח", Category: "פירות", Icon: "🍎"},
	{Name: "כריך", Category: "פחמימות", Icon: "🥪"},
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCommitScan(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	at := time.Date(2026, 2, 10, 12, 30, 0, 0, time.Local)
	service := NewService(store, blobs).WithClock(fixedClock(at))

	scan, err := service.CommitScan(context.Background(), 111, []byte("jpeg-bytes"), testItems)
	require.NoError(t, err)

	assert.NotEmpty(t, scan.ID)
	assert.Equal(t, int64(111), scan.OwnerID)
	assert.Equal(t, "2026-02-10", scan.ScanDate)
	assert.True(t, scan.IsActive)
	assert.Equal(t, testItems, scan.Items)

	expectedKey := fmt.Sprintf("111/%d.jpg", at.UnixMilli())
	assert.Equal(t, []byte("jpeg-bytes"), blobs.uploads[expectedKey])
	assert.Equal(t, "https://blobs.example.com/"+expectedKey, scan.ImageURL)
	assert.Equal(t, 1, store.inserted)
}

func TestCommitScanEmptyItems(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	service := NewService(store, blobs)

	_, err := service.CommitScan(context.Background(), 111, []byte("jpeg-bytes"), nil)
	assert.ErrorIs(t, err, ErrEmptyItemList)

	// No upload, no insert.
	assert.Empty(t, blobs.uploads)
	assert.Equal(t, 0, store.inserted)
}

func TestCommitScanUploadFails(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	blobs.uploadErr = errors.New("bucket gone")
	service := NewService(store, blobs)

	_, err := service.CommitScan(context.Background(), 111, []byte("jpeg-bytes"), testItems)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 0, store.inserted)
}

func TestCommitScanInsertFails(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	blobs := newFakeBlobStore()
	service := NewService(store, blobs)

	_, err := service.CommitScan(context.Background(), 111, []byte("jpeg-bytes"), testItems)
	assert.ErrorIs(t, err, ErrPersistUnavailable)

	// The upload happened before the insert failed; the blob stays behind.
	assert.Len(t, blobs.uploads, 1)
}

func TestCommitScanTwiceSameDay(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	at := time.Date(2026, 2, 10, 12, 30, 0, 0, time.Local)
	service := NewService(store, blobs).WithClock(fixedClock(at))

	_, err := service.CommitScan(context.Background(), 111, []byte("a"), testItems)
	require.NoError(t, err)

	_, err = service.CommitScan(context.Background(), 111, []byte("b"), testItems)
	assert.ErrorIs(t, err, ErrScanExists)
}

func TestGetTodayScan(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	at := time.Date(2026, 2, 10, 12, 30, 0, 0, time.Local)
	service := NewService(store, blobs).WithClock(fixedClock(at))

	_, err := service.GetTodayScan(111)
	assert.ErrorIs(t, err, ErrNoScanToday)

	committed, err := service.CommitScan(context.Background(), 111, []byte("jpeg-bytes"), testItems)
	require.NoError(t, err)

	scan, err := service.GetTodayScan(111)
	require.NoError(t, err)
	assert.Equal(t, committed.ID, scan.ID)

	// Yesterday's scan does not satisfy today's gate.
	service.WithClock(fixedClock(at.Add(24 * time.Hour)))
	_, err = service.GetTodayScan(111)
	assert.ErrorIs(t, err, ErrNoScanToday)
}

func TestGetTodayScanLookupError(t *testing.T) {
	store := newFakeStore()
	store.getScanErr = errors.New("db locked")
	service := NewService(store, newFakeBlobStore())

	_, err := service.GetTodayScan(111)
	assert.ErrorIs(t, err, ErrLookupFailed)
}
