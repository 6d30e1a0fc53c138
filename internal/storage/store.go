package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	_ "modernc.org/sqlite"
)

// ErrScanExists is returned by InsertScan when an active scan already exists
// for the same owner and date. The uniqueness constraint lives in the
// database, so two near-simultaneous commits cannot both win.
var ErrScanExists = errors.New("active scan already exists for owner and date")

// OfferWithCreator is a trade offer joined with its creator's profile, as
// shown on the marketplace.
type OfferWithCreator struct {
	lunchbox.TradeOffer
	CreatorName  string
	CreatorGrade string
	SchoolCode   string
}

// Store defines the persistence interface for profiles, lunchbox scans and
// trade offers.
type Store interface {
	// Profile methods. GetProfile returns nil, nil when the user has not
	// onboarded yet.
	GetProfile(userID int64) (*lunchbox.Profile, error)
	SaveProfile(profile *lunchbox.Profile) error

	// Lunchbox scan methods. GetActiveScan returns nil, nil when no active
	// scan exists for the owner on that date.
	InsertScan(scan *lunchbox.Scan) error
	GetActiveScan(ownerID int64, scanDate string) (*lunchbox.Scan, error)

	// Trade offer methods.
	InsertOffer(offer *lunchbox.TradeOffer) error
	ListActiveOffers(schoolCode string, excludeUserID int64) ([]OfferWithCreator, error)
	ListOffersSince(since time.Time) ([]OfferWithCreator, error)
	ListProfilesBySchool(schoolCode string, excludeUserID int64) ([]lunchbox.Profile, error)

	// Vision cache methods.
	GetVisionCache(imageHash string) ([]lunchbox.FoodItem, error)
	SetVisionCache(imageHash string, items []lunchbox.FoodItem) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	profilesQuery := `
	CREATE TABLE IF NOT EXISTS profiles (
		user_id INTEGER PRIMARY KEY,
		display_name TEXT NOT NULL,
		grade TEXT NOT NULL,
		school_code TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(profilesQuery); err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}

	lunchboxesQuery := `
	CREATE TABLE IF NOT EXISTS lunchboxes (
		id TEXT PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		scan_date TEXT NOT NULL,
		image_url TEXT,
		items TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(lunchboxesQuery); err != nil {
		return fmt.Errorf("failed to create lunchboxes table: %w", err)
	}

	// At most one active scan per owner per calendar day.
	activeScanIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_lunchboxes_active_scan
	ON lunchboxes(owner_id, scan_date) WHERE is_active = 1;
	`
	if _, err := s.db.Exec(activeScanIndexQuery); err != nil {
		return fmt.Errorf("failed to create active scan index: %w", err)
	}

	offersQuery := `
	CREATE TABLE IF NOT EXISTS trade_offers (
		id TEXT PRIMARY KEY,
		creator_id INTEGER NOT NULL,
		lunchbox_id TEXT NOT NULL,
		item_offered TEXT NOT NULL,
		message TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (lunchbox_id) REFERENCES lunchboxes(id)
	);
	`
	if _, err := s.db.Exec(offersQuery); err != nil {
		return fmt.Errorf("failed to create trade_offers table: %w", err)
	}

	visionCacheQuery := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		items TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(visionCacheQuery); err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return nil
}

// GetProfile retrieves a profile by user ID.
// Returns nil, nil if the user has not onboarded.
func (s *SQLiteStore) GetProfile(userID int64) (*lunchbox.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile := lunchbox.Profile{UserID: userID}
	err := s.db.QueryRow(
		"SELECT display_name, grade, school_code FROM profiles WHERE user_id = ?",
		userID,
	).Scan(&profile.DisplayName, &profile.Grade, &profile.SchoolCode)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return &profile, nil
}

// SaveProfile stores or updates a profile.
func (s *SQLiteStore) SaveProfile(profile *lunchbox.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO profiles (user_id, display_name, grade, school_code)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			grade = excluded.grade,
			school_code = excluded.school_code
	`, profile.UserID, profile.DisplayName, profile.Grade, profile.SchoolCode)

	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// InsertScan stores a new lunchbox scan. Returns ErrScanExists when the
// owner already has an active scan for that date.
func (s *SQLiteStore) InsertScan(scan *lunchbox.Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(scan.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO lunchboxes (id, owner_id, scan_date, image_url, items, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, scan.ID, scan.OwnerID, scan.ScanDate, scan.ImageURL, string(itemsJSON), boolToInt(scan.IsActive))

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrScanExists
		}
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	return nil
}

// GetActiveScan retrieves the active scan for an owner on a given date.
// Returns nil, nil when no such scan exists.
func (s *SQLiteStore) GetActiveScan(ownerID int64, scanDate string) (*lunchbox.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scan := lunchbox.Scan{OwnerID: ownerID, ScanDate: scanDate, IsActive: true}
	var itemsJSON string
	err := s.db.QueryRow(`
		SELECT id, image_url, items FROM lunchboxes
		WHERE owner_id = ? AND scan_date = ? AND is_active = 1
	`, ownerID, scanDate).Scan(&scan.ID, &scan.ImageURL, &itemsJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &scan.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	return &scan, nil
}

// InsertOffer stores a new trade offer.
func (s *SQLiteStore) InsertOffer(offer *lunchbox.TradeOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO trade_offers (id, creator_id, lunchbox_id, item_offered, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, offer.ID, offer.CreatorID, offer.ScanID, offer.ItemName, offer.Message, offer.Status, offer.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}

	return nil
}

const offerWithCreatorSelect = `
	SELECT o.id, o.creator_id, o.lunchbox_id, o.item_offered, o.message, o.status, o.created_at,
	       p.display_name, p.grade, p.school_code
	FROM trade_offers o
	JOIN profiles p ON p.user_id = o.creator_id
`

// ListActiveOffers returns active offers from schoolmates, newest first.
// The creator's own offers are excluded.
func (s *SQLiteStore) ListActiveOffers(schoolCode string, excludeUserID int64) ([]OfferWithCreator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(offerWithCreatorSelect+`
		WHERE o.status = 'active' AND p.school_code = ? AND o.creator_id != ?
		ORDER BY o.created_at DESC
	`, schoolCode, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

// ListOffersSince returns offers created after the given time, oldest first.
// Used by the offer feed notifier.
func (s *SQLiteStore) ListOffersSince(since time.Time) ([]OfferWithCreator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(offerWithCreatorSelect+`
		WHERE o.created_at > ?
		ORDER BY o.created_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

func scanOffers(rows *sql.Rows) ([]OfferWithCreator, error) {
	var offers []OfferWithCreator
	for rows.Next() {
		var offer OfferWithCreator
		var message sql.NullString
		if err := rows.Scan(
			&offer.ID, &offer.CreatorID, &offer.ScanID, &offer.ItemName, &message,
			&offer.Status, &offer.CreatedAt,
			&offer.CreatorName, &offer.CreatorGrade, &offer.SchoolCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		offer.Message = message.String
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

// ListProfilesBySchool returns all profiles in a school except the given user.
func (s *SQLiteStore) ListProfilesBySchool(schoolCode string, excludeUserID int64) ([]lunchbox.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT user_id, display_name, grade, school_code FROM profiles
		WHERE school_code = ? AND user_id != ?
	`, schoolCode, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []lunchbox.Profile
	for rows.Next() {
		var profile lunchbox.Profile
		if err := rows.Scan(&profile.UserID, &profile.DisplayName, &profile.Grade, &profile.SchoolCode); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// GetVisionCache retrieves a cached extraction result by image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetVisionCache(imageHash string) ([]lunchbox.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var itemsJSON string
	err := s.db.QueryRow(
		"SELECT items FROM vision_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&itemsJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}

	var items []lunchbox.FoodItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached items: %w", err)
	}

	return items, nil
}

// SetVisionCache stores an extraction result in the cache.
func (s *SQLiteStore) SetVisionCache(imageHash string, items []lunchbox.FoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO vision_cache (image_hash, items)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			items = excluded.items,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(itemsJSON))

	if err != nil {
		return fmt.Errorf("failed to cache vision result: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
