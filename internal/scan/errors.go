package scan

import "errors"

var (
	// ErrEmptyItemList is returned when a commit is attempted with no items.
	ErrEmptyItemList = errors.New("lunchbox has no items")
	// ErrStorageUnavailable is returned when the image upload fails.
	ErrStorageUnavailable = errors.New("image storage unavailable")
	// ErrPersistUnavailable is returned when the scan row cannot be written.
	ErrPersistUnavailable = errors.New("scan persistence unavailable")
	// ErrScanExists is returned when the owner already committed a scan today.
	ErrScanExists = errors.New("scan already committed today")
	// ErrLookupFailed is returned when today's scan cannot be read.
	ErrLookupFailed = errors.New("scan lookup failed")
	// ErrNoScanToday is returned when the owner has no active scan for today.
	ErrNoScanToday = errors.New("no scan committed today")
)
