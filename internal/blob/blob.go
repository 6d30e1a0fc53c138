// Package blob stores lunchbox images and hands back publicly
// dereferenceable URLs for them.
package blob

import "context"

// Store is the object store lunchbox images are uploaded to. Keys are
// namespaced by owner (e.g. "123456/1709200000000.jpg"); uniqueness of the
// key, not ordering, is what matters.
type Store interface {
	// Upload stores data under key.
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// PublicURL returns a URL for key that dereferences without
	// authentication.
	PublicURL(key string) string
}
