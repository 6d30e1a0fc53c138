package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/images/")
	require.NoError(t, err)

	data := []byte{0xFF, 0xD8, 0xFF}
	err = store.Upload(context.Background(), "42/1709200000000.jpg", data, "image/jpeg")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(dir, "42", "1709200000000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestLocalStorePublicURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/images/")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/images/42/1.jpg", store.PublicURL("42/1.jpg"))
}

func TestS3StorePublicURL(t *testing.T) {
	store := &S3Store{bucket: "lunchbox-images", region: "eu-central-1"}
	assert.Equal(t,
		"https://lunchbox-images.s3.eu-central-1.amazonaws.com/42/1.jpg",
		store.PublicURL("42/1.jpg"))
}
