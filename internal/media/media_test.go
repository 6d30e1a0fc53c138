package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeForTransport(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	encoded := EncodeForTransport(raw)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), encoded)
	assert.False(t, strings.HasPrefix(encoded, "data:"))

	// Deterministic: same input, same output.
	assert.Equal(t, encoded, EncodeForTransport(raw))
}

func TestSniffMIME(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	assert.Equal(t, "image/png", SniffMIME(png))

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	assert.Equal(t, "image/jpeg", SniffMIME(jpeg))

	// Non-image bytes fall back to jpeg.
	assert.Equal(t, "image/jpeg", SniffMIME([]byte("just some text")))
}

func TestDownloaderFromURL_Success(t *testing.T) {
	imageData := []byte{0x89, 0x50, 0x4E, 0x47}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(imageData)
	}))
	defer ts.Close()

	data, err := NewDownloader().FromURL(context.Background(), ts.URL)
	assert.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestDownloaderFromURL_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewDownloader().FromURL(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestDownloaderFromURL_InvalidContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	_, err := NewDownloader().FromURL(context.Background(), ts.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content type")
}

func TestDownloaderFromURL_SizeLimit(t *testing.T) {
	largeData := make([]byte, 100)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(largeData)
	}))
	defer ts.Close()

	_, err := NewDownloader().WithMaxSize(50).FromURL(context.Background(), ts.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestDownloaderFromURL_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should have been canceled")
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDownloader().FromURL(ctx, ts.URL)
	assert.Error(t, err)
}

func TestDownloaderFromTelegramFileID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photos/abc.jpg", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("123"))
	}))
	defer ts.Close()

	getFileDirectURL := func(fileID string) (string, error) {
		return fmt.Sprintf("%s/photos/%s.jpg", ts.URL, fileID), nil
	}

	data, err := NewDownloader().FromTelegramFileID(context.Background(), getFileDirectURL, "abc")
	assert.NoError(t, err)
	assert.Equal(t, []byte("123"), data)
}

func TestDownloaderFromTelegramFileID_URLResolutionError(t *testing.T) {
	getFileDirectURL := func(fileID string) (string, error) {
		return "", fmt.Errorf("no such file")
	}

	_, err := NewDownloader().FromTelegramFileID(context.Background(), getFileDirectURL, "abc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get file URL")
}
