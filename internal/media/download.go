package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the default timeout for photo downloads.
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum photo size (10MB).
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// Downloader fetches the photo a user sent so the scan flow can hold it as
// raw bytes.
type Downloader struct {
	client  *http.Client
	timeout time.Duration
	maxSize int64
}

// NewDownloader creates a Downloader with default settings.
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: DefaultDownloadTimeout,
		},
		timeout: DefaultDownloadTimeout,
		maxSize: DefaultMaxImageSize,
	}
}

// WithMaxSize sets a custom maximum photo size.
func (d *Downloader) WithMaxSize(maxSize int64) *Downloader {
	d.maxSize = maxSize
	return d
}

// FromURL downloads photo data from a URL. It respects context cancellation
// and enforces the size limit even when Content-Length is missing or wrong.
func (d *Downloader) FromURL(ctx context.Context, imageURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}

	if resp.ContentLength > d.maxSize {
		return nil, fmt.Errorf("photo too large: %d bytes exceeds limit of %d bytes", resp.ContentLength, d.maxSize)
	}

	limitedReader := io.LimitReader(resp.Body, d.maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo data: %w", err)
	}

	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("photo too large: exceeds limit of %d bytes", d.maxSize)
	}

	return data, nil
}

// FromTelegramFileID downloads a photo from Telegram by file ID, using the
// provided function to resolve the file ID to a direct URL.
func (d *Downloader) FromTelegramFileID(
	ctx context.Context,
	getFileDirectURL func(fileID string) (string, error),
	fileID string,
) ([]byte, error) {
	log.Info().Str("fileID", fileID).Msg("downloading telegram photo")

	url, err := getFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}

	return d.FromURL(ctx, url)
}
