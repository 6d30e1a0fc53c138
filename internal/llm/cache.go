package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
)

// VisionCache persists extraction results keyed by image hash.
// A nil, nil return means no cached entry.
type VisionCache interface {
	GetVisionCache(imageHash string) ([]lunchbox.FoodItem, error)
	SetVisionCache(imageHash string, items []lunchbox.FoodItem) error
}

// CachedAnalyzer wraps an Analyzer with a persistent result cache, so
// re-sending the same photo does not cost another model call.
type CachedAnalyzer struct {
	inner Analyzer
	cache VisionCache
}

// NewCachedAnalyzer creates a cached analyzer.
func NewCachedAnalyzer(inner Analyzer, cache VisionCache) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, cache: cache}
}

func hashImage(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	return hex.EncodeToString(sum[:])
}

// ExtractItems implements the Analyzer interface with caching.
func (c *CachedAnalyzer) ExtractItems(ctx context.Context, imageData []byte, mimeType string) (*ExtractionResult, error) {
	hash := hashImage(imageData)

	if c.cache != nil {
		cached, err := c.cache.GetVisionCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("vision cache hit")
			// Zero usage for cached results.
			return &ExtractionResult{Items: cached}, nil
		}
	}

	result, err := c.inner.ExtractItems(ctx, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && len(result.Items) > 0 {
		if err := c.cache.SetVisionCache(hash, result.Items); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision result")
		}
	}

	return result, nil
}
