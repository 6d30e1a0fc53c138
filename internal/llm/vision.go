package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
)

// Extraction failure classes. Both are recoverable: the captured image
// survives a failed attempt and the caller may retry or fall back to manual
// entry.
var (
	// ErrExtractionUnavailable means the vision API could not be reached or
	// refused the request.
	ErrExtractionUnavailable = errors.New("vision model unavailable")
	// ErrMalformedModelOutput means the model replied, but no item list could
	// be recovered from the reply.
	ErrMalformedModelOutput = errors.New("malformed vision model output")
)

// Usage contains token usage and cost information for one extraction call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// ExtractionResult contains the detected food items and usage information.
type ExtractionResult struct {
	Items []lunchbox.FoodItem
	Usage Usage
}

// Analyzer extracts a food item list from a lunchbox photo.
type Analyzer interface {
	// ExtractItems sends the image to a vision model and returns the detected
	// items. The returned slice may be empty if the model saw no food.
	ExtractItems(ctx context.Context, imageData []byte, mimeType string) (*ExtractionResult, error)
}

// visionPrompt is the instruction sent alongside the image, in the product's
// display language. It asks for a bare JSON array, but replies routinely come
// wrapped in prose or code fences; extractItemsJSON handles that.
var visionPrompt = `רשום רשימה של כל פריטי המזון שאתה רואה בתמונה הזו של קופסת אוכל.

החזר את התשובה בפורמט JSON בלבד, ללא טקסט נוסף:
[
  {
    "name": "שם הפריט בעברית",
    "category": "קטגוריה (` + strings.Join(lunchbox.Categories, "/") + `)",
    "icon": "אימוג'י מתאים"
  }
]`
