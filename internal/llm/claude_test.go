package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
)

func TestClaudeAnalyzerExtractItems(t *testing.T) {
	var req *http.Request
	var reqBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		reqBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"הנה הפריטים:\n[{\"name\":\"תפוח\",\"category\":\"פירות\",\"icon\":\"🍎\"},{\"name\":\"מים\",\"category\":\"משקאות\",\"icon\":\"💧\"}]"}],"usage":{"input_tokens":1200,"output_tokens":80}}`))
	}))
	defer ts.Close()

	analyzer := NewClaudeAnalyzer(ClaudeOpts{BaseURL: ts.URL, APIKey: "test-key"})
	imageData := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	result, err := analyzer.ExtractItems(context.Background(), imageData, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, []lunchbox.FoodItem{
		{Name: "תפוח", Category: "פירות", Icon: "🍎"},
		{Name: "מים", Category: "משקאות", Icon: "💧"},
	}, result.Items)
	assert.Equal(t, int64(1200), result.Usage.InputTokens)
	assert.Equal(t, int64(80), result.Usage.OutputTokens)
	assert.Equal(t, int64(1280), result.Usage.TotalTokens)
	assert.InDelta(t, 0.0048, result.Usage.CostUSD, 1e-9)

	assert.Equal(t, "/v1/messages", req.URL.Path)
	assert.Equal(t, "test-key", req.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Header.Get("anthropic-version"))

	var sent claudeRequest
	require.NoError(t, json.Unmarshal(reqBody, &sent))
	assert.Equal(t, claudeModel, sent.Model)
	require.Len(t, sent.Messages, 1)
	require.Len(t, sent.Messages[0].Content, 2)
	assert.Equal(t, "image", sent.Messages[0].Content[0].Type)
	assert.Equal(t, "image/jpeg", sent.Messages[0].Content[0].Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imageData), sent.Messages[0].Content[0].Source.Data)
	assert.Equal(t, "text", sent.Messages[0].Content[1].Type)
	assert.Contains(t, sent.Messages[0].Content[1].Text, "JSON")
}

func TestClaudeAnalyzerExtractItems_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer ts.Close()

	analyzer := NewClaudeAnalyzer(ClaudeOpts{BaseURL: ts.URL, APIKey: "test-key"})
	_, err := analyzer.ExtractItems(context.Background(), []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
	assert.Contains(t, err.Error(), "429")
}

func TestClaudeAnalyzerExtractItems_NoArrayInReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"I couldn't see anything"}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer ts.Close()

	analyzer := NewClaudeAnalyzer(ClaudeOpts{BaseURL: ts.URL, APIKey: "test-key"})
	_, err := analyzer.ExtractItems(context.Background(), []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, ErrMalformedModelOutput)
}

func TestClaudeAnalyzerExtractItems_EmptyReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[],"usage":{"input_tokens":10,"output_tokens":0}}`))
	}))
	defer ts.Close()

	analyzer := NewClaudeAnalyzer(ClaudeOpts{BaseURL: ts.URL, APIKey: "test-key"})
	_, err := analyzer.ExtractItems(context.Background(), []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
}
