package llm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/media"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	claudeModel      = "claude-3-5-sonnet-20241022"
	claudeMaxTokens  = 1024
)

// Claude 3.5 Sonnet pricing (per million tokens)
const (
	claudeInputPricePerMillion  = 3.00
	claudeOutputPricePerMillion = 15.00
)

// ClaudeAnalyzer uses Anthropic's Messages API for lunchbox photo analysis.
type ClaudeAnalyzer struct {
	httpClient *resty.Client
}

// ClaudeOpts configures a ClaudeAnalyzer.
type ClaudeOpts struct {
	// BaseURL overrides the Anthropic API base URL. Used in tests.
	BaseURL string
	// APIKey is the Anthropic API key.
	APIKey string
}

// NewClaudeAnalyzer creates a new Claude-based analyzer.
func NewClaudeAnalyzer(opts ClaudeOpts) *ClaudeAnalyzer {
	baseURL := anthropicBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeaders(map[string]string{
			"Content-Type":      "application/json",
			"x-api-key":         opts.APIKey,
			"anthropic-version": anthropicVersion,
		})

	return &ClaudeAnalyzer{httpClient: httpClient}
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeContent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *claudeImageSource `json:"source,omitempty"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

// ExtractItems implements the Analyzer interface using the Anthropic
// Messages API. The image travels base64-encoded inside the request body.
func (c *ClaudeAnalyzer) ExtractItems(ctx context.Context, imageData []byte, mimeType string) (*ExtractionResult, error) {
	body := claudeRequest{
		Model:     claudeModel,
		MaxTokens: claudeMaxTokens,
		Messages: []claudeMessage{
			{
				Role: "user",
				Content: []claudeContent{
					{
						Type: "image",
						Source: &claudeImageSource{
							Type:      "base64",
							MediaType: mimeType,
							Data:      media.EncodeForTransport(imageData),
						},
					},
					{
						Type: "text",
						Text: visionPrompt,
					},
				},
			},
		},
	}

	result := &claudeResponse{}
	resp, err := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post("/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrExtractionUnavailable, resp.StatusCode())
	}

	var text string
	for _, content := range result.Content {
		if content.Type == "text" {
			text = content.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply from Claude", ErrExtractionUnavailable)
	}

	log.Info().Str("response", text).Msg("claude vision response")

	items, err := extractItemsJSON(text)
	if err != nil {
		return nil, err
	}

	usage := Usage{
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
		TotalTokens:  result.Usage.InputTokens + result.Usage.OutputTokens,
		CostUSD:      calculateClaudeCost(result.Usage.InputTokens, result.Usage.OutputTokens),
	}

	return &ExtractionResult{Items: items, Usage: usage}, nil
}

func calculateClaudeCost(inputTokens, outputTokens int64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * claudeInputPricePerMillion
	outputCost := float64(outputTokens) / 1_000_000 * claudeOutputPricePerMillion
	return inputCost + outputCost
}
