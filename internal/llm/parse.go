package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
)

// extractItemsJSON recovers a food item list from the model's free-text
// reply. The reply is expected to contain a JSON array but is often wrapped
// in prose or markdown fences, so only the substring from the first '[' to
// the last ']' is parsed. Elements without a name are dropped rather than
// failing the whole batch; missing icons are defaulted.
func extractItemsJSON(text string) ([]lunchbox.FoodItem, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in reply", ErrMalformedModelOutput)
	}

	var raw []struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Icon     string `json:"icon"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	items := make([]lunchbox.FoodItem, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		item := lunchbox.FoodItem{
			Name:     name,
			Category: strings.TrimSpace(r.Category),
			Icon:     strings.TrimSpace(r.Icon),
		}
		if item.Category == "" {
			item.Category = lunchbox.CategoryOther
		}
		if item.Icon == "" {
			item.Icon = lunchbox.DefaultIcon
		}
		items = append(items, item)
	}

	return items, nil
}
