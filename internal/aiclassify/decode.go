package aiclassify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// replyItem is one entry of the provider's JSON array reply.
type replyItem struct {
	Category      string  `json:"category"`
	Platform      string  `json:"platform"`
	PaymentMethod string  `json:"payment_method"`
	Confidence    float64 `json:"confidence"`
}

// decodeReply parses the provider's reply content into classification
// entries. Markdown code-fence wrapping is stripped when present. A reply
// that still fails to parse is an error for the caller to propagate, not
// swallow: an unparseable reply means the provider misbehaved, and retrying
// is the batch queue's job.
func decodeReply(content string) ([]replyItem, error) {
	cleaned := stripCodeFence(content)

	var items []replyItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("failed to parse classification reply: %w", err)
	}
	return items, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line.
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
