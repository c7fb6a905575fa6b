package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// offlineClient is a deterministic stand-in for a real provider. It finds
// the JSON array of items in the final user message and answers with one
// fixed placeholder classification per item, so the full pipeline can run
// without network access.
type offlineClient struct{}

func newOfflineClient() Client {
	return &offlineClient{}
}

const offlinePlaceholder = `{"category":"Other","platform":"","payment_method":"","confidence":0.5}`

func (c *offlineClient) Send(_ context.Context, req ChatRequest) (ChatResponse, error) {
	if len(req.Messages) == 0 {
		return ChatResponse{}, fmt.Errorf("no messages in request")
	}

	count := countRequestItems(req.Messages[len(req.Messages)-1].Content)

	entries := make([]string, count)
	for i := range entries {
		entries[i] = offlinePlaceholder
	}
	content := "[" + strings.Join(entries, ",") + "]"

	return ChatResponse{
		Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}},
	}, nil
}

// countRequestItems counts elements of the first JSON array embedded in the
// prompt. Falls back to 1 when no array is found.
func countRequestItems(content string) int {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return 1
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return 1
	}
	if len(items) == 0 {
		return 1
	}
	return len(items)
}
