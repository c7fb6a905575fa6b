package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "openai", provider: "openai"},
		{name: "default is openai", provider: ""},
		{name: "offline", provider: "offline"},
		{name: "case insensitive", provider: "OFFLINE"},
		{name: "unknown provider", provider: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{Provider: tt.provider, APIKey: "test-key"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestOfflineClient(t *testing.T) {
	client := newOfflineClient()

	t.Run("one reply per request item", func(t *testing.T) {
		resp, err := client.Send(context.Background(), ChatRequest{
			Messages: []Message{
				{Role: "system", Content: "classify"},
				{Role: "user", Content: `Classify these bank transactions:
[{"narration":"A"},{"narration":"B"},{"narration":"C"}]`},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Choices, 1)

		var items []map[string]any
		require.NoError(t, json.Unmarshal([]byte(resp.Choices[0].Message.Content), &items))
		assert.Len(t, items, 3)
		assert.Equal(t, "Other", items[0]["category"])
	})

	t.Run("no embedded array falls back to one item", func(t *testing.T) {
		resp, err := client.Send(context.Background(), ChatRequest{
			Messages: []Message{{Role: "user", Content: "just text"}},
		})
		require.NoError(t, err)

		var items []map[string]any
		require.NoError(t, json.Unmarshal([]byte(resp.Choices[0].Message.Content), &items))
		assert.Len(t, items, 1)
	})

	t.Run("empty request is an error", func(t *testing.T) {
		_, err := client.Send(context.Background(), ChatRequest{})
		assert.Error(t, err)
	})
}
