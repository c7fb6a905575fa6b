package llm

import (
	"fmt"
	"strings"
)

// Config holds provider configuration.
type Config struct {
	Provider    string // "openai", or any OpenAI-compatible endpoint; "offline" bypasses the network
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	RateLimit   int // requests per minute
}

// NewClient creates a chat-completion client based on the provided
// configuration. Offline mode is selected here so callers never branch on
// it.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return newOpenAIClient(cfg)
	case "offline":
		return newOfflineClient(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
