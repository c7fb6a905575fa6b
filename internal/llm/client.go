package llm

import "context"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a chat-completion call.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// Choice is one completion candidate.
type Choice struct {
	Message Message `json:"message"`
}

// ChatResponse is the provider's reply.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

// Client defines the contract with a chat-completion provider.
type Client interface {
	Send(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
