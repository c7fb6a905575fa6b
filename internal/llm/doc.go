// Package llm provides the chat-completion client used for AI row
// classification. It supports OpenAI-compatible HTTP providers, with request
// rate limiting and a deterministic offline mode for tests and
// network-free operation.
package llm
