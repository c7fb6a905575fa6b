// Package aiclassify escalates low-confidence statement rows to a
// chat-completion provider. It is a batch.Queue specialization: rows go out
// in fixed-size chunks with bounded concurrency, and the JSON array reply is
// zipped back onto the rows by index.
package aiclassify

import (
	"context"
	"log/slog"
	"time"

	"github.com/paisatrack/paisatrack/internal/batch"
	"github.com/paisatrack/paisatrack/internal/llm"
	"github.com/paisatrack/paisatrack/internal/model"
)

// Config tunes the classification stage.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	BatchSize   int
	Concurrency int
	Retries     int
	Backoff     time.Duration
	Timeout     time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   2048,
		BatchSize:   20,
		Concurrency: 3,
		Retries:     2,
		Backoff:     time.Second,
		Timeout:     45 * time.Second,
	}
}

// Stage classifies rows via an LLM provider.
type Stage struct {
	client llm.Client
	cfg    Config
}

// NewStage creates an AI classification stage.
func NewStage(client llm.Client, cfg Config) *Stage {
	if cfg.Model == "" {
		cfg = DefaultConfig()
	}
	return &Stage{client: client, cfg: cfg}
}

// ClassifyRows sends every row through the provider and returns updated
// rows in input order. onProgress, when non-nil, receives cumulative row
// counts as underlying batches resolve. Provider and parse errors propagate
// through the batch queue's retry logic; on exhaustion the error reaches
// the caller, which fails the whole import session.
func (s *Stage) ClassifyRows(ctx context.Context, rows []model.ClassifiedRow, onProgress func(done, total int)) ([]model.ClassifiedRow, error) {
	queue, err := batch.New(batch.Config[model.ClassifiedRow, model.ClassifiedRow]{
		BatchSize:   s.cfg.BatchSize,
		Concurrency: s.cfg.Concurrency,
		Retries:     s.cfg.Retries,
		Backoff:     s.cfg.Backoff,
		Timeout:     s.cfg.Timeout,
		Handler:     s.classifyChunk,
		OnProgress:  onProgress,
	})
	if err != nil {
		return nil, err
	}

	return queue.Enqueue(ctx, rows)
}

// classifyChunk is the batch handler: one provider call per chunk.
func (s *Stage) classifyChunk(ctx context.Context, chunk []model.ClassifiedRow) ([]model.ClassifiedRow, error) {
	prompt, err := buildPrompt(chunk)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Send(ctx, llm.ChatRequest{
		Model: s.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return nil, err
	}

	replies, err := decodeReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	if len(replies) < len(chunk) {
		// Data-shape issue, not a provider failure: rows past the end of
		// the reply keep their rule-stage classification instead of
		// failing the batch.
		slog.Warn("Classification reply shorter than request",
			"requested", len(chunk),
			"received", len(replies))
	}

	out := make([]model.ClassifiedRow, len(chunk))
	for i, row := range chunk {
		if i >= len(replies) {
			out[i] = row
			continue
		}
		out[i] = applyReply(row, replies[i])
	}
	return out, nil
}

// applyReply merges a provider reply entry onto a row. The row becomes
// AI-classified only when the reply actually set something.
func applyReply(row model.ClassifiedRow, reply replyItem) model.ClassifiedRow {
	if reply.Category == "" && reply.Platform == "" && reply.PaymentMethod == "" {
		return row
	}

	if reply.Category != "" {
		row.Category = reply.Category
		row.Confidence.Category = reply.Confidence
	}
	if reply.Platform != "" {
		row.Platform = reply.Platform
		row.Confidence.Platform = reply.Confidence
	}
	if reply.PaymentMethod != "" {
		row.PaymentMethod = reply.PaymentMethod
		row.Confidence.PaymentMethod = reply.Confidence
	}
	row.ClassifiedBy = model.ClassifiedByAI
	return row
}
