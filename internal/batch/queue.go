// Package batch provides a generic bounded-concurrency batch processor with
// per-batch timeout and linear-backoff retry. Items are split into
// fixed-size chunks, workers race to claim chunk indexes off a shared atomic
// counter, and results land in a pre-sized array so output order always
// matches input order regardless of completion order.
package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Handler processes one chunk of items. It must return one output per input
// item, in input order.
type Handler[TIn, TOut any] func(ctx context.Context, chunk []TIn) ([]TOut, error)

// ProgressFunc receives cumulative item counts after each completed chunk.
type ProgressFunc func(done, total int)

// Config configures a Queue.
type Config[TIn, TOut any] struct {
	BatchSize   int
	Concurrency int
	Retries     int // additional attempts after the first
	Backoff     time.Duration
	Timeout     time.Duration // per-attempt; zero means no timeout
	Handler     Handler[TIn, TOut]
	OnProgress  ProgressFunc
}

// Queue drives item batches through a handler with bounded concurrency.
type Queue[TIn, TOut any] struct {
	cfg Config[TIn, TOut]
}

// New creates a Queue. The handler is required; other options default to
// batch size 10, concurrency 1, no retries, 500ms backoff.
func New[TIn, TOut any](cfg Config[TIn, TOut]) (*Queue[TIn, TOut], error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("batch queue requires a handler")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Queue[TIn, TOut]{cfg: cfg}, nil
}

// Enqueue processes all items and returns outputs in input order. One chunk
// exhausting its retries fails the whole call; items are never silently
// dropped. An empty input resolves immediately without invoking the handler.
func (q *Queue[TIn, TOut]) Enqueue(ctx context.Context, items []TIn) ([]TOut, error) {
	if len(items) == 0 {
		return []TOut{}, nil
	}

	chunks := partition(items, q.cfg.BatchSize)
	results := make([][]TOut, len(chunks))

	workers := q.cfg.Concurrency
	if workers > len(chunks) {
		workers = len(chunks)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		next     atomic.Int64
		mu       sync.Mutex
		firstErr error
		done     int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(next.Add(1)) - 1
				if idx >= len(chunks) || runCtx.Err() != nil {
					return
				}

				out, err := q.runWithRetry(runCtx, chunks[idx])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("batch %d: %w", idx, err)
					}
					mu.Unlock()
					cancel()
					return
				}

				mu.Lock()
				results[idx] = out
				done += len(chunks[idx])
				if q.cfg.OnProgress != nil {
					q.cfg.OnProgress(done, len(items))
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	flat := make([]TOut, 0, len(items))
	for _, chunk := range results {
		flat = append(flat, chunk...)
	}
	return flat, nil
}

// runWithRetry invokes the handler on one chunk, retrying with linear
// backoff. Total attempts = retries + 1; the last error is returned once
// attempts are exhausted.
func (q *Queue[TIn, TOut]) runWithRetry(ctx context.Context, chunk []TIn) ([]TOut, error) {
	var lastErr error
	for attempt := 1; attempt <= q.cfg.Retries+1; attempt++ {
		out, err := q.attempt(ctx, chunk)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt > q.cfg.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.cfg.Backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

// attempt runs the handler once, racing it against the per-attempt timeout.
// The handler goroutine receives the deadline through its context; a handler
// that ignores cancellation is abandoned rather than waited on.
func (q *Queue[TIn, TOut]) attempt(ctx context.Context, chunk []TIn) ([]TOut, error) {
	attemptCtx := ctx
	if q.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, q.cfg.Timeout)
		defer cancel()
	}

	type result struct {
		out []TOut
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := q.cfg.Handler(attemptCtx, chunk)
		ch <- result{out, err}
	}()

	select {
	case r := <-ch:
		return r.out, r.err
	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	}
}

// partition splits items into contiguous chunks of at most size, preserving
// order.
func partition[T any](items []T, size int) [][]T {
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
