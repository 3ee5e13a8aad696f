package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/probdoc"
)

var _ probdoc.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with logging. The prompt itself is
// never logged.
type LoggingCompleter struct {
	next   probdoc.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next probdoc.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the operation.
func (c *LoggingCompleter) Complete(ctx context.Context, req probdoc.CompletionRequest) (text string, err error) {
	defer func(begin time.Time) {
		c.log("completion", req, len(text), 0, begin, err)
	}(time.Now())
	return c.next.Complete(ctx, req)
}

// Stream delegates to the wrapped completer and logs the operation.
func (c *LoggingCompleter) Stream(ctx context.Context, req probdoc.CompletionRequest, onChunk func(chunk string)) (text string, err error) {
	chunks := 0
	counted := func(chunk string) {
		chunks++
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	defer func(begin time.Time) {
		c.log("completion stream", req, len(text), chunks, begin, err)
	}(time.Now())
	return c.next.Stream(ctx, req, counted)
}

func (c *LoggingCompleter) log(msg string, req probdoc.CompletionRequest, n, chunks int, begin time.Time, err error) {
	attrs := []any{
		"model", req.Model,
		"max_tokens", req.MaxTokens,
		"prompt_bytes", len(req.Prompt),
		"bytes", n,
		"duration", time.Since(begin),
		"err", err,
	}
	if chunks > 0 {
		attrs = append(attrs, "chunks", chunks)
	}
	c.logger.Info(msg, attrs...)
}
