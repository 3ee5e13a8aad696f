package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/probdoc"
)

var _ probdoc.Exporter = (*LoggingExporter)(nil)

// LoggingExporter wraps an Exporter with logging.
type LoggingExporter struct {
	next   probdoc.Exporter
	logger *slog.Logger
}

// NewLoggingExporter creates a new LoggingExporter.
func NewLoggingExporter(next probdoc.Exporter, logger *slog.Logger) *LoggingExporter {
	return &LoggingExporter{next: next, logger: logger}
}

// Export delegates to the wrapped exporter and logs the written path.
func (e *LoggingExporter) Export(ctx context.Context, content probdoc.Content, target probdoc.ExportTarget) (res *probdoc.ExportResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"topic", target.TopicName, "duration", time.Since(begin), "err", err}
		if res != nil {
			attrs = append(attrs, "path", res.Path, "changed", res.Changed)
		}
		e.logger.Info("export", attrs...)
	}(time.Now())
	return e.next.Export(ctx, content, target)
}
