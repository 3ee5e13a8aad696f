package mock

import (
	"context"

	"github.com/fwojciec/probdoc"
)

var _ probdoc.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of probdoc.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, content probdoc.Content, target probdoc.ExportTarget) (*probdoc.ExportResult, error)
}

func (e *Exporter) Export(ctx context.Context, content probdoc.Content, target probdoc.ExportTarget) (*probdoc.ExportResult, error) {
	return e.ExportFn(ctx, content, target)
}
