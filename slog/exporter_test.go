package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/mock"
	probslog "github.com/fwojciec/probdoc/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("logs path and changed flag", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Exporter{
			ExportFn: func(ctx context.Context, content probdoc.Content, target probdoc.ExportTarget) (*probdoc.ExportResult, error) {
				return &probdoc.ExportResult{Path: "out/0001-basics/0001-sum.md", Changed: false}, nil
			},
		}

		e := probslog.NewLoggingExporter(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		res, err := e.Export(context.Background(), &probdoc.Original{ProblemRecord: &probdoc.ProblemRecord{Title: "Sum"}},
			probdoc.ExportTarget{TopicName: "Basics"})

		require.NoError(t, err)
		assert.Equal(t, "out/0001-basics/0001-sum.md", res.Path)
		output := buf.String()
		assert.Contains(t, output, "topic=Basics")
		assert.Contains(t, output, "path=out/0001-basics/0001-sum.md")
		assert.Contains(t, output, "changed=false")
	})

	t.Run("logs error without a path", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Exporter{
			ExportFn: func(ctx context.Context, content probdoc.Content, target probdoc.ExportTarget) (*probdoc.ExportResult, error) {
				return nil, probdoc.Errorf(probdoc.EIO, "disk full")
			},
		}

		e := probslog.NewLoggingExporter(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := e.Export(context.Background(), nil, probdoc.ExportTarget{TopicName: "Basics"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "disk full")
		assert.NotContains(t, buf.String(), "path=")
	})
}
