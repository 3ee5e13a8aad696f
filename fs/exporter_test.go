package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(title string) *probdoc.ProblemRecord {
	return &probdoc.ProblemRecord{
		Title:       title,
		Description: "Print the sum of two numbers.",
		Solutions:   []string{"print(1 + 2)"},
		TestCases:   []string{"3"},
		URL:         "https://example.com/" + probdoc.Slug(title) + "/",
	}
}

func target(topic string, topicIndex, problemIndex int) probdoc.ExportTarget {
	return probdoc.ExportTarget{
		TopicName:    topic,
		TopicIndex:   probdoc.Index(topicIndex),
		ProblemIndex: probdoc.Index(problemIndex),
	}
}

// Story: Exporting Records
// Records are written to numbered topic directories in catalog order

func TestExporter_WritesEnhancedBody(t *testing.T) {
	t.Parallel()

	// Given an exporter and enhanced content
	root := t.TempDir()
	exporter := fs.NewExporter(root)
	content := &probdoc.Enhanced{
		Original:  record("Sum of Two Numbers"),
		Markdown:  "# Tổng hai số\n\nNội dung.\n",
		Template:  probdoc.TemplateExercise,
		Generated: true,
	}

	// When I export it
	res, err := exporter.Export(context.Background(), content, target("Basic Programs", 0, 1))

	// Then the file holds the enhanced body at the numbered path
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "0001-basic-programs", "0002-sum-of-two-numbers.md"), res.Path)
	assert.True(t, res.Changed)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, content.Markdown, string(data))
	assert.Equal(t, fs.ComputeHash(content.Markdown), res.Hash)
}

func TestExporter_RendersOriginalRecord(t *testing.T) {
	t.Parallel()

	// Given an exporter with a signature
	root := t.TempDir()
	exporter := fs.NewExporter(root, fs.WithSignature("Example Academy"))

	// When I export an untransformed record
	res, err := exporter.Export(context.Background(), &probdoc.Original{ProblemRecord: record("Sum")}, target("Basics", 0, 0))

	// Then the raw skeleton is written with a source link
	require.NoError(t, err)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.HasPrefix(body, "# Sum\n"))
	assert.Contains(t, body, "## Solutions")
	assert.Contains(t, body, "## Test Cases")
	assert.Contains(t, body, "Source: <https://example.com/sum/>")
	assert.True(t, strings.HasSuffix(body, "---\n\nExample Academy\n"))
}

func TestExporter_EmptyEnhancedBodyFallsBackToRecord(t *testing.T) {
	t.Parallel()

	exporter := fs.NewExporter(t.TempDir())

	res, err := exporter.Export(context.Background(), &probdoc.Enhanced{Original: record("Sum")}, target("Basics", 0, 0))

	require.NoError(t, err)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Solutions")
}

func TestExporter_IsIdempotent(t *testing.T) {
	t.Parallel()

	// Given a record already exported once
	exporter := fs.NewExporter(t.TempDir())
	content := &probdoc.Original{ProblemRecord: record("Check Even/Odd!")}
	first, err := exporter.Export(context.Background(), content, target("Numbers", 2, 4))
	require.NoError(t, err)
	before, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(first.Path, old, old))
	stamped, err := os.Stat(first.Path)
	require.NoError(t, err)

	// When I export it again
	second, err := exporter.Export(context.Background(), content, target("Numbers", 2, 4))

	// Then the same path holds byte-identical content and nothing was rewritten
	require.NoError(t, err)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.Hash, second.Hash)
	assert.False(t, second.Changed)
	after, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	info, err := os.Stat(second.Path)
	require.NoError(t, err)
	assert.Equal(t, stamped.ModTime(), info.ModTime())
}

func TestExporter_OverwritesChangedBody(t *testing.T) {
	t.Parallel()

	exporter := fs.NewExporter(t.TempDir())
	rec := record("Sum")
	_, err := exporter.Export(context.Background(), &probdoc.Enhanced{Original: rec, Markdown: "# One\n"}, target("Basics", 0, 0))
	require.NoError(t, err)

	res, err := exporter.Export(context.Background(), &probdoc.Enhanced{Original: rec, Markdown: "# Two\n"}, target("Basics", 0, 0))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "# Two\n", string(data))
}

func TestExporter_PreservesCatalogOrder(t *testing.T) {
	t.Parallel()

	// Given topics [A, B] with links [[p1, p2], [p3]]
	root := t.TempDir()
	exporter := fs.NewExporter(root)
	catalog := []struct {
		topic    string
		problems []string
	}{
		{"A", []string{"p1", "p2"}},
		{"B", []string{"p3"}},
	}

	// When each is exported in sequence
	var paths []string
	for ti, topic := range catalog {
		for pi, title := range topic.problems {
			res, err := exporter.Export(context.Background(), &probdoc.Original{ProblemRecord: record(title)}, target(topic.topic, ti, pi))
			require.NoError(t, err)
			rel, err := filepath.Rel(root, res.Path)
			require.NoError(t, err)
			paths = append(paths, filepath.ToSlash(rel))
		}
	}

	// Then the numbering follows catalog order
	assert.Equal(t, []string{"0001-a/0001-p1.md", "0001-a/0002-p2.md", "0002-b/0001-p3.md"}, paths)
}

func TestExporter_OmitsPrefixWithoutIndices(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	exporter := fs.NewExporter(root)

	res, err := exporter.Export(context.Background(), &probdoc.Original{ProblemRecord: record("Sum")}, probdoc.ExportTarget{TopicName: "Basics"})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "basics", "sum.md"), res.Path)
}

func TestExporter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("rejects record without title", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewExporter(t.TempDir()).Export(context.Background(), &probdoc.Original{ProblemRecord: &probdoc.ProblemRecord{}}, target("A", 0, 0))

		assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	})

	t.Run("rejects missing topic name", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewExporter(t.TempDir()).Export(context.Background(), &probdoc.Original{ProblemRecord: record("Sum")}, probdoc.ExportTarget{})

		assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	})

	t.Run("reports filesystem failures as io", func(t *testing.T) {
		t.Parallel()

		// A regular file where the export root should be.
		blocker := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		_, err := fs.NewExporter(blocker).Export(context.Background(), &probdoc.Original{ProblemRecord: record("Sum")}, target("A", 0, 0))

		assert.Equal(t, probdoc.EIO, probdoc.ErrorCode(err))
	})

	t.Run("returns cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewExporter(t.TempDir()).Export(ctx, &probdoc.Original{ProblemRecord: record("Sum")}, target("A", 0, 0))

		assert.ErrorIs(t, err, context.Canceled)
	})
}
