package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func createRun(t *testing.T, svc *sqlite.RunService, catalogURL string, startedAt time.Time) *probdoc.Run {
	t.Helper()
	run := &probdoc.Run{CatalogURL: catalogURL, Template: "exercise", StartedAt: startedAt}
	require.NoError(t, svc.CreateRun(context.Background(), run))
	return run
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and start time", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := &probdoc.Run{CatalogURL: "https://example.com/python-problems/", UseAI: true}

		err := svc.CreateRun(context.Background(), run)

		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.False(t, run.StartedAt.IsZero())
	})

	t.Run("keeps caller supplied ID", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := &probdoc.Run{ID: "run-1", CatalogURL: "https://example.com/"}

		require.NoError(t, svc.CreateRun(context.Background(), run))

		found, err := svc.FindRunByID(context.Background(), "run-1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/", found.CatalogURL)
		assert.True(t, found.FinishedAt.IsZero())
	})

	t.Run("rejects run without catalog URL", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.CreateRun(context.Background(), &probdoc.Run{})

		assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	})
}

func TestRunService_FinishRun(t *testing.T) {
	t.Parallel()

	t.Run("stores final counters", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		run := createRun(t, svc, "https://example.com/", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

		run.Total = 3
		run.Completed = 3
		run.Exported = 2
		run.Failed = 1
		run.Cancelled = true
		run.FinishedAt = time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
		require.NoError(t, svc.FinishRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Total)
		assert.Equal(t, 3, found.Completed)
		assert.Equal(t, 2, found.Exported)
		assert.Equal(t, 1, found.Failed)
		assert.True(t, found.Cancelled)
		assert.Equal(t, "exercise", found.Template)
		assert.True(t, found.StartedAt.Equal(run.StartedAt))
		assert.True(t, found.FinishedAt.Equal(run.FinishedAt))
	})

	t.Run("returns not found for unknown run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.FinishRun(context.Background(), &probdoc.Run{ID: "missing", CatalogURL: "https://example.com/"})

		assert.Equal(t, probdoc.ENOTFOUND, probdoc.ErrorCode(err))
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(setupTestDB(t))

	_, err := svc.FindRunByID(context.Background(), "missing")

	assert.Equal(t, probdoc.ENOTFOUND, probdoc.ErrorCode(err))
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(setupTestDB(t))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := createRun(t, svc, "https://example.com/a/", base)
	second := createRun(t, svc, "https://example.com/b/", base.Add(time.Hour))
	third := createRun(t, svc, "https://example.com/a/", base.Add(2*time.Hour))

	t.Run("lists newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := svc.FindRuns(context.Background(), probdoc.RunFilter{})

		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	})

	t.Run("filters by catalog URL", func(t *testing.T) {
		t.Parallel()

		url := "https://example.com/a/"
		runs, err := svc.FindRuns(context.Background(), probdoc.RunFilter{CatalogURL: &url})

		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, third.ID, runs[0].ID)
		assert.Equal(t, first.ID, runs[1].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		runs, err := svc.FindRuns(context.Background(), probdoc.RunFilter{Limit: 1, Offset: 1})

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, second.ID, runs[0].ID)
	})
}

func TestRunService_RunItems(t *testing.T) {
	t.Parallel()

	t.Run("returns items in insertion order", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		run := createRun(t, svc, "https://example.com/", time.Time{})

		items := []*probdoc.RunItem{
			{RunID: run.ID, TopicID: "strings", TopicIndex: 0, ProblemIndex: 0, Title: "Reverse", URL: "https://example.com/reverse/",
				Status: probdoc.ItemExported, Path: "/out/0001-strings/0001-reverse.md", ContentHash: "abc", Generated: true},
			{RunID: run.ID, TopicID: "strings", TopicIndex: 0, ProblemIndex: 1, URL: "https://example.com/empty/",
				Status: probdoc.ItemSkipped},
			{RunID: run.ID, TopicID: "lists", TopicIndex: 1, ProblemIndex: 0, URL: "https://example.com/broken/",
				Status: probdoc.ItemFailed, Error: "page never loaded"},
		}
		for _, item := range items {
			require.NoError(t, svc.CreateRunItem(ctx, item))
			assert.NotEmpty(t, item.ID)
		}

		found, err := svc.FindRunItems(ctx, run.ID)

		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "Reverse", found[0].Title)
		assert.Equal(t, probdoc.ItemExported, found[0].Status)
		assert.Equal(t, "abc", found[0].ContentHash)
		assert.True(t, found[0].Generated)
		assert.Equal(t, probdoc.ItemSkipped, found[1].Status)
		assert.Equal(t, 1, found[2].TopicIndex)
		assert.Equal(t, "page never loaded", found[2].Error)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := createRun(t, svc, "https://example.com/", time.Time{})

		err := svc.CreateRunItem(context.Background(), &probdoc.RunItem{RunID: run.ID, URL: "https://example.com/x/", Status: "done"})

		assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	})

	t.Run("rejects item for unknown run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.CreateRunItem(context.Background(), &probdoc.RunItem{RunID: "missing", URL: "https://example.com/x/", Status: probdoc.ItemSkipped})

		assert.Equal(t, probdoc.ENOTFOUND, probdoc.ErrorCode(err))
	})

	t.Run("returns empty list for run without items", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := createRun(t, svc, "https://example.com/", time.Time{})

		found, err := svc.FindRunItems(context.Background(), run.ID)

		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
