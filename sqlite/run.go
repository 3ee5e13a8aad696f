package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/probdoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ probdoc.RunService = (*RunService)(nil)

// RunService implements probdoc.RunService using SQLite.
type RunService struct {
	db  *DB
	now func() time.Time
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db, now: time.Now}
}

const runColumns = "id, catalog_url, template, use_ai, total, completed, exported, failed, cancelled, started_at, finished_at"

// CreateRun stores a new run. StartedAt defaults to now.
func (s *RunService) CreateRun(ctx context.Context, run *probdoc.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CatalogURL, run.Template, run.UseAI, run.Total, run.Completed, run.Exported,
		run.Failed, run.Cancelled, run.StartedAt.UTC().Format(time.RFC3339), formatOptionalTime(run.FinishedAt))

	return err
}

// FinishRun stores the final counters of a run. FinishedAt defaults to now.
func (s *RunService) FinishRun(ctx context.Context, run *probdoc.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = s.now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET total = ?, completed = ?, exported = ?, failed = ?, cancelled = ?, finished_at = ?
		WHERE id = ?
	`, run.Total, run.Completed, run.Exported, run.Failed, run.Cancelled,
		run.FinishedAt.UTC().Format(time.RFC3339), run.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return probdoc.Errorf(probdoc.ENOTFOUND, "run not found")
	}
	return nil
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*probdoc.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, probdoc.Errorf(probdoc.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter probdoc.RunFilter) ([]*probdoc.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + runColumns + " FROM runs WHERE 1=1")

	if filter.CatalogURL != nil {
		query.WriteString(" AND catalog_url = ?")
		args = append(args, *filter.CatalogURL)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*probdoc.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CreateRunItem stores the outcome of one item after those already stored
// for the same run.
func (s *RunService) CreateRunItem(ctx context.Context, item *probdoc.RunItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_items (id, run_id, topic_id, topic_index, problem_index, title, url, status,
			path, content_hash, generated, error, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM run_items WHERE run_id = ?), ?)
	`, item.ID, item.RunID, item.TopicID, item.TopicIndex, item.ProblemIndex, item.Title, item.URL,
		string(item.Status), item.Path, item.ContentHash, item.Generated, item.Error,
		item.RunID, item.CreatedAt.Format(time.RFC3339))
	if err != nil && strings.Contains(err.Error(), "FOREIGN KEY") {
		return probdoc.Errorf(probdoc.ENOTFOUND, "run not found")
	}
	return err
}

// FindRunItems retrieves the items of a run in the order they were stored.
func (s *RunService) FindRunItems(ctx context.Context, runID string) ([]*probdoc.RunItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, topic_id, topic_index, problem_index, title, url, status,
			path, content_hash, generated, error, created_at
		FROM run_items
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*probdoc.RunItem
	for rows.Next() {
		var item probdoc.RunItem
		var status, createdAt string
		if err := rows.Scan(&item.ID, &item.RunID, &item.TopicID, &item.TopicIndex, &item.ProblemIndex,
			&item.Title, &item.URL, &status, &item.Path, &item.ContentHash, &item.Generated,
			&item.Error, &createdAt); err != nil {
			return nil, err
		}
		item.Status = probdoc.ItemStatus(status)
		if item.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*probdoc.Run, error) {
	var run probdoc.Run
	var startedAt, finishedAt string
	if err := row.Scan(&run.ID, &run.CatalogURL, &run.Template, &run.UseAI, &run.Total, &run.Completed,
		&run.Exported, &run.Failed, &run.Cancelled, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if finishedAt != "" {
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
