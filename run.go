package probdoc

import (
	"context"
	"time"
)

// Run records one catalog walk.
type Run struct {
	ID         string    `json:"id"`
	CatalogURL string    `json:"catalogUrl"`
	Template   string    `json:"template"`
	UseAI      bool      `json:"useAI"`
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	Exported   int       `json:"exported"`
	Failed     int       `json:"failed"`
	Cancelled  bool      `json:"cancelled"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.CatalogURL == "" {
		return Errorf(EINVALID, "run catalog URL required")
	}
	return nil
}

// ItemStatus is the outcome of a single walk item.
type ItemStatus string

// Item statuses.
const (
	ItemExported ItemStatus = "exported"
	ItemSkipped  ItemStatus = "skipped"
	ItemFailed   ItemStatus = "failed"
)

// RunItem records what happened to one problem link during a run.
type RunItem struct {
	ID           string     `json:"id"`
	RunID        string     `json:"runId"`
	TopicID      string     `json:"topicId"`
	TopicIndex   int        `json:"topicIndex"`
	ProblemIndex int        `json:"problemIndex"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Status       ItemStatus `json:"status"`
	Path         string     `json:"path,omitempty"`
	ContentHash  string     `json:"contentHash,omitempty"`
	Generated    bool       `json:"generated"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Validate returns an error if the item contains invalid fields.
func (i *RunItem) Validate() error {
	if i.RunID == "" {
		return Errorf(EINVALID, "run item run ID required")
	}
	if i.URL == "" {
		return Errorf(EINVALID, "run item URL required")
	}
	switch i.Status {
	case ItemExported, ItemSkipped, ItemFailed:
	default:
		return Errorf(EINVALID, "run item status %q invalid", i.Status)
	}
	return nil
}

// RunService stores the history of catalog walks.
type RunService interface {
	// CreateRun assigns an ID when empty and stores the run.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores final counters for a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// CreateRunItem stores the outcome of one item.
	CreateRunItem(ctx context.Context, item *RunItem) error

	// FindRunItems retrieves items of a run in walk order.
	FindRunItems(ctx context.Context, runID string) ([]*RunItem, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	CatalogURL *string `json:"catalogUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
