package mock

import (
	"context"

	"github.com/fwojciec/probdoc"
)

var _ probdoc.RunService = (*RunService)(nil)

// RunService is a mock implementation of probdoc.RunService.
type RunService struct {
	CreateRunFn     func(ctx context.Context, run *probdoc.Run) error
	FinishRunFn     func(ctx context.Context, run *probdoc.Run) error
	FindRunByIDFn   func(ctx context.Context, id string) (*probdoc.Run, error)
	FindRunsFn      func(ctx context.Context, filter probdoc.RunFilter) ([]*probdoc.Run, error)
	CreateRunItemFn func(ctx context.Context, item *probdoc.RunItem) error
	FindRunItemsFn  func(ctx context.Context, runID string) ([]*probdoc.RunItem, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *probdoc.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, run *probdoc.Run) error {
	return s.FinishRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*probdoc.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter probdoc.RunFilter) ([]*probdoc.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) CreateRunItem(ctx context.Context, item *probdoc.RunItem) error {
	return s.CreateRunItemFn(ctx, item)
}

func (s *RunService) FindRunItems(ctx context.Context, runID string) ([]*probdoc.RunItem, error) {
	return s.FindRunItemsFn(ctx, runID)
}
