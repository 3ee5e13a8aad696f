package mock

import (
	"context"

	"github.com/fwojciec/probdoc"
)

var _ probdoc.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of probdoc.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, kind probdoc.PageKind) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, kind probdoc.PageKind) (string, error) {
	return f.FetchFn(ctx, url, kind)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
