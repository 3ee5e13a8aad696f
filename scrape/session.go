// Package scrape drives a scraping session: it owns the page fetcher and
// walks a catalog item by item, parsing, transforming and exporting each
// problem in catalog order.
package scrape

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/probdoc"
)

// State is the lifecycle position of a Session.
type State int

// Session states.
const (
	StateUninitialized State = iota
	StateReady
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Pacing between walk items.
const (
	DefaultPace   = 1500 * time.Millisecond
	DefaultAIPace = 2500 * time.Millisecond
)

// FetcherFactory provisions the page fetcher when a session initializes.
type FetcherFactory func(ctx context.Context) (probdoc.Fetcher, error)

// Session coordinates one fetcher across sequential operations. Fetches and
// transforms never overlap; a catalog walk holds the session for its whole
// duration.
type Session struct {
	NewFetcher  FetcherFactory
	Catalog     probdoc.CatalogParser
	Problems    probdoc.ProblemParser
	Transformer probdoc.Transformer
	Exporter    probdoc.Exporter

	// Limiter paces walk items per host. When nil each walk builds one
	// from DefaultPace or DefaultAIPace.
	Limiter probdoc.DomainLimiter

	// Runs records walks and their items when set.
	Runs probdoc.RunService

	Logger *slog.Logger

	mu      sync.Mutex
	state   State
	fetcher probdoc.Fetcher
	topics  []probdoc.Topic
	catalog string

	// op serializes fetch and transform calls.
	op sync.Mutex

	cancelled atomic.Bool
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialize provisions the fetcher and moves the session to Ready.
// Initializing a Ready session is a no-op.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateReady:
		return nil
	case StateRunning:
		return probdoc.Errorf(probdoc.ESTATE, "session is running")
	case StateClosed:
		return probdoc.Errorf(probdoc.ESTATE, "session is closed")
	}

	if s.NewFetcher == nil {
		return probdoc.Errorf(probdoc.EINVALID, "fetcher factory required")
	}
	f, err := s.NewFetcher(ctx)
	if err != nil {
		if probdoc.ErrorCode(err) == probdoc.EINTERNAL && ctx.Err() == nil {
			return probdoc.WrapError(probdoc.ELOAD, err, "failed to start fetcher")
		}
		return err
	}
	s.fetcher = f
	s.state = StateReady
	return nil
}

// FetchCatalog loads and parses the catalog at url. The topics are kept for
// a later walk.
func (s *Session) FetchCatalog(ctx context.Context, url string) ([]probdoc.Topic, error) {
	f, err := s.ready()
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "catalog URL required")
	}

	topics, err := s.fetchCatalog(ctx, f, url)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.topics = topics
	s.catalog = url
	s.mu.Unlock()
	return topics, nil
}

// FetchProblem loads and parses one problem page. A page without usable
// content returns EPARSE.
func (s *Session) FetchProblem(ctx context.Context, url string) (*probdoc.ProblemRecord, error) {
	f, err := s.ready()
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "problem URL required")
	}

	s.op.Lock()
	defer s.op.Unlock()

	rec, err := s.fetchProblem(ctx, f, url)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, probdoc.Errorf(probdoc.EPARSE, "no usable content at %s", url)
	}
	return rec, nil
}

// Transform runs the transformer on rec. It needs no fetcher, so it is
// allowed before Initialize but not after Close.
func (s *Session) Transform(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) *probdoc.TransformResult {
	if s.State() == StateClosed {
		return &probdoc.TransformResult{Code: probdoc.ESTATE, Error: "session is closed"}
	}

	s.op.Lock()
	defer s.op.Unlock()
	return s.Transformer.Transform(ctx, rec, opts)
}

// Export writes rec under target. With opts set the record is enhanced
// first, falling back to deterministic rendering when generation fails.
func (s *Session) Export(ctx context.Context, rec *probdoc.ProblemRecord, target probdoc.ExportTarget, opts *probdoc.TransformOptions) (*probdoc.ExportResult, error) {
	if s.State() == StateClosed {
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is closed")
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	var content probdoc.Content = &probdoc.Original{ProblemRecord: rec}
	if opts != nil {
		s.op.Lock()
		enhanced, res, err := s.Transformer.Enhance(ctx, rec, *opts)
		s.op.Unlock()
		if err != nil {
			return nil, err
		}
		if !res.Success {
			s.logger().Warn("transform fell back to template", "title", rec.Title, "code", res.Code, "error", res.Error)
		}
		content = enhanced
	}
	return s.Exporter.Export(ctx, content, target)
}

// Cancel asks a running walk to stop before its next item.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Close releases the fetcher. It is valid from any state and idempotent.
// A running walk stops before its next item.
func (s *Session) Close() error {
	s.cancelled.Store(true)

	s.mu.Lock()
	f := s.fetcher
	s.fetcher = nil
	s.state = StateClosed
	s.mu.Unlock()

	if f == nil {
		return nil
	}
	return f.Close()
}

// ready returns the fetcher if the session accepts single operations.
func (s *Session) ready() (probdoc.Fetcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateUninitialized:
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is not initialized")
	case StateRunning:
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is running a catalog walk")
	case StateClosed:
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is closed")
	}
	return s.fetcher, nil
}

func (s *Session) fetchCatalog(ctx context.Context, f probdoc.Fetcher, url string) ([]probdoc.Topic, error) {
	s.op.Lock()
	defer s.op.Unlock()

	html, err := f.Fetch(ctx, url, probdoc.PageCatalog)
	if err != nil {
		return nil, err
	}
	return s.Catalog.ParseCatalog(html)
}

func (s *Session) fetchProblem(ctx context.Context, f probdoc.Fetcher, url string) (*probdoc.ProblemRecord, error) {
	html, err := f.Fetch(ctx, url, probdoc.PageProblem)
	if err != nil {
		return nil, err
	}
	return s.Problems.ParseProblem(html, url)
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
