// Package http talks to remote services over plain HTTP: a static page
// fetcher for sites that render without JavaScript, and a chat-completions
// client.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/probdoc"
)

// DefaultUserAgent identifies static fetches.
const DefaultUserAgent = "Mozilla/5.0 (compatible; probdoc/1.0)"

// maxPageBytes caps the size of a fetched page.
const maxPageBytes = 10 << 20

// Ensure Fetcher implements probdoc.Fetcher at compile time.
var _ probdoc.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content using HTTP GET requests. Unlike
// rod.Fetcher it does not execute JavaScript, so it only suits pages whose
// markers are present in the served HTML. Each load strategy's timeout
// bounds one request; wait conditions and settle delays do not apply.
type Fetcher struct {
	client     *http.Client
	strategies []probdoc.LoadStrategy
	backoff    time.Duration
	markers    map[probdoc.PageKind]string
	userAgent  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithStrategies replaces the default load strategies.
func WithStrategies(strategies []probdoc.LoadStrategy) Option {
	return func(f *Fetcher) {
		f.strategies = strategies
	}
}

// WithBackoff sets the pause between failed attempts.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoff = d
	}
}

// WithMarkers replaces the content markers per page kind.
func WithMarkers(markers map[probdoc.PageKind]string) Option {
	return func(f *Fetcher) {
		f.markers = markers
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{},
		strategies: probdoc.DefaultLoadStrategies(),
		backoff:    probdoc.DefaultBackoff,
		markers:    probdoc.DefaultMarkers(),
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the HTML at url, retrying per strategy until the body
// contains the marker for kind.
func (f *Fetcher) Fetch(ctx context.Context, url string, kind probdoc.PageKind) (string, error) {
	return probdoc.LoadWithStrategies(ctx, f.strategies, f.backoff, f.markers[kind],
		func(ctx context.Context, s probdoc.LoadStrategy) (string, error) {
			if s.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.Timeout)
				defer cancel()
			}
			return f.get(ctx, url)
		})
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", probdoc.WrapError(probdoc.EINVALID, err, "invalid url %q", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", probdoc.Errorf(probdoc.ELOAD, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close is a no-op; http.Client needs no explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
