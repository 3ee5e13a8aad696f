package probdoc

import (
	"context"
	"strings"
	"time"
)

// PageKind identifies the type of page being fetched. Each kind has its own
// content marker that proves the page finished rendering.
type PageKind string

// Page kinds.
const (
	PageCatalog PageKind = "catalog"
	PageProblem PageKind = "problem"
)

// DefaultMarkers maps each page kind to a class name unique to that page type.
func DefaultMarkers() map[PageKind]string {
	return map[PageKind]string{
		PageCatalog: "sf-toc",
		PageProblem: "entry-content",
	}
}

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL and returns the rendered HTML once it
	// contains the marker for kind. Returns ELOAD when every load strategy
	// is exhausted.
	Fetch(ctx context.Context, url string, kind PageKind) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// WaitCondition is the page event a load strategy waits for.
type WaitCondition string

// Wait conditions, fastest first.
const (
	WaitDOMContentLoaded WaitCondition = "domcontentloaded"
	WaitNetworkIdle      WaitCondition = "networkidle"
	WaitLoad             WaitCondition = "load"
)

// LoadStrategy describes one attempt at loading a page.
type LoadStrategy struct {
	Name    string
	Wait    WaitCondition
	Timeout time.Duration // navigation budget for this attempt
	Settle  time.Duration // extra delay after the wait condition fires
}

// DefaultBackoff is the pause between failed load strategies.
const DefaultBackoff = 3 * time.Second

// DefaultLoadStrategies returns the escalating strategies applied per request.
func DefaultLoadStrategies() []LoadStrategy {
	return []LoadStrategy{
		{Name: "dom", Wait: WaitDOMContentLoaded, Timeout: 30 * time.Second, Settle: 2 * time.Second},
		{Name: "idle", Wait: WaitNetworkIdle, Timeout: 45 * time.Second, Settle: 3 * time.Second},
		{Name: "load", Wait: WaitLoad, Timeout: 60 * time.Second, Settle: 5 * time.Second},
	}
}

// LoadFunc performs a single load attempt with the given strategy.
type LoadFunc func(ctx context.Context, s LoadStrategy) (string, error)

// LoadWithStrategies tries each strategy in order and returns the HTML of the
// first attempt that contains marker. An empty marker accepts any HTML.
// Failed attempts are separated by backoff. Context errors are returned as-is
// so callers can tell cancellation apart from load failures.
func LoadWithStrategies(ctx context.Context, strategies []LoadStrategy, backoff time.Duration, marker string, load LoadFunc) (string, error) {
	if len(strategies) == 0 {
		return "", Errorf(EINVALID, "no load strategies configured")
	}

	var lastErr error
	for i, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		html, err := load(ctx, s)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			lastErr = err
		case marker != "" && !strings.Contains(html, marker):
			lastErr = Errorf(ELOAD, "strategy %s: marker %q not found", s.Name, marker)
		default:
			return html, nil
		}

		if i == len(strategies)-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", WrapError(ELOAD, lastErr, "page never reached expected state after %d strategies", len(strategies))
}
