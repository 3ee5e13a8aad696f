// Package rod fetches JavaScript-rendered pages with go-rod/rod.
package rod

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/probdoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements probdoc.Fetcher at compile time.
var _ probdoc.Fetcher = (*Fetcher)(nil)

// DefaultUserAgent is sent instead of the headless browser's own agent string.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Fetcher retrieves rendered HTML through a single reusable browser page.
// Each request escalates through the configured load strategies until the
// page contains the marker for its kind.
//
// Fetcher is safe for concurrent use; requests are serialized on the page.
type Fetcher struct {
	strategies    []probdoc.LoadStrategy
	backoff       time.Duration
	markers       map[probdoc.PageKind]string
	userAgent     string
	screenshotDir string
	managerOpts   []ManagerOption
	logger        *slog.Logger

	manager *BrowserManager

	mu         sync.Mutex
	page       *rod.Page
	generation uint64
	closed     atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithStrategies replaces the default load strategies.
func WithStrategies(strategies []probdoc.LoadStrategy) Option {
	return func(f *Fetcher) {
		f.strategies = strategies
	}
}

// WithBackoff sets the pause between failed strategies.
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

// WithUserAgent overrides the user agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithScreenshotDir saves a full-page screenshot to dir after every
// successful catalog fetch and whenever a page never reaches the expected
// state.
func WithScreenshotDir(dir string) Option {
	return func(f *Fetcher) {
		f.screenshotDir = dir
	}
}

// WithLogger reports screenshot failures, which never fail a fetch.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithManagerOptions passes options through to the BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher launches a headless browser. Close must be called when the
// Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		strategies: probdoc.DefaultLoadStrategies(),
		backoff:    probdoc.DefaultBackoff,
		markers:    probdoc.DefaultMarkers(),
		userAgent:  DefaultUserAgent,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, probdoc.WrapError(probdoc.ELOAD, err, "failed to start browser")
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to url and returns the rendered HTML once it contains the
// marker for kind.
func (f *Fetcher) Fetch(ctx context.Context, url string, kind probdoc.PageKind) (string, error) {
	if f.closed.Load() {
		return "", probdoc.Errorf(probdoc.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	page, err := f.currentPage()
	if err != nil {
		return "", err
	}

	html, err := probdoc.LoadWithStrategies(ctx, f.strategies, f.backoff, f.markers[kind],
		func(ctx context.Context, s probdoc.LoadStrategy) (string, error) {
			return load(ctx, page, url, s)
		})
	if err != nil {
		if probdoc.ErrorCode(err) == probdoc.ELOAD {
			f.screenshot(page, probdoc.Slug(url)+"-failed")
		}
		return "", err
	}

	if kind == probdoc.PageCatalog {
		f.screenshot(page, "catalog")
	}
	f.manager.IncrementPageCount()
	return html, nil
}

// currentPage returns the shared page, opening a new one when the browser
// was recycled since the last request. Must be called with mu held.
func (f *Fetcher) currentPage() (*rod.Page, error) {
	browser, generation := f.manager.Browser()
	if browser == nil {
		return nil, probdoc.Errorf(probdoc.EINVALID, "fetcher is closed")
	}
	if f.page != nil && f.generation == generation {
		return f.page, nil
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, probdoc.WrapError(probdoc.ELOAD, err, "failed to open page")
	}
	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			_ = page.Close()
			return nil, probdoc.WrapError(probdoc.ELOAD, err, "failed to set user agent")
		}
	}

	f.page, f.generation = page, generation
	return page, nil
}

// load performs one navigation with strategy s.
func load(ctx context.Context, page *rod.Page, url string, s probdoc.LoadStrategy) (string, error) {
	p := page.Context(ctx)
	if s.Timeout > 0 {
		p = p.Timeout(s.Timeout)
	}

	var wait func()
	switch s.Wait {
	case probdoc.WaitNetworkIdle:
		wait = p.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	case probdoc.WaitDOMContentLoaded:
		wait = p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	}

	if err := p.Navigate(url); err != nil {
		return "", err
	}
	if wait != nil {
		wait()
	} else if err := p.WaitLoad(); err != nil {
		return "", err
	}

	if s.Settle > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.Settle):
		}
	}

	// Lazy-loaded blocks only render once scrolled into view.
	_, _ = p.Eval(`() => window.scrollTo(0, document.body.scrollHeight / 2)`)

	return p.HTML()
}

// screenshot saves a full-page capture named prefix-<unix>.png when a
// screenshot directory is configured. Failures are logged.
func (f *Fetcher) screenshot(page *rod.Page, prefix string) {
	if f.screenshotDir == "" {
		return
	}
	path := filepath.Join(f.screenshotDir, fmt.Sprintf("%s-%d.png", prefix, time.Now().Unix()))
	if err := writeScreenshot(page, path); err != nil {
		f.logger.Warn("screenshot failed", "path", path, "err", err)
	}
}

func writeScreenshot(page *rod.Page, path string) error {
	data, err := page.Timeout(10 * time.Second).Screenshot(true, nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.page != nil {
		_ = f.page.Close()
		f.page = nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
