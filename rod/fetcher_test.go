//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements probdoc.Fetcher.
var _ probdoc.Fetcher = (*rod.Fetcher)(nil)

func fastStrategies() []probdoc.LoadStrategy {
	return []probdoc.LoadStrategy{
		{Name: "dom", Wait: probdoc.WaitDOMContentLoaded, Timeout: 5 * time.Second},
		{Name: "load", Wait: probdoc.WaitLoad, Timeout: 5 * time.Second},
	}
}

func newFetcher(t *testing.T, opts ...rod.Option) *rod.Fetcher {
	t.Helper()
	opts = append([]rod.Option{rod.WithStrategies(fastStrategies()), rod.WithBackoff(10 * time.Millisecond)}, opts...)
	fetcher, err := rod.NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	fetcher := newFetcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, srv.URL, probdoc.PageProblem)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Fetch_WaitsForRenderedMarker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Python Programs</title></head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').innerHTML = '<div class="sf-toc"><a href="#basic">Basic Programs</a></div>';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher := newFetcher(t)

	html, err := fetcher.Fetch(context.Background(), srv.URL, probdoc.PageCatalog)

	require.NoError(t, err)
	assert.Contains(t, html, "Basic Programs")
	assert.NotContains(t, html, "Loading...")
}

func TestFetcher_Fetch_SendsUserAgent(t *testing.T) {
	t.Parallel()

	agents := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="entry-content">ok</div></body></html>`))
	}))
	defer srv.Close()

	fetcher := newFetcher(t, rod.WithUserAgent("probdoc-test/1.0"))

	_, err := fetcher.Fetch(context.Background(), srv.URL, probdoc.PageProblem)

	require.NoError(t, err)
	assert.Equal(t, "probdoc-test/1.0", <-agents)
}

func TestFetcher_Fetch_MissingMarkerReturnsELOAD(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>Access denied</p></body></html>`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	fetcher := newFetcher(t, rod.WithScreenshotDir(dir))

	_, err := fetcher.Fetch(context.Background(), srv.URL, probdoc.PageProblem)

	require.Error(t, err)
	assert.Equal(t, probdoc.ELOAD, probdoc.ErrorCode(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "expected a diagnostic screenshot")
}

func TestFetcher_Fetch_CatalogScreenshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="sf-toc"><a href="#a">A</a></div></body></html>`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	fetcher := newFetcher(t, rod.WithScreenshotDir(dir))

	_, err := fetcher.Fetch(context.Background(), srv.URL, probdoc.PageCatalog)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "catalog-"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))
}

func TestFetcher_Fetch_ReusesPageAcrossRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="entry-content">` + r.URL.Path + `</div></body></html>`))
	}))
	defer srv.Close()

	fetcher := newFetcher(t, rod.WithManagerOptions(rod.WithMaxPages(1)))

	first, err := fetcher.Fetch(context.Background(), srv.URL+"/one", probdoc.PageProblem)
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), srv.URL+"/two", probdoc.PageProblem)
	require.NoError(t, err)

	assert.Contains(t, first, "/one")
	assert.Contains(t, second, "/two")
}

func TestFetcher_Close_Idempotent(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())
}

func TestFetcher_Fetch_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	require.NoError(t, fetcher.Close())

	_, err = fetcher.Fetch(context.Background(), "http://example.com", probdoc.PageProblem)

	require.Error(t, err)
	assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	assert.Contains(t, probdoc.ErrorMessage(err), "closed")
}
