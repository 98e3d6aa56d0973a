// Package fetcher retrieves page source for link cards, remembering every
// successful response for the lifetime of the Fetcher.
package fetcher

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/user/linkcard/internal/monitoring"
	"github.com/user/linkcard/internal/repository"
)

// Result is delivered by FetchAsync.
type Result struct {
	URL  string
	Text string
	OK   bool
}

// Fetcher wraps a transport with a request-level cache keyed by the literal URL.
type Fetcher struct {
	transport repository.PageFetcherRepository
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	mu    sync.Mutex
	pages map[string]string
}

func New(transport repository.PageFetcherRepository, logger *zap.Logger, metrics *monitoring.Metrics) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewNopMetrics()
	}
	return &Fetcher{
		transport: transport,
		logger:    logger,
		metrics:   metrics,
		pages:     make(map[string]string),
	}
}

// Fetch returns the page text for url and whether it was retrieved. Failures
// are logged and reported as ("", false), never as errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, bool) {
	f.mu.Lock()
	text, ok := f.pages[url]
	f.mu.Unlock()
	if ok {
		f.metrics.IncFetch("memory")
		return text, true
	}

	text, err := f.transport.Fetch(ctx, url)
	if err != nil {
		f.logger.Warn("failed to fetch page", zap.String("url", url), zap.Error(err))
		f.metrics.IncFetch("failed")
		f.metrics.IncErrorsTotal("fetch_failed")
		return "", false
	}
	if text == "" {
		f.logger.Warn("page has no content", zap.String("url", url))
		f.metrics.IncFetch("failed")
		f.metrics.IncErrorsTotal("empty_body")
		return "", false
	}

	f.mu.Lock()
	f.pages[url] = text
	f.mu.Unlock()

	f.metrics.IncFetch("network")
	f.logger.Debug("fetched page", zap.String("url", url), zap.Int("bytes", len(text)))
	return text, true
}

// FetchAsync runs Fetch in the background. The channel receives exactly one
// Result and is then closed.
func (f *Fetcher) FetchAsync(ctx context.Context, url string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		text, ok := f.Fetch(ctx, url)
		out <- Result{URL: url, Text: text, OK: ok}
	}()
	return out
}
