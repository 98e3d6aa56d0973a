package chromedp_fetcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/linkcard/internal/proxy"
	"github.com/user/linkcard/internal/repository"
)

// ChromedpFetcher renders pages in headless Chrome before returning their
// markup, for sites that only fill in <head> from scripts.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
	logger        *zap.Logger
}

// NewChromedpFetcher creates a fetcher implementation using chromedp.
func NewChromedpFetcher(pageLoadTimeout time.Duration, proxies *proxy.Manager, logger *zap.Logger) *ChromedpFetcher {
	if proxies == nil {
		proxies = proxy.NewManager(nil, "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(proxies.GetUserAgent()),
			)
			if p := proxies.GetProxy(); p != nil {
				opts = append(opts, chromedp.ProxyServer(p.String()))
			}
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	return &ChromedpFetcher{
		allocatorPool: pool,
		timeout:       pageLoadTimeout,
		logger:        logger,
	}
}

// Fetch navigates to url and returns the serialized document.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx := c.allocatorPool.Get().(context.Context)
	defer c.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if c.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(taskCtx, c.timeout)
		defer cancel()
	}

	// Stop the browser task when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		c.logger.Warn("browser fetch failed", zap.String("url", url), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", repository.ErrFetchFailed, url, err)
	}

	c.logger.Debug("browser fetch finished",
		zap.String("url", url),
		zap.Duration("duration", time.Since(start)),
	)

	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("%w: %s", repository.ErrEmptyBody, url)
	}
	return html, nil
}
