package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/linkcard/internal/proxy"
	"github.com/user/linkcard/internal/repository"
)

// maxBodyBytes bounds how much of a page is read; metadata lives in <head>.
const maxBodyBytes = 5 << 20

// HTTPPageFetcher implements repository.PageFetcherRepository with a plain GET.
type HTTPPageFetcher struct {
	client  *http.Client
	proxies *proxy.Manager
}

// NewPageFetcher builds a fetcher. A zero timeout means no timeout.
func NewPageFetcher(timeout time.Duration, proxies *proxy.Manager) *HTTPPageFetcher {
	if proxies == nil {
		proxies = proxy.NewManager(nil, "")
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxies.ProxyFunc
	return &HTTPPageFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		proxies: proxies,
	}
}

func (f *HTTPPageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request for %s: %w", repository.ErrFetchFailed, url, err)
	}
	req.Header.Set("User-Agent", f.proxies.GetUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", repository.ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", repository.ErrUnexpectedStatus, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body of %s: %w", repository.ErrFetchFailed, url, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: %s", repository.ErrEmptyBody, url)
	}
	return string(body), nil
}
