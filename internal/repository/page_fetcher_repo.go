package repository

import "context"

// PageFetcherRepository defines the contract for retrieving raw page source.
type PageFetcherRepository interface {
	// Fetch returns the page body for url. Anything other than a successful,
	// non-empty response is an error.
	Fetch(ctx context.Context, url string) (string, error)
}
