package repository

import (
	"context"

	"github.com/user/linkcard/internal/entity"
)

// MetadataCacheRepository stores extracted metadata keyed by the literal URL string.
// Entries never expire.
type MetadataCacheRepository interface {
	// Has reports whether a record exists for url.
	Has(ctx context.Context, url string) (bool, error)
	// Get returns the record for url, or ErrNotFound.
	Get(ctx context.Context, url string) (*entity.Metadata, error)
	// Set stores meta for url, merging with whatever is already stored for other URLs.
	Set(ctx context.Context, url string, meta *entity.Metadata) error
}
