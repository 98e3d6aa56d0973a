package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/repository"
	"github.com/user/linkcard/pkg/utils"
)

const metadataKeyPrefix = "linkcard:metadata:"

// MetadataCacheRepoImpl provides a concrete implementation for the
// MetadataCacheRepository interface using Redis strings holding JSON.
type MetadataCacheRepoImpl struct {
	client redis.Cmdable
}

// NewMetadataCacheRepo creates a new instance of MetadataCacheRepoImpl.
func NewMetadataCacheRepo(client redis.Cmdable) *MetadataCacheRepoImpl {
	return &MetadataCacheRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *MetadataCacheRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", metadataKeyPrefix, utils.HashURL(url))
}

// Has checks for the existence of the URL's key.
func (r *MetadataCacheRepoImpl) Has(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(url)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", url, err)
	}
	return val == 1, nil
}

// Get loads and decodes the record stored for url.
func (r *MetadataCacheRepoImpl) Get(ctx context.Context, url string) (*entity.Metadata, error) {
	raw, err := r.client.Get(ctx, r.generateKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", url, err)
	}

	var meta entity.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: key for %s: %w", repository.ErrCacheCorrupted, url, err)
	}
	return &meta, nil
}

// Set stores meta without expiry.
func (r *MetadataCacheRepoImpl) Set(ctx context.Context, url string, meta *entity.Metadata) error {
	if meta == nil {
		return fmt.Errorf("set %s: nil metadata", url)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	// A zero expiration keeps the key forever.
	if err := r.client.Set(ctx, r.generateKey(url), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", url, err)
	}
	return nil
}
