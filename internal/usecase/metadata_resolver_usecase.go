package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/extractor"
	"github.com/user/linkcard/internal/monitoring"
	"github.com/user/linkcard/internal/repository"
)

// MetadataResolver defines how a link's metadata is obtained.
type MetadataResolver interface {
	// Resolve returns the metadata for url. A nil record with a nil error
	// means there is nothing to show and the link should be left alone.
	Resolve(ctx context.Context, url string) (*entity.Metadata, error)
}

// PageSource supplies page text for a URL; ok is false when nothing usable
// was retrieved.
type PageSource interface {
	Fetch(ctx context.Context, url string) (text string, ok bool)
}

type metadataResolverUseCase struct {
	cache     repository.MetadataCacheRepository
	pages     PageSource
	extractor *extractor.Extractor
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewMetadataResolver creates the cache-then-fetch resolver.
func NewMetadataResolver(
	cache repository.MetadataCacheRepository,
	pages PageSource,
	ext *extractor.Extractor,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
) MetadataResolver {
	if ext == nil {
		ext = extractor.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewNopMetrics()
	}
	return &metadataResolverUseCase{
		cache:     cache,
		pages:     pages,
		extractor: ext,
		logger:    logger,
		metrics:   metrics,
	}
}

// Resolve checks the cache first; on a miss it fetches and extracts the page
// and stores a non-empty result. Fetch and extraction problems degrade to a
// nil record, cache problems are returned.
func (uc *metadataResolverUseCase) Resolve(ctx context.Context, url string) (*entity.Metadata, error) {
	meta, err := uc.lookup(ctx, url)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		uc.metrics.IncCacheLookup("hit")
		return meta, nil
	}
	uc.metrics.IncCacheLookup("miss")

	startTime := time.Now()
	text, ok := uc.pages.Fetch(ctx, url)
	if !ok {
		return nil, nil
	}

	meta = uc.extractor.Extract(entity.RawPage{Text: text, SourceURL: url})
	if meta == nil {
		uc.logger.Info("No usable metadata found", zap.String("url", url))
		return nil, nil
	}

	if err := uc.cache.Set(ctx, url, meta); err != nil {
		uc.metrics.IncErrorsTotal("cache_write")
		return nil, fmt.Errorf("failed to cache metadata for %s: %w", url, err)
	}

	uc.logger.Info("Resolved link metadata",
		zap.String("url", url),
		zap.String("title", meta.Title),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	)
	return meta, nil
}

func (uc *metadataResolverUseCase) lookup(ctx context.Context, url string) (*entity.Metadata, error) {
	has, err := uc.cache.Has(ctx, url)
	if err != nil {
		uc.metrics.IncErrorsTotal("cache_read")
		return nil, fmt.Errorf("failed to check cache for %s: %w", url, err)
	}
	if !has {
		return nil, nil
	}

	meta, err := uc.cache.Get(ctx, url)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		uc.metrics.IncErrorsTotal("cache_read")
		return nil, fmt.Errorf("failed to read cache for %s: %w", url, err)
	}
	return meta, nil
}
