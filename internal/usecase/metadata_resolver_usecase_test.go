package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/user/linkcard/internal/adapter/jsonfile"
	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/extractor"
	"github.com/user/linkcard/internal/monitoring"
	"github.com/user/linkcard/internal/repository"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Has(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Get(ctx context.Context, url string) (*entity.Metadata, error) {
	args := m.Called(ctx, url)
	meta, _ := args.Get(0).(*entity.Metadata)
	return meta, args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, url string, meta *entity.Metadata) error {
	args := m.Called(ctx, url, meta)
	return args.Error(0)
}

type MockPageSource struct {
	mock.Mock
}

func (m *MockPageSource) Fetch(ctx context.Context, url string) (string, bool) {
	args := m.Called(ctx, url)
	return args.String(0), args.Bool(1)
}

const pageURL = "https://example.com/post"

func TestResolve_CacheHit(t *testing.T) {
	cache := new(MockCache)
	pages := new(MockPageSource)
	cached := &entity.Metadata{Title: "Cached"}
	cache.On("Has", mock.Anything, pageURL).Return(true, nil)
	cache.On("Get", mock.Anything, pageURL).Return(cached, nil)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	meta, err := NewMetadataResolver(cache, pages, nil, nil, metrics).Resolve(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Same(t, cached, meta)
	pages.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("hit")))
}

func TestResolve_MissFetchesExtractsAndStores(t *testing.T) {
	cache := new(MockCache)
	pages := new(MockPageSource)
	cache.On("Has", mock.Anything, pageURL).Return(false, nil)
	pages.On("Fetch", mock.Anything, pageURL).Return(`<title>Post</title><link rel="icon" href="/fav.ico">`, true)
	want := &entity.Metadata{Title: "Post", Logo: "https://example.com/fav.ico"}
	cache.On("Set", mock.Anything, pageURL, want).Return(nil).Once()

	meta, err := NewMetadataResolver(cache, pages, extractor.New(), nil, nil).Resolve(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Equal(t, want, meta)
	cache.AssertExpectations(t)
}

func TestResolve_FetchFailurePassesThrough(t *testing.T) {
	cache := new(MockCache)
	pages := new(MockPageSource)
	cache.On("Has", mock.Anything, pageURL).Return(false, nil)
	pages.On("Fetch", mock.Anything, pageURL).Return("", false)

	meta, err := NewMetadataResolver(cache, pages, nil, nil, nil).Resolve(context.Background(), pageURL)

	assert.NoError(t, err)
	assert.Nil(t, meta)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_NothingExtractedIsNotCached(t *testing.T) {
	cache := new(MockCache)
	pages := new(MockPageSource)
	cache.On("Has", mock.Anything, pageURL).Return(false, nil)
	pages.On("Fetch", mock.Anything, pageURL).Return("<html><body>plain</body></html>", true)

	meta, err := NewMetadataResolver(cache, pages, nil, nil, nil).Resolve(context.Background(), pageURL)

	assert.NoError(t, err)
	assert.Nil(t, meta)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_CacheErrorsAreReturned(t *testing.T) {
	cache := new(MockCache)
	cache.On("Has", mock.Anything, pageURL).Return(false, repository.ErrCacheCorrupted)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	_, err := NewMetadataResolver(cache, new(MockPageSource), nil, nil, metrics).Resolve(context.Background(), pageURL)

	assert.ErrorIs(t, err, repository.ErrCacheCorrupted)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("cache_read")))
}

func TestResolve_CacheWriteErrorIsReturned(t *testing.T) {
	cache := new(MockCache)
	pages := new(MockPageSource)
	cache.On("Has", mock.Anything, pageURL).Return(false, nil)
	pages.On("Fetch", mock.Anything, pageURL).Return("<title>Post</title>", true)
	cache.On("Set", mock.Anything, pageURL, mock.Anything).Return(errors.New("disk full"))

	meta, err := NewMetadataResolver(cache, pages, nil, nil, nil).Resolve(context.Background(), pageURL)

	assert.Error(t, err)
	assert.Nil(t, meta)
}

func TestResolve_VanishedEntryIsRefetched(t *testing.T) {
	cache := new(MockCache)
	pages := new(MockPageSource)
	cache.On("Has", mock.Anything, pageURL).Return(true, nil)
	cache.On("Get", mock.Anything, pageURL).Return(nil, repository.ErrNotFound)
	pages.On("Fetch", mock.Anything, pageURL).Return("", false)

	meta, err := NewMetadataResolver(cache, pages, nil, nil, nil).Resolve(context.Background(), pageURL)

	assert.NoError(t, err)
	assert.Nil(t, meta)
	pages.AssertExpectations(t)
}

func TestResolve_WithFileCache(t *testing.T) {
	path := t.TempDir() + "/cache.json"
	cache := jsonfile.NewMetadataCacheRepo(path, nil)
	pages := new(MockPageSource)
	pages.On("Fetch", mock.Anything, pageURL).Return(`<meta name="description" content="About">`, true).Once()
	resolver := NewMetadataResolver(cache, pages, nil, nil, nil)

	first, err := resolver.Resolve(context.Background(), pageURL)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), pageURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "About", second.Description)
	assert.Equal(t, extractor.DefaultLogo, second.Logo)
	pages.AssertExpectations(t)
}
