package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/extractor"
	"github.com/user/linkcard/internal/repository"
)

// DefaultFileName is the cache file created in the project root.
const DefaultFileName = ".linkcard_cache.json"

// ExampleURL is the key of the entry seeded into a newly created cache file.
// It must not collide with a URL a document would actually link to.
const ExampleURL = "https://example.com/linkcard-cache-example"

// MetadataCacheRepoImpl implements repository.MetadataCacheRepository on top of
// a single pretty-printed JSON object mapping URLs to records.
type MetadataCacheRepoImpl struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewMetadataCacheRepo creates a cache backed by the file at path. The file is
// created on first use.
func NewMetadataCacheRepo(path string, logger *zap.Logger) *MetadataCacheRepoImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataCacheRepoImpl{path: path, logger: logger}
}

// Path returns the location of the backing file.
func (r *MetadataCacheRepoImpl) Path() string {
	return r.path
}

// Has reports whether url has a stored record.
func (r *MetadataCacheRepoImpl) Has(ctx context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return false, err
	}
	_, ok := entries[url]
	return ok, nil
}

// Get returns the stored record for url or repository.ErrNotFound.
func (r *MetadataCacheRepoImpl) Get(ctx context.Context, url string) (*entity.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	meta, ok := entries[url]
	if !ok || meta == nil {
		return nil, repository.ErrNotFound
	}
	return meta, nil
}

// Set re-reads the file, merges meta under url and writes the result back.
func (r *MetadataCacheRepoImpl) Set(ctx context.Context, url string, meta *entity.Metadata) error {
	if meta == nil {
		return fmt.Errorf("set %s: nil metadata", url)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	entries[url] = meta
	if err := r.write(entries); err != nil {
		return err
	}
	r.logger.Debug("metadata cached", zap.String("url", url), zap.String("path", r.path))
	return nil
}

func (r *MetadataCacheRepoImpl) load() (map[string]*entity.Metadata, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.create(); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(r.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata cache %s: %w", r.path, err)
	}

	entries := make(map[string]*entity.Metadata)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", repository.ErrCacheCorrupted, r.path, err)
	}
	return entries, nil
}

func (r *MetadataCacheRepoImpl) create() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create metadata cache directory: %w", err)
	}
	seed := map[string]*entity.Metadata{
		ExampleURL: {
			Title:       "Example Domain",
			Description: "This domain is for use in illustrative examples in documents.",
			Logo:        extractor.DefaultLogo,
		},
	}
	if err := r.write(seed); err != nil {
		return err
	}
	r.logger.Info("created metadata cache", zap.String("path", r.path))
	return nil
}

func (r *MetadataCacheRepoImpl) write(entries map[string]*entity.Metadata) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata cache: %w", err)
	}
	data = append(data, '\n')

	// Write next to the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for metadata cache: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata cache %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod metadata cache %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata cache %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replace metadata cache %s: %w", r.path, err)
	}
	return nil
}
