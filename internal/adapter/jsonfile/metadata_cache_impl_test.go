package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/repository"
)

func newTestRepo(t *testing.T) *MetadataCacheRepoImpl {
	t.Helper()
	return NewMetadataCacheRepo(filepath.Join(t.TempDir(), "nested", DefaultFileName), nil)
}

func readEntries(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestMetadataCache_CreatesFileWithExampleEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.Has(ctx, "https://nothing.example")
	require.NoError(t, err)
	assert.False(t, ok)

	entries := readEntries(t, repo.Path())
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, ExampleURL)

	ok, err = repo.Has(ctx, ExampleURL)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMetadataCache_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	meta := &entity.Metadata{
		Title:       "Title",
		Description: "Description",
		Logo:        "https://example.org/logo.png",
		Extra:       map[string]any{"site": "Example"},
	}

	require.NoError(t, repo.Set(ctx, "https://example.org", meta))

	got, err := repo.Get(ctx, "https://example.org")
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}

func TestMetadataCache_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), "https://missing.example")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMetadataCache_SetIsIdempotentAndMerges(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	first := &entity.Metadata{Title: "First", Logo: "https://a.example/l.png"}
	second := &entity.Metadata{Description: "Second", Logo: "https://b.example/l.png"}

	require.NoError(t, repo.Set(ctx, "https://a.example", first))
	before, err := os.ReadFile(repo.Path())
	require.NoError(t, err)

	require.NoError(t, repo.Set(ctx, "https://a.example", first))
	after, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	require.NoError(t, repo.Set(ctx, "https://b.example", second))
	entries := readEntries(t, repo.Path())
	assert.Len(t, entries, 3)
	assert.Contains(t, entries, "https://a.example")
	assert.Contains(t, entries, "https://b.example")
	assert.Contains(t, entries, ExampleURL)
}

func TestMetadataCache_PreservesManualEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	manual := `{"https://manual.example": {"title": "By hand", "custom": 1}}`
	require.NoError(t, os.WriteFile(path, []byte(manual), 0o644))

	repo := NewMetadataCacheRepo(path, nil)
	require.NoError(t, repo.Set(context.Background(), "https://new.example", &entity.Metadata{Title: "New"}))

	got, err := repo.Get(context.Background(), "https://manual.example")
	require.NoError(t, err)
	assert.Equal(t, "By hand", got.Title)
	assert.Equal(t, float64(1), got.Extra["custom"])
}

func TestMetadataCache_FileFormatting(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Set(context.Background(), "https://a.example", &entity.Metadata{Title: "A"}))

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasSuffix(text, "}\n"))
	assert.Contains(t, text, "\n  \"https://a.example\": {\n    \"title\": \"A\"\n  }")
}

func TestMetadataCache_CorruptedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	repo := NewMetadataCacheRepo(path, nil)
	ctx := context.Background()

	_, err := repo.Has(ctx, "https://a.example")
	assert.ErrorIs(t, err, repository.ErrCacheCorrupted)

	err = repo.Set(ctx, "https://a.example", &entity.Metadata{Title: "A"})
	assert.ErrorIs(t, err, repository.ErrCacheCorrupted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestMetadataCache_SetNil(t *testing.T) {
	repo := newTestRepo(t)
	assert.Error(t, repo.Set(context.Background(), "https://a.example", nil))
}

func TestMetadataCache_ExampleEntryDoesNotShadowSiteRoot(t *testing.T) {
	repo := newTestRepo(t)

	ok, err := repo.Has(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, readEntries(t, repo.Path()), ExampleURL)
}

func TestMetadataCache_WriteLeavesNoTempFiles(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "https://a.example", &entity.Metadata{Title: "A"}))
	require.NoError(t, repo.Set(ctx, "https://b.example", &entity.Metadata{Title: "B"}))

	files, err := os.ReadDir(filepath.Dir(repo.Path()))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, DefaultFileName, files[0].Name())

	info, err := os.Stat(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	assert.Len(t, readEntries(t, repo.Path()), 3)
}
