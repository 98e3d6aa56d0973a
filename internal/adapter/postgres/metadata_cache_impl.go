package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/repository"
)

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS link_metadata (
		url         TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		logo        TEXT NOT NULL DEFAULT '',
		extra       JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// MetadataCacheRepoImpl provides a concrete implementation for the
// MetadataCacheRepository interface using PostgreSQL.
type MetadataCacheRepoImpl struct {
	db DBTX
}

// NewMetadataCacheRepo creates a new instance of MetadataCacheRepoImpl.
func NewMetadataCacheRepo(db DBTX) *MetadataCacheRepoImpl {
	return &MetadataCacheRepoImpl{db: db}
}

// EnsureSchema creates the link_metadata table when it does not exist yet.
func (r *MetadataCacheRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create link_metadata table: %w", err)
	}
	return nil
}

// Has reports whether a row exists for url.
func (r *MetadataCacheRepoImpl) Has(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM link_metadata WHERE url = $1);`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query link_metadata %s: %w", url, err)
	}
	return exists, nil
}

// Get retrieves the record stored for url.
func (r *MetadataCacheRepoImpl) Get(ctx context.Context, url string) (*entity.Metadata, error) {
	query := `
		SELECT title, description, logo, extra
		FROM link_metadata
		WHERE url = $1;
	`
	var (
		meta      entity.Metadata
		extraJSON []byte
	)
	err := r.db.QueryRow(ctx, query, url).Scan(&meta.Title, &meta.Description, &meta.Logo, &extraJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query link_metadata %s: %w", url, err)
	}

	if len(extraJSON) > 0 {
		var extra map[string]any
		if err := json.Unmarshal(extraJSON, &extra); err != nil {
			return nil, fmt.Errorf("%w: extra for %s: %w", repository.ErrCacheCorrupted, url, err)
		}
		if len(extra) > 0 {
			meta.Extra = extra
		}
	}
	return &meta, nil
}

// Set stores or updates the record for url.
func (r *MetadataCacheRepoImpl) Set(ctx context.Context, url string, meta *entity.Metadata) error {
	if meta == nil {
		return fmt.Errorf("set %s: nil metadata", url)
	}
	extra := meta.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO link_metadata (url, title, description, logo, extra)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			logo = EXCLUDED.logo,
			extra = EXCLUDED.extra,
			updated_at = NOW();
	`
	if _, err := r.db.Exec(ctx, query, url, meta.Title, meta.Description, meta.Logo, extraJSON); err != nil {
		return fmt.Errorf("upsert link_metadata %s: %w", url, err)
	}
	return nil
}
