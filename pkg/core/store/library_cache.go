package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agentic_studio/pkg/core/library"
)

// LibraryCache persists content library snapshots so a re-run of the same
// project reuses approved assets instead of regenerating them. Hybrid vault:
// DB when a pool is configured, file system otherwise.
type LibraryCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewLibraryCache creates a cache. With a nil pool it falls back to a
// file-based cache under dir, defaulting to .cache/library.
func NewLibraryCache(pool *pgxpool.Pool, dir string) (*LibraryCache, error) {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "library")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create library cache dir: %w", err)
		}
	}
	return &LibraryCache{pool: pool, fileDir: dir}, nil
}

// Put stores the library snapshot for its project.
//
// CREATE TABLE IF NOT EXISTS library_snapshots (
//   project_id TEXT PRIMARY KEY,
//   library_json JSONB,
//   updated_at TIMESTAMPTZ
// );
func (c *LibraryCache) Put(ctx context.Context, lib *library.Library) error {
	jsonData, err := json.Marshal(lib)
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO library_snapshots (project_id, library_json, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (project_id)
			DO UPDATE SET
				library_json = EXCLUDED.library_json,
				updated_at = EXCLUDED.updated_at;
		`
		if _, err := c.pool.Exec(ctx, query, lib.ProjectID(), jsonData, time.Now()); err != nil {
			return fmt.Errorf("failed to save library snapshot: %w", err)
		}
		return nil
	}

	return os.WriteFile(c.filePath(lib.ProjectID()), jsonData, 0o644)
}

// Get loads the library snapshot for a project. A miss returns (nil, nil);
// errors are reserved for storage faults and corrupt snapshots.
func (c *LibraryCache) Get(ctx context.Context, projectID string) (*library.Library, error) {
	if c.pool != nil {
		var jsonData []byte
		err := c.pool.QueryRow(ctx,
			`SELECT library_json FROM library_snapshots WHERE project_id = $1`, projectID).Scan(&jsonData)
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load library snapshot: %w", err)
		}
		return library.Unmarshal(jsonData)
	}

	jsonData, err := os.ReadFile(c.filePath(projectID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read library snapshot: %w", err)
	}
	return library.Unmarshal(jsonData)
}

func (c *LibraryCache) filePath(projectID string) string {
	return filepath.Join(c.fileDir, projectID+".json")
}
