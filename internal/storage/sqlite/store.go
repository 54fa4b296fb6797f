// Package sqlite provides SQLite-backed persistence for the application.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	sqlitemigrate "github.com/openlocalize/blankpage/internal/platform/storage/sqlitemigrate"
	"github.com/openlocalize/blankpage/internal/storage"
	"github.com/openlocalize/blankpage/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for locales, users, pages, and
// translations.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a SQLite store at the provided path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// runMigrations applies embedded SQL migrations in filename order.
func (s *Store) runMigrations(ctx context.Context) error {
	return sqlitemigrate.Apply(ctx, s.sqlDB, migrations.FS)
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return apperrors.New(apperrors.CodeStorage, "storage is not configured")
	}
	return nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ storage.Store = (*Store)(nil)
