package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openlocalize/blankpage/internal/cms/locale"
	"github.com/openlocalize/blankpage/internal/storage"
)

// CreateLocale persists a locale record.
func (s *Store) CreateLocale(ctx context.Context, l locale.Locale) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO locales (id, code, created_at) VALUES (?, ?, ?)`,
		l.ID,
		l.Code,
		timeToUnixMillis(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create locale: %w", err)
	}
	return nil
}

// GetLocaleByCode loads a locale by its language code.
func (s *Store) GetLocaleByCode(ctx context.Context, code string) (locale.Locale, error) {
	if err := s.ready(); err != nil {
		return locale.Locale{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, code, created_at FROM locales WHERE code = ?`,
		code,
	)

	var l locale.Locale
	var createdAt int64
	if err := row.Scan(&l.ID, &l.Code, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return locale.Locale{}, storage.ErrNotFound
		}
		return locale.Locale{}, fmt.Errorf("get locale: %w", err)
	}
	l.CreatedAt = unixMillisToTime(createdAt)
	return l, nil
}

// ListLocales returns all locales ordered by code.
func (s *Store) ListLocales(ctx context.Context) ([]locale.Locale, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, code, created_at FROM locales ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	locales := make([]locale.Locale, 0)
	for rows.Next() {
		var l locale.Locale
		var createdAt int64
		if err := rows.Scan(&l.ID, &l.Code, &createdAt); err != nil {
			return nil, fmt.Errorf("scan locale: %w", err)
		}
		l.CreatedAt = unixMillisToTime(createdAt)
		locales = append(locales, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locales: %w", err)
	}
	return locales, nil
}
