package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/openlocalize/blankpage/internal/cms/page"
	"github.com/openlocalize/blankpage/internal/storage"
)

const pageColumns = `id, parent_id, slug, title, kind, locale_id, live, content_json, created_at, updated_at`

// CreatePage persists a page record.
func (s *Store) CreatePage(ctx context.Context, p page.Page) error {
	if err := s.ready(); err != nil {
		return err
	}
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("marshal page content: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.ParentID,
		p.Slug,
		p.Title,
		string(p.Kind),
		p.LocaleID,
		boolToInt(p.Live),
		string(contentJSON),
		timeToUnixMillis(p.CreatedAt),
		timeToUnixMillis(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// UpdatePage replaces a page's mutable fields.
func (s *Store) UpdatePage(ctx context.Context, p page.Page) error {
	if err := s.ready(); err != nil {
		return err
	}
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("marshal page content: %w", err)
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE pages
		 SET parent_id = ?, slug = ?, title = ?, kind = ?, locale_id = ?, live = ?, content_json = ?, updated_at = ?
		 WHERE id = ?`,
		p.ParentID,
		p.Slug,
		p.Title,
		string(p.Kind),
		p.LocaleID,
		boolToInt(p.Live),
		string(contentJSON),
		timeToUnixMillis(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update page rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetPage loads a page by ID.
func (s *Store) GetPage(ctx context.Context, pageID string) (page.Page, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages WHERE id = ?`,
		pageID,
	)
	return scanPage(row)
}

// GetPageBySlug loads a page by locale and slug.
func (s *Store) GetPageBySlug(ctx context.Context, localeID, slug string) (page.Page, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages WHERE locale_id = ? AND slug = ?`,
		localeID,
		slug,
	)
	return scanPage(row)
}

// GetRootPage loads the tree root for a locale.
func (s *Store) GetRootPage(ctx context.Context, localeID string) (page.Page, error) {
	if err := s.ready(); err != nil {
		return page.Page{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages WHERE locale_id = ? AND kind = ?`,
		localeID,
		string(page.KindRoot),
	)
	return scanPage(row)
}

// ListPages returns all pages in a locale ordered by creation time.
func (s *Store) ListPages(ctx context.Context, localeID string) ([]page.Page, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages WHERE locale_id = ? ORDER BY created_at, slug`,
		localeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	pages := make([]page.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

// CreateRevision persists a page revision snapshot.
func (s *Store) CreateRevision(ctx context.Context, rev page.Revision) error {
	if err := s.ready(); err != nil {
		return err
	}
	contentJSON, err := json.Marshal(rev.Content)
	if err != nil {
		return fmt.Errorf("marshal revision content: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO page_revisions (id, page_id, title, content_json, published, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rev.ID,
		rev.PageID,
		rev.Title,
		string(contentJSON),
		boolToInt(rev.Published),
		timeToUnixMillis(rev.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create revision: %w", err)
	}
	return nil
}

// PublishPage marks a page live and flags the revision as published.
func (s *Store) PublishPage(ctx context.Context, pageID, revisionID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE pages SET live = 1 WHERE id = ?`, pageID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("publish page: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("publish page rows affected: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE page_revisions SET published = 1 WHERE id = ? AND page_id = ?`,
		revisionID,
		pageID,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("publish revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (page.Page, error) {
	var p page.Page
	var kind string
	var live int64
	var contentJSON string
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(
		&p.ID,
		&p.ParentID,
		&p.Slug,
		&p.Title,
		&kind,
		&p.LocaleID,
		&live,
		&contentJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return page.Page{}, storage.ErrNotFound
		}
		return page.Page{}, fmt.Errorf("scan page: %w", err)
	}
	if err := json.Unmarshal([]byte(contentJSON), &p.Content); err != nil {
		return page.Page{}, fmt.Errorf("unmarshal page content: %w", err)
	}
	p.Kind = page.Kind(kind)
	p.Live = live != 0
	p.CreatedAt = unixMillisToTime(createdAt)
	p.UpdatedAt = unixMillisToTime(updatedAt)
	return p, nil
}
