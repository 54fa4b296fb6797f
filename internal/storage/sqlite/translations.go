package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openlocalize/blankpage/internal/cms/translation"
	"github.com/openlocalize/blankpage/internal/storage"
)

// GetOrCreateString returns the canonical string for a value, creating it on
// first use. Strings are deduplicated by value.
func (s *Store) GetOrCreateString(ctx context.Context, value string) (translation.String, error) {
	if err := s.ready(); err != nil {
		return translation.String{}, err
	}

	existing, err := s.getStringByValue(ctx, value)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return translation.String{}, err
	}

	created, err := translation.NewString(value, nil, nil)
	if err != nil {
		return translation.String{}, err
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO strings (id, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(value) DO NOTHING`,
		created.ID,
		created.Value,
		timeToUnixMillis(created.CreatedAt),
	); err != nil {
		return translation.String{}, fmt.Errorf("create string: %w", err)
	}

	// Re-read so a concurrent insert of the same value wins consistently.
	return s.getStringByValue(ctx, value)
}

// GetString loads a string by ID.
func (s *Store) GetString(ctx context.Context, stringID string) (translation.String, error) {
	if err := s.ready(); err != nil {
		return translation.String{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, value, created_at FROM strings WHERE id = ?`,
		stringID,
	)
	return scanString(row)
}

func (s *Store) getStringByValue(ctx context.Context, value string) (translation.String, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, value, created_at FROM strings WHERE value = ?`,
		value,
	)
	return scanString(row)
}

// CreateSource persists a translation source.
func (s *Store) CreateSource(ctx context.Context, src translation.TranslationSource) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO translation_sources (id, page_id, locale_id, created_at) VALUES (?, ?, ?, ?)`,
		src.ID,
		src.PageID,
		src.LocaleID,
		timeToUnixMillis(src.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create translation source: %w", err)
	}
	return nil
}

// GetSourceByPage loads the translation source for a page.
func (s *Store) GetSourceByPage(ctx context.Context, pageID string) (translation.TranslationSource, error) {
	if err := s.ready(); err != nil {
		return translation.TranslationSource{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, page_id, locale_id, created_at FROM translation_sources WHERE page_id = ?`,
		pageID,
	)

	var src translation.TranslationSource
	var createdAt int64
	if err := row.Scan(&src.ID, &src.PageID, &src.LocaleID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return translation.TranslationSource{}, storage.ErrNotFound
		}
		return translation.TranslationSource{}, fmt.Errorf("get translation source: %w", err)
	}
	src.CreatedAt = unixMillisToTime(createdAt)
	return src, nil
}

// ReplaceSegments swaps a source's segments for a new ordered set.
func (s *Store) ReplaceSegments(ctx context.Context, sourceID string, segments []translation.Segment) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace segments: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE source_id = ?`, sourceID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear segments: %w", err)
	}

	for _, seg := range segments {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO segments (id, source_id, string_id, context_path, ord) VALUES (?, ?, ?, ?, ?)`,
			seg.ID,
			sourceID,
			seg.StringID,
			seg.ContextPath,
			seg.Order,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert segment %s: %w", seg.ContextPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace segments: %w", err)
	}
	return nil
}

// ListSegmentsBySource returns a source's segments in display order.
func (s *Store) ListSegmentsBySource(ctx context.Context, sourceID string) ([]translation.Segment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, source_id, string_id, context_path, ord
		 FROM segments WHERE source_id = ? ORDER BY ord`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	segments := make([]translation.Segment, 0)
	for rows.Next() {
		var seg translation.Segment
		if err := rows.Scan(&seg.ID, &seg.SourceID, &seg.StringID, &seg.ContextPath, &seg.Order); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// CreateTranslation persists a translation record.
func (s *Store) CreateTranslation(ctx context.Context, tr translation.Translation) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO translations (id, source_id, target_locale_id, created_at) VALUES (?, ?, ?, ?)`,
		tr.ID,
		tr.SourceID,
		tr.TargetLocaleID,
		timeToUnixMillis(tr.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create translation: %w", err)
	}
	return nil
}

// GetTranslation loads a translation by ID.
func (s *Store) GetTranslation(ctx context.Context, translationID string) (translation.Translation, error) {
	if err := s.ready(); err != nil {
		return translation.Translation{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, source_id, target_locale_id, created_at FROM translations WHERE id = ?`,
		translationID,
	)
	return scanTranslation(row)
}

// GetTranslationForLocale loads the translation of a source into a locale.
func (s *Store) GetTranslationForLocale(ctx context.Context, sourceID, targetLocaleID string) (translation.Translation, error) {
	if err := s.ready(); err != nil {
		return translation.Translation{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, source_id, target_locale_id, created_at
		 FROM translations WHERE source_id = ? AND target_locale_id = ?`,
		sourceID,
		targetLocaleID,
	)
	return scanTranslation(row)
}

// ListTranslationsBySource returns all translations of a source.
func (s *Store) ListTranslationsBySource(ctx context.Context, sourceID string) ([]translation.Translation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, source_id, target_locale_id, created_at
		 FROM translations WHERE source_id = ? ORDER BY target_locale_id`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	translations := make([]translation.Translation, 0)
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return translations, nil
}

// GetStringTranslation loads the translated value of one segment.
func (s *Store) GetStringTranslation(ctx context.Context, translationID, stringID, contextPath string) (translation.StringTranslation, error) {
	if err := s.ready(); err != nil {
		return translation.StringTranslation{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT translation_id, string_id, context_path, value, kind, translated_by, updated_at
		 FROM string_translations
		 WHERE translation_id = ? AND string_id = ? AND context_path = ?`,
		translationID,
		stringID,
		contextPath,
	)
	return scanStringTranslation(row)
}

// UpsertStringTranslation stores a translated value, replacing any previous
// value for the same segment.
func (s *Store) UpsertStringTranslation(ctx context.Context, st translation.StringTranslation) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO string_translations (translation_id, string_id, context_path, value, kind, translated_by, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(translation_id, string_id, context_path) DO UPDATE SET
		    value = excluded.value,
		    kind = excluded.kind,
		    translated_by = excluded.translated_by,
		    updated_at = excluded.updated_at`,
		st.TranslationID,
		st.StringID,
		st.ContextPath,
		st.Value,
		string(st.Kind),
		st.TranslatedBy,
		timeToUnixMillis(st.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert string translation: %w", err)
	}
	return nil
}

// DeleteStringTranslation removes one segment's translated value.
func (s *Store) DeleteStringTranslation(ctx context.Context, translationID, stringID, contextPath string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM string_translations
		 WHERE translation_id = ? AND string_id = ? AND context_path = ?`,
		translationID,
		stringID,
		contextPath,
	); err != nil {
		return fmt.Errorf("delete string translation: %w", err)
	}
	return nil
}

// ListStringTranslations returns all translated values in a translation.
func (s *Store) ListStringTranslations(ctx context.Context, translationID string) ([]translation.StringTranslation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT translation_id, string_id, context_path, value, kind, translated_by, updated_at
		 FROM string_translations WHERE translation_id = ?`,
		translationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list string translations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]translation.StringTranslation, 0)
	for rows.Next() {
		st, err := scanStringTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate string translations: %w", err)
	}
	return out, nil
}

func scanString(row rowScanner) (translation.String, error) {
	var str translation.String
	var createdAt int64
	if err := row.Scan(&str.ID, &str.Value, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return translation.String{}, storage.ErrNotFound
		}
		return translation.String{}, fmt.Errorf("scan string: %w", err)
	}
	str.CreatedAt = unixMillisToTime(createdAt)
	return str, nil
}

func scanTranslation(row rowScanner) (translation.Translation, error) {
	var tr translation.Translation
	var createdAt int64
	if err := row.Scan(&tr.ID, &tr.SourceID, &tr.TargetLocaleID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return translation.Translation{}, storage.ErrNotFound
		}
		return translation.Translation{}, fmt.Errorf("scan translation: %w", err)
	}
	tr.CreatedAt = unixMillisToTime(createdAt)
	return tr, nil
}

func scanStringTranslation(row rowScanner) (translation.StringTranslation, error) {
	var st translation.StringTranslation
	var kind string
	var updatedAt int64
	if err := row.Scan(&st.TranslationID, &st.StringID, &st.ContextPath, &st.Value, &kind, &st.TranslatedBy, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return translation.StringTranslation{}, storage.ErrNotFound
		}
		return translation.StringTranslation{}, fmt.Errorf("scan string translation: %w", err)
	}
	st.Kind = translation.TranslationKind(kind)
	st.UpdatedAt = unixMillisToTime(updatedAt)
	return st, nil
}
