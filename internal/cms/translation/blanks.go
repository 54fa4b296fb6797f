package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
)

const (
	// DefaultMarker is the sentinel stored in place of a translated value
	// to signal the segment must keep its source-language text.
	DefaultMarker = "__DO_NOT_TRANSLATE__"
	// DefaultBackupSeparator joins the marker and the replaced value so
	// unmarking can restore the previous translation.
	DefaultBackupSeparator = "|backup|"
)

var (
	// ErrMarkerMissing indicates an empty marker configuration.
	ErrMarkerMissing = apperrors.New(apperrors.CodeBlanksMarkerMissing, "blanks marker must not be empty")
	// ErrSeparatorMissing indicates an empty backup separator configuration.
	ErrSeparatorMissing = apperrors.New(apperrors.CodeBlanksSeparatorMissing, "blanks backup separator must not be empty")
)

// BlanksConfig controls the intentional-blank marking behavior.
type BlanksConfig struct {
	Marker          string `env:"BLANKS_MARKER" envDefault:"__DO_NOT_TRANSLATE__"`
	BackupSeparator string `env:"BLANKS_BACKUP_SEPARATOR" envDefault:"|backup|"`
	Enabled         bool   `env:"BLANKS_ENABLED" envDefault:"true"`
	RequireAdmin    bool   `env:"BLANKS_REQUIRE_ADMIN" envDefault:"true"`
}

// Validate checks that the marker and separator are usable.
func (c BlanksConfig) Validate() error {
	if c.Marker == "" {
		return ErrMarkerMissing
	}
	if c.BackupSeparator == "" {
		return ErrSeparatorMissing
	}
	return nil
}

// BlanksStore is the persistence surface the blanks service needs.
type BlanksStore interface {
	GetTranslation(ctx context.Context, translationID string) (Translation, error)
	ListSegmentsBySource(ctx context.Context, sourceID string) ([]Segment, error)
	GetString(ctx context.Context, stringID string) (String, error)
	GetStringTranslation(ctx context.Context, translationID, stringID, contextPath string) (StringTranslation, error)
	UpsertStringTranslation(ctx context.Context, st StringTranslation) error
	DeleteStringTranslation(ctx context.Context, translationID, stringID, contextPath string) error
	ListStringTranslations(ctx context.Context, translationID string) ([]StringTranslation, error)
}

// Blanks marks and unmarks segments as intentionally untranslated.
type Blanks struct {
	cfg   BlanksConfig
	store BlanksStore
	now   func() time.Time
}

// NewBlanks creates a blanks service. It returns an error if the
// configuration is invalid.
func NewBlanks(cfg BlanksConfig, store BlanksStore, now func() time.Time) (*Blanks, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Blanks{cfg: cfg, store: store, now: now}, nil
}

// Enabled reports whether marked segments render as source text.
func (b *Blanks) Enabled() bool {
	return b.cfg.Enabled
}

// RequireAdmin reports whether marking is restricted to admin users.
func (b *Blanks) RequireAdmin() bool {
	return b.cfg.RequireAdmin
}

// IsDoNotTranslate reports whether a stored translation value carries the
// marker, either bare or with a backup suffix.
func (b *Blanks) IsDoNotTranslate(value string) bool {
	return value == b.cfg.Marker || strings.HasPrefix(value, b.cfg.Marker+b.cfg.BackupSeparator)
}

// backupOf returns the translation value the marker replaced, if any.
func (b *Blanks) backupOf(value string) (string, bool) {
	prefix := b.cfg.Marker + b.cfg.BackupSeparator
	if strings.HasPrefix(value, prefix) {
		return value[len(prefix):], true
	}
	return "", false
}

// segmentByContext resolves one segment of a translation by context path.
func (b *Blanks) segmentByContext(ctx context.Context, translationID, contextPath string) (Segment, error) {
	tr, err := b.store.GetTranslation(ctx, translationID)
	if err != nil {
		return Segment{}, fmt.Errorf("get translation: %w", err)
	}
	segments, err := b.store.ListSegmentsBySource(ctx, tr.SourceID)
	if err != nil {
		return Segment{}, fmt.Errorf("list segments: %w", err)
	}
	for _, seg := range segments {
		if seg.ContextPath == contextPath {
			return seg, nil
		}
	}
	return Segment{}, apperrors.WithMetadata(apperrors.CodeSegmentNotFound, "segment not found", map[string]string{
		"translation_id": translationID,
		"context_path":   contextPath,
	})
}

// Mark flags a segment of a translation as intentionally untranslated and
// reports how many rows changed. The segment is addressed by context path,
// so two segments sharing the same source string are marked independently.
// An existing translated value is preserved behind the marker so Unmark can
// restore it; marking an already marked segment is a no-op, so the backup
// is never double-encoded. markedBy records who made the change.
func (b *Blanks) Mark(ctx context.Context, translationID, contextPath, markedBy string) (int, error) {
	seg, err := b.segmentByContext(ctx, translationID, contextPath)
	if err != nil {
		return 0, err
	}

	value := b.cfg.Marker
	existing, err := b.store.GetStringTranslation(ctx, translationID, seg.StringID, seg.ContextPath)
	switch {
	case err == nil:
		if b.IsDoNotTranslate(existing.Value) {
			return 0, nil
		}
		value = b.cfg.Marker + b.cfg.BackupSeparator + existing.Value
	case apperrors.CodeOf(err) == apperrors.CodeNotFound:
		// No prior translation; store the bare marker.
	default:
		return 0, fmt.Errorf("get string translation: %w", err)
	}

	if err := b.store.UpsertStringTranslation(ctx, StringTranslation{
		TranslationID: translationID,
		StringID:      seg.StringID,
		ContextPath:   seg.ContextPath,
		Value:         value,
		Kind:          KindManual,
		TranslatedBy:  markedBy,
		UpdatedAt:     b.now().UTC(),
	}); err != nil {
		return 0, err
	}
	return 1, nil
}

// Unmark removes the intentional-blank flag from a segment and reports how
// many rows changed. If the marker carried a backup the previous
// translation is restored and returned; a bare marker is deleted outright.
// Unmarking an unmarked segment changes zero rows.
func (b *Blanks) Unmark(ctx context.Context, translationID, contextPath string) (string, int, error) {
	seg, err := b.segmentByContext(ctx, translationID, contextPath)
	if err != nil {
		return "", 0, err
	}

	existing, err := b.store.GetStringTranslation(ctx, translationID, seg.StringID, seg.ContextPath)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return "", 0, nil
		}
		return "", 0, fmt.Errorf("get string translation: %w", err)
	}
	if !b.IsDoNotTranslate(existing.Value) {
		return "", 0, nil
	}

	if backup, ok := b.backupOf(existing.Value); ok {
		if err := b.store.UpsertStringTranslation(ctx, StringTranslation{
			TranslationID: translationID,
			StringID:      seg.StringID,
			ContextPath:   seg.ContextPath,
			Value:         backup,
			Kind:          existing.Kind,
			TranslatedBy:  existing.TranslatedBy,
			UpdatedAt:     b.now().UTC(),
		}); err != nil {
			return "", 0, err
		}
		return backup, 1, nil
	}
	if err := b.store.DeleteStringTranslation(ctx, translationID, seg.StringID, seg.ContextPath); err != nil {
		return "", 0, err
	}
	return "", 1, nil
}

// BulkMark marks several segments in one translation, stopping at the first
// failure. The count covers every segment processed, whether or not its
// stored row changed.
func (b *Blanks) BulkMark(ctx context.Context, translationID string, contextPaths []string, markedBy string) (int, error) {
	count := 0
	for _, contextPath := range contextPaths {
		if _, err := b.Mark(ctx, translationID, contextPath, markedBy); err != nil {
			return count, fmt.Errorf("mark segment %s: %w", contextPath, err)
		}
		count++
	}
	return count, nil
}

// SegmentStatus describes one segment of a translation for the editor.
type SegmentStatus struct {
	StringID       string `json:"string_id"`
	ContextPath    string `json:"context_path"`
	Order          int    `json:"order"`
	SourceText     string `json:"source_text"`
	Text           string `json:"text"`
	Translated     bool   `json:"translated"`
	DoNotTranslate bool   `json:"do_not_translate"`
}

// Stats summarizes a translation's progress: how many segments carry a
// translated value, how many of those are marked, and how many were
// translated by hand.
type Stats struct {
	Total  int `json:"total"`
	Marked int `json:"marked"`
	Manual int `json:"manual"`
}

// RenderSegments resolves every segment of a translation to the text a
// reader would see. Marked segments render as source text while the feature
// is enabled; disabling it passes stored values through untouched.
func (b *Blanks) RenderSegments(ctx context.Context, translationID string) ([]SegmentStatus, error) {
	tr, err := b.store.GetTranslation(ctx, translationID)
	if err != nil {
		return nil, fmt.Errorf("get translation: %w", err)
	}
	segments, err := b.store.ListSegmentsBySource(ctx, tr.SourceID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	translated, err := b.store.ListStringTranslations(ctx, translationID)
	if err != nil {
		return nil, fmt.Errorf("list string translations: %w", err)
	}
	byContext := make(map[string]StringTranslation, len(translated))
	for _, st := range translated {
		byContext[st.ContextPath] = st
	}

	out := make([]SegmentStatus, 0, len(segments))
	for _, seg := range segments {
		source, err := b.store.GetString(ctx, seg.StringID)
		if err != nil {
			return nil, fmt.Errorf("get string %s: %w", seg.StringID, err)
		}

		status := SegmentStatus{
			StringID:    seg.StringID,
			ContextPath: seg.ContextPath,
			Order:       seg.Order,
			SourceText:  source.Value,
			Text:        source.Value,
		}
		if st, ok := byContext[seg.ContextPath]; ok {
			status.Translated = true
			status.Text = st.Value
			if b.IsDoNotTranslate(st.Value) {
				status.DoNotTranslate = true
				if b.cfg.Enabled {
					status.Text = source.Value
				}
			}
		}
		out = append(out, status)
	}
	return out, nil
}

// SegmentStats counts a translation's translated segments, how many are
// marked, and how many carry manual translations.
func (b *Blanks) SegmentStats(ctx context.Context, translationID string) (Stats, error) {
	tr, err := b.store.GetTranslation(ctx, translationID)
	if err != nil {
		return Stats{}, fmt.Errorf("get translation: %w", err)
	}
	segments, err := b.store.ListSegmentsBySource(ctx, tr.SourceID)
	if err != nil {
		return Stats{}, fmt.Errorf("list segments: %w", err)
	}
	translated, err := b.store.ListStringTranslations(ctx, translationID)
	if err != nil {
		return Stats{}, fmt.Errorf("list string translations: %w", err)
	}

	inSource := make(map[string]bool, len(segments))
	for _, seg := range segments {
		inSource[seg.ContextPath] = true
	}

	var stats Stats
	for _, st := range translated {
		if !inSource[st.ContextPath] {
			continue
		}
		stats.Total++
		if b.IsDoNotTranslate(st.Value) {
			stats.Marked++
			continue
		}
		if st.Kind == KindManual {
			stats.Manual++
		}
	}
	return stats, nil
}

// MarkedSegments lists only the segments flagged as intentionally
// untranslated, in segment order.
func (b *Blanks) MarkedSegments(ctx context.Context, translationID string) ([]SegmentStatus, error) {
	all, err := b.RenderSegments(ctx, translationID)
	if err != nil {
		return nil, err
	}
	marked := make([]SegmentStatus, 0, len(all))
	for _, seg := range all {
		if seg.DoNotTranslate {
			marked = append(marked, seg)
		}
	}
	return marked, nil
}
