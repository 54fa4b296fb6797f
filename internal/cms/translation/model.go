// Package translation models page localization: source strings extracted
// from pages, per-locale translations, and the intentional-blank marking
// that lets translators keep source text for specific segments.
package translation

import (
	"fmt"
	"time"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	"github.com/openlocalize/blankpage/internal/platform/id"
)

// TranslationKind records how a string translation was produced.
type TranslationKind string

const (
	// KindManual marks a translation entered or marked by a person.
	KindManual TranslationKind = "manual"
	// KindMachine marks a translation produced automatically.
	KindMachine TranslationKind = "machine"
)

// String is a canonical source string, deduplicated by value so the same
// text shared across pages translates once.
type String struct {
	ID        string
	Value     string
	CreatedAt time.Time
}

// TranslationSource snapshots the translatable content of a page in its
// source locale. Segments reference it by ID.
type TranslationSource struct {
	ID        string
	PageID    string
	LocaleID  string
	CreatedAt time.Time
}

// Segment is one ordered occurrence of a string within a source, addressed
// by a stable context path such as "features.0.heading".
type Segment struct {
	ID          string
	SourceID    string
	StringID    string
	ContextPath string
	Order       int
}

// Translation is a target-locale rendering of a source.
type Translation struct {
	ID             string
	SourceID       string
	TargetLocaleID string
	CreatedAt      time.Time
}

// StringTranslation is the translated value of one segment within one
// translation, keyed by the segment's context path so the same source
// string can carry different values in different positions. A marked value
// encodes the intentional blank.
type StringTranslation struct {
	TranslationID string
	StringID      string
	ContextPath   string
	Value         string
	Kind          TranslationKind
	TranslatedBy  string
	UpdatedAt     time.Time
}

// NewString creates a canonical string record.
func NewString(value string, now func() time.Time, idGenerator func() (string, error)) (String, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if value == "" {
		return String{}, apperrors.New(apperrors.CodeStringValueEmpty, "string value is required")
	}
	stringID, err := idGenerator()
	if err != nil {
		return String{}, fmt.Errorf("generate string id: %w", err)
	}
	return String{ID: stringID, Value: value, CreatedAt: now().UTC()}, nil
}

// NewSource creates a translation source for a page.
func NewSource(pageID, localeID string, now func() time.Time, idGenerator func() (string, error)) (TranslationSource, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if pageID == "" || localeID == "" {
		return TranslationSource{}, apperrors.New(apperrors.CodeSourceInvalid, "source requires a page and a locale")
	}
	sourceID, err := idGenerator()
	if err != nil {
		return TranslationSource{}, fmt.Errorf("generate source id: %w", err)
	}
	return TranslationSource{ID: sourceID, PageID: pageID, LocaleID: localeID, CreatedAt: now().UTC()}, nil
}

// NewTranslation creates a translation of a source into a target locale.
func NewTranslation(sourceID, targetLocaleID string, now func() time.Time, idGenerator func() (string, error)) (Translation, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if sourceID == "" || targetLocaleID == "" {
		return Translation{}, apperrors.New(apperrors.CodeTranslationInvalid, "translation requires a source and a target locale")
	}
	translationID, err := idGenerator()
	if err != nil {
		return Translation{}, fmt.Errorf("generate translation id: %w", err)
	}
	return Translation{ID: translationID, SourceID: sourceID, TargetLocaleID: targetLocaleID, CreatedAt: now().UTC()}, nil
}
