// Package locale provides language/region records that scope translated content.
package locale

import (
	"fmt"
	"time"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	platformi18n "github.com/openlocalize/blankpage/internal/platform/i18n"
	"github.com/openlocalize/blankpage/internal/platform/id"
)

var (
	// ErrEmptyCode indicates a missing locale code.
	ErrEmptyCode = apperrors.New(apperrors.CodeLocaleCodeEmpty, "locale code is required")
	// ErrInvalidCode indicates a locale code that is not valid BCP 47.
	ErrInvalidCode = apperrors.New(apperrors.CodeLocaleCodeInvalid, "locale code must be a valid BCP 47 tag")
)

// Locale identifies a language/region content can be authored or translated in.
type Locale struct {
	ID        string
	Code      string
	CreatedAt time.Time
}

// New creates a locale record from a raw language code.
func New(code string, now func() time.Time, idGenerator func() (string, error)) (Locale, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCode(code)
	if err != nil {
		return Locale{}, err
	}

	localeID, err := idGenerator()
	if err != nil {
		return Locale{}, fmt.Errorf("generate locale id: %w", err)
	}

	return Locale{
		ID:        localeID,
		Code:      normalized,
		CreatedAt: now().UTC(),
	}, nil
}

// NormalizeCode canonicalizes and validates a locale code.
func NormalizeCode(code string) (string, error) {
	normalized, ok := platformi18n.NormalizeCode(code)
	if !ok {
		if code == "" {
			return "", ErrEmptyCode
		}
		return "", ErrInvalidCode
	}
	if normalized == "" {
		return "", ErrEmptyCode
	}
	return normalized, nil
}
