// Package storage defines the persistence interfaces the application
// depends on. Implementations live in subpackages.
package storage

import (
	"context"

	"github.com/openlocalize/blankpage/internal/cms/locale"
	"github.com/openlocalize/blankpage/internal/cms/page"
	"github.com/openlocalize/blankpage/internal/cms/translation"
	"github.com/openlocalize/blankpage/internal/cms/user"
	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// LocaleStore persists locales.
type LocaleStore interface {
	CreateLocale(ctx context.Context, l locale.Locale) error
	GetLocaleByCode(ctx context.Context, code string) (locale.Locale, error)
	ListLocales(ctx context.Context) ([]locale.Locale, error)
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) error
	GetUserByName(ctx context.Context, name string) (user.User, error)
}

// PageStore persists the page tree and its revisions.
type PageStore interface {
	CreatePage(ctx context.Context, p page.Page) error
	UpdatePage(ctx context.Context, p page.Page) error
	GetPage(ctx context.Context, pageID string) (page.Page, error)
	GetPageBySlug(ctx context.Context, localeID, slug string) (page.Page, error)
	GetRootPage(ctx context.Context, localeID string) (page.Page, error)
	ListPages(ctx context.Context, localeID string) ([]page.Page, error)
	CreateRevision(ctx context.Context, rev page.Revision) error
	PublishPage(ctx context.Context, pageID, revisionID string) error
}

// TranslationStore persists strings, sources, segments, and translations.
// It covers the surface the blanks service reads and writes.
type TranslationStore interface {
	GetOrCreateString(ctx context.Context, value string) (translation.String, error)
	GetString(ctx context.Context, stringID string) (translation.String, error)

	CreateSource(ctx context.Context, src translation.TranslationSource) error
	GetSourceByPage(ctx context.Context, pageID string) (translation.TranslationSource, error)
	ReplaceSegments(ctx context.Context, sourceID string, segments []translation.Segment) error
	ListSegmentsBySource(ctx context.Context, sourceID string) ([]translation.Segment, error)

	CreateTranslation(ctx context.Context, tr translation.Translation) error
	GetTranslation(ctx context.Context, translationID string) (translation.Translation, error)
	GetTranslationForLocale(ctx context.Context, sourceID, targetLocaleID string) (translation.Translation, error)
	ListTranslationsBySource(ctx context.Context, sourceID string) ([]translation.Translation, error)

	GetStringTranslation(ctx context.Context, translationID, stringID, contextPath string) (translation.StringTranslation, error)
	UpsertStringTranslation(ctx context.Context, st translation.StringTranslation) error
	DeleteStringTranslation(ctx context.Context, translationID, stringID, contextPath string) error
	ListStringTranslations(ctx context.Context, translationID string) ([]translation.StringTranslation, error)
}

// Store is the full persistence surface.
type Store interface {
	LocaleStore
	UserStore
	PageStore
	TranslationStore

	Close() error
}
