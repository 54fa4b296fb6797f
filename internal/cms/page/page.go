// Package page provides the demo content model: a page tree with
// locale-scoped, translatable fields and rich-content blocks.
package page

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	"github.com/openlocalize/blankpage/internal/platform/id"
)

var (
	// ErrEmptyTitle indicates a missing page title.
	ErrEmptyTitle = apperrors.New(apperrors.CodePageTitleEmpty, "page title is required")
	// ErrEmptySlug indicates a missing page slug.
	ErrEmptySlug = apperrors.New(apperrors.CodePageSlugEmpty, "page slug is required")
	// ErrInvalidSlug indicates a slug that is not URL-safe.
	ErrInvalidSlug = apperrors.New(apperrors.CodePageSlugInvalid, "page slug must be lowercase alphanumeric with dashes")
	// ErrInvalidKind indicates an unsupported page kind.
	ErrInvalidKind = apperrors.New(apperrors.CodePageKindInvalid, "unsupported page kind")
	// ErrEmptyLocale indicates a page without a locale.
	ErrEmptyLocale = apperrors.New(apperrors.CodePageLocaleEmpty, "page locale is required")

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Kind selects the content shape of a page.
type Kind string

const (
	// KindRoot is the tree root; it carries no translatable content.
	KindRoot Kind = "root"
	// KindHome is the demo home page.
	KindHome Kind = "home"
	// KindArticle is the demo article page.
	KindArticle Kind = "article"
)

// FeatureBlock is a rich-content block whose fields translators can
// individually mark as "do not translate".
type FeatureBlock struct {
	Heading      string `json:"heading"`
	Paragraph    string `json:"paragraph"`
	ImageCaption string `json:"image_caption,omitempty"`
}

// TechnicalSpecBlock holds product specs, brand names, or technical terms
// that often keep their source-language values.
type TechnicalSpecBlock struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Content holds the kind-specific translatable fields of a page.
type Content struct {
	// Home fields
	Tagline  string         `json:"tagline,omitempty"`
	Features []FeatureBlock `json:"features,omitempty"`

	// Article fields
	Date  string               `json:"date,omitempty"`
	Intro string               `json:"intro,omitempty"`
	Specs []TechnicalSpecBlock `json:"specs,omitempty"`

	// Shared rich text body (HTML)
	Body string `json:"body,omitempty"`
}

// Page is a node in the content tree.
type Page struct {
	ID        string
	ParentID  string
	Slug      string
	Title     string
	Kind      Kind
	LocaleID  string
	Live      bool
	Content   Content
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Revision is an immutable snapshot of a page's content.
type Revision struct {
	ID        string
	PageID    string
	Title     string
	Content   Content
	Published bool
	CreatedAt time.Time
}

// CreatePageInput describes the metadata needed to create a page.
type CreatePageInput struct {
	ParentID string
	Slug     string
	Title    string
	Kind     Kind
	LocaleID string
	Content  Content
}

// ValidKind reports whether kind is one of the supported page kinds.
func ValidKind(kind Kind) bool {
	switch kind {
	case KindRoot, KindHome, KindArticle:
		return true
	default:
		return false
	}
}

// ValidateSlug enforces URL-safe slugs.
func ValidateSlug(slug string) error {
	if slug == "" {
		return ErrEmptySlug
	}
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// CreatePage creates a draft page from validated input.
func CreatePage(input CreatePageInput, now func() time.Time, idGenerator func() (string, error)) (Page, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Title = strings.TrimSpace(input.Title)

	if !ValidKind(input.Kind) {
		return Page{}, ErrInvalidKind
	}
	if input.Kind != KindRoot {
		if input.Title == "" {
			return Page{}, ErrEmptyTitle
		}
		if err := ValidateSlug(input.Slug); err != nil {
			return Page{}, err
		}
	}
	if input.LocaleID == "" {
		return Page{}, ErrEmptyLocale
	}

	pageID, err := idGenerator()
	if err != nil {
		return Page{}, fmt.Errorf("generate page id: %w", err)
	}

	createdAt := now().UTC()
	return Page{
		ID:        pageID,
		ParentID:  input.ParentID,
		Slug:      input.Slug,
		Title:     input.Title,
		Kind:      input.Kind,
		LocaleID:  input.LocaleID,
		Content:   input.Content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NewRevision snapshots the page's current title and content.
func NewRevision(p Page, now func() time.Time, idGenerator func() (string, error)) (Revision, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	revisionID, err := idGenerator()
	if err != nil {
		return Revision{}, fmt.Errorf("generate revision id: %w", err)
	}

	return Revision{
		ID:        revisionID,
		PageID:    p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: now().UTC(),
	}, nil
}
