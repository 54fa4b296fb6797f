// Package setup bootstraps a working demo environment: schema migration,
// an admin account, the locale set, and translatable demo content.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/openlocalize/blankpage/internal/cms/locale"
	"github.com/openlocalize/blankpage/internal/cms/page"
	"github.com/openlocalize/blankpage/internal/cms/translation"
	"github.com/openlocalize/blankpage/internal/cms/user"
	"github.com/openlocalize/blankpage/internal/platform/i18n"
	"github.com/openlocalize/blankpage/internal/storage"
	"github.com/openlocalize/blankpage/internal/storage/sqlite"
)

// Config holds bootstrap configuration loaded from the environment.
type Config struct {
	DBPath        string `env:"BLANKPAGE_DB_PATH" envDefault:"blankpage.db"`
	AdminName     string `env:"BLANKPAGE_ADMIN_NAME" envDefault:"admin"`
	AdminEmail    string `env:"BLANKPAGE_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"BLANKPAGE_ADMIN_PASSWORD" envDefault:"changeme"`
	HTTPAddr      string `env:"BLANKPAGE_HTTP_ADDR" envDefault:":8080"`
}

// Run opens the store at cfg.DBPath, migrates it, and provisions the demo
// environment. Progress and final instructions are written to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()
	return RunWithStore(ctx, store, cfg, out)
}

// RunWithStore provisions the demo environment into an open store. Every
// step is idempotent, so re-running setup is safe.
func RunWithStore(ctx context.Context, store storage.Store, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintln(out, "Applying database migrations... done")

	// Admin creation is best-effort: a failure here must not block the
	// rest of the bootstrap.
	if err := ensureAdmin(ctx, store, cfg); err != nil {
		log.Printf("setup: create admin user: %v", err)
		fmt.Fprintln(out, "Admin user could not be created; see log output")
	} else {
		fmt.Fprintf(out, "Admin user %q is ready\n", cfg.AdminName)
	}

	locales, err := ensureLocales(ctx, store)
	if err != nil {
		return fmt.Errorf("seed locales: %w", err)
	}
	fmt.Fprintf(out, "Locales ready: %d\n", len(locales))

	pages, err := ensureDemoContent(ctx, store, locales)
	if err != nil {
		return fmt.Errorf("seed demo content: %w", err)
	}
	fmt.Fprintf(out, "Demo pages ready: %d\n", len(pages))

	printInstructions(out, cfg)
	return nil
}

// ensureAdmin creates the admin account unless one already exists.
func ensureAdmin(ctx context.Context, store storage.Store, cfg Config) error {
	_, err := store.GetUserByName(ctx, cfg.AdminName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	admin, err := user.CreateUser(user.CreateUserInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		IsAdmin:  true,
	}, nil, nil)
	if err != nil {
		return err
	}
	return store.CreateUser(ctx, admin)
}

// ensureLocales get-or-creates each seed locale and returns them keyed by
// code. Existing locales are never duplicated or modified.
func ensureLocales(ctx context.Context, store storage.Store) (map[string]locale.Locale, error) {
	locales := make(map[string]locale.Locale, len(i18n.SeedCodes))
	for _, code := range i18n.SeedCodes {
		existing, err := store.GetLocaleByCode(ctx, code)
		if err == nil {
			locales[code] = existing
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		created, err := locale.New(code, nil, nil)
		if err != nil {
			return nil, err
		}
		if err := store.CreateLocale(ctx, created); err != nil {
			return nil, err
		}
		locales[code] = created
	}
	return locales, nil
}

// ensureDemoContent seeds the page tree and translation scaffolding for the
// source locale, then opens translations into every other seed locale.
func ensureDemoContent(ctx context.Context, store storage.Store, locales map[string]locale.Locale) ([]page.Page, error) {
	source, ok := locales[i18n.DefaultCode]
	if !ok {
		return nil, fmt.Errorf("source locale %q is missing", i18n.DefaultCode)
	}

	root, err := ensureRoot(ctx, store, source)
	if err != nil {
		return nil, err
	}

	// The article is a child of the home page, so seed in parent order.
	home, err := ensurePage(ctx, store, homePageInput(root.ID, source.ID))
	if err != nil {
		return nil, fmt.Errorf("seed home page: %w", err)
	}
	article, err := ensurePage(ctx, store, articlePageInput(home.ID, source.ID))
	if err != nil {
		return nil, fmt.Errorf("seed article page: %w", err)
	}

	pages := []page.Page{home, article}
	for _, p := range pages {
		if err := ensureTranslations(ctx, store, p, source, locales); err != nil {
			return nil, fmt.Errorf("open translations for %q: %w", p.Slug, err)
		}
	}
	return pages, nil
}

func ensureRoot(ctx context.Context, store storage.Store, source locale.Locale) (page.Page, error) {
	root, err := store.GetRootPage(ctx, source.ID)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return page.Page{}, err
	}

	root, err = page.CreatePage(page.CreatePageInput{Kind: page.KindRoot, LocaleID: source.ID}, nil, nil)
	if err != nil {
		return page.Page{}, err
	}
	if err := store.CreatePage(ctx, root); err != nil {
		return page.Page{}, err
	}
	return root, nil
}

// ensurePage creates and publishes a page unless its slug already exists.
func ensurePage(ctx context.Context, store storage.Store, input page.CreatePageInput) (page.Page, error) {
	existing, err := store.GetPageBySlug(ctx, input.LocaleID, input.Slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return page.Page{}, err
	}

	p, err := page.CreatePage(input, nil, nil)
	if err != nil {
		return page.Page{}, err
	}
	if err := store.CreatePage(ctx, p); err != nil {
		return page.Page{}, err
	}

	rev, err := page.NewRevision(p, nil, nil)
	if err != nil {
		return page.Page{}, err
	}
	if err := store.CreateRevision(ctx, rev); err != nil {
		return page.Page{}, err
	}
	if err := store.PublishPage(ctx, p.ID, rev.ID); err != nil {
		return page.Page{}, err
	}
	p.Live = true
	return p, nil
}

// ensureTranslations extracts the page's segments and opens a translation
// into every non-source seed locale.
func ensureTranslations(ctx context.Context, store storage.Store, p page.Page, source locale.Locale, locales map[string]locale.Locale) error {
	src, err := store.GetSourceByPage(ctx, p.ID)
	if errors.Is(err, storage.ErrNotFound) {
		src, err = translation.NewSource(p.ID, source.ID, nil, nil)
		if err != nil {
			return err
		}
		if err := store.CreateSource(ctx, src); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	extracted := translation.SegmentsForPage(p)
	segments := make([]translation.Segment, 0, len(extracted))
	for _, seg := range extracted {
		str, err := store.GetOrCreateString(ctx, seg.Text)
		if err != nil {
			return err
		}
		segments = append(segments, translation.Segment{
			ID:          segmentID(src.ID, seg.ContextPath),
			SourceID:    src.ID,
			StringID:    str.ID,
			ContextPath: seg.ContextPath,
			Order:       seg.Order,
		})
	}
	if err := store.ReplaceSegments(ctx, src.ID, segments); err != nil {
		return err
	}

	for code, target := range locales {
		if code == source.Code {
			continue
		}
		_, err := store.GetTranslationForLocale(ctx, src.ID, target.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		tr, err := translation.NewTranslation(src.ID, target.ID, nil, nil)
		if err != nil {
			return err
		}
		if err := store.CreateTranslation(ctx, tr); err != nil {
			return err
		}
	}
	return nil
}

// segmentID derives a stable segment ID so re-extraction does not churn keys.
func segmentID(sourceID, contextPath string) string {
	return sourceID + ":" + contextPath
}

func printInstructions(out io.Writer, cfg Config) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Setup complete.")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Start the server:   blankpage-server (listens on %s)\n", cfg.HTTPAddr)
	fmt.Fprintf(out, "Sign in:            POST /api/login with name=%s password=%s\n", cfg.AdminName, cfg.AdminPassword)
	fmt.Fprintln(out, "Browse content:     GET /api/pages (add ?lang=fr|es|de for translations)")
	fmt.Fprintln(out, "Mark a segment:     POST /api/translations/{id}/segments/{contextPath}/do-not-translate")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Change the admin password before exposing the server.")
}
