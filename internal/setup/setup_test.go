package setup

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openlocalize/blankpage/internal/cms/user"
	"github.com/openlocalize/blankpage/internal/platform/i18n"
	"github.com/openlocalize/blankpage/internal/storage/sqlite"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		DBPath:        filepath.Join(t.TempDir(), "blankpage.db"),
		AdminName:     "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "changeme",
		HTTPAddr:      ":8080",
	}
}

func TestRunProvisionsEverything(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	locales, err := store.ListLocales(ctx)
	if err != nil {
		t.Fatalf("list locales: %v", err)
	}
	if len(locales) != len(i18n.SeedCodes) {
		t.Errorf("len(locales) = %d, want %d", len(locales), len(i18n.SeedCodes))
	}

	admin, err := store.GetUserByName(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("admin.IsAdmin = false")
	}
	if err := admin.CheckPassword("changeme"); err != nil {
		t.Errorf("admin password check: %v", err)
	}

	en, err := store.GetLocaleByCode(ctx, i18n.DefaultCode)
	if err != nil {
		t.Fatalf("get en locale: %v", err)
	}
	for _, slug := range []string{"home", "firefox-specs"} {
		p, err := store.GetPageBySlug(ctx, en.ID, slug)
		if err != nil {
			t.Fatalf("get page %q: %v", slug, err)
		}
		if !p.Live {
			t.Errorf("page %q is not live", slug)
		}

		src, err := store.GetSourceByPage(ctx, p.ID)
		if err != nil {
			t.Fatalf("get source for %q: %v", slug, err)
		}
		segments, err := store.ListSegmentsBySource(ctx, src.ID)
		if err != nil {
			t.Fatalf("list segments for %q: %v", slug, err)
		}
		if len(segments) == 0 {
			t.Errorf("page %q has no segments", slug)
		}
		translations, err := store.ListTranslationsBySource(ctx, src.ID)
		if err != nil {
			t.Fatalf("list translations for %q: %v", slug, err)
		}
		if len(translations) != len(i18n.SeedCodes)-1 {
			t.Errorf("page %q translations = %d, want %d", slug, len(translations), len(i18n.SeedCodes)-1)
		}
	}

	home, err := store.GetPageBySlug(ctx, en.ID, "home")
	if err != nil {
		t.Fatalf("get home page: %v", err)
	}
	if home.Title != "Welcome to Intentional Blanks Demo" {
		t.Errorf("home title = %q", home.Title)
	}
	article, err := store.GetPageBySlug(ctx, en.ID, "firefox-specs")
	if err != nil {
		t.Fatalf("get article page: %v", err)
	}
	if article.Title != "Mozilla Firefox Technical Specs" {
		t.Errorf("article title = %q", article.Title)
	}
	// The article lives under the home page, not beside it.
	if article.ParentID != home.ID {
		t.Errorf("article ParentID = %q, want home %q", article.ParentID, home.ID)
	}

	if !strings.Contains(out.String(), "Setup complete.") {
		t.Errorf("output missing completion message:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "password=changeme") {
		t.Errorf("output missing credentials hint:\n%s", out.String())
	}
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Run(ctx, cfg, nil); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
	}

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	locales, err := store.ListLocales(ctx)
	if err != nil {
		t.Fatalf("list locales: %v", err)
	}
	if len(locales) != 4 {
		t.Fatalf("len(locales) = %d after two runs, want 4", len(locales))
	}

	en, err := store.GetLocaleByCode(ctx, i18n.DefaultCode)
	if err != nil {
		t.Fatalf("get en locale: %v", err)
	}
	pages, err := store.ListPages(ctx, en.ID)
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	// Root plus two demo pages, unchanged by the second run.
	if len(pages) != 3 {
		t.Errorf("len(pages) = %d after two runs, want 3", len(pages))
	}
}

// failingUserStore forces admin creation to fail while everything else works.
type failingUserStore struct {
	*sqlite.Store
}

func (f failingUserStore) CreateUser(_ context.Context, _ user.User) error {
	return errors.New("users table is locked")
}

func TestRunContinuesWhenAdminCreationFails(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	if err := RunWithStore(ctx, failingUserStore{store}, cfg, &out); err != nil {
		t.Fatalf("RunWithStore() error = %v, want nil despite admin failure", err)
	}

	locales, err := store.ListLocales(ctx)
	if err != nil {
		t.Fatalf("list locales: %v", err)
	}
	if len(locales) != len(i18n.SeedCodes) {
		t.Errorf("len(locales) = %d, want %d", len(locales), len(i18n.SeedCodes))
	}
	if !strings.Contains(out.String(), "Admin user could not be created") {
		t.Errorf("output missing admin failure notice:\n%s", out.String())
	}
}

func TestRunSurvivesExistingAdmin(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	if err := Run(ctx, cfg, nil); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	// A changed password must not overwrite the existing account.
	cfg.AdminPassword = "different"
	var out bytes.Buffer
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	admin, err := store.GetUserByName(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if err := admin.CheckPassword("changeme"); err != nil {
		t.Errorf("original password no longer valid: %v", err)
	}
}
