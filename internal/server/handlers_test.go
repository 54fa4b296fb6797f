package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openlocalize/blankpage/internal/cms/translation"
	"github.com/openlocalize/blankpage/internal/cms/user"
	"github.com/openlocalize/blankpage/internal/platform/i18n"
	"github.com/openlocalize/blankpage/internal/setup"
	"github.com/openlocalize/blankpage/internal/storage/sqlite"
)

func testServerConfig() Config {
	return Config{
		HTTPAddr:      ":0",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		Blanks: translation.BlanksConfig{
			Marker:          translation.DefaultMarker,
			BackupSeparator: translation.DefaultBackupSeparator,
			Enabled:         true,
			RequireAdmin:    true,
		},
	}
}

// newTestServer provisions a seeded store and a server over it.
func newTestServer(t *testing.T, cfg Config) (*Server, *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "blankpage.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := setup.RunWithStore(ctx, store, setup.Config{
		AdminName:     "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "changeme",
		HTTPAddr:      ":8080",
	}, nil); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	srv, err := New(cfg, store)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, store
}

// loginCookie authenticates through the API and returns the session cookie.
func loginCookie(t *testing.T, handler http.Handler, name, password string) *http.Cookie {
	t.Helper()

	form := url.Values{"name": {name}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookie {
			return cookie
		}
	}
	t.Fatal("login response has no session cookie")
	return nil
}

// titleContext is the context path of a page's title segment.
const titleContext = "title"

// firstTranslation returns the home page's translation into the locale and
// the string ID behind its title segment.
func firstTranslation(t *testing.T, store *sqlite.Store, localeCode string) (translationID, titleStringID string) {
	t.Helper()
	ctx := context.Background()

	en, err := store.GetLocaleByCode(ctx, i18n.DefaultCode)
	if err != nil {
		t.Fatalf("get en locale: %v", err)
	}
	target, err := store.GetLocaleByCode(ctx, localeCode)
	if err != nil {
		t.Fatalf("get %s locale: %v", localeCode, err)
	}
	home, err := store.GetPageBySlug(ctx, en.ID, "home")
	if err != nil {
		t.Fatalf("get home page: %v", err)
	}
	src, err := store.GetSourceByPage(ctx, home.ID)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	tr, err := store.GetTranslationForLocale(ctx, src.ID, target.ID)
	if err != nil {
		t.Fatalf("get translation: %v", err)
	}
	segments, err := store.ListSegmentsBySource(ctx, src.ID)
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	for _, seg := range segments {
		if seg.ContextPath == titleContext {
			return tr.ID, seg.StringID
		}
	}
	t.Fatal("home page has no title segment")
	return "", ""
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())
	handler := srv.Handler()

	cookie := loginCookie(t, handler, "admin", "changeme")
	if cookie.Value == "" {
		t.Error("session cookie is empty")
	}

	form := url.Values{"name": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	form = url.Values{"name": {"ghost"}, "password": {"changeme"}}
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestListLocalesAndPages(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/locales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("locales status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	locales, _ := body["locales"].([]any)
	if len(locales) != 4 {
		t.Errorf("len(locales) = %d, want 4", len(locales))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("pages status = %d", rec.Code)
	}
	body = decodeBody(t, rec)
	pages, _ := body["pages"].([]any)
	if len(pages) != 2 {
		t.Errorf("len(pages) = %d, want 2", len(pages))
	}
}

func TestGetPageFallsBackToSourceLanguage(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/pages/home?lang=fr", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	pageBody, _ := body["page"].(map[string]any)
	if pageBody["title"] != "Welcome to Intentional Blanks Demo" {
		t.Errorf("title = %v, want source fallback", pageBody["title"])
	}
}

func TestGetPageAcceptLanguage(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/pages/home", nil)
	req.Header.Set("Accept-Language", "fr-CA, fr;q=0.9, en;q=0.5")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	pageBody, _ := body["page"].(map[string]any)
	if pageBody["locale"] != "fr" {
		t.Errorf("locale = %v, want fr", pageBody["locale"])
	}
}

func TestGetPageUnknownSlug(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/pages/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestEditorEndpointsRequireSession(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	translationID, _ := firstTranslation(t, store, "fr")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/translations/" + translationID + "/segments"},
		{http.MethodGet, "/api/translations/" + translationID + "/stats"},
		{http.MethodGet, "/api/translations/" + translationID + "/status"},
		{http.MethodGet, "/api/translations/" + translationID + "/segments/" + titleContext + "/status"},
		{http.MethodPost, "/api/translations/" + translationID + "/segments/" + titleContext + "/do-not-translate"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", tc.method, tc.path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestDoNotTranslateFlow(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	cookie := loginCookie(t, handler, "admin", "changeme")
	translationID, stringID := firstTranslation(t, store, "fr")

	markPath := "/api/translations/" + translationID + "/segments/" + titleContext + "/do-not-translate"
	post := func(value string) *httptest.ResponseRecorder {
		form := url.Values{"do_not_translate": {value}}
		req := httptest.NewRequest(http.MethodPost, markPath, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}
	statusOf := func() map[string]any {
		req := httptest.NewRequest(http.MethodGet,
			"/api/translations/"+translationID+"/segments/"+titleContext+"/status", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d, body = %s", rec.Code, rec.Body.String())
		}
		return decodeBody(t, rec)
	}

	// Before any mark the title is untranslated, so there is no
	// translated text to report.
	body := statusOf()
	if body["translated_text"] != nil {
		t.Errorf("untranslated translated_text = %v, want null", body["translated_text"])
	}

	// Mark the title segment.
	rec := post("true")
	if rec.Code != http.StatusOK {
		t.Fatalf("mark status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if body["success"] != true || body["do_not_translate"] != true {
		t.Errorf("mark body = %v", body)
	}
	if body["source_value"] != "Welcome to Intentional Blanks Demo" {
		t.Errorf("source_value = %v", body["source_value"])
	}

	// The mark records who made it.
	admin, err := store.GetUserByName(context.Background(), "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	st, err := store.GetStringTranslation(context.Background(), translationID, stringID, titleContext)
	if err != nil {
		t.Fatalf("get string translation: %v", err)
	}
	if st.TranslatedBy != admin.ID {
		t.Errorf("TranslatedBy = %q, want admin %q", st.TranslatedBy, admin.ID)
	}

	// Segment status reflects the mark; a marked segment carries no
	// translated text.
	body = statusOf()
	if body["do_not_translate"] != true {
		t.Errorf("do_not_translate = %v, want true", body["do_not_translate"])
	}
	if body["translated_text"] != nil {
		t.Errorf("marked translated_text = %v, want null", body["translated_text"])
	}
	if body["source_text"] != "Welcome to Intentional Blanks Demo" {
		t.Errorf("source_text = %v", body["source_text"])
	}

	// The translation status map lists the marked string.
	req := httptest.NewRequest(http.MethodGet, "/api/translations/"+translationID+"/status", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("translation status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	body = decodeBody(t, rec)
	marked, _ := body["segments"].(map[string]any)
	if _, ok := marked[stringID]; !ok {
		t.Errorf("status map missing %s: %v", stringID, marked)
	}

	// Stats count the marked segment.
	req = httptest.NewRequest(http.MethodGet, "/api/translations/"+translationID+"/stats", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	body = decodeBody(t, rec)
	stats, _ := body["stats"].(map[string]any)
	if stats["marked"] != float64(1) {
		t.Errorf("stats = %v, want one marked", stats)
	}

	// Unmark deletes the bare marker; nothing remains to report.
	rec = post("false")
	if rec.Code != http.StatusOK {
		t.Fatalf("unmark status = %d", rec.Code)
	}
	body = decodeBody(t, rec)
	if body["do_not_translate"] != false {
		t.Errorf("unmark body = %v", body)
	}
	if body["translated_value"] != nil {
		t.Errorf("translated_value = %v, want null after bare unmark", body["translated_value"])
	}

	// Invalid values are rejected.
	rec = post("maybe")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid param status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUnmarkRestoresPreviousTranslation(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	cookie := loginCookie(t, handler, "admin", "changeme")
	translationID, stringID := firstTranslation(t, store, "fr")

	if err := store.UpsertStringTranslation(context.Background(), translation.StringTranslation{
		TranslationID: translationID,
		StringID:      stringID,
		ContextPath:   titleContext,
		Value:         "Bienvenue sur la démo",
		Kind:          translation.KindManual,
		UpdatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed translation: %v", err)
	}

	markPath := "/api/translations/" + translationID + "/segments/" + titleContext + "/do-not-translate"
	post := func(value string) *httptest.ResponseRecorder {
		form := url.Values{"do_not_translate": {value}}
		req := httptest.NewRequest(http.MethodPost, markPath, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := post("true"); rec.Code != http.StatusOK {
		t.Fatalf("mark status = %d", rec.Code)
	}

	rec := post("false")
	if rec.Code != http.StatusOK {
		t.Fatalf("unmark status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["translated_value"] != "Bienvenue sur la démo" {
		t.Errorf("translated_value = %v, want restored translation", body["translated_value"])
	}
}

func TestUnmarkWithoutMarkReportsExistingTranslation(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	cookie := loginCookie(t, handler, "admin", "changeme")
	translationID, stringID := firstTranslation(t, store, "fr")

	if err := store.UpsertStringTranslation(context.Background(), translation.StringTranslation{
		TranslationID: translationID,
		StringID:      stringID,
		ContextPath:   titleContext,
		Value:         "Bienvenue sur la démo",
		Kind:          translation.KindManual,
		UpdatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed translation: %v", err)
	}

	// Unmarking a segment that was never marked still reports the
	// translation it holds, and leaves it untouched.
	form := url.Values{"do_not_translate": {"false"}}
	req := httptest.NewRequest(http.MethodPost,
		"/api/translations/"+translationID+"/segments/"+titleContext+"/do-not-translate",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unmark status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["translated_value"] != "Bienvenue sur la démo" {
		t.Errorf("translated_value = %v, want existing translation", body["translated_value"])
	}

	st, err := store.GetStringTranslation(context.Background(), translationID, stringID, titleContext)
	if err != nil {
		t.Fatalf("get string translation: %v", err)
	}
	if st.Value != "Bienvenue sur la démo" {
		t.Errorf("stored value = %q, want untouched translation", st.Value)
	}
}

func TestMarkingRequiresAdminWhenRestricted(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	translationID, _ := firstTranslation(t, store, "fr")

	editor, err := user.CreateUser(user.CreateUserInput{
		Name:     "editor",
		Email:    "editor@example.com",
		Password: "editorpass",
	}, nil, nil)
	if err != nil {
		t.Fatalf("create editor value: %v", err)
	}
	if err := store.CreateUser(context.Background(), editor); err != nil {
		t.Fatalf("create editor: %v", err)
	}
	cookie := loginCookie(t, handler, "editor", "editorpass")

	form := url.Values{"do_not_translate": {"true"}}
	req := httptest.NewRequest(http.MethodPost,
		"/api/translations/"+translationID+"/segments/"+titleContext+"/do-not-translate",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// Relaxing the restriction lets any signed-in user mark.
	cfg := testServerConfig()
	cfg.Blanks.RequireAdmin = false
	relaxed, err := New(cfg, store)
	if err != nil {
		t.Fatalf("new relaxed server: %v", err)
	}
	relaxedHandler := relaxed.Handler()
	cookie = loginCookie(t, relaxedHandler, "editor", "editorpass")
	req = httptest.NewRequest(http.MethodPost,
		"/api/translations/"+translationID+"/segments/"+titleContext+"/do-not-translate",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	relaxedHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("relaxed status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestDoNotTranslateUnknownIDs(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	cookie := loginCookie(t, handler, "admin", "changeme")
	translationID, _ := firstTranslation(t, store, "fr")

	form := url.Values{"do_not_translate": {"true"}}

	req := httptest.NewRequest(http.MethodPost,
		"/api/translations/no-such-translation/segments/no-such-context/do-not-translate",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown translation status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	req = httptest.NewRequest(http.MethodPost,
		"/api/translations/"+translationID+"/segments/no-such-context/do-not-translate",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown segment status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMarkedPageServesSourceText(t *testing.T) {
	srv, store := newTestServer(t, testServerConfig())
	handler := srv.Handler()
	cookie := loginCookie(t, handler, "admin", "changeme")
	translationID, stringID := firstTranslation(t, store, "fr")

	// Translate the title, then mark it as do-not-translate.
	if err := store.UpsertStringTranslation(context.Background(), translation.StringTranslation{
		TranslationID: translationID,
		StringID:      stringID,
		ContextPath:   titleContext,
		Value:         "Bienvenue sur la démo",
		Kind:          translation.KindManual,
		UpdatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed translation: %v", err)
	}
	form := url.Values{"do_not_translate": {"true"}}
	req := httptest.NewRequest(http.MethodPost,
		"/api/translations/"+translationID+"/segments/"+titleContext+"/do-not-translate",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/pages/home?lang=fr", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	pageBody, _ := body["page"].(map[string]any)
	if pageBody["title"] != "Welcome to Intentional Blanks Demo" {
		t.Errorf("title = %v, want marked source text", pageBody["title"])
	}
	if pageBody["locale"] != "fr" {
		t.Errorf("locale = %v, want fr", pageBody["locale"])
	}
}
