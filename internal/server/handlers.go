package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/openlocalize/blankpage/internal/cms/page"
	"github.com/openlocalize/blankpage/internal/cms/translation"
	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	"github.com/openlocalize/blankpage/internal/platform/httpx"
	"github.com/openlocalize/blankpage/internal/platform/i18n"
	"github.com/openlocalize/blankpage/internal/storage"
)

type localeView struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type pageSummaryView struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

type pageView struct {
	Slug    string       `json:"slug"`
	Title   string       `json:"title"`
	Kind    string       `json:"kind"`
	Locale  string       `json:"locale"`
	Live    bool         `json:"live"`
	Content page.Content `json:"content"`
}

type loginRequestView struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func decodeJSONBody(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperrors.New(apperrors.CodeRequestInvalid, "malformed json body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	creds, err := decodeLoginRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	account, err := s.store.GetUserByName(ctx, creds.Name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Same failure as a wrong password so names cannot be probed.
			httpx.WriteError(w, apperrors.New(apperrors.CodeUserBadCredentials, "invalid credentials"))
			return
		}
		httpx.WriteError(w, err)
		return
	}
	if err := account.CheckPassword(creds.Password); err != nil {
		httpx.WriteError(w, err)
		return
	}

	token, err := s.sessions.Issue(account)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userView{ID: account.ID, Name: account.Name, IsAdmin: account.IsAdmin},
	})
}

// decodeLoginRequest accepts form-encoded or JSON credentials.
func decodeLoginRequest(r *http.Request) (loginRequestView, error) {
	var creds loginRequestView
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		if err := decodeJSONBody(r, &creds); err != nil {
			return loginRequestView{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return loginRequestView{}, apperrors.New(apperrors.CodeUserBadCredentials, "malformed login request")
		}
		creds.Name = r.PostFormValue("name")
		creds.Password = r.PostFormValue("password")
	}

	creds.Name = strings.TrimSpace(creds.Name)
	if creds.Name == "" || creds.Password == "" {
		return loginRequestView{}, apperrors.New(apperrors.CodeUserBadCredentials, "name and password are required")
	}
	return creds, nil
}

func (s *Server) handleLocales(w http.ResponseWriter, r *http.Request) {
	locales, err := s.store.ListLocales(httpx.RequestContext(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]localeView, 0, len(locales))
	for _, l := range locales {
		views = append(views, localeView{ID: l.ID, Code: l.Code})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "locales": views})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	source, err := s.store.GetLocaleByCode(ctx, i18n.DefaultCode)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	pages, err := s.store.ListPages(ctx, source.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	views := make([]pageSummaryView, 0, len(pages))
	for _, p := range pages {
		if p.Kind == page.KindRoot || !p.Live {
			continue
		}
		views = append(views, pageSummaryView{Slug: p.Slug, Title: p.Title, Kind: string(p.Kind)})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "pages": views})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	slug := strings.TrimSpace(r.PathValue("slug"))
	localeCode := i18n.ResolveCode(r)

	source, err := s.store.GetLocaleByCode(ctx, i18n.DefaultCode)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	p, err := s.store.GetPageBySlug(ctx, source.ID, slug)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if !p.Live {
		httpx.WriteError(w, apperrors.New(apperrors.CodePageNotFound, "page not found"))
		return
	}

	localized, servedCode, err := s.localizePage(r, p, localeCode)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"page": pageView{
			Slug:    localized.Slug,
			Title:   localized.Title,
			Kind:    string(localized.Kind),
			Locale:  servedCode,
			Live:    localized.Live,
			Content: localized.Content,
		},
	})
}

// localizePage overlays the page with its translation for localeCode. Pages
// without a translation fall back to the source language.
func (s *Server) localizePage(r *http.Request, p page.Page, localeCode string) (page.Page, string, error) {
	if localeCode == i18n.DefaultCode {
		return p, i18n.DefaultCode, nil
	}
	ctx := httpx.RequestContext(r)

	target, err := s.store.GetLocaleByCode(ctx, localeCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return p, i18n.DefaultCode, nil
		}
		return page.Page{}, "", err
	}
	src, err := s.store.GetSourceByPage(ctx, p.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return p, i18n.DefaultCode, nil
		}
		return page.Page{}, "", err
	}
	tr, err := s.store.GetTranslationForLocale(ctx, src.ID, target.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return p, i18n.DefaultCode, nil
		}
		return page.Page{}, "", err
	}

	segments, err := s.blanks.RenderSegments(ctx, tr.ID)
	if err != nil {
		return page.Page{}, "", err
	}
	return translation.ApplySegments(p, segments), localeCode, nil
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	translationID := strings.TrimSpace(r.PathValue("translationID"))
	segments, err := s.blanks.RenderSegments(httpx.RequestContext(r), translationID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "segments": segments})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	translationID := strings.TrimSpace(r.PathValue("translationID"))
	stats, err := s.blanks.SegmentStats(httpx.RequestContext(r), translationID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (s *Server) handleTranslationStatus(w http.ResponseWriter, r *http.Request) {
	translationID := strings.TrimSpace(r.PathValue("translationID"))
	marked, err := s.blanks.MarkedSegments(httpx.RequestContext(r), translationID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	status := make(map[string]map[string]any, len(marked))
	for _, seg := range marked {
		status[seg.StringID] = map[string]any{
			"do_not_translate": true,
			"source_text":      seg.SourceText,
		}
	}
	// Marks must be visible immediately after toggling.
	w.Header().Set("Cache-Control", "no-store")
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "segments": status})
}

func (s *Server) handleSegmentStatus(w http.ResponseWriter, r *http.Request) {
	translationID := strings.TrimSpace(r.PathValue("translationID"))
	contextPath := strings.TrimSpace(r.PathValue("contextPath"))

	seg, err := s.findSegment(r, translationID, contextPath)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	// Marked or untranslated segments carry no translated text.
	var translatedText any
	if seg.Translated && !seg.DoNotTranslate {
		translatedText = seg.Text
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"do_not_translate": seg.DoNotTranslate,
		"source_text":      seg.SourceText,
		"translated_text":  translatedText,
	})
}

func (s *Server) handleDoNotTranslate(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	translationID := strings.TrimSpace(r.PathValue("translationID"))
	contextPath := strings.TrimSpace(r.PathValue("contextPath"))

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.New(apperrors.CodeBlanksParamInvalid, "malformed form body"))
		return
	}
	var mark bool
	switch r.PostFormValue("do_not_translate") {
	case "true":
		mark = true
	case "false":
		mark = false
	default:
		httpx.WriteError(w, apperrors.New(apperrors.CodeBlanksParamInvalid, `do_not_translate must be "true" or "false"`))
		return
	}

	seg, err := s.findSegment(r, translationID, contextPath)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	claims, _ := sessionFromContext(ctx)

	var translatedValue any
	if mark {
		if _, err := s.blanks.Mark(ctx, translationID, contextPath, claims.UserID); err != nil {
			httpx.WriteError(w, err)
			return
		}
	} else {
		restored, _, err := s.blanks.Unmark(ctx, translationID, contextPath)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		switch {
		case restored != "":
			translatedValue = restored
		case seg.Translated && !seg.DoNotTranslate:
			// Unmarking a segment that was never marked reports the
			// translation it already holds.
			translatedValue = seg.Text
		}
	}

	message := "segment marked as do-not-translate"
	if !mark {
		message = "segment unmarked, ready for manual translation"
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"do_not_translate": mark,
		"source_value":     seg.SourceText,
		"translated_value": translatedValue,
		"message":          message,
	})
}

// findSegment resolves one segment of a translation by context path.
func (s *Server) findSegment(r *http.Request, translationID, contextPath string) (translation.SegmentStatus, error) {
	segments, err := s.blanks.RenderSegments(httpx.RequestContext(r), translationID)
	if err != nil {
		return translation.SegmentStatus{}, err
	}
	for _, seg := range segments {
		if seg.ContextPath == contextPath {
			return seg, nil
		}
	}
	return translation.SegmentStatus{}, apperrors.New(apperrors.CodeSegmentNotFound, "segment not found")
}
