// Package server exposes the content and translation editor HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/openlocalize/blankpage/internal/cms/translation"
	"github.com/openlocalize/blankpage/internal/platform/httpx"
	"github.com/openlocalize/blankpage/internal/storage"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Config holds server configuration loaded from the environment.
type Config struct {
	HTTPAddr      string        `env:"BLANKPAGE_HTTP_ADDR" envDefault:":8080"`
	DBPath        string        `env:"BLANKPAGE_DB_PATH" envDefault:"blankpage.db"`
	SessionSecret string        `env:"BLANKPAGE_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"BLANKPAGE_SESSION_TTL" envDefault:"12h"`

	Blanks translation.BlanksConfig `envPrefix:"BLANKPAGE_"`
}

// Server serves the JSON API over a persistence store.
type Server struct {
	httpAddr   string
	store      storage.Store
	blanks     *translation.Blanks
	sessions   *Sessions
	httpServer *http.Server
}

// New builds a configured server over an open store.
func New(cfg Config, store storage.Store) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	blanks, err := translation.NewBlanks(cfg.Blanks, store, nil)
	if err != nil {
		return nil, err
	}
	sessions, err := NewSessions(cfg.SessionSecret, cfg.SessionTTL, nil)
	if err != nil {
		return nil, err
	}

	s := &Server{
		httpAddr: httpAddr,
		store:    store,
		blanks:   blanks,
		sessions: sessions,
	}
	s.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

// Handler builds the route table with shared middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(http.MethodGet+" /healthz", s.handleHealth)
	mux.HandleFunc(http.MethodPost+" /api/login", s.handleLogin)
	mux.HandleFunc(http.MethodGet+" /api/locales", s.handleLocales)
	mux.HandleFunc(http.MethodGet+" /api/pages", s.handlePages)
	mux.HandleFunc(http.MethodGet+" /api/pages/{slug}", s.handlePage)

	mux.HandleFunc(http.MethodGet+" /api/translations/{translationID}/segments",
		s.requireSession(s.handleSegments))
	mux.HandleFunc(http.MethodGet+" /api/translations/{translationID}/stats",
		s.requireSession(s.handleStats))
	mux.HandleFunc(http.MethodGet+" /api/translations/{translationID}/status",
		s.requireSession(s.handleTranslationStatus))
	mux.HandleFunc(http.MethodGet+" /api/translations/{translationID}/segments/{contextPath}/status",
		s.requireSession(s.handleSegmentStatus))
	mux.HandleFunc(http.MethodPost+" /api/translations/{translationID}/segments/{contextPath}/do-not-translate",
		s.requireMarkPermission(s.handleDoNotTranslate))

	return httpx.Chain(mux, httpx.RequestID(), httpx.RecoverPanic())
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
