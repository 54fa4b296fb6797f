package server

import (
	"context"
	"net/http"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	"github.com/openlocalize/blankpage/internal/platform/httpx"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFromContext returns the verified session claims, if any.
func sessionFromContext(ctx context.Context) (SessionClaims, bool) {
	claims, ok := ctx.Value(sessionContextKey).(SessionClaims)
	return claims, ok
}

// withSession attaches verified claims to the request context.
func withSession(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, sessionContextKey, claims)
}

// requireSession rejects requests without a valid session cookie.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			httpx.WriteError(w, apperrors.New(apperrors.CodeUserSessionRequired, "authentication required"))
			return
		}
		claims, err := s.sessions.Verify(cookie.Value)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		next(w, r.WithContext(withSession(r.Context(), claims)))
	}
}

// requireMarkPermission enforces the configured marking permission: any
// authenticated user, or admins only when marking is restricted.
func (s *Server) requireMarkPermission(next http.HandlerFunc) http.HandlerFunc {
	return s.requireSession(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := sessionFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, apperrors.New(apperrors.CodeUserSessionRequired, "authentication required"))
			return
		}
		if s.blanks.RequireAdmin() && !claims.Admin {
			httpx.WriteError(w, apperrors.New(apperrors.CodeUserNotAuthorized, "marking requires an admin account"))
			return
		}
		next(w, r)
	})
}
