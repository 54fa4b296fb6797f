package server

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openlocalize/blankpage/internal/cms/user"
	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "blankpage_session"

const defaultSessionTTL = 12 * time.Hour

// SessionClaims captures the validated identity of an editor session.
type SessionClaims struct {
	UserID string
	Name   string
	Admin  bool
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// Sessions issues and verifies signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session manager with an HMAC signing secret.
func NewSessions(secret string, ttl time.Duration, now func() time.Time) (*Sessions, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue signs a session token for the user.
func (s *Sessions) Issue(u user.User) (string, error) {
	issuedAt := s.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
		Name:  u.Name,
		Admin: u.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUserSessionInvalid, "sign session token", err)
	}
	return signed, nil
}

// Verify parses and validates a session token.
func (s *Sessions) Verify(token string) (SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SessionClaims{}, apperrors.New(apperrors.CodeUserSessionRequired, "session token is required")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
	)
	if err != nil {
		return SessionClaims{}, apperrors.Wrap(apperrors.CodeUserSessionInvalid, "invalid session token", err)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return SessionClaims{}, apperrors.New(apperrors.CodeUserSessionInvalid, "session subject is required")
	}

	return SessionClaims{
		UserID: parsed.Subject,
		Name:   parsed.Name,
		Admin:  parsed.Admin,
	}, nil
}
