package server

import (
	"testing"
	"time"

	"github.com/openlocalize/blankpage/internal/cms/user"
	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
)

func TestSessionsRoundTrip(t *testing.T) {
	t.Parallel()

	sessions, err := NewSessions("test-secret", time.Hour, nil)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}

	token, err := sessions.Issue(user.User{ID: "user-1", Name: "admin", IsAdmin: true})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Name != "admin" || !claims.Admin {
		t.Errorf("claims = %+v", claims)
	}
}

func TestSessionsRequireSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewSessions("  ", time.Hour, nil); err == nil {
		t.Fatal("NewSessions() with blank secret should fail")
	}
}

func TestSessionsRejectExpiredToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	now := func() time.Time { return clock }

	sessions, err := NewSessions("test-secret", time.Minute, now)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}
	token, err := sessions.Issue(user.User{ID: "user-1", Name: "admin"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	clock = issued.Add(2 * time.Minute)
	if _, err := sessions.Verify(token); apperrors.CodeOf(err) != apperrors.CodeUserSessionInvalid {
		t.Fatalf("Verify() expired error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeUserSessionInvalid)
	}
}

func TestSessionsRejectForeignToken(t *testing.T) {
	t.Parallel()

	issuer, err := NewSessions("secret-a", time.Hour, nil)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}
	verifier, err := NewSessions("secret-b", time.Hour, nil)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}

	token, err := issuer.Issue(user.User{ID: "user-1", Name: "admin"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("Verify() with wrong secret should fail")
	}

	if _, err := verifier.Verify(""); apperrors.CodeOf(err) != apperrors.CodeUserSessionRequired {
		t.Fatalf("Verify(\"\") error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeUserSessionRequired)
	}
}
