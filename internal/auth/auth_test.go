package auth

import (
	"errors"
	"testing"
	"time"

	"trackexpense/internal/core"
)

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret-key", "trackexpense", "trackexpense-api", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestIssueAndValidate(t *testing.T) {
	issuer := testIssuer(t)
	user := core.User{ID: "user-1", Email: "a@b.com"}

	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.Email != "a@b.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := testIssuer(t)
	other, err := NewTokenIssuer("other-secret", "trackexpense", "trackexpense-api", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, err := other.Issue(core.User{ID: "user-1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	past := time.Now().Add(-48 * time.Hour)
	issuer.WithClock(func() time.Time { return past })

	token, err := issuer.Issue(core.User{ID: "user-1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.WithClock(time.Now)
	if _, err := issuer.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := testIssuer(t)
	if _, err := issuer.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenIssuerRejectsEmptySecret(t *testing.T) {
	if _, err := NewTokenIssuer("", "i", "a", time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatalf("expected password to match its own hash")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("wrong password must not match")
	}

	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}
