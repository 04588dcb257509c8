package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_RoundTrip(t *testing.T) {
	p := NewTokenProvider([]byte("secret"), "linkpg-test", time.Hour)

	token, expiresAt, err := p.Issue("sess-1", "user-1", "user@example.com", "google")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, want future", expiresAt)
	}

	claims, err := p.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.ID != "sess-1" {
		t.Errorf("claims.ID = %q, want sess-1", claims.ID)
	}
	if claims.Subject != "user-1" {
		t.Errorf("claims.Subject = %q, want user-1", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("claims.Email = %q, want user@example.com", claims.Email)
	}
	if claims.Provider != "google" {
		t.Errorf("claims.Provider = %q, want google", claims.Provider)
	}
}

func TestTokenProvider_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenProvider([]byte("secret-a"), "linkpg-test", time.Hour)
	verifier := NewTokenProvider([]byte("secret-b"), "linkpg-test", time.Hour)

	token, _, err := issuer.Issue("sess-1", "user-1", "", "google")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := verifier.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenProvider([]byte("secret"), "other-service", time.Hour)
	verifier := NewTokenProvider([]byte("secret"), "linkpg-test", time.Hour)

	token, _, err := issuer.Issue("sess-1", "user-1", "", "google")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := verifier.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsExpired(t *testing.T) {
	p := NewTokenProvider([]byte("secret"), "linkpg-test", -time.Minute)

	token, _, err := p.Issue("sess-1", "user-1", "", "google")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := p.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsGarbage(t *testing.T) {
	p := NewTokenProvider([]byte("secret"), "linkpg-test", time.Hour)

	if _, err := p.Parse("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}
