package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cardvault/card-service/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: "u-1", Username: "alice", Role: domain.RoleUser}
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts := NewTokenService("secret", 30*time.Minute, 15*24*time.Hour)

	token, err := ts.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	subject, role, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if subject != "alice" {
		t.Errorf("expected subject alice, got %q", subject)
	}
	if role != domain.RoleUser {
		t.Errorf("expected role USER, got %q", role)
	}
}

func TestTokenService_Validate_WrongKey(t *testing.T) {
	ts := NewTokenService("secret", time.Minute, time.Hour)
	other := NewTokenService("other-secret", time.Minute, time.Hour)

	token, err := ts.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := other.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_Validate_Expired(t *testing.T) {
	ts := NewTokenService("secret", 30*time.Minute, time.Hour)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return issued }

	token, err := ts.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ts.now = func() time.Time { return issued.Add(31 * time.Minute) }
	if _, _, err := ts.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_Validate_Malformed(t *testing.T) {
	ts := NewTokenService("secret", time.Minute, time.Hour)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, _, err := ts.Validate(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

// Tokens signed with a non-HMAC algorithm are rejected even when the
// signature check would otherwise be skipped.
func TestTokenService_Validate_AlgorithmConfusion(t *testing.T) {
	ts := NewTokenService("secret", time.Minute, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := ts.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestTokenService_RefreshOutlivesAccess(t *testing.T) {
	ts := NewTokenService("secret", 30*time.Minute, 15*24*time.Hour)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return issued }

	access, err := ts.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	refresh, err := ts.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	ts.now = func() time.Time { return issued.Add(24 * time.Hour) }
	if _, _, err := ts.Validate(access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token should have expired, got %v", err)
	}
	if _, _, err := ts.Validate(refresh); err != nil {
		t.Fatalf("refresh token should still be valid, got %v", err)
	}
}
