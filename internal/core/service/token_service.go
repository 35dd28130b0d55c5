package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cardvault/card-service/internal/core/domain"
)

// authClaims are the signed claims carried by both token flavors.
// Subject is the username; Role is denormalized so the transport layer can
// gate routes without a store lookup. Ownership checks always re-resolve
// the identity from the store.
type authClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenService signs and verifies the access and refresh tokens. The two
// flavors differ only in lifetime; validity is signature plus expiry, there
// is no revocation list.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService builds a TokenService around a process-wide signing key.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 15 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateAccessToken issues a short-lived signed token for the user.
func (ts *TokenService) GenerateAccessToken(user *domain.User) (string, error) {
	return ts.sign(user, ts.accessTTL)
}

// GenerateRefreshToken issues a long-lived signed token for the user.
func (ts *TokenService) GenerateRefreshToken(user *domain.User) (string, error) {
	return ts.sign(user, ts.refreshTTL)
}

func (ts *TokenService) sign(user *domain.User, ttl time.Duration) (string, error) {
	now := ts.now().UTC()
	claims := &authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Validate parses and verifies a token, returning the subject username and
// role. Any failure (malformed, expired, bad signature, wrong algorithm)
// maps to domain.ErrInvalidToken so callers cannot distinguish the cause.
func (ts *TokenService) Validate(tokenString string) (subject, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return ts.now() }))
	if err != nil || !token.Valid {
		return "", "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*authClaims)
	if !ok || claims.Subject == "" {
		return "", "", domain.ErrInvalidToken
	}
	return claims.Subject, claims.Role, nil
}
