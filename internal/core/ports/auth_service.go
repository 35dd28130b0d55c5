package ports

import "context"

// TokenPair is the access/refresh token pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService defines the authentication use cases.
type AuthService interface {
	// Login verifies the credentials and issues a token pair.
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	// Refresh validates the refresh token and issues a new access token.
	// The refresh token itself is echoed back unchanged.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}
