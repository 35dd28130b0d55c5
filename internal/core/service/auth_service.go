package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

// LoginThrottle abstracts the failed-login limiter (Redis).
type LoginThrottle interface {
	// Allow reports whether the username may attempt a login.
	Allow(ctx context.Context, username string) (bool, error)
	// RegisterFailure records a failed attempt against the username.
	RegisterFailure(ctx context.Context, username string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, username string) error
}

// AuthService implements login and token refresh.
type AuthService struct {
	users    ports.UserRepository
	tokens   *TokenService
	throttle LoginThrottle
	log      zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens *TokenService, throttle LoginThrottle, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, throttle: throttle, log: log}
}

// Login verifies the credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, allowing attempt")
		} else if !allowed {
			s.log.Warn().Str("username", username).Msg("login throttled")
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Warn().Str("username", username).Msg("login for unknown username")
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("username", username).Msg("login with wrong password")
		if s.throttle != nil {
			if err := s.throttle.RegisterFailure(ctx, username); err != nil {
				s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
			}
		}
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("user logged in")
	return pair, nil
}

// Refresh validates the refresh token, resolves its subject, and issues a
// new access token. The incoming refresh token is echoed back unchanged; it
// stays valid until its natural expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	subject, _, err := s.tokens.Validate(refreshToken)
	if err != nil {
		s.log.Warn().Msg("refresh with invalid token")
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		s.log.Warn().Str("username", subject).Msg("refresh for unknown subject")
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("username", subject).Msg("access token refreshed")
	return &ports.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (s *AuthService) issuePair(user *domain.User) (*ports.TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
