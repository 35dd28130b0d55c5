package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

// UserService implements administrative user management.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// Create registers a new user with a bcrypt-hashed credential. The username
// must not already exist.
func (s *UserService) Create(ctx context.Context, username, password, role string) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		role = domain.RoleUser
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		s.log.Warn().Str("username", username).Msg("duplicate username")
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, err
	}

	s.log.Debug().Str("user_id", created.ID).Msg("user created")
	return created, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, page, limit int) (*ports.UserPage, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.users.List(ctx, ports.ListUsersFilter{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &ports.UserPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a user by id after an existence check.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Debug().Str("user_id", id).Msg("user deleted")
	return nil
}
