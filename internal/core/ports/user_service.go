package ports

import (
	"context"

	"github.com/cardvault/card-service/internal/core/domain"
)

// UserPage is a page of users plus paging metadata.
type UserPage struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines the administrative user management use cases.
type UserService interface {
	// Create registers a new user with a hashed credential. The username
	// must be unique.
	Create(ctx context.Context, username, password, role string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page, limit int) (*UserPage, error)
	Delete(ctx context.Context, id string) error
}
