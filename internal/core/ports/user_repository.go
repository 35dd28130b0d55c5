package ports

import (
	"context"

	"github.com/cardvault/card-service/internal/core/domain"
)

// ListUsersFilter carries the paging parameters for the admin user listing.
type ListUsersFilter struct {
	Page  int // 1-based
	Limit int // max rows per page (capped by the service)
}

// UserRepository defines persistence operations for user identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns a page of users and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	DeleteByID(ctx context.Context, id string) error
}
