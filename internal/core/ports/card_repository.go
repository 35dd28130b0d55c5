package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardvault/card-service/internal/core/domain"
)

// ListCardsFilter carries all query parameters for listing cards.
// All filters are optional and conjunctive. OwnerID is enforced by the
// service layer for user-scoped listings.
type ListCardsFilter struct {
	OwnerID        string            // empty = all owners (admin)
	Status         domain.CardStatus // optional: exact status match
	ExpiryDateFrom time.Time         // optional: expiry_date >= ExpiryDateFrom (inclusive)
	ExpiryDateTo   time.Time         // optional: expiry_date <= ExpiryDateTo (inclusive)
	Last4          string            // optional: exact match on last four digits
	SortByExpiry   bool              // true = ascending expiry date, false = by status
	Page           int               // 1-based
	Limit          int               // max rows per page (capped by the service)
}

// CardRepository defines persistence operations for cards.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	FindByID(ctx context.Context, id string) (*domain.Card, error)
	ExistsByNumber(ctx context.Context, cardNumber string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.CardStatus) error
	DeleteByID(ctx context.Context, id string) error
	// List returns a page of cards matching filter and the total count.
	List(ctx context.Context, filter ListCardsFilter) ([]*domain.Card, int64, error)
	// TransferBalances atomically moves amount from one card to the other.
	// Both writes succeed or neither does. The debit is conditional on the
	// source card still being ACTIVE with balance >= amount at write time,
	// so two concurrent transfers cannot drain the same balance twice;
	// a failed condition is reported as domain.ErrInsufficientFunds.
	TransferBalances(ctx context.Context, fromID, toID string, amount decimal.Decimal) error
}
