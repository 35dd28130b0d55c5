package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardvault/card-service/internal/core/domain"
)

// TransferInput carries the parameters of a balance movement between two
// cards owned by the caller.
type TransferInput struct {
	Username   string
	FromCardID string
	ToCardID   string
	Amount     decimal.Decimal
}

// ListCardsInput carries all parameters for the admin card listing.
type ListCardsInput struct {
	Status string
	Page   int
	Limit  int
}

// ListOwnedCardsInput carries all parameters for the user-scoped card listing.
type ListOwnedCardsInput struct {
	Username       string
	Status         string
	ExpiryDateFrom time.Time
	ExpiryDateTo   time.Time
	Last4          string
	Page           int
	Limit          int
}

// CardPage is a page of cards plus paging metadata.
type CardPage struct {
	Items      []*domain.Card
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CardService defines the card lifecycle, transfer, and read use cases.
type CardService interface {
	// CreateCard issues a new PENDING card with zero balance for the user.
	CreateCard(ctx context.Context, userID string) (*domain.Card, error)
	// SetStatus unconditionally overwrites the card status (admin only).
	SetStatus(ctx context.Context, cardID string, status domain.CardStatus) (*domain.Card, error)
	// RequestBlock moves an ACTIVE card owned by the caller to BLOCK_PENDING.
	RequestBlock(ctx context.Context, cardID, username string) (*domain.Card, error)
	// DeleteCard removes a card with zero balance.
	DeleteCard(ctx context.Context, cardID string) error
	// GetCard returns any card by id (admin only).
	GetCard(ctx context.Context, cardID string) (*domain.Card, error)
	// GetOwnedCard returns the card only when it belongs to the caller.
	GetOwnedCard(ctx context.Context, cardID, username string) (*domain.Card, error)
	// ListCards returns a page of all cards, optionally filtered by status.
	ListCards(ctx context.Context, input ListCardsInput) (*CardPage, error)
	// ListOwnedCards returns a page of the caller's cards ordered by
	// ascending expiry date.
	ListOwnedCards(ctx context.Context, input ListOwnedCardsInput) (*CardPage, error)
	// Transfer moves amount between two ACTIVE cards owned by the caller.
	Transfer(ctx context.Context, input TransferInput) error
}
