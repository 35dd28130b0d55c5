package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus represents the lifecycle state of a bank card.
type CardStatus string

const (
	StatusPending      CardStatus = "PENDING"
	StatusActive       CardStatus = "ACTIVE"
	StatusBlockPending CardStatus = "BLOCK_PENDING"
	StatusBlocked      CardStatus = "BLOCKED"
	StatusExpired      CardStatus = "EXPIRED"
)

// validTransitions defines the allowed state machine transitions.
// BLOCKED and EXPIRED have no outgoing transitions; an admin may still
// overwrite the status directly, which bypasses this table.
var validTransitions = map[CardStatus][]CardStatus{
	StatusPending:      {StatusActive},
	StatusActive:       {StatusBlockPending, StatusBlocked, StatusExpired},
	StatusBlockPending: {StatusBlocked, StatusActive},
}

var ErrCardNotFound = errors.New("card not found")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrNotCardOwner = errors.New("not card owner")
var ErrNotOwnCards = errors.New("cards must belong to the caller")
var ErrCardNotActive = errors.New("card not active")
var ErrSameCard = errors.New("transfer to the same card")
var ErrNonPositiveAmount = errors.New("amount must be positive")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrBalanceNotZero = errors.New("card balance is not zero")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrTooManyAttempts = errors.New("too many login attempts")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseCardStatus converts a string to a CardStatus, reporting whether the
// value is one of the enumerated states.
func ParseCardStatus(s string) (CardStatus, bool) {
	switch CardStatus(s) {
	case StatusPending, StatusActive, StatusBlockPending, StatusBlocked, StatusExpired:
		return CardStatus(s), true
	}
	return "", false
}

// Card is the core aggregate of the system. The owner is referenced by id
// only; operations that need the owner fetch it from the user store so no
// live object graph is shared between concurrent requests.
type Card struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	CardNumber string          `json:"-"`
	Last4      string          `json:"last4"`
	ExpiryDate time.Time       `json:"expiry_date"`
	Status     CardStatus      `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
}
