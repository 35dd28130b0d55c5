package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

const (
	issuerPrefix      = "773377"
	cardNumberDigits  = 10
	numberGenAttempts = 3

	defaultPageLimit = 10
	maxPageLimit     = 100
)

// CardService implements the card lifecycle, ownership-scoped reads, and
// the transfer engine.
type CardService struct {
	cards ports.CardRepository
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewCardService(cards ports.CardRepository, users ports.UserRepository, log zerolog.Logger) *CardService {
	return &CardService{cards: cards, users: users, log: log, now: time.Now}
}

// CreateCard issues a new card for the user: generated number, derived
// last4, expiry ten years out, status PENDING, zero balance.
func (s *CardService) CreateCard(ctx context.Context, userID string) (*domain.Card, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn().Str("user_id", userID).Msg("card creation for unknown user")
		return nil, err
	}

	number, err := s.uniqueCardNumber(ctx)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		ID:         uuid.NewString(),
		OwnerID:    user.ID,
		CardNumber: number,
		Last4:      number[len(number)-4:],
		ExpiryDate: s.now().UTC().AddDate(10, 0, 0),
		Status:     domain.StatusPending,
		Balance:    decimal.Zero,
	}

	if err := s.cards.Create(ctx, card); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to create card")
		return nil, err
	}

	s.log.Debug().Str("card_id", card.ID).Str("user_id", userID).Msg("card created")
	return card, nil
}

// uniqueCardNumber generates an issuer-prefixed number, retrying a few
// times when the store already holds it. Exhausting the retries is treated
// as a hard failure rather than inserting a known duplicate.
func (s *CardService) uniqueCardNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < numberGenAttempts; attempt++ {
		number := generateCardNumber()
		exists, err := s.cards.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		s.log.Warn().Int("attempt", attempt+1).Msg("card number collision, regenerating")
	}
	return "", fmt.Errorf("card number generation: %d collisions in a row", numberGenAttempts)
}

// generateCardNumber returns the fixed issuer prefix followed by ten
// pseudorandom digits.
func generateCardNumber() string {
	buf := make([]byte, cardNumberDigits)
	if _, err := rand.Read(buf); err != nil {
		// fallback: derive digits from the current nanosecond clock
		ns := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(ns % 10)
			ns /= 10
		}
	}
	digits := make([]byte, cardNumberDigits)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return issuerPrefix + string(digits)
}

// SetStatus overwrites the card status with any enumerated value. No guard
// beyond card existence; this is the administrative escape hatch that can
// also revive BLOCKED and EXPIRED cards.
func (s *CardService) SetStatus(ctx context.Context, cardID string, status domain.CardStatus) (*domain.Card, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.cards.UpdateStatus(ctx, cardID, status); err != nil {
		return nil, err
	}

	card.Status = status
	s.log.Debug().Str("card_id", cardID).Str("status", string(status)).Msg("card status updated")
	return card, nil
}

// RequestBlock moves an ACTIVE card to BLOCK_PENDING on behalf of its
// owner. Ownership is checked before the status precondition so a caller
// probing someone else's card learns nothing about its status.
func (s *CardService) RequestBlock(ctx context.Context, cardID, username string) (*domain.Card, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.OwnerID != user.ID {
		s.log.Warn().Str("card_id", cardID).Str("user_id", user.ID).Msg("block request by non-owner")
		return nil, domain.ErrNotCardOwner
	}

	if card.Status != domain.StatusActive {
		s.log.Warn().Str("card_id", cardID).Str("status", string(card.Status)).Msg("block request for non-active card")
		return nil, domain.ErrCardNotActive
	}

	if err := s.cards.UpdateStatus(ctx, cardID, domain.StatusBlockPending); err != nil {
		return nil, err
	}

	card.Status = domain.StatusBlockPending
	s.log.Debug().Str("card_id", cardID).Str("user_id", user.ID).Msg("card block requested")
	return card, nil
}

// DeleteCard removes a card. Cards still holding funds are not deletable;
// the admin must drain them first.
func (s *CardService) DeleteCard(ctx context.Context, cardID string) error {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return err
	}

	if !card.Balance.IsZero() {
		s.log.Warn().Str("card_id", cardID).Str("balance", card.Balance.String()).Msg("refusing to delete card with funds")
		return domain.ErrBalanceNotZero
	}

	if err := s.cards.DeleteByID(ctx, cardID); err != nil {
		return err
	}

	s.log.Debug().Str("card_id", cardID).Msg("card deleted")
	return nil
}

// GetCard returns any card by id. Administrative read, no ownership check.
func (s *CardService) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	return s.cards.FindByID(ctx, cardID)
}

// GetOwnedCard returns the card only when it belongs to the caller.
func (s *CardService) GetOwnedCard(ctx context.Context, cardID, username string) (*domain.Card, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.OwnerID != user.ID {
		s.log.Warn().Str("card_id", cardID).Str("user_id", user.ID).Msg("read attempt on foreign card")
		return nil, domain.ErrNotCardOwner
	}
	return card, nil
}

// ListCards returns a page of all cards for administrative review,
// optionally filtered by status and sorted by status.
func (s *CardService) ListCards(ctx context.Context, input ports.ListCardsInput) (*ports.CardPage, error) {
	status, err := parseOptionalStatus(input.Status)
	if err != nil {
		return nil, err
	}

	page, limit := normalizePage(input.Page, input.Limit)
	items, total, err := s.cards.List(ctx, ports.ListCardsFilter{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return cardPage(items, total, page, limit), nil
}

// ListOwnedCards returns a page of the caller's cards with all filters
// applied conjunctively, ordered by ascending expiry date.
func (s *CardService) ListOwnedCards(ctx context.Context, input ports.ListOwnedCardsInput) (*ports.CardPage, error) {
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	status, err := parseOptionalStatus(input.Status)
	if err != nil {
		return nil, err
	}

	page, limit := normalizePage(input.Page, input.Limit)
	items, total, err := s.cards.List(ctx, ports.ListCardsFilter{
		OwnerID:        user.ID,
		Status:         status,
		ExpiryDateFrom: input.ExpiryDateFrom,
		ExpiryDateTo:   input.ExpiryDateTo,
		Last4:          input.Last4,
		SortByExpiry:   true,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return cardPage(items, total, page, limit), nil
}

// Transfer moves amount between two cards owned by the caller. The check
// order is part of the contract: missing entities first, then ownership,
// same-card, status, amount, and sufficiency. A caller probing cards it
// does not own always sees the ownership conflict, whatever else is wrong
// with the request.
func (s *CardService) Transfer(ctx context.Context, input ports.TransferInput) error {
	fromCard, err := s.cards.FindByID(ctx, input.FromCardID)
	if err != nil {
		return err
	}
	toCard, err := s.cards.FindByID(ctx, input.ToCardID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return err
	}

	if fromCard.OwnerID != user.ID || toCard.OwnerID != user.ID {
		s.log.Warn().Str("from", input.FromCardID).Str("to", input.ToCardID).Str("user_id", user.ID).
			Msg("transfer between cards not owned by caller")
		return domain.ErrNotOwnCards
	}

	if fromCard.ID == toCard.ID {
		s.log.Warn().Str("card_id", fromCard.ID).Str("user_id", user.ID).Msg("transfer to the same card")
		return domain.ErrSameCard
	}

	if fromCard.Status != domain.StatusActive || toCard.Status != domain.StatusActive {
		s.log.Warn().Str("from", input.FromCardID).Str("to", input.ToCardID).Str("user_id", user.ID).
			Msg("transfer with non-active card")
		return domain.ErrCardNotActive
	}

	if !input.Amount.IsPositive() {
		s.log.Warn().Str("amount", input.Amount.String()).Str("user_id", user.ID).Msg("transfer with non-positive amount")
		return domain.ErrNonPositiveAmount
	}

	if fromCard.Balance.LessThan(input.Amount) {
		s.log.Warn().Str("from", input.FromCardID).Str("balance", fromCard.Balance.String()).
			Str("amount", input.Amount.String()).Str("user_id", user.ID).Msg("insufficient funds")
		return domain.ErrInsufficientFunds
	}

	// The store re-checks status and sufficiency inside its transaction, so
	// a concurrent transfer cannot drain the balance between the check
	// above and the write below.
	if err := s.cards.TransferBalances(ctx, fromCard.ID, toCard.ID, input.Amount); err != nil {
		return err
	}

	s.log.Debug().Str("from", input.FromCardID).Str("to", input.ToCardID).
		Str("amount", input.Amount.String()).Str("user_id", user.ID).Msg("transfer completed")
	return nil
}

func parseOptionalStatus(s string) (domain.CardStatus, error) {
	if s == "" {
		return "", nil
	}
	status, ok := domain.ParseCardStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown card status %q", s)
	}
	return status, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func cardPage(items []*domain.Card, total int64, page, limit int) *ports.CardPage {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &ports.CardPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
