package handler

import (
	"time"

	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPairResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// --- Users ---

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=USER ADMIN"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

type userPageResponse struct {
	Items      []userResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

func toUserPageResponse(p *ports.UserPage) userPageResponse {
	items := make([]userResponse, 0, len(p.Items))
	for _, u := range p.Items {
		items = append(items, toUserResponse(u))
	}
	return userPageResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

// --- Cards ---

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ACTIVE BLOCK_PENDING BLOCKED EXPIRED"`
}

type transferRequest struct {
	FromCardID string `json:"from_card_id" validate:"required"`
	ToCardID   string `json:"to_card_id"   validate:"required"`
	// Amount is a decimal string (e.g. "200.00") so values survive the
	// wire without floating-point rounding.
	Amount string `json:"amount" validate:"required"`
}

// cardResponse never exposes the full card number; only the masked form
// and the last four digits leave the service.
type cardResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	MaskedNumber string    `json:"masked_number"`
	Last4        string    `json:"last4"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Status       string    `json:"status"`
	Balance      string    `json:"balance"`
}

func toCardResponse(c *domain.Card) cardResponse {
	return cardResponse{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		MaskedNumber: "**** **** **** " + c.Last4,
		Last4:        c.Last4,
		ExpiryDate:   c.ExpiryDate,
		Status:       string(c.Status),
		Balance:      c.Balance.StringFixed(2),
	}
}

type cardPageResponse struct {
	Items      []cardResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

func toCardPageResponse(p *ports.CardPage) cardPageResponse {
	items := make([]cardResponse, 0, len(p.Items))
	for _, c := range p.Items {
		items = append(items, toCardResponse(c))
	}
	return cardPageResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}
