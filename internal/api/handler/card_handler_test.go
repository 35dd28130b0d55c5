package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

type stubCardService struct {
	createFn       func(ctx context.Context, userID string) (*domain.Card, error)
	setStatusFn    func(ctx context.Context, cardID string, status domain.CardStatus) (*domain.Card, error)
	requestBlockFn func(ctx context.Context, cardID, username string) (*domain.Card, error)
	deleteFn       func(ctx context.Context, cardID string) error
	getFn          func(ctx context.Context, cardID string) (*domain.Card, error)
	getOwnedFn     func(ctx context.Context, cardID, username string) (*domain.Card, error)
	listFn         func(ctx context.Context, input ports.ListCardsInput) (*ports.CardPage, error)
	listOwnedFn    func(ctx context.Context, input ports.ListOwnedCardsInput) (*ports.CardPage, error)
	transferFn     func(ctx context.Context, input ports.TransferInput) error
}

func (s *stubCardService) CreateCard(ctx context.Context, userID string) (*domain.Card, error) {
	return s.createFn(ctx, userID)
}

func (s *stubCardService) SetStatus(ctx context.Context, cardID string, status domain.CardStatus) (*domain.Card, error) {
	return s.setStatusFn(ctx, cardID, status)
}

func (s *stubCardService) RequestBlock(ctx context.Context, cardID, username string) (*domain.Card, error) {
	return s.requestBlockFn(ctx, cardID, username)
}

func (s *stubCardService) DeleteCard(ctx context.Context, cardID string) error {
	return s.deleteFn(ctx, cardID)
}

func (s *stubCardService) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	return s.getFn(ctx, cardID)
}

func (s *stubCardService) GetOwnedCard(ctx context.Context, cardID, username string) (*domain.Card, error) {
	return s.getOwnedFn(ctx, cardID, username)
}

func (s *stubCardService) ListCards(ctx context.Context, input ports.ListCardsInput) (*ports.CardPage, error) {
	return s.listFn(ctx, input)
}

func (s *stubCardService) ListOwnedCards(ctx context.Context, input ports.ListOwnedCardsInput) (*ports.CardPage, error) {
	return s.listOwnedFn(ctx, input)
}

func (s *stubCardService) Transfer(ctx context.Context, input ports.TransferInput) error {
	return s.transferFn(ctx, input)
}

func sampleCard() *domain.Card {
	return &domain.Card{
		ID:         "c-1",
		OwnerID:    "u-1",
		CardNumber: "7733771234567890",
		Last4:      "7890",
		ExpiryDate: time.Date(2036, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusActive,
		Balance:    decimal.RequireFromString("120.50"),
	}
}

// authedContext builds a context carrying the claims the auth middleware
// would have injected.
func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, username, role string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("username", username)
	c.Set("role", role)
	return c
}

func TestAdminCardHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubCardService{
		createFn: func(ctx context.Context, userID string) (*domain.Card, error) {
			if userID != "u-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return sampleCard(), nil
		},
	}
	h := NewAdminCardHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues("u-1")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["masked_number"] != "**** **** **** 7890" {
		t.Fatalf("expected masked number, got %v", resp["masked_number"])
	}
	if _, leaked := resp["card_number"]; leaked {
		t.Fatalf("full card number must not be serialized")
	}
	if resp["balance"] != "120.50" {
		t.Fatalf("expected fixed-point balance string, got %v", resp["balance"])
	}
}

func TestAdminCardHandler_SetStatus_UnknownStatus(t *testing.T) {
	e := newTestEcho()
	h := NewAdminCardHandler(&stubCardService{})

	body := strings.NewReader(`{"status":"FROZEN"}`)
	req := httptest.NewRequest(http.MethodPatch, "/", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("c-1")

	err := h.SetStatus(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAdminCardHandler_List_InvalidStatusFilter(t *testing.T) {
	e := newTestEcho()
	h := NewAdminCardHandler(&stubCardService{})

	req := httptest.NewRequest(http.MethodGet, "/?status=FROZEN", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserCardHandler_List_PassesFilters(t *testing.T) {
	e := newTestEcho()
	stub := &stubCardService{
		listOwnedFn: func(ctx context.Context, input ports.ListOwnedCardsInput) (*ports.CardPage, error) {
			if input.Username != "alice" {
				t.Fatalf("unexpected username: %s", input.Username)
			}
			if input.Status != "ACTIVE" || input.Last4 != "7890" {
				t.Fatalf("filters not passed: %+v", input)
			}
			if input.ExpiryDateFrom.IsZero() {
				t.Fatalf("expiry lower bound not parsed")
			}
			return &ports.CardPage{Items: []*domain.Card{sampleCard()}, Total: 1, Page: 1, Limit: 10, TotalPages: 1}, nil
		},
	}
	h := NewUserCardHandler(stub)

	target := "/?status=ACTIVE&last4=7890&expiry_date_from=2030-01-01T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "alice", domain.RoleUser)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserCardHandler_List_BadExpiryBound(t *testing.T) {
	e := newTestEcho()
	h := NewUserCardHandler(&stubCardService{})

	req := httptest.NewRequest(http.MethodGet, "/?expiry_date_from=yesterday", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "alice", domain.RoleUser)

	err := h.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserCardHandler_RequestBlock(t *testing.T) {
	e := newTestEcho()
	stub := &stubCardService{
		requestBlockFn: func(ctx context.Context, cardID, username string) (*domain.Card, error) {
			if cardID != "c-1" || username != "alice" {
				t.Fatalf("unexpected args: %s %s", cardID, username)
			}
			card := sampleCard()
			card.Status = domain.StatusBlockPending
			return card, nil
		},
	}
	h := NewUserCardHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "alice", domain.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("c-1")

	if err := h.RequestBlock(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "BLOCK_PENDING" {
		t.Fatalf("expected BLOCK_PENDING, got %v", resp["status"])
	}
}

func TestUserCardHandler_Transfer_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubCardService{
		transferFn: func(ctx context.Context, input ports.TransferInput) error {
			if input.Username != "alice" {
				t.Fatalf("unexpected username: %s", input.Username)
			}
			if input.FromCardID != "c-1" || input.ToCardID != "c-2" {
				t.Fatalf("unexpected card ids: %s %s", input.FromCardID, input.ToCardID)
			}
			if !input.Amount.Equal(decimal.RequireFromString("200.00")) {
				t.Fatalf("unexpected amount: %s", input.Amount)
			}
			return nil
		},
	}
	h := NewUserCardHandler(stub)

	body := strings.NewReader(`{"from_card_id":"c-1","to_card_id":"c-2","amount":"200.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "alice", domain.RoleUser)

	if err := h.Transfer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserCardHandler_Transfer_BadAmount(t *testing.T) {
	e := newTestEcho()
	stub := &stubCardService{
		transferFn: func(ctx context.Context, input ports.TransferInput) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewUserCardHandler(stub)

	body := strings.NewReader(`{"from_card_id":"c-1","to_card_id":"c-2","amount":"two hundred"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "alice", domain.RoleUser)

	err := h.Transfer(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserCardHandler_Transfer_InsufficientFunds(t *testing.T) {
	e := newTestEcho()
	stub := &stubCardService{
		transferFn: func(ctx context.Context, input ports.TransferInput) error {
			return domain.ErrInsufficientFunds
		},
	}
	h := NewUserCardHandler(stub)

	body := strings.NewReader(`{"from_card_id":"c-1","to_card_id":"c-2","amount":"9999.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "alice", domain.RoleUser)

	if err := h.Transfer(c); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestUserCardHandler_MissingClaims(t *testing.T) {
	e := newTestEcho()
	h := NewUserCardHandler(&stubCardService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
