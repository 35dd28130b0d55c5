package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/cardvault/card-service/internal/api/metrics"
	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

// UserCardHandler handles the authenticated card holder's own cards.
type UserCardHandler struct {
	cardService ports.CardService
}

func NewUserCardHandler(cardService ports.CardService) *UserCardHandler {
	return &UserCardHandler{cardService: cardService}
}

// List returns a page of the caller's cards ordered by ascending expiry.
//
// @Summary      List own cards
// @Tags         user-cards
// @Produce      json
// @Security     BearerAuth
// @Param        page              query     int     false  "Page (1-based)"
// @Param        limit             query     int     false  "Page size"
// @Param        status            query     string  false  "Status filter"  Enums(PENDING, ACTIVE, BLOCK_PENDING, BLOCKED, EXPIRED)
// @Param        expiry_date_from  query     string  false  "Expiry lower bound (RFC 3339)"
// @Param        expiry_date_to    query     string  false  "Expiry upper bound (RFC 3339)"
// @Param        last4             query     string  false  "Last four digits"
// @Success      200               {object}  cardPageResponse
// @Failure      400               {object}  errorResponse
// @Router       /v1/users/cards [get]
func (h *UserCardHandler) List(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	status := c.QueryParam("status")
	if status != "" {
		if _, ok := domain.ParseCardStatus(status); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		}
	}

	from, err := parseTimeParam(c, "expiry_date_from")
	if err != nil {
		return err
	}
	to, err := parseTimeParam(c, "expiry_date_to")
	if err != nil {
		return err
	}

	page, limit := pagingParams(c)
	result, err := h.cardService.ListOwnedCards(c.Request().Context(), ports.ListOwnedCardsInput{
		Username:       username,
		Status:         status,
		ExpiryDateFrom: from,
		ExpiryDateTo:   to,
		Last4:          c.QueryParam("last4"),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCardPageResponse(result))
}

// Get returns one of the caller's cards.
//
// @Summary      Get own card
// @Tags         user-cards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Card id"
// @Success      200  {object}  cardResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/users/cards/{id} [get]
func (h *UserCardHandler) Get(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	card, err := h.cardService.GetOwnedCard(c.Request().Context(), c.Param("id"), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCardResponse(card))
}

// RequestBlock asks for one of the caller's ACTIVE cards to be blocked.
//
// @Summary      Request a card block
// @Tags         user-cards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Card id"
// @Success      200  {object}  cardResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/users/cards/{id}/block [post]
func (h *UserCardHandler) RequestBlock(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	card, err := h.cardService.RequestBlock(c.Request().Context(), c.Param("id"), username)
	if err != nil {
		return err
	}
	metrics.StatusChangesTotal.WithLabelValues(string(card.Status), "user").Inc()
	return c.JSON(http.StatusOK, toCardResponse(card))
}

// Transfer moves money between two of the caller's cards.
//
// @Summary      Transfer between own cards
// @Tags         user-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  transferRequest  true  "Transfer parameters"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/users/cards/transfer [post]
func (h *UserCardHandler) Transfer(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be a decimal number")
	}

	start := time.Now()
	err = h.cardService.Transfer(c.Request().Context(), ports.TransferInput{
		Username:   username,
		FromCardID: req.FromCardID,
		ToCardID:   req.ToCardID,
		Amount:     amount,
	})
	metrics.TransferDuration.Observe(time.Since(start).Seconds())
	metrics.TransfersTotal.WithLabelValues(transferResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func transferResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrCardNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotOwnCards),
		errors.Is(err, domain.ErrSameCard),
		errors.Is(err, domain.ErrCardNotActive),
		errors.Is(err, domain.ErrNonPositiveAmount),
		errors.Is(err, domain.ErrInsufficientFunds):
		return "conflict"
	default:
		return "error"
	}
}

func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be RFC 3339")
	}
	return t, nil
}
