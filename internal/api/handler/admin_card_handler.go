package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardvault/card-service/internal/api/metrics"
	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

// AdminCardHandler handles administrative card operations.
type AdminCardHandler struct {
	cardService ports.CardService
}

func NewAdminCardHandler(cardService ports.CardService) *AdminCardHandler {
	return &AdminCardHandler{cardService: cardService}
}

// Create issues a new card for the given user.
//
// @Summary      Create a card for a user
// @Tags         admin-cards
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Owner user id"
// @Success      201     {object}  cardResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/admin/cards/{userId} [post]
func (h *AdminCardHandler) Create(c echo.Context) error {
	card, err := h.cardService.CreateCard(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	metrics.CardsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toCardResponse(card))
}

// List returns a page of all cards, optionally filtered by status.
//
// @Summary      List all cards
// @Tags         admin-cards
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        status  query     string  false  "Status filter"  Enums(PENDING, ACTIVE, BLOCK_PENDING, BLOCKED, EXPIRED)
// @Success      200     {object}  cardPageResponse
// @Failure      400     {object}  errorResponse
// @Router       /v1/admin/cards [get]
func (h *AdminCardHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" {
		if _, ok := domain.ParseCardStatus(status); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		}
	}

	page, limit := pagingParams(c)
	result, err := h.cardService.ListCards(c.Request().Context(), ports.ListCardsInput{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCardPageResponse(result))
}

// Get returns a single card by id.
//
// @Summary      Get a card
// @Tags         admin-cards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Card id"
// @Success      200  {object}  cardResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/cards/{id} [get]
func (h *AdminCardHandler) Get(c echo.Context) error {
	card, err := h.cardService.GetCard(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCardResponse(card))
}

// SetStatus overwrites the card status with any enumerated value.
//
// @Summary      Set card status
// @Tags         admin-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Card id"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  cardResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/cards/{id}/status [patch]
func (h *AdminCardHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status, _ := domain.ParseCardStatus(req.Status)
	card, err := h.cardService.SetStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}

	metrics.StatusChangesTotal.WithLabelValues(string(status), "admin").Inc()
	return c.JSON(http.StatusOK, toCardResponse(card))
}

// Delete removes a card.
//
// @Summary      Delete a card
// @Tags         admin-cards
// @Security     BearerAuth
// @Param        id  path  string  true  "Card id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/cards/{id} [delete]
func (h *AdminCardHandler) Delete(c echo.Context) error {
	if err := h.cardService.DeleteCard(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
