package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"zaikan/internal/common"
	"zaikan/internal/models"
	"zaikan/internal/services"

	"github.com/labstack/echo/v4"
)

// MovementHandlers handles stock-in / stock-out requests and the movement log
type MovementHandlers struct {
	ledgerService services.LedgerService
	imageService  services.ImageService
}

// NewMovementHandlers creates a new movement handlers instance
func NewMovementHandlers(ledgerService services.LedgerService, imageService services.ImageService) *MovementHandlers {
	return &MovementHandlers{
		ledgerService: ledgerService,
		imageService:  imageService,
	}
}

// StockIn handles POST /items/:id/stock-in
func (h *MovementHandlers) StockIn(c echo.Context) error {
	return h.applyMovement(c, models.DirectionIn)
}

// StockOut handles POST /items/:id/stock-out
func (h *MovementHandlers) StockOut(c echo.Context) error {
	return h.applyMovement(c, models.DirectionOut)
}

func (h *MovementHandlers) applyMovement(c echo.Context, direction string) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	var item *models.Item
	if direction == models.DirectionIn {
		item, err = h.ledgerService.StockIn(ctx, userID, itemID, req.Quantity)
	} else {
		item, err = h.ledgerService.StockOut(ctx, userID, itemID, req.Quantity)
	}
	if err != nil {
		return h.mapMovementError(c, err)
	}

	return c.JSON(http.StatusOK, resolveImageURL(c, h.imageService, item))
}

// ListLogs handles GET /logs. Entries are newest first; logs whose item has
// since been deleted carry "orphaned": true and keep the recorded item name.
func (h *MovementHandlers) ListLogs(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return common.SendValidationError(c, "limit", "limit must be an integer")
		}
		limit, _ = common.ValidatePaginationParams(parsed, 0)
	}

	logs, err := h.ledgerService.RecentLogs(ctx, userID, limit)
	if err != nil {
		c.Logger().Errorf("log listing failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs": logs,
	})
}

func (h *MovementHandlers) mapMovementError(c echo.Context, err error) error {
	if ve, ok := models.AsValidationError(err); ok {
		return common.SendValidationError(c, ve.Field, ve.Message)
	}
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return common.SendNotFoundError(c, "Item")
	case errors.Is(err, models.ErrInsufficientStock):
		return common.SendConflictError(c, "INSUFFICIENT_STOCK", err.Error())
	default:
		c.Logger().Errorf("movement failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}
}
