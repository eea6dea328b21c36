package handlers

import (
	"net/http"

	"zaikan/internal/common"
	"zaikan/internal/services"

	"github.com/labstack/echo/v4"
)

// DemoHandlers seeds a sample ledger for first-run exploration
type DemoHandlers struct {
	demoService services.DemoService
}

// NewDemoHandlers creates a new demo handlers instance
func NewDemoHandlers(demoService services.DemoService) *DemoHandlers {
	return &DemoHandlers{demoService: demoService}
}

// Seed handles POST /demo-data. It replaces the caller's entire ledger with
// generated sample items and logs; the swap is all-or-nothing.
func (h *DemoHandlers) Seed(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.demoService.Seed(ctx, userID); err != nil {
		c.Logger().Errorf("demo seeding failed: %v", err)
		return common.SendServerError(c, "Failed to seed demo data")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Demo data created",
	})
}
