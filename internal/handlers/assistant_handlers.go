package handlers

import (
	"net/http"

	"zaikan/internal/common"
	"zaikan/internal/models"
	"zaikan/internal/services"

	"github.com/labstack/echo/v4"
)

// AssistantHandlers serves the inventory Q&A assistant
type AssistantHandlers struct {
	assistantService services.AssistantService
}

// NewAssistantHandlers creates a new assistant handlers instance
func NewAssistantHandlers(assistantService services.AssistantService) *AssistantHandlers {
	return &AssistantHandlers{assistantService: assistantService}
}

// Ask handles POST /assistant/query. Upstream failures do not surface as
// errors here; the service converts them into a fixed apology answer.
func (h *AssistantHandlers) Ask(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	answer, err := h.assistantService.Ask(ctx, userID, req.Question)
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			return common.SendValidationError(c, ve.Field, ve.Message)
		}
		c.Logger().Errorf("assistant query failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.JSON(http.StatusOK, answer)
}

// History handles GET /assistant/history
func (h *AssistantHandlers) History(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	messages, err := h.assistantService.History(ctx, userID)
	if err != nil {
		c.Logger().Errorf("assistant history failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// ClearHistory handles DELETE /assistant/history
func (h *AssistantHandlers) ClearHistory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.assistantService.ClearHistory(ctx, userID); err != nil {
		c.Logger().Errorf("assistant history clear failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.NoContent(http.StatusNoContent)
}
