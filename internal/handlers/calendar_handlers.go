package handlers

import (
	"net/http"
	"strconv"
	"time"

	"zaikan/internal/common"
	"zaikan/internal/services"

	"github.com/labstack/echo/v4"
)

// CalendarHandlers serves the monthly movement summaries
type CalendarHandlers struct {
	calendarService services.CalendarService
}

// NewCalendarHandlers creates a new calendar handlers instance
func NewCalendarHandlers(calendarService services.CalendarService) *CalendarHandlers {
	return &CalendarHandlers{calendarService: calendarService}
}

// Month handles GET /calendar?year=2026&month=8. One entry per day of the
// month, including days with no movement.
func (h *CalendarHandlers) Month(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 1970 || year > 9999 {
		return common.SendValidationError(c, "year", "year must be a four-digit year")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return common.SendValidationError(c, "month", "month must be between 1 and 12")
	}

	days, err := h.calendarService.Month(ctx, userID, year, time.Month(month))
	if err != nil {
		c.Logger().Errorf("calendar month failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": month,
		"days":  days,
	})
}

// Day handles GET /calendar/day?date=2026-08-29 and returns the day's
// movement entries in the order they were recorded.
func (h *CalendarHandlers) Day(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	date, err := common.ValidateDateFormat(c.QueryParam("date"), "date")
	if err != nil {
		return common.SendValidationError(c, "date", err.Error())
	}

	logs, err := h.calendarService.Day(ctx, userID, date)
	if err != nil {
		c.Logger().Errorf("calendar day failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"logs": logs,
	})
}
