package middleware

import (
	"time"

	"zaikan/internal/caching"
	"zaikan/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimitByUser limits how many requests a single user may make within the
// given window. It is applied to the assistant routes only; the counter lives
// in Redis so the limit holds across instances. If the cache is unreachable
// the request is allowed through rather than failing closed.
func RateLimitByUser(cache caching.CacheService, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := common.GetUserIDFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			limited, err := cache.IsRateLimited(c.Request().Context(), userID.String(), limit, window)
			if err != nil {
				c.Logger().Warnf("rate limit check failed, allowing request: %v", err)
				return next(c)
			}
			if limited {
				return echo.NewHTTPError(429, "Too many requests, please slow down")
			}
			return next(c)
		}
	}
}
