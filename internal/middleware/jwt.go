package middleware

import (
	"context"
	"net/http"

	"zaikan/internal/common"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NewJWTConfig builds the echo-jwt configuration for the protected route
// group. On success the token subject is attached to the request context as
// the caller's user ID; handlers treat a missing ID as an immediate reject.
func NewJWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:     []byte(jwtSecret),
		SuccessHandler: attachUserContext,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

func attachUserContext(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return
	}

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return common.GetUserIDFromContext(ctx)
}
