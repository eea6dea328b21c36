package handlers

import (
	"errors"
	"net/http"
	"strings"

	"zaikan/internal/common"
	"zaikan/internal/models"
	"zaikan/internal/repositories"
	"zaikan/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandlers handles signup, login and the current-user lookup
type AuthHandlers struct {
	userRepo    repositories.UserRepository
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(userRepo repositories.UserRepository, authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{
		userRepo:    userRepo,
		authService: authService,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *credentialsRequest) validate() (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" || !strings.Contains(email, "@") {
		return "", "", models.NewValidationError("email", "A valid email address is required")
	}
	if len(r.Password) < 8 {
		return "", "", models.NewValidationError("password", "Password must be at least 8 characters")
	}
	return email, r.Password, nil
}

// Signup handles POST /auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	email, password, err := req.validate()
	if err != nil {
		ve, _ := models.AsValidationError(err)
		return common.SendValidationError(c, ve.Field, ve.Message)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Errorf("password hashing failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return common.SendConflictError(c, "DUPLICATE_EMAIL", "Email already registered")
		}
		c.Logger().Errorf("user creation failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		c.Logger().Errorf("token issue failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}
	return c.JSON(http.StatusCreated, token)
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return common.SendUnauthorizedError(c)
		}
		c.Logger().Errorf("user lookup failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return common.SendUnauthorizedError(c)
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		c.Logger().Errorf("token issue failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}
	return c.JSON(http.StatusOK, token)
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return common.SendNotFoundError(c, "User")
		}
		c.Logger().Errorf("user lookup failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}

	return c.JSON(http.StatusOK, user)
}
