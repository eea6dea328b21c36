package services

import (
	"fmt"
	"time"

	"zaikan/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService issues the bearer tokens the API middleware verifies.
type AuthService interface {
	IssueToken(userID uuid.UUID) (*models.TokenResponse, error)
}

type authService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(jwtSecret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

func (s *authService) IssueToken(userID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "zaikan-auth",
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{"zaikan-api"},
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		UserID:      userID.String(),
	}, nil
}
