package utils

import (
	"fmt"
	"time"

	"github.com/collabtrack/server/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	sessionSecret          = []byte("change-me-in-production")
	sessionExpirationHours = 24 * 7
)

type SessionClaims struct {
	UserID string          `json:"userID"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func ConfigureSession(secret string, expirationHours int) {
	if secret != "" {
		sessionSecret = []byte(secret)
	}
	if expirationHours > 0 {
		sessionExpirationHours = expirationHours
	}
}

func SessionTTL() time.Duration {
	return time.Duration(sessionExpirationHours) * time.Hour
}

func GenerateSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sessionSecret)
}

func ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return sessionSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
