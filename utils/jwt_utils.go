package utils

import (
	"errors"
	"time"

	"boutique-service/config"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 24 * time.Hour

var errInvalidToken = errors.New("invalid token")

// GenerateToken issues an admin session token.
func GenerateToken(adminID int, username string) (string, error) {
	cfg := config.LoadConfig()

	claims := jwt.MapClaims{
		"admin_id": adminID,
		"username": username,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates an admin session token and returns its identity.
func ParseToken(tokenString string) (int, string, error) {
	cfg := config.LoadConfig()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errInvalidToken
	}

	adminID, ok := claims["admin_id"].(float64)
	if !ok {
		return 0, "", errInvalidToken
	}
	username, _ := claims["username"].(string)

	return int(adminID), username, nil
}
