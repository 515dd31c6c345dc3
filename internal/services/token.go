package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTTL = 72 * time.Hour

// GenerateToken issues the HS256 session token carried in the session
// cookie (or a bearer header / the websocket handshake query).
func GenerateToken(secret, userID, fullName string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   userID,
		"full_name": fullName,
		"exp":       time.Now().Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns the identity it carries.
func ParseToken(secret, tokenString string) (userID, fullName string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", errors.New("invalid token claims")
	}
	fullName, _ = claims["full_name"].(string)
	return userID, fullName, nil
}
