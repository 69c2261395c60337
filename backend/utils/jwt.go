package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"ibam/backend/config"
)

// AuthCookie carries the access token for browser clients.
const AuthCookie = "ibam_auth"

var ErrUnauthenticated = errors.New("not authenticated")

func GenerateJWTToken(userID uuid.UUID, cfg *config.Config) (string, time.Time, error) {
	expiresAt := time.Now().Add(cfg.TokenTTL)
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// TokenFromRequest reads the Authorization header (raw or Bearer), then the auth cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return c.Cookies(AuthCookie)
}

func ParseJWTToken(tokenString string, cfg *config.Config) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrUnauthenticated
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

func ExtractUserIDFromToken(c *fiber.Ctx, cfg *config.Config) (uuid.UUID, error) {
	return ParseJWTToken(TokenFromRequest(c), cfg)
}
