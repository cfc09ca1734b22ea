package middleware

import (
	"strconv"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// validateAccessToken parses the token string, checks signature, token type,
// and the revocation blacklist, and returns the user ID and username claims.
func validateAccessToken(c *fiber.Ctx, tokenString string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if typ, _ := claims["type"].(string); typ != "" && typ != "access" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Token is not an access token")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	// Revoked JTIs are blacklisted in Redis on logout.
	if jti, _ := claims["jti"].(string); jti != "" {
		if rdb := cache.GetClient(); rdb != nil {
			if exists, err := rdb.Exists(c.UserContext(), cache.JTIBlacklistKey(jti)).Result(); err == nil && exists > 0 {
				return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Token has been revoked")
			}
		}
	}

	username, _ := claims["username"].(string)
	return uint(userIDVal), username, nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	userID, username, err := validateAccessToken(c, parts[1])
	if err != nil {
		msg := "Invalid or expired token"
		if fe, ok := err.(*fiber.Error); ok {
			msg = fe.Message
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": msg,
		})
	}

	c.Locals("userID", userID)
	c.Locals("username", username)

	return c.Next()
}

// WebSocketAuthRequired is middleware that validates JWT tokens from query parameters for WebSocket connections.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	// Try to get token from query parameter first (for WebSocket)
	token := c.Query("token")
	if token == "" {
		// Fall back to Authorization header (for regular HTTP)
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token required",
			})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}
		token = parts[1]
	}

	userID, username, err := validateAccessToken(c, token)
	if err != nil {
		msg := "Invalid or expired token"
		if fe, ok := err.(*fiber.Error); ok {
			msg = fe.Message
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": msg,
		})
	}

	c.Locals("userID", userID)
	c.Locals("username", username)

	return c.Next()
}
