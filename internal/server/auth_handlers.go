// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Register handles POST /api/users/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login handles POST /api/users/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	access, err := s.generateToken(user, "access", time.Duration(s.config.AccessTokenTTL)*time.Minute)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	refresh, err := s.generateToken(user, "refresh", time.Duration(s.config.RefreshTokenTTL)*time.Hour)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"access":  access,
		"refresh": refresh,
	})
}

// Refresh handles POST /api/users/refresh. A valid refresh token yields a new
// access token with claims re-derived from the current user row.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	claims, err := s.parseToken(req.Refresh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired refresh token"))
	}
	if typ, _ := claims["type"].(string); typ != "refresh" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Token is not a refresh token"))
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid subject claim"))
	}

	user, err := s.userRepo.GetByID(c.UserContext(), uint(userID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	access, err := s.generateToken(user, "access", time.Duration(s.config.AccessTokenTTL)*time.Minute)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"access": access})
}

// Logout handles POST /api/users/logout. The access token's JTI is
// blacklisted in Redis until the token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Authorization header required"))
	}

	claims, err := s.parseToken(parts[1])
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	jti, _ := claims["jti"].(string)
	if jti != "" {
		if rdb := cache.GetClient(); rdb != nil {
			ttl := time.Hour
			if exp, ok := claims["exp"].(float64); ok {
				if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
					ttl = remaining
				}
			}
			if err := rdb.Set(c.UserContext(), cache.JTIBlacklistKey(jti), "1", ttl).Err(); err != nil {
				return models.RespondWithError(c, fiber.StatusInternalServerError,
					models.NewInternalError(err))
			}
		}
	}

	return c.JSON(fiber.Map{"detail": "logged out"})
}

// generateToken creates a signed JWT for the user. Both token types carry the
// username and avatar claims so clients can render without a profile fetch.
func (s *Server) generateToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"avatar":   user.Avatar,
		"type":     tokenType,
		"iss":      "ripple-api",
		"aud":      "ripple-client",
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// parseToken validates the signature and expiry and returns the claims.
func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
