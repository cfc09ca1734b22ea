// Package bootstrap establishes runtime dependencies shared by the server
// and tooling commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and, in development,
// ensures the configured staff account exists. The Redis client is nil when
// Redis is unreachable; the server degrades to single-instance delivery.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevStaffAccount(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff account: %w", err)
	}

	return db, r, nil
}

// ensureDevStaffAccount creates or repairs the ID-1 staff user so post
// moderation can be exercised locally without manual SQL.
func ensureDevStaffAccount(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapStaff {
		return nil
	}

	username := strings.TrimSpace(cfg.DevStaffUsername)
	if username == "" {
		username = "ripple_staff"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevStaffEmail))
	if email == "" {
		email = "staff@ripple.local"
	}
	password := cfg.DevStaffPassword
	if password == "" {
		return fmt.Errorf("DEV_STAFF_PASSWORD must be set when DEV_BOOTSTRAP_STAFF is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash staff password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var staff models.User
		findErr := tx.First(&staff, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			staff = models.User{
				ID:       1,
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				IsStaff:  true,
			}
			if err := tx.Create(&staff).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{"is_staff": true}
			if cfg.DevStaffForceRefresh {
				updates["username"] = username
				updates["email"] = email
				updates["password"] = string(hashedPassword)
			}
			if err := tx.Model(&models.User{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Ensure the users ID sequence is not behind the explicit ID insert.
		// PostgreSQL only.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	log.Printf("development staff account bootstrap ensured for user ID 1 (%s)", email)
	return nil
}
