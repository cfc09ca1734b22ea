package repository

import (
	"testing"

	"ripple/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Share{},
		&models.Comment{},
		&models.Notification{},
		&models.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}
