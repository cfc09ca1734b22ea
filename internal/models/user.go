// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Default image references resolved by the external static file host.
const (
	DefaultAvatar     = "profiles/default/avatar.png"
	DefaultCoverImage = "profiles/default/cover.png"
)

// User represents a user in the Ripple application.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"uniqueIndex;size:200;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:200;not null" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Name       string         `gorm:"size:255" json:"name"`
	Bio        string         `gorm:"size:255" json:"bio"`
	Avatar     string         `json:"avatar"`
	CoverImage string         `json:"cover_image"`
	IsStaff    bool           `gorm:"default:false" json:"is_staff"`
	CreatedAt  time.Time      `json:"date_joined"`
	UpdatedAt  time.Time      `json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Posts      []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// BeforeCreate fills in the default image references when none are supplied.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	if u.CoverImage == "" {
		u.CoverImage = DefaultCoverImage
	}
	return nil
}

// UserSummary is the minimal public projection of a user used in follow lists
// and search results.
type UserSummary struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Profile is the full public projection of a user, including live follow-graph
// counts relative to the requesting user.
type Profile struct {
	ID         uint          `json:"id"`
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	Name       string        `json:"name"`
	Bio        string        `json:"bio"`
	Avatar     string        `json:"avatar"`
	CoverImage string        `json:"cover_image"`
	DateJoined time.Time     `json:"date_joined"`
	IFollow    bool          `json:"i_follow"`
	Followers  int64         `json:"followers"`
	Following  int64         `json:"following"`
	Followed   []UserSummary `json:"followed_usernames"`
}

// SearchResult is the projection returned by user search and recommendations.
type SearchResult struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	IFollow  bool   `json:"i_follow"`
}
