package models

import "time"

// Follow is a directed edge in the follow graph: follower follows followee.
// The pair is unique; direction matters and no reverse edge is implied.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
