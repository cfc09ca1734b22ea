// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// DefaultOptions is the seed profile used when no flags are given.
var DefaultOptions = Options{
	NumUsers:    50,
	NumPosts:    200,
	ShouldClean: true,
}

// Clean removes all seeded data. Tables are wiped child-first so foreign
// keys never block the delete.
func Clean(db *gorm.DB) error {
	tables := []interface{}{
		&models.ChatMessage{},
		&models.Notification{},
		&models.Comment{},
		&models.Share{},
		&models.Like{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clean %T: %w", table, err)
		}
	}
	return nil
}

// Run populates the database with a connected social mesh: users, a follow
// graph, posts with like/share/comment activity, the notifications that
// activity would have produced, and chat history between mutual followers.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		log.Println("Cleaning database...")
		if err := Clean(db); err != nil {
			return err
		}
	}

	f := NewFactory(db)

	log.Printf("Creating %d users...", opts.NumUsers)
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) < 2 {
		return nil
	}

	log.Println("Building follow graph...")
	for _, follower := range users {
		edges := 2 + f.rng.Intn(6)
		for i := 0; i < edges; i++ {
			followee := users[f.rng.Intn(len(users))]
			if err := f.CreateFollow(follower, followee); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
		}
	}

	log.Printf("Creating %d posts with activity...", opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}

		likes := f.rng.Intn(6)
		for j := 0; j < likes; j++ {
			actor := users[f.rng.Intn(len(users))]
			if actor.ID == author.ID {
				continue
			}
			if err := f.CreateLike(actor, post); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			if err := f.CreateNotification(models.NotiTypeLike, actor, author, &post.ID, f.rng.Intn(2) == 0); err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
		}

		if f.rng.Intn(3) == 0 {
			actor := users[f.rng.Intn(len(users))]
			if actor.ID != author.ID {
				if err := f.CreateShare(actor, post); err != nil {
					return fmt.Errorf("create share: %w", err)
				}
				if err := f.CreateNotification(models.NotiTypeShare, actor, author, &post.ID, f.rng.Intn(2) == 0); err != nil {
					return fmt.Errorf("create notification: %w", err)
				}
			}
		}

		comments := f.rng.Intn(4)
		for j := 0; j < comments; j++ {
			actor := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(actor, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			if actor.ID != author.ID {
				if err := f.CreateNotification(models.NotiTypeComment, actor, author, &post.ID, f.rng.Intn(2) == 0); err != nil {
					return fmt.Errorf("create notification: %w", err)
				}
			}
		}
	}

	log.Println("Creating chat history...")
	conversations := opts.NumUsers / 2
	for i := 0; i < conversations; i++ {
		a := users[f.rng.Intn(len(users))]
		b := users[f.rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		exchanges := 2 + f.rng.Intn(8)
		for j := 0; j < exchanges; j++ {
			from, to := a, b
			if j%2 == 1 {
				from, to = b, a
			}
			if _, err := f.CreateChatMessage(from, to); err != nil {
				return fmt.Errorf("create chat message: %w", err)
			}
		}
	}

	log.Println("Seeding complete")
	return nil
}
