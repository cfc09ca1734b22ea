// Command main runs the database seeder for Ripple.
package main

import (
	"flag"
	"log"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/seed"
)

func main() {
	numUsers := flag.Int("users", seed.DefaultOptions.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", seed.DefaultOptions.NumPosts, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Printf("Seeding: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
