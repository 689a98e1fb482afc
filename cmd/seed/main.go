// Command seed populates the messenger database with fake data.
package main

import (
	"context"
	"flag"
	"log"

	"messenger/internal/config"
	"messenger/internal/database"
	"messenger/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	numChats := flag.Int("chats", 10, "Number of chats to create")
	numMessages := flag.Int("messages", 25, "Messages per chat, including the opening one")
	blockRatio := flag.Float64("block-ratio", 0.2, "Share of users that block someone")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 picks one from the clock")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d chats, %d messages per chat, clean=%v\n", *numUsers, *numChats, *numMessages, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, *randSeed)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(context.Background(), seed.Options{
		Users:           *numUsers,
		Chats:           *numChats,
		MessagesPerChat: *numMessages,
		BlockRatio:      *blockRatio,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d chats, %d messages, %d blocks.", len(res.Users), len(res.Chats), res.Messages, res.Blocks)
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
