package main

import (
	"flag"
	"log"
	"time"

	"solmentions/internal/auth"
	"solmentions/internal/database"
	"solmentions/internal/models"
	"solmentions/internal/store"

	"github.com/joho/godotenv"
)

// Seeds the database with a handful of sample posts so the pipeline can be
// exercised locally, and optionally mints a service token for a scraper.

func main() {
	var issueToken = flag.String("issue-token", "", "Issue a service token for the named collaborator and exit")
	var tokenTTL = flag.Duration("token-ttl", 365*24*time.Hour, "Service token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if *issueToken != "" {
		token, err := auth.NewTokenVerifier().IssueServiceToken(*issueToken, *tokenTTL)
		if err != nil {
			log.Fatal("Failed to issue token:", err)
		}
		log.Printf("Service token for %s:\n%s", *issueToken, token)
		return
	}

	dbConfig := database.LoadConfig()
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	log.Println("🌱 Seeding sample posts...")

	posts := store.NewPostStore(database.DB)
	samples := []models.Post{
		{
			ID:              "1830000000000000001",
			Author:          "degen_dave",
			Content:         "hey can you create a giveaway for 3 people for 0.05 SOL that ends in 2 hours",
			Link:            "https://x.com/degen_dave/status/1830000000000000001",
			IsDirectMention: true,
		},
		{
			ID:              "1830000000000000002",
			Author:          "swapper_sue",
			Content:         "please swap 5 SOL for USDC now",
			Link:            "https://x.com/swapper_sue/status/1830000000000000002",
			IsDirectMention: true,
		},
		{
			ID:      "1830000000000000003",
			Author:  "random_rita",
			Content: "just vibing today",
			Link:    "https://x.com/random_rita/status/1830000000000000003",
			IsReply: true,
		},
	}

	for i := range samples {
		if err := posts.Insert(&samples[i]); err != nil {
			log.Printf("❌ Failed to seed post %s: %v", samples[i].ID, err)
			continue
		}
		log.Printf("Seeded post %s by @%s", samples[i].ID, samples[i].Author)
	}

	log.Println("✅ Seeding complete")
}
