package main

import (
	"log"

	"solmentions/internal/database"

	"github.com/joho/godotenv"
)

// Applies schema migrations and exits. Safe to run repeatedly.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(database.LoadConfig()); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	log.Println("🔄 Applying schema migrations...")

	if err := database.Migrate(); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("✅ Done")
}
