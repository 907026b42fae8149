package database

import (
	"fmt"
	"log"
	"os"
	"strings"

	"solmentions/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LoadConfig loads database configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "solmentions"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// Connect opens the PostgreSQL connection and stores the handle in DB.
func Connect(config *Config) error {
	parts := []string{
		"host=" + config.Host,
		"port=" + config.Port,
		"user=" + config.User,
		"dbname=" + config.DBName,
		"sslmode=" + config.SSLMode,
	}
	// An empty password parameter confuses some pg setups, so it is only
	// included when set.
	if config.Password != "" {
		parts = append(parts, "password="+config.Password)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(strings.Join(parts, " ")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Connected to %s at %s:%s", config.DBName, config.Host, config.Port)
	return nil
}

// Migrate brings the schema up to date for all registered models.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := models.AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Schema is up to date")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
