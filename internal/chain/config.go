// Package chain wraps every blockchain-facing call behind narrow, named
// operations: submit a swap, submit a token creation, send and confirm a
// transfer. Nothing outside this package builds transactions.
package chain

import (
	"os"
	"strconv"
	"time"
)

// Config holds chain client configuration
type Config struct {
	RPCURL     string
	WalletKey  string // base58-encoded private key
	JupiterURL string
	PinningURL string
	PinningKey string

	// Confirmation polling is a configuration surface, not a constant:
	// retries x interval bounds how long one executor call can hang.
	ConfirmRetries  int
	ConfirmInterval time.Duration
}

// LoadConfig loads chain configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		RPCURL:          getEnv("CHAIN_RPC_URL", "https://api.mainnet-beta.solana.com"),
		WalletKey:       getEnv("CHAIN_WALLET_KEY", ""),
		JupiterURL:      getEnv("JUPITER_BASE_URL", "https://quote-api.jup.ag"),
		PinningURL:      getEnv("PINNING_BASE_URL", "https://api.pinata.cloud"),
		PinningKey:      getEnv("PINNING_API_KEY", ""),
		ConfirmRetries:  getEnvInt("CHAIN_CONFIRM_RETRIES", 30),
		ConfirmInterval: getEnvDuration("CHAIN_CONFIRM_INTERVAL", 2*time.Second),
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
