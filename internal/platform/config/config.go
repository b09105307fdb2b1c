package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// StoreTimeout bounds every ledger store write; expiry surfaces as a
	// timeout error to the caller instead of an open-ended hang.
	StoreTimeout time.Duration

	// LinkageRetryInterval is how often the outbox worker re-drives failed
	// back-reference writes.
	LinkageRetryInterval time.Duration

	// RateLimit is a ulule/limiter formatted rate (e.g. "100-M").
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("STORE_TIMEOUT", "15s")
	viper.SetDefault("LINKAGE_RETRY_INTERVAL", "30s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	storeTimeoutStr := viper.GetString("STORE_TIMEOUT")
	storeTimeout, err := time.ParseDuration(storeTimeoutStr)
	if err != nil || storeTimeout <= 0 {
		storeTimeout = 15 * time.Second
		log.Printf("Warning: Invalid value for STORE_TIMEOUT ('%s'). Defaulting to %s.\n", storeTimeoutStr, storeTimeout)
	}
	cfg.StoreTimeout = storeTimeout

	retryIntervalStr := viper.GetString("LINKAGE_RETRY_INTERVAL")
	retryInterval, err := time.ParseDuration(retryIntervalStr)
	if err != nil || retryInterval <= 0 {
		retryInterval = 30 * time.Second
		log.Printf("Warning: Invalid value for LINKAGE_RETRY_INTERVAL ('%s'). Defaulting to %s.\n", retryIntervalStr, retryInterval)
	}
	cfg.LinkageRetryInterval = retryInterval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
