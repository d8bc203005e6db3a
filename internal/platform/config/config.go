package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Batch store TTL settings. The owner index lives OwnerIndexTTLFactor
	// times longer than the batch payload.
	BatchTTL            time.Duration
	OwnerIndexTTLFactor int

	// External collaborators.
	CRMBaseURL      string
	CRMAPIKey       string
	CRMTimeout      time.Duration
	RendererBaseURL string
	RendererTimeout time.Duration

	ProcessConcurrency int
	RateLimit          string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BATCH_TTL", "1h")
	viper.SetDefault("OWNER_INDEX_TTL_FACTOR", 24)
	viper.SetDefault("CRM_BASE_URL", "")
	viper.SetDefault("CRM_API_KEY", "")
	viper.SetDefault("CRM_TIMEOUT", "15s")
	viper.SetDefault("RENDERER_BASE_URL", "")
	viper.SetDefault("RENDERER_TIMEOUT", "30s")
	viper.SetDefault("PROCESS_CONCURRENCY", 4)
	viper.SetDefault("RATE_LIMIT", "30-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. The in-memory batch store will be used.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	batchTTLStr := viper.GetString("BATCH_TTL")
	batchTTL, err := time.ParseDuration(batchTTLStr)
	if err != nil {
		batchTTL = time.Hour
		log.Printf("Warning: Invalid value for BATCH_TTL ('%s'). Defaulting to %s.\n", batchTTLStr, batchTTL)
	}
	cfg.BatchTTL = batchTTL

	cfg.OwnerIndexTTLFactor = viper.GetInt("OWNER_INDEX_TTL_FACTOR")
	if cfg.OwnerIndexTTLFactor <= 0 {
		cfg.OwnerIndexTTLFactor = 24
		log.Printf("Warning: OWNER_INDEX_TTL_FACTOR must be positive. Defaulting to %d.\n", cfg.OwnerIndexTTLFactor)
	}

	cfg.CRMBaseURL = viper.GetString("CRM_BASE_URL")
	cfg.CRMAPIKey = viper.GetString("CRM_API_KEY")
	cfg.CRMTimeout = parseDurationOr(viper.GetString("CRM_TIMEOUT"), 15*time.Second, "CRM_TIMEOUT")
	cfg.RendererBaseURL = viper.GetString("RENDERER_BASE_URL")
	cfg.RendererTimeout = parseDurationOr(viper.GetString("RENDERER_TIMEOUT"), 30*time.Second, "RENDERER_TIMEOUT")

	cfg.ProcessConcurrency = viper.GetInt("PROCESS_CONCURRENCY")
	if cfg.ProcessConcurrency <= 0 {
		cfg.ProcessConcurrency = 4
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

func parseDurationOr(s string, fallback time.Duration, key string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, s, fallback)
		return fallback
	}
	return d
}
