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
	RedisURL      string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	PosthogAPIKey string

	// Cache
	BalanceCacheTTL time.Duration

	// Ledger policy. These are business knobs, not constants: the extension
	// cap and grace period in particular were inconsistent across historical
	// policy documents, so they are configured explicitly.
	InterestCapMonths    int
	ExtensionMaxMonths   int
	ExtensionFeeFallback int64 // Per-month fee when a loan predates per-loan fees, whole dollars
	OverpaymentTolerance int64 // Whole dollars over the balance a payment may exceed
	ReversalWindow       time.Duration
	ReversalDailyCap     int
	GracePeriodDays      int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("BALANCE_CACHE_TTL", "30s")
	viper.SetDefault("INTEREST_CAP_MONTHS", 6)
	viper.SetDefault("EXTENSION_MAX_MONTHS", 3)
	viper.SetDefault("EXTENSION_FEE_FALLBACK", 10)
	viper.SetDefault("OVERPAYMENT_TOLERANCE", 5)
	viper.SetDefault("REVERSAL_WINDOW", "24h")
	viper.SetDefault("REVERSAL_DAILY_CAP", 3)
	viper.SetDefault("GRACE_PERIOD_DAYS", 30)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set; cache invalidation will be a no-op.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	cacheTTLStr := viper.GetString("BALANCE_CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = 30 * time.Second
		log.Printf("Warning: Invalid value for BALANCE_CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL)
	}
	cfg.BalanceCacheTTL = cacheTTL

	cfg.InterestCapMonths = viper.GetInt("INTEREST_CAP_MONTHS")
	if cfg.InterestCapMonths <= 0 {
		cfg.InterestCapMonths = 6
		log.Println("Warning: INTEREST_CAP_MONTHS must be positive. Defaulting to 6.")
	}

	cfg.ExtensionMaxMonths = viper.GetInt("EXTENSION_MAX_MONTHS")
	if cfg.ExtensionMaxMonths <= 0 {
		cfg.ExtensionMaxMonths = 3
		log.Println("Warning: EXTENSION_MAX_MONTHS must be positive. Defaulting to 3.")
	}

	cfg.ExtensionFeeFallback = viper.GetInt64("EXTENSION_FEE_FALLBACK")
	cfg.OverpaymentTolerance = viper.GetInt64("OVERPAYMENT_TOLERANCE")

	reversalWindowStr := viper.GetString("REVERSAL_WINDOW")
	reversalWindow, err := time.ParseDuration(reversalWindowStr)
	if err != nil {
		reversalWindow = 24 * time.Hour
		log.Printf("Warning: Invalid value for REVERSAL_WINDOW ('%s'). Defaulting to %s.\n", reversalWindowStr, reversalWindow)
	}
	cfg.ReversalWindow = reversalWindow

	cfg.ReversalDailyCap = viper.GetInt("REVERSAL_DAILY_CAP")
	if cfg.ReversalDailyCap <= 0 {
		cfg.ReversalDailyCap = 3
		log.Println("Warning: REVERSAL_DAILY_CAP must be positive. Defaulting to 3.")
	}

	cfg.GracePeriodDays = viper.GetInt("GRACE_PERIOD_DAYS")
	if cfg.GracePeriodDays <= 0 {
		cfg.GracePeriodDays = 30
		log.Println("Warning: GRACE_PERIOD_DAYS must be positive. Defaulting to 30.")
	}

	return cfg, nil
}
