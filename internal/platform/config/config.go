package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// External collaborators
	RedisURL           string
	CalendarAPIBaseURL string
	CalendarAPITimeout time.Duration
	BudgetAPIBaseURL   string
	BudgetAPITimeout   time.Duration

	// Engine parameters
	DefaultSchool      string
	NisabFallbackValue decimal.Decimal
	AssetGrowthRate    decimal.Decimal

	// Rate limiting, e.g. "100-M" for 100 requests per minute
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
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("CALENDAR_API_BASE_URL", "")
	viper.SetDefault("CALENDAR_API_TIMEOUT", "5s")
	viper.SetDefault("BUDGET_API_BASE_URL", "")
	viper.SetDefault("BUDGET_API_TIMEOUT", "10s")
	viper.SetDefault("DEFAULT_SCHOOL", "HANAFI")
	viper.SetDefault("NISAB_FALLBACK_VALUE", "150000")
	viper.SetDefault("ASSET_GROWTH_RATE", "0.05")
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
	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.CalendarAPIBaseURL = viper.GetString("CALENDAR_API_BASE_URL")
	if cfg.CalendarAPIBaseURL == "" {
		log.Println("Warning: CALENDAR_API_BASE_URL not set. Hijri conversion will be unavailable.")
	}
	calendarTimeout, err := time.ParseDuration(viper.GetString("CALENDAR_API_TIMEOUT"))
	if err != nil {
		calendarTimeout = 5 * time.Second
		log.Printf("Warning: Invalid CALENDAR_API_TIMEOUT. Defaulting to %s.\n", calendarTimeout)
	}
	cfg.CalendarAPITimeout = calendarTimeout

	cfg.BudgetAPIBaseURL = viper.GetString("BUDGET_API_BASE_URL")
	if cfg.BudgetAPIBaseURL == "" {
		log.Println("Warning: BUDGET_API_BASE_URL not set. Budget sync will be unavailable.")
	}
	budgetTimeout, err := time.ParseDuration(viper.GetString("BUDGET_API_TIMEOUT"))
	if err != nil {
		budgetTimeout = 10 * time.Second
		log.Printf("Warning: Invalid BUDGET_API_TIMEOUT. Defaulting to %s.\n", budgetTimeout)
	}
	cfg.BudgetAPITimeout = budgetTimeout

	cfg.DefaultSchool = viper.GetString("DEFAULT_SCHOOL")

	fallback, err := decimal.NewFromString(viper.GetString("NISAB_FALLBACK_VALUE"))
	if err != nil {
		fallback = decimal.NewFromInt(150000)
		log.Printf("Warning: Invalid NISAB_FALLBACK_VALUE. Defaulting to %s.\n", fallback)
	}
	cfg.NisabFallbackValue = fallback

	growth, err := decimal.NewFromString(viper.GetString("ASSET_GROWTH_RATE"))
	if err != nil {
		growth = decimal.NewFromFloat(0.05)
		log.Printf("Warning: Invalid ASSET_GROWTH_RATE. Defaulting to %s.\n", growth)
	}
	cfg.AssetGrowthRate = growth

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
