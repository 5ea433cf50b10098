package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int32
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string

	// HomeCurrency is the reporting currency every ledger entry is stored in.
	HomeCurrency string

	// Exchange rates
	RateCacheTTL          time.Duration
	RateCacheCleanup      time.Duration
	ECBAPIBaseURL         string
	RateFetchLookbackDays int

	// JWTSecret verifies bearer tokens issued by the external auth service.
	// Empty means every request acts as the system user.
	JWTSecret string
	JWTIssuer string

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("HOME_CURRENCY", "USD")
	viper.SetDefault("RATE_CACHE_TTL", "10m")
	viper.SetDefault("RATE_CACHE_CLEANUP", "20m")
	viper.SetDefault("ECB_API_BASE_URL", "https://data-api.ecb.europa.eu/service/data/EXR")
	viper.SetDefault("RATE_FETCH_LOOKBACK_DAYS", 7)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.DBMaxConns = viper.GetInt32("DB_MAX_CONNS")
	if cfg.DBMaxConns <= 0 {
		log.Printf("Warning: Invalid value for DB_MAX_CONNS (%d). Defaulting to 10.\n", cfg.DBMaxConns)
		cfg.DBMaxConns = 10
	}

	cfg.HomeCurrency = strings.ToUpper(strings.TrimSpace(viper.GetString("HOME_CURRENCY")))
	if len(cfg.HomeCurrency) != 3 {
		log.Printf("Warning: Invalid value for HOME_CURRENCY ('%s'). Defaulting to USD.\n", cfg.HomeCurrency)
		cfg.HomeCurrency = "USD"
	}

	// RATE_CACHE_TTL=0 turns the resolver cache off, for deployments with several writers.
	cfg.RateCacheTTL = durationOrDefault("RATE_CACHE_TTL", 10*time.Minute, true)
	cfg.RateCacheCleanup = durationOrDefault("RATE_CACHE_CLEANUP", 20*time.Minute, false)

	cfg.RateFetchLookbackDays = viper.GetInt("RATE_FETCH_LOOKBACK_DAYS")
	if cfg.RateFetchLookbackDays < 0 {
		log.Printf("Warning: Invalid value for RATE_FETCH_LOOKBACK_DAYS (%d). Defaulting to 7.\n", cfg.RateFetchLookbackDays)
		cfg.RateFetchLookbackDays = 7
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. Requests will run as the system user.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.ECBAPIBaseURL = viper.GetString("ECB_API_BASE_URL")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration, allowZero bool) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err == nil && d == 0 && allowZero {
		return 0
	}
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
