package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Event publishing
	KafkaBrokers []string
	KafkaTopic   string

	// Distributed account locking. Empty address falls back to in-process locks.
	RedisAddr     string
	RedisPassword string

	// Product catalog service
	ProductServiceURL string

	// Deposit engine parameters
	PrematurePenaltyRate  decimal.Decimal // percentage points off the rate on early closure
	RedemptionPenaltyRate decimal.Decimal // percent of earned interest forfeited on premature redemption
	TDSThreshold          decimal.Decimal // interest exemption limit for tax withholding
	AccrualWorkers        int

	// Rate limiting, in ulule/limiter notation, e.g. "100-M"
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
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "fd-deposit-core")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "fd.deposit.events")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("PRODUCT_SERVICE_URL", "")
	viper.SetDefault("PREMATURE_PENALTY_RATE", "2.0")
	viper.SetDefault("REDEMPTION_PENALTY_RATE", "0.50")
	viper.SetDefault("TDS_THRESHOLD", "40000")
	viper.SetDefault("ACCRUAL_WORKERS", 8)
	viper.SetDefault("RATE_LIMIT", "100-M")

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

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	} else {
		log.Println("Warning: KAFKA_BROKERS not set. Domain events will be logged, not published.")
	}
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Account locks are process-local only.")
	}

	cfg.ProductServiceURL = viper.GetString("PRODUCT_SERVICE_URL")
	if cfg.ProductServiceURL == "" {
		log.Println("Warning: PRODUCT_SERVICE_URL not set. Falling back to the built-in product catalog.")
	}

	cfg.PrematurePenaltyRate = mustDecimal("PREMATURE_PENALTY_RATE", "2.0")
	cfg.RedemptionPenaltyRate = mustDecimal("REDEMPTION_PENALTY_RATE", "0.50")
	cfg.TDSThreshold = mustDecimal("TDS_THRESHOLD", "40000")

	cfg.AccrualWorkers = viper.GetInt("ACCRUAL_WORKERS")
	if cfg.AccrualWorkers < 1 {
		cfg.AccrualWorkers = 1
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

// mustDecimal reads a decimal setting, falling back to the default on a
// malformed value rather than failing startup.
func mustDecimal(key, fallback string) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}
