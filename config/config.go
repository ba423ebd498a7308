package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// Config holds all app configuration
type Config struct {
	// Server
	HTTPPort string

	// Portfolio
	BaseToken      string
	ReferenceToken string
	TrackedTokens  []string
	TargetBasePct  float64
	Tolerance      float64
	ProbeAmount    float64
	CycleInterval  time.Duration

	// DEX
	DexBaseURL     string
	PrivateKeyPath string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ClickHouse
	ClickhouseAddr     string
	ClickhouseUsername string
	ClickhousePassword string
	ClickhouseTimeout  int

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads configuration from environment variables, with optional .env file
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := &Config{
		// Server
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		// Portfolio
		BaseToken:      getEnv("BASE_TOKEN", "GALA"),
		ReferenceToken: getEnv("REFERENCE_TOKEN", "GUSDT"),
		TrackedTokens:  getEnvAsSlice("TRACKED_TOKENS", []string{"GWBTC", "GWETH", "GSOL", "GWTRX", "GOSMI"}, ","),
		TargetBasePct:  getEnvAsFloat("TARGET_BASE_PCT", 75),
		Tolerance:      getEnvAsFloat("REBALANCE_TOLERANCE", 0.05),
		ProbeAmount:    getEnvAsFloat("PROBE_AMOUNT", 1000),
		CycleInterval:  time.Duration(getEnvAsInt("CYCLE_INTERVAL_SECONDS", 3600)) * time.Second,

		// DEX
		DexBaseURL:     getEnv("DEX_BASE_URL", "https://dex-backend-prod1.defi.gala.com"),
		PrivateKeyPath: getEnv("PRIVATE_KEY_PATH", ""),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// ClickHouse
		ClickhouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickhouseUsername: getEnv("CLICKHOUSE_USERNAME", ""),
		ClickhousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickhouseTimeout:  getEnvAsInt("CLICKHOUSE_TIMEOUT", 10),

		// Kafka: empty brokers means trade publishing is disabled
		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil, ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "trades"),
	}

	return cfg
}

// Validate rejects configurations the rebalancer cannot run with.
func (c *Config) Validate() error {
	if c.BaseToken == "" || c.ReferenceToken == "" {
		return &model.ConfigurationError{Reason: "base and reference tokens must be set"}
	}
	if c.BaseToken == c.ReferenceToken {
		return &model.ConfigurationError{Reason: "base and reference tokens must differ"}
	}
	if len(c.TrackedTokens) == 0 {
		return &model.ConfigurationError{Reason: "at least one tracked token is required"}
	}
	for _, token := range c.TrackedTokens {
		if token == c.BaseToken {
			return &model.ConfigurationError{Reason: "the base token cannot be tracked"}
		}
	}
	if c.TargetBasePct < 0 || c.TargetBasePct > 100 {
		return &model.ConfigurationError{Reason: "target base percentage must be between 0 and 100"}
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return &model.ConfigurationError{Reason: "tolerance must be between 0 and 1"}
	}
	if c.ProbeAmount <= 0 {
		return &model.ConfigurationError{Reason: "probe amount must be positive"}
	}
	if c.PrivateKeyPath == "" {
		return &model.ConfigurationError{Reason: "a private key path is required"}
	}
	return nil
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string, sep string) []string {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultVal
	}
	parts := strings.Split(valStr, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
