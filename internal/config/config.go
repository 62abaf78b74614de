package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// minJWTSecretLen is the shortest secret accepted at startup. Shorter
// secrets make HS256 tokens trivially brute-forceable.
const minJWTSecretLen = 32

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Quotes   QuotesConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      string
	Host      string
	StaticDir string
}

// StorageConfig selects the ledger backing store
type StorageConfig struct {
	Backend string // "postgres" or "memory"
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TradesTopic   string
	ImportTopic   string
	ConsumerGroup string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// QuotesConfig holds quote-pipeline tuning
type QuotesConfig struct {
	SourceOrder    []string
	MaxAttempts    int
	RetryBaseDelay time.Duration
	SourceTimeout  time.Duration
	BatchDelay     time.Duration
	CacheTTL       time.Duration
}

// AuthConfig holds token settings. JWTSecret has no default on
// purpose; Validate rejects a missing or short secret.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level    string
	Pretty   bool
	FilePath string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      getEnv("SERVER_PORT", "8085"),
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			StaticDir: getEnv("STATIC_DIR", "./web"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "postgres"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "stockfolio"),
			Password: getEnv("DB_PASSWORD", "stockfolio"),
			DBName:   getEnv("DB_NAME", "stockfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
			Brokers:       parseBrokers(getEnv("KAFKA_BROKERS", "localhost:19092")),
			TradesTopic:   getEnv("KAFKA_TRADES_TOPIC", "portfolio.trades"),
			ImportTopic:   getEnv("KAFKA_IMPORT_TOPIC", "portfolio.trades.imported"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "stockfolio"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Quotes: QuotesConfig{
			SourceOrder:    parseList(getEnv("QUOTE_SOURCES", "yahoo,nse,bse")),
			MaxAttempts:    getEnvInt("QUOTE_MAX_ATTEMPTS", 3),
			RetryBaseDelay: getEnvDuration("QUOTE_RETRY_BASE_DELAY", 500*time.Millisecond),
			SourceTimeout:  getEnvDuration("QUOTE_SOURCE_TIMEOUT", 15*time.Second),
			BatchDelay:     getEnvDuration("QUOTE_BATCH_DELAY", time.Second),
			CacheTTL:       getEnvDuration("QUOTE_CACHE_TTL", time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			TokenTTL:  getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Pretty:   getEnvBool("LOG_PRETTY", false),
			FilePath: getEnv("LOG_FILE", ""),
		},
	}
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required and has no default")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes, got %d", minJWTSecretLen, len(c.Auth.JWTSecret))
	}
	switch c.Storage.Backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want postgres or memory)", c.Storage.Backend)
	}
	if c.Quotes.MaxAttempts < 1 {
		return fmt.Errorf("QUOTE_MAX_ATTEMPTS must be at least 1, got %d", c.Quotes.MaxAttempts)
	}
	if len(c.Quotes.SourceOrder) == 0 {
		return fmt.Errorf("QUOTE_SOURCES must name at least one source")
	}
	for _, name := range c.Quotes.SourceOrder {
		switch name {
		case "yahoo", "nse", "bse":
		default:
			return fmt.Errorf("unknown quote source %q in QUOTE_SOURCES", name)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must be set when KAFKA_ENABLED is true")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	return parseList(brokers)
}

func parseList(csv string) []string {
	parts := strings.Split(csv, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
