package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultFipeBaseURL = "https://parallelum.com.br/fipe/api/v1"

type Config struct {
	ListenAddr    string
	TLSListenAddr string
	TLSSelfSigned bool
	LogLevel      string

	FipeBaseURL   string
	FipeAPIKey    string
	FipeTimeout   time.Duration
	FipeRateLimit float64
	CacheTTL      time.Duration
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	RateLimit       int
	RateLimitWindow time.Duration

	JWTSecret        string
	HistoryRetention time.Duration
	HistoryLimit     int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string
}

// Load reads a .env file when one exists, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		TLSListenAddr:    os.Getenv("TLS_LISTEN_ADDR"),
		TLSSelfSigned:    getEnvBool("TLS_SELF_SIGNED", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		FipeBaseURL:      strings.TrimRight(getEnv("FIPE_BASE_URL", DefaultFipeBaseURL), "/"),
		FipeAPIKey:       os.Getenv("API_KEY"),
		FipeTimeout:      getEnvDuration("FIPE_TIMEOUT", 30*time.Second),
		FipeRateLimit:    getEnvFloat("FIPE_RATE_LIMIT", 0),
		CacheTTL:         getEnvDuration("CACHE_TTL", 24*time.Hour),
		CacheBackend:     strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPrefix:      getEnv("REDIS_PREFIX", "fipe"),
		RateLimit:        getEnvInt("RATE_LIMIT", 100),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		JWTSecret:        os.Getenv("AUTH_JWT_SECRET"),
		HistoryRetention: getEnvDuration("HISTORY_RETENTION", 90*24*time.Hour),
		HistoryLimit:     getEnvInt("HISTORY_LIMIT", 3),
		S3Bucket:         getEnv("S3_BUCKET", "listing-photos"),
		S3Region:         getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:      os.Getenv("AWS_SECRET_ACCESS_KEY"),
		PostgresUser:     getEnv("POSTGRES_USER", "fipe"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase: getEnv("POSTGRES_DATABASE", "fipe"),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if !strings.HasPrefix(c.FipeBaseURL, "http://") && !strings.HasPrefix(c.FipeBaseURL, "https://") {
		errs = append(errs, "FIPE_BASE_URL must be an absolute http(s) URL")
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, "CACHE_TTL must be > 0")
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		errs = append(errs, "CACHE_BACKEND must be memory or redis")
	}
	if c.FipeRateLimit < 0 {
		errs = append(errs, "FIPE_RATE_LIMIT must be >= 0")
	}
	if c.RateLimit <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, "RATE_LIMIT and RATE_LIMIT_WINDOW must be > 0")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "AUTH_JWT_SECRET must be at least 32 chars")
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, "HISTORY_LIMIT must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// HasS3 reports whether photo storage credentials are configured.
func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
