package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"svacron-metals/internal/format"
	"svacron-metals/internal/services/metaldata"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Metals  MetalsConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	HTTPPort    int
	Environment string
	PublicURL   string
}

type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

type RedisConfig struct {
	Host          string
	Port          int
	Password      string
	DB            int
	PubSubChannel string
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type CacheConfig struct {
	Backend  string
	MetalTTL time.Duration
}

type MetalsConfig struct {
	OnFetchFailure  string
	Locale          string
	ProfilesFile    string
	RefreshInterval time.Duration
}

type LoggingConfig struct {
	Level        string
	Format       string
	File         string
	FileMaxMB    int
	FileBackups  int
	FileCompress bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:    getEnvInt("HTTP_PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			PublicURL:   getEnv("PUBLIC_URL", "https://metals.svacron.com"),
		},
		API: APIConfig{
			BaseURL:   getEnv("API_BASE", metaldata.DefaultBaseURL),
			Timeout:   parseDuration(getEnv("API_TIMEOUT", "10s"), metaldata.DefaultTimeout),
			RateLimit: getEnvFloat("API_RATE_LIMIT", metaldata.DefaultRateLimit),
			RateBurst: getEnvInt("API_RATE_BURST", 5),
		},
		Redis: RedisConfig{
			Host:          getEnv("REDIS_HOST", "localhost"),
			Port:          getEnvInt("REDIS_PORT", 6379),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			PubSubChannel: getEnv("REDIS_PUBSUB_CHANNEL", "svacron:metals:updates"),
		},
		Cache: CacheConfig{
			Backend:  getEnv("CACHE_BACKEND", CacheMemory),
			MetalTTL: time.Duration(getEnvInt("CACHE_TTL_METAL", 300)) * time.Second,
		},
		Metals: MetalsConfig{
			OnFetchFailure:  getEnv("ON_FETCH_FAILURE", string(metaldata.FailPropagate)),
			Locale:          getEnv("LOCALE", string(format.LocaleIndia)),
			ProfilesFile:    getEnv("METAL_PROFILES_FILE", "config/metals.yaml"),
			RefreshInterval: parseDuration(getEnv("REFRESH_INTERVAL", "5m"), 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "json"),
			File:         getEnv("LOG_FILE", ""),
			FileMaxMB:    getEnvInt("LOG_FILE_MAX_MB", 100),
			FileBackups:  getEnvInt("LOG_FILE_BACKUPS", 5),
			FileCompress: getEnvBool("LOG_FILE_COMPRESS", true),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be positive")
	}
	if _, err := metaldata.ParseFailurePolicy(c.Metals.OnFetchFailure); err != nil {
		return fmt.Errorf("ON_FETCH_FAILURE: %w", err)
	}
	if _, err := format.ParseLocale(c.Metals.Locale); err != nil {
		return fmt.Errorf("LOCALE: %w", err)
	}
	if c.Metals.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	if c.Cache.MetalTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_METAL must be positive")
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}

// FailurePolicy returns the validated ON_FETCH_FAILURE value
func (c *Config) FailurePolicy() metaldata.FailurePolicy {
	p, err := metaldata.ParseFailurePolicy(c.Metals.OnFetchFailure)
	if err != nil {
		return metaldata.FailPropagate
	}
	return p
}

// Locale returns the validated LOCALE value
func (c *Config) Locale() format.Locale {
	l, err := format.ParseLocale(c.Metals.Locale)
	if err != nil {
		return format.LocaleIndia
	}
	return l
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}
