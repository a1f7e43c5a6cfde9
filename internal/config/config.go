package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Image upload configuration
	Upload UploadConfig

	// Redis cache configuration
	Redis RedisConfig

	// AI assistant configuration
	AI AIConfig

	// Bearer token configuration
	Auth AuthConfig

	// Orphan image cleanup
	Janitor JanitorConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MigrationsPath  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// UploadConfig holds image batch settings
type UploadConfig struct {
	MaxBatchBytes int64 // aggregate size of the file parts in one batch
	MaxImageWidth int
	JPEGQuality   int
	Dir           string
	PublicBaseURL string
}

// RedisConfig holds the suggestion cache connection
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// AIConfig holds Gemini settings
type AIConfig struct {
	APIKeys  []string
	Model    string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// Enabled reports whether at least one API key is configured.
func (c AIConfig) Enabled() bool {
	return len(c.APIKeys) > 0
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// JanitorConfig controls removal of uploaded images that were never attached
type JanitorConfig struct {
	Interval  time.Duration
	OrphanTTL time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from the environment, after applying a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "shorlog_studio"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Upload: UploadConfig{
			MaxBatchBytes: getInt64Env("MAX_BATCH_BYTES", 100*1024*1024), // 100MB
			MaxImageWidth: getIntEnv("MAX_IMAGE_WIDTH", 2048),
			JPEGQuality:   getIntEnv("JPEG_QUALITY", 85),
			Dir:           getEnv("UPLOAD_DIR", "./data/images"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080/media"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		AI: AIConfig{
			APIKeys:  getListEnv("GEMINI_API_KEYS"),
			Model:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			CacheTTL: getDurationEnv("AI_CACHE_TTL", 24*time.Hour),
			Timeout:  getDurationEnv("AI_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("TOKEN_TTL", 24*time.Hour),
		},
		Janitor: JanitorConfig{
			Interval:  getDurationEnv("JANITOR_INTERVAL", 10*time.Minute),
			OrphanTTL: getDurationEnv("ORPHAN_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Upload.MaxBatchBytes <= 0 {
		return fmt.Errorf("MAX_BATCH_BYTES must be positive")
	}
	if c.Upload.JPEGQuality < 1 || c.Upload.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ClientConfig holds the settings the compose CLI needs to reach the API
type ClientConfig struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	JWTSecret string
	TokenTTL  time.Duration
}

// LoadClient reads the CLI configuration from the environment
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		BaseURL:   strings.TrimRight(getEnv("SHORLOG_API_URL", "http://localhost:8080"), "/"),
		Token:     getEnv("SHORLOG_TOKEN", ""),
		Timeout:   getDurationEnv("SHORLOG_TIMEOUT", 2*time.Minute),
		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 24*time.Hour),
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("SHORLOG_API_URL is required")
	}
	return cfg, nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping empty items
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
