package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the portal client.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Cache   CacheConfig
	Logger  LoggerConfig
	Stub    StubConfig
}

// APIConfig controls how the client talks to the complaint backend.
type APIConfig struct {
	BaseURL             string
	RequestTimeoutSec   int
	UploadTimeoutSec    int
	CSRFRotateSeconds   int
	RefreshEverySeconds int
	NotifyPollSeconds   int
}

// SessionConfig controls durable session storage.
type SessionConfig struct {
	FilePath  string
	WatchFile bool
}

// CacheConfig selects the query-cache backend.
type CacheConfig struct {
	Backend    string // "memory" or "redis"
	TTLSeconds int
	RedisAddr  string
	RedisPass  string
	RedisDB    int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// StubConfig holds settings for the local stub API server.
type StubConfig struct {
	Host                  string
	Port                  string
	RequestTimeoutSeconds int
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("PORTAL_CACHE_REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORTAL_CACHE_REDIS_DB: %w", err)
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:             getEnv("PORTAL_API_BASE_URL", "http://127.0.0.1:8080"),
			RequestTimeoutSec:   getEnvAsInt("PORTAL_HTTP_TIMEOUT_SECONDS", 15),
			UploadTimeoutSec:    getEnvAsInt("PORTAL_UPLOAD_TIMEOUT_SECONDS", 120),
			CSRFRotateSeconds:   getEnvAsInt("PORTAL_CSRF_ROTATE_SECONDS", 600),
			RefreshEverySeconds: getEnvAsInt("PORTAL_REFRESH_INTERVAL_SECONDS", 840),
			NotifyPollSeconds:   getEnvAsInt("PORTAL_NOTIFY_POLL_SECONDS", 60),
		},
		Session: SessionConfig{
			FilePath:  getEnv("PORTAL_SESSION_FILE", defaultSessionFile()),
			WatchFile: getEnvAsBool("PORTAL_SESSION_WATCH", true),
		},
		Cache: CacheConfig{
			Backend:    getEnv("PORTAL_CACHE_BACKEND", "memory"),
			TTLSeconds: getEnvAsInt("PORTAL_CACHE_TTL_SECONDS", 300),
			RedisAddr:  getEnv("PORTAL_CACHE_REDIS_ADDR", "127.0.0.1:6379"),
			RedisPass:  os.Getenv("PORTAL_CACHE_REDIS_PASSWORD"),
			RedisDB:    redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Stub: StubConfig{
			Host:                  getEnv("STUB_HOST", "127.0.0.1"),
			Port:                  getEnv("STUB_PORT", "8080"),
			RequestTimeoutSeconds: getEnvAsInt("STUB_REQUEST_TIMEOUT_SECONDS", 30),
			JWTSecret:             getEnv("STUB_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("STUB_ACCESS_TOKEN_TTL_MINUTES", 15),
			BcryptCost:            getEnvAsInt("STUB_BCRYPT_COST", 10),
		},
	}

	return cfg, nil
}

// Addr returns the stub server bind address.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// RequestTimeout returns the stub server request timeout duration.
func (s StubConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the configured client request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.RequestTimeoutSec) * time.Second
}

// UploadTimeout returns the extended timeout used for multipart uploads.
func (a APIConfig) UploadTimeout() time.Duration {
	if a.UploadTimeoutSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(a.UploadTimeoutSec) * time.Second
}

// CSRFRotateInterval returns how often the CSRF token is re-fetched.
func (a APIConfig) CSRFRotateInterval() time.Duration {
	return time.Duration(a.CSRFRotateSeconds) * time.Second
}

// RefreshInterval returns the pre-emptive session refresh period.
func (a APIConfig) RefreshInterval() time.Duration {
	return time.Duration(a.RefreshEverySeconds) * time.Second
}

// NotifyPollInterval returns the notification poll period.
func (a APIConfig) NotifyPollInterval() time.Duration {
	return time.Duration(a.NotifyPollSeconds) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "complaint-portal", "session.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
