package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvDev = "dev"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	SigningSecret string        // HS256 key; generated per process in dev when empty
	Issuer        string        // iss claim (default: tokenauth)
	AccessTTL     time.Duration // access token lifetime (default: 5m)
	RefreshTTL    time.Duration // refresh token lifetime (default: 7 days)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // sqlite path (default: ./auth.db)
	DatabaseURL    string // postgres DSN
	PepperFile     string // password pepper file (default: ./pepper)

	Env                 string        // dev, staging, prod (default: dev)
	LogLevel            string        // debug, info, warn, error (default: info)
	LogFormat           string        // json or text (default: json)
	Port                int           // HTTP port (default: 8080)
	ShutdownGracePeriod time.Duration // default: 10s
	RequestTimeout      time.Duration // per-request deadline (default: 10s)

	HousekeepingInterval  time.Duration // reaper interval, 0 disables it
	HousekeepingRetention time.Duration // how long expired rows are kept (default: 30 days)

	RateLimits httpx.RateLimitProfiles
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first but never overrides variables that
// are already set.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		SigningSecret: os.Getenv("AUTH_SIGNING_SECRET"),
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "tokenauth"),
		AccessTTL:     time.Duration(getEnvIntOrDefault("AUTH_ACCESS_TOKEN_LIFETIME_SECONDS", 300)) * time.Second,
		RefreshTTL:    time.Duration(getEnvIntOrDefault("AUTH_REFRESH_TOKEN_LIFETIME_DAYS", 7)) * 24 * time.Hour,

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Env:                 getEnvOrDefault("ENV", EnvDev),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		RequestTimeout:      getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),

		HousekeepingInterval:  getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 0),
		HousekeepingRetention: getEnvDurationOrDefault("HOUSEKEEPING_RETENTION", 30*24*time.Hour),

		RateLimits: httpx.RateLimitProfilesFromEnv(),
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if c.SigningSecret == "" && c.Env != EnvDev {
		errs = append(errs, errors.New("AUTH_SIGNING_SECRET is required outside dev"))
	}
	if c.SigningSecret != "" && len(c.SigningSecret) < jwtx.MinSecretBytes {
		errs = append(errs, fmt.Errorf("AUTH_SIGNING_SECRET must be at least %d bytes", jwtx.MinSecretBytes))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must not be empty"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_LIFETIME_SECONDS must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("AUTH_REFRESH_TOKEN_LIFETIME_DAYS must be positive"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE must not be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.HousekeepingInterval < 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
