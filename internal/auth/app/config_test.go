package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

const testSecret = "app-test-secret-0123456789abcdefghij"

func validConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		SigningSecret:       testSecret,
		Issuer:              "tokenauth",
		AccessTTL:           5 * time.Minute,
		RefreshTTL:          7 * 24 * time.Hour,
		DatabaseDriver:      DriverSQLite,
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "text",
		Port:                8080,
		ShutdownGracePeriod: time.Second,
		RequestTimeout:      5 * time.Second,
		RateLimits:          httpx.DefaultRateLimitProfiles(),
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_SIGNING_SECRET", "AUTH_ISSUER", "AUTH_ACCESS_TOKEN_LIFETIME_SECONDS",
		"AUTH_REFRESH_TOKEN_LIFETIME_DAYS", "AUTH_DATABASE_DRIVER", "AUTH_DATABASE_FILE",
		"ENV", "PORT", "HOUSEKEEPING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "tokenauth", cfg.Issuer)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Zero(t, cfg.HousekeepingInterval)
	require.Equal(t, 5, cfg.RateLimits.Strict.Requests)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_LIFETIME_SECONDS", "60")
	t.Setenv("AUTH_REFRESH_TOKEN_LIFETIME_DAYS", "1")
	t.Setenv("AUTH_DATABASE_DRIVER", "Postgres")
	t.Setenv("HOUSEKEEPING_INTERVAL", "30")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")

	cfg := LoadConfig()
	require.Equal(t, time.Minute, cfg.AccessTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 30*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
	require.Equal(t, 50, cfg.RateLimits.Strict.Requests)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "dev without secret", mutate: func(c *Config) { c.SigningSecret = ""; c.Env = EnvDev }},
		{name: "prod without secret", mutate: func(c *Config) { c.SigningSecret = ""; c.Env = "prod" }, wantErr: "AUTH_SIGNING_SECRET is required"},
		{name: "short secret", mutate: func(c *Config) { c.SigningSecret = "short" }, wantErr: "at least 32 bytes"},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTTL = 0 }, wantErr: "AUTH_ACCESS_TOKEN_LIFETIME_SECONDS"},
		{name: "postgres without url", mutate: func(c *Config) { c.DatabaseDriver = DriverPostgres }, wantErr: "AUTH_DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: "unknown AUTH_DATABASE_DRIVER"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitCodec(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := validConfig(t)
	codec, err := InitCodec(cfg, logger)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, codec.TTL())

	cfg.SigningSecret = ""
	ephemeral, err := InitCodec(cfg, logger)
	require.NoError(t, err)

	// Tokens from one secret do not verify under another.
	tok, _, err := codec.Issue("user", time.Now())
	require.NoError(t, err)
	_, err = ephemeral.Verify(tok, time.Now())
	require.Error(t, err)
}

func TestNew_WiresRouter(t *testing.T) {
	cfg := validConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"a@x.com","password":"p1"}`))
	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.DatabaseDriver = "mysql"

	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
