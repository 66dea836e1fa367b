// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ultrashine/washlog/internal/auth"
	"github.com/ultrashine/washlog/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// ExportPath is where the spreadsheet mirror is written.
	// The extension picks the format: .xlsx (default "car_wash.xlsx") or .csv.
	ExportPath string

	// ExportRefreshInterval regenerates the mirror on a timer in addition to
	// after every mutation. Zero (the default) disables the timer.
	ExportRefreshInterval time.Duration

	// SessionSecret signs session tokens. Required, at least 32 bytes.
	SessionSecret []byte

	// SessionTTL bounds session lifetime. Zero (the default) means sessions
	// last until logout.
	SessionTTL time.Duration

	// Users is the fixed credential set, parsed from ACCESS_USERS:
	// comma-separated "identity:role:bcrypt-hash" entries. Required.
	Users []auth.Credential

	// MaxBodyBytes caps request body size. Defaults to 65536.
	MaxBodyBytes int64
}

const minSessionSecret = 32

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first malformed value.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ExportPath:  getEnv("EXPORT_PATH", "car_wash.xlsx"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	users := os.Getenv("ACCESS_USERS")
	if users == "" {
		missing = append(missing, "ACCESS_USERS")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if len(secret) < minSessionSecret {
		return Config{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecret)
	}
	cfg.SessionSecret = []byte(secret)

	var err error
	if cfg.Users, err = parseUsers(users); err != nil {
		return Config{}, fmt.Errorf("ACCESS_USERS: %w", err)
	}
	if cfg.ExportRefreshInterval, err = getDuration("EXPORT_REFRESH_INTERVAL", 0); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 64<<10); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// parseUsers parses "identity:role:hash,identity:role:hash".
// bcrypt hashes contain "$" but never ":" or ",", so a plain split is safe.
func parseUsers(s string) ([]auth.Credential, error) {
	var out []auth.Credential
	for _, entry := range splitCSV(s) {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("entry %q: want identity:role:bcrypt-hash", entry)
		}
		role, err := domain.ParseRole(parts[1])
		if err != nil {
			return nil, fmt.Errorf("entry for %q: %w", parts[0], err)
		}
		out = append(out, auth.Credential{Identity: parts[0], Role: role, SecretHash: parts[2]})
	}
	return out, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses key as a time.Duration, or returns fallback when unset.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

// getInt64 parses key as a positive integer, or returns fallback when unset.
func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid positive integer %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
