// Package config loads server and CLI settings from the environment.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Addr           string
	Env            string
	DBPath         string
	AdminEmail     string
	AdminPassword  string
	ResendKey      string
	ResendFrom     string
	ReplyTo        string
	CSRFKey        []byte // 32 bytes; nil means generate one per process
	OutboxInterval time.Duration
	SlowQuery      time.Duration
	SlowRequest    time.Duration
	SeedDemo       bool // fill an empty database with demo records; ignored in production
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file when present, then the GYMBIOS_* environment variables.
// PRE: none
// POST: every field set, defaults applied; error only for malformed values
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		slog.Warn("config_event", "event", "dotenv_unreadable", "error", err.Error())
	}

	cfg := Config{
		Addr:          getEnv("GYMBIOS_ADDR", ":8080"),
		Env:           getEnv("GYMBIOS_ENV", "development"),
		DBPath:        getEnv("GYMBIOS_DB_PATH", "gymbios.db"),
		AdminEmail:    getEnv("GYMBIOS_ADMIN_EMAIL", "admin@gymbios.app"),
		AdminPassword: os.Getenv("GYMBIOS_ADMIN_PASSWORD"),
		ResendKey:     os.Getenv("GYMBIOS_RESEND_KEY"),
		ResendFrom:    getEnv("GYMBIOS_RESEND_FROM", "GymBios <noreply@gymbios.app>"),
		ReplyTo:       getEnv("GYMBIOS_REPLY_TO", "frontdesk@gymbios.app"),
	}

	var err error
	if cfg.OutboxInterval, err = getDuration("GYMBIOS_OUTBOX_INTERVAL", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SlowQuery, err = getMillis("GYMBIOS_SLOW_QUERY_MS", 100*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequest, err = getMillis("GYMBIOS_SLOW_REQUEST_MS", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("GYMBIOS_SEED_DEMO"); v != "" {
		if cfg.SeedDemo, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("GYMBIOS_SEED_DEMO: invalid boolean %q", v)
		}
	}
	if keyHex := os.Getenv("GYMBIOS_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return Config{}, fmt.Errorf("GYMBIOS_CSRF_KEY must be 64 hex characters")
		}
		cfg.CSRFKey = key
	}
	if cfg.IsProduction() && cfg.CSRFKey == nil {
		return Config{}, fmt.Errorf("GYMBIOS_CSRF_KEY is required in production")
	}
	return cfg, nil
}

// ClientConfig holds what the gymctl CLI needs to reach a server.
type ClientConfig struct {
	APIURL string
	Token  string
}

// LoadClient reads GYMBIOS_API_URL and GYMBIOS_TOKEN, after an optional .env file.
func LoadClient(envFiles ...string) ClientConfig {
	_ = godotenv.Load(envFiles...)
	return ClientConfig{
		APIURL: getEnv("GYMBIOS_API_URL", "http://localhost:8080"),
		Token:  os.Getenv("GYMBIOS_TOKEN"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getMillis(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s: invalid milliseconds %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
