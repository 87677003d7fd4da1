package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	// DatabaseDriver selects the message store backend: "sqlite" or "postgres".
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	JWTSecret string

	NATSURL  string
	RedisURL string

	CORSOrigins []string
	Debug       bool

	// AssumeReadAfter synthesizes a read receipt this long after a delivery
	// acknowledgement, without any explicit recipient action. Zero disables
	// the policy. It is a UX heuristic and may misrepresent true read state.
	AssumeReadAfter time.Duration
}

func Load() (*Config, error) {
	// .env is only present in development
	_ = godotenv.Load()

	cfg := &Config{
		AppName: getEnv("APP_NAME", "SkillSocket Messaging API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "skillsocket.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		NATSURL:  os.Getenv("NATS_URL"),
		RedisURL: os.Getenv("REDIS_URL"),

		Debug:           getEnvAsBool("DEBUG", true),
		AssumeReadAfter: getEnvAsDuration("ASSUME_READ_AFTER", 2*time.Second),
	}

	switch cfg.DatabaseDriver {
	case "sqlite":
		// nothing else required
	case "postgres":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = postgresURLFromEnv()
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	corsEnv := getEnv("CORS_ORIGINS", "")
	if corsEnv != "" {
		parts := strings.Split(corsEnv, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func postgresURLFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "postgres"), getEnv("POSTGRES_PASSWORD", "postgres")),
		Host:     fmt.Sprintf("%s:%s", getEnv("POSTGRES_HOST", "localhost"), getEnv("POSTGRES_PORT", "5432")),
		Path:     getEnv("POSTGRES_DB", "skillsocket"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
