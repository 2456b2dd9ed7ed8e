package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string
	LogLevel       string

	// DATABASE_URL is the runtime connection (may go through a pooler);
	// DIRECT_URL, when set, is used for migrations.
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Auth AuthConfig

	// AllowedOrigins is a comma-separated allowlist for the back-office UI. Example:
	//   https://backoffice.example-hotel.com,http://localhost:5173
	AllowedOrigins []string

	AMQP  AMQPConfig
	Redis RedisConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	// StaffTokenSecret signs and verifies HS256 staff session tokens.
	StaffTokenSecret string
	// StaffTokenTTL is only used by tooling that mints tokens.
	StaffTokenTTL time.Duration
}

type AMQPConfig struct {
	// URL empty disables status change notifications.
	URL      string
	Exchange string
}

type RedisConfig struct {
	// Addr empty disables the catalog cache.
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func Load() Config {
	// Local dev convenience; production relies on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		LogLevel:       env("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "roomstatus"),
			User:     env("DB_USER", "roomstatus"),
			Password: env("DB_PASSWORD", "roomstatus"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			StaffTokenSecret: os.Getenv("STAFF_JWT_SECRET"),
			StaffTokenTTL:    envDuration("STAFF_JWT_TTL", 12*time.Hour),
		},
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: env("AMQP_EXCHANGE", "room_status_fanout"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
			TTL:      envDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
	}
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
