package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DB     DBConfig
	JWT    JWTConfig
	Server ServerConfig
	Feed   FeedConfig
	NATS   NATSConfig
	Admin  AdminConfig
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port        string
	FrontendURL string
	ViewsMode   string
}

type FeedConfig struct {
	PageSize int
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// AdminConfig seeds the first admin account on an empty database.
type AdminConfig struct {
	Username string
	Password string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ViewsHTML = "html"
	ViewsJSON = "json"
)

func Load() *Config {
	cfg := &Config{
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "community"),
			Password:   getEnv("DB_PASSWORD", "community_secret"),
			Name:       getEnv("DB_NAME", "community"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "community.db"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:8080"),
			ViewsMode:   strings.ToLower(getEnv("VIEWS_MODE", ViewsHTML)),
		},
		Feed: FeedConfig{
			PageSize: getEnvAsInt("FEED_PAGE_SIZE", 10),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "community"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Feed.PageSize < 1 {
		cfg.Feed.PageSize = 10
	}
	if cfg.Server.ViewsMode != ViewsJSON {
		cfg.Server.ViewsMode = ViewsHTML
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
