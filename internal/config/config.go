package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN  string // MySQL DSN; when empty the embedded SQLite file is used
		Path string // SQLite file path
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	Admin struct {
		Secret string
	}

	Osu struct {
		ClientID     string
		ClientSecret string
		TokenURL     string
		APIBaseURL   string
	}

	Discord struct {
		WebhookURL string
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "http_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database: MySQL when a DSN is provided, embedded SQLite otherwise
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	cfg.DB.Path = getEnvDefault("SQLITE_PATH", "mappool.db")

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "3000")

	// Admin
	cfg.Admin.Secret = os.Getenv("ADMIN_SECRET")

	// osu! API
	cfg.Osu.ClientID = os.Getenv("OSU_CLIENT_ID")
	cfg.Osu.ClientSecret = os.Getenv("OSU_CLIENT_SECRET")
	cfg.Osu.TokenURL = getEnvDefault("OSU_TOKEN_URL", "https://osu.ppy.sh/oauth/token")
	cfg.Osu.APIBaseURL = getEnvDefault("OSU_API_BASE_URL", "https://osu.ppy.sh/api/v2")

	// Discord
	cfg.Discord.WebhookURL = os.Getenv("DISCORD_WEBHOOK")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
