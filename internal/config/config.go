package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	ProviderClientID     string
	ProviderClientSecret string
	ProviderRedirectURL  string
	ProviderTokenURL     string
	ProviderAPIBaseURL   string
	ProviderCDNBaseURL   string

	GroupAPIToken string
	WebhookURL    string

	StoreDriver string // "file" or "postgres"
	StorePath   string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	AdminToken  string
	SyncWorkers int
}

func Load() Config {

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),

		ProviderClientID:     os.Getenv("PROVIDER_CLIENT_ID"),
		ProviderClientSecret: os.Getenv("PROVIDER_CLIENT_SECRET"),
		ProviderRedirectURL:  os.Getenv("PROVIDER_REDIRECT_URL"),
		ProviderTokenURL:     os.Getenv("PROVIDER_TOKEN_URL"),
		ProviderAPIBaseURL:   os.Getenv("PROVIDER_API_BASE_URL"),
		ProviderCDNBaseURL:   os.Getenv("PROVIDER_CDN_BASE_URL"),

		GroupAPIToken: os.Getenv("GROUP_API_TOKEN"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),

		StoreDriver: getenv("STORE_DRIVER", "file"),
		StorePath:   getenv("STORE_PATH", "identities.json"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		SyncWorkers: getenvInt("SYNC_WORKERS", 1),
	}

	return cfg

}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
