package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                   string
	DBUrl                  string
	DeviceSecret           string
	CoachAPIURL            string
	CoachAPIKey            string
	CoachAPISecret         string
	CoachAPITimeout        time.Duration
	SessionRefreshInterval time.Duration
	DeviceIdleTTL          time.Duration
	AppEnv                 string
	LogLevel               string
	AllowedOrigins         string
	EnableDocs             bool
	SecureCookie           bool
	DotenvLoaded           bool
}

func LoadConfig() (*Config, error) {
	loaded := godotenv.Load() == nil

	deviceSecret, exists := os.LookupEnv("DEVICE_SECRET")
	if !exists || deviceSecret == "" {
		return nil, fmt.Errorf("DEVICE_SECRET is required")
	}
	dbURL := getEnv("DB_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	coachAPIURL := getEnv("COACH_API_URL", "")
	if coachAPIURL == "" {
		return nil, fmt.Errorf("COACH_API_URL is required")
	}

	timeout, err := getEnvDuration("COACH_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	refresh, err := getEnvDuration("SESSION_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	idleTTL, err := getEnvDuration("DEVICE_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	appEnv := normalizeEnv(getEnv("APP_ENV", "production"))

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DBUrl:                  dbURL,
		DeviceSecret:           deviceSecret,
		CoachAPIURL:            coachAPIURL,
		CoachAPIKey:            getEnv("COACH_API_KEY", ""),
		CoachAPISecret:         getEnv("COACH_API_SECRET", ""),
		CoachAPITimeout:        timeout,
		SessionRefreshInterval: refresh,
		DeviceIdleTTL:          idleTTL,
		AppEnv:                 appEnv,
		LogLevel:               strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		AllowedOrigins:         getEnv("ALLOWED_ORIGINS", "*"),
		EnableDocs:             getEnvBool("ENABLE_API_DOCS", false),
		SecureCookie:           getEnvBool("SECURE_COOKIES", appEnv == "production"),
		DotenvLoaded:           loaded,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, value)
	}
	return parsed, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}
