package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	AppEnv       string
	IsProduction bool
	Port         string

	DBDriver string
	DBDSN    string

	SessionSecret       string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	RedisURL            string

	CompletionProvider string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	GoogleAPIKey       string
	GoogleModel        string

	CORSAllowedOrigins []string

	RateLimitWindow   time.Duration
	RateLimitCapacity int

	LogFilePath string
	LogLevel    string
}

const (
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
	ProviderLocal    = "local"
)

// development-only fallback; production refuses to start without SESSION_SECRET
const devSessionSecret = "insecure-development-session-secret"

var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set in production")

// loadAppEnv loads .env unless APP_ENV is production. A missing .env is fine outside production too.
func loadAppEnv() string {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		return appEnv
	}
	_ = godotenv.Load()
	return os.Getenv("APP_ENV")
}

// Load reads the process environment (and .env outside production) into a Config.
func Load() (*Config, error) {
	appEnv := loadAppEnv()
	if appEnv == "" {
		appEnv = "development"
	}
	if !slices.Contains([]string{"development", "staging", "production"}, appEnv) {
		return nil, fmt.Errorf("APP_ENV must be 'development', 'staging' or 'production', got %q", appEnv)
	}

	cfg := &Config{
		AppEnv:       appEnv,
		IsProduction: appEnv == "production",
		Port:         getEnvOrDefault("PORT", "5000"),

		DBDriver: strings.ToLower(getEnvOrDefault("DB_DRIVER", "sqlite")),
		DBDSN:    getEnvOrDefault("DB_DSN", "app.db"),

		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionTTL:          time.Duration(getEnvAsIntOrDefault("SESSION_TTL_HOURS", 336)) * time.Hour,
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", appEnv == "production"),
		RedisURL:            os.Getenv("REDIS_URL"),

		CompletionProvider: strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		GoogleModel:        getEnvOrDefault("GOOGLE_MODEL", "gemini-2.0-flash"),

		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),

		RateLimitWindow:   time.Duration(getEnvAsIntOrDefault("RATE_LIMIT_WINDOW_SECONDS", 10)) * time.Second,
		RateLimitCapacity: getEnvAsIntOrDefault("RATE_LIMIT_CAPACITY", 5),

		LogFilePath: os.Getenv("LOG_FILE_PATH"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction {
			return nil, ErrMissingSessionSecret
		}
		cfg.SessionSecret = devSessionSecret
	}

	if !slices.Contains([]string{ProviderOpenAI, ProviderGoogleAI, ProviderLocal}, cfg.CompletionProvider) {
		return nil, fmt.Errorf("unknown COMPLETION_PROVIDER %q", cfg.CompletionProvider)
	}

	return cfg, nil
}

// CompletionAPIKey returns the credential of the selected provider. The local provider needs none.
func (c *Config) CompletionAPIKey() string {
	switch c.CompletionProvider {
	case ProviderGoogleAI:
		return c.GoogleAPIKey
	case ProviderLocal:
		return ProviderLocal
	default:
		return c.OpenAIAPIKey
	}
}

// CompletionModel returns the model id sent with every completion request.
func (c *Config) CompletionModel() string {
	switch c.CompletionProvider {
	case ProviderGoogleAI:
		return c.GoogleModel
	case ProviderLocal:
		return ProviderLocal
	default:
		return c.OpenAIModel
	}
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvAsIntOrDefault(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
