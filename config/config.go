package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup and passed to every component that needs it.
type Config struct {
	Port      string
	AppEnv    string
	AppURL    string
	DBURL     string
	JWTSecret string

	CORSOrigins []string

	GoogleClientID         string
	GoogleClientSecret     string
	GoogleRedirectURL      string
	GoogleFrontendRedirect string

	YouTubeAPIKey   string
	UpstreamTimeout time.Duration
	MaxComments     int
	MaxQuestions    int

	GeminiAPIKey string
	GeminiModel  string

	// Analyses allowed per usage period, keyed by plan tier.
	PlanLimitFree  int
	PlanLimitBasic int
	PlanLimitPro   int
	UsagePeriod    time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceBasic    string
	StripePricePro      string
}

func LoadEnv() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "production"),
		AppURL:    getEnv("APP_URL", "http://localhost:5173"),
		DBURL:     mustEnv("DB_URL"),
		JWTSecret: mustEnv("JWT_SECRET"),

		CORSOrigins: splitList(getEnv("CORS_ORIGIN", "http://localhost:5173")),

		GoogleClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:      getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleFrontendRedirect: getEnv("GOOGLE_FRONTEND_REDIRECT", ""),

		YouTubeAPIKey:   mustEnv("YOUTUBE_API_KEY"),
		UpstreamTimeout: mustDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		MaxComments:     mustInt("MAX_COMMENTS", 50),
		MaxQuestions:    mustInt("MAX_QUESTIONS", 5),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		PlanLimitFree:  mustInt("PLAN_LIMIT_FREE", 5),
		PlanLimitBasic: mustInt("PLAN_LIMIT_BASIC", 50),
		PlanLimitPro:   mustInt("PLAN_LIMIT_PRO", 500),
		UsagePeriod:    mustDuration("USAGE_PERIOD", 30*24*time.Hour),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceBasic:    getEnv("STRIPE_PRICE_BASIC", ""),
		StripePricePro:      getEnv("STRIPE_PRICE_PRO", ""),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.UsagePeriod <= 0 {
		return fmt.Errorf("USAGE_PERIOD must be positive, got %s", c.UsagePeriod)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	for name, v := range map[string]int{
		"PLAN_LIMIT_FREE":  c.PlanLimitFree,
		"PLAN_LIMIT_BASIC": c.PlanLimitBasic,
		"PLAN_LIMIT_PRO":   c.PlanLimitPro,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func mustInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %q", key, v)
	}
	return n
}

func mustDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %q", key, v)
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
