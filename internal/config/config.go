package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"mealplanner/internal/mealplan"
)

const (
	SourceEdamam = "edamam"
	SourceGemini = "gemini"

	SchemeWeekday  = "weekday"
	SchemeNumbered = "numbered"

	defaultEdamamBaseURL = "https://api.edamam.com/api/recipes/v2"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// Config holds the configuration for the application.
type Config struct {
	Env  string
	Port string

	RecipeSource string

	EdamamAppID   string
	EdamamAppKey  string
	EdamamBaseURL string
	EdamamRandom  bool

	GeminiAPIKey string
	GeminiModel  string

	// DatabaseURL is optional; recipes are cached in memory without it.
	DatabaseURL string

	CORSOrigins      []string
	DayScheme        string
	DayCount         int
	DefaultPartySize int
}

// Load reads a .env file outside production and then the environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		RecipeSource:  strings.ToLower(getenv("RECIPE_SOURCE", SourceEdamam)),
		EdamamAppID:   os.Getenv("EDAMAM_APP_ID"),
		EdamamAppKey:  os.Getenv("EDAMAM_APP_KEY"),
		EdamamBaseURL: getenv("EDAMAM_BASE_URL", defaultEdamamBaseURL),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getenv("GEMINI_MODEL", defaultGeminiModel),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:8081")),
		DayScheme:     strings.ToLower(getenv("DAY_SCHEME", SchemeWeekday)),
	}

	switch cfg.RecipeSource {
	case SourceEdamam:
		if cfg.EdamamAppID == "" {
			return nil, fmt.Errorf("EDAMAM_APP_ID environment variable not set")
		}
		if cfg.EdamamAppKey == "" {
			return nil, fmt.Errorf("EDAMAM_APP_KEY environment variable not set")
		}
	case SourceGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("RECIPE_SOURCE must be %q or %q, got %q", SourceEdamam, SourceGemini, cfg.RecipeSource)
	}

	if cfg.DayScheme != SchemeWeekday && cfg.DayScheme != SchemeNumbered {
		return nil, fmt.Errorf("DAY_SCHEME must be %q or %q, got %q", SchemeWeekday, SchemeNumbered, cfg.DayScheme)
	}

	var err error
	if cfg.EdamamRandom, err = getBool("EDAMAM_RANDOM", false); err != nil {
		return nil, err
	}
	if cfg.DayCount, err = getPositiveInt("DAY_COUNT", 7); err != nil {
		return nil, err
	}
	if cfg.DefaultPartySize, err = getPositiveInt("DEFAULT_PARTY_SIZE", 1); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Days returns the day labels every new meal plan starts with.
func (c *Config) Days() []string {
	if c.DayScheme == SchemeNumbered {
		return mealplan.NumberedDays(c.DayCount)
	}
	return append([]string(nil), mealplan.Weekdays...)
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getPositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
