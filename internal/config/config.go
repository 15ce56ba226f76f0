// Package config provides application configuration management.
// It loads settings from environment variables (and an optional .env file)
// and provides defaults for the server, the LLM provider, search, scraping,
// and the optional observability features.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

// Supported LLM providers
const (
	ProviderXAI    = "xai"
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	Environment     string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	CORSOrigins     []string

	LLM       LLMConfig
	Search    SearchConfig
	Scraper   ScraperConfig
	Knowledge KnowledgeConfig

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	Sentry      SentryConfig
	BetterStack BetterStackConfig
	Line        LineConfig
}

// LLMConfig configures the completion collaborator.
// API keys may be empty; requests that need a missing key fail individually.
type LLMConfig struct {
	Provider     string
	XAIAPIKey    string
	OpenAIAPIKey string
	GroqAPIKey   string
	GeminiAPIKey string
	Model        string // empty = provider default
	BaseURL      string // empty = provider default endpoint
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	SystemRole   bool // send the institution instruction as a system message
}

// SearchConfig configures the search collaborator (serper.dev compatible).
type SearchConfig struct {
	APIKey        string
	Endpoint      string
	Country       string // gl
	Language      string // hl
	Limit         int
	RecencyWindow time.Duration
	Timeout       time.Duration
	WebEnabled    bool // fall back to a general web search when nothing else matches
}

// ScraperConfig configures the news page scrape.
type ScraperConfig struct {
	NewsURL string
	Timeout time.Duration
}

// KnowledgeConfig selects where the topic table is loaded from.
// Precedence: R2 object, then local file, then the embedded default.
type KnowledgeConfig struct {
	File string
	R2   R2Config
}

// R2Config holds Cloudflare R2 credentials for the knowledge object.
type R2Config struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Key             string
}

// Endpoint returns the account-scoped R2 endpoint URL.
func (c R2Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// BetterStackConfig configures remote log shipping.
type BetterStackConfig struct {
	Enabled  bool
	Token    string
	Endpoint string
}

// LineConfig configures the optional LINE webhook front.
type LineConfig struct {
	Enabled       bool
	ChannelSecret string
	ChannelToken  string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	environment := getEnv(EnvEnvironment, EnvironmentDevelopment)

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		Environment:     environment,
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		RequestTimeout:  getDurationEnv(EnvRequestTimeout, RequestProcessing),
		CORSOrigins:     getListEnv(EnvCORSOrigins, []string{"*"}),

		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv(EnvLLMProvider, ProviderXAI)),
			XAIAPIKey:    getEnv(EnvXAIAPIKey, ""),
			OpenAIAPIKey: getEnv(EnvOpenAIAPIKey, ""),
			GroqAPIKey:   getEnv(EnvGroqAPIKey, ""),
			GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),
			Model:        getEnv(EnvLLMModel, ""),
			BaseURL:      getEnv(EnvLLMBaseURL, ""),
			MaxTokens:    getIntEnv(EnvLLMMaxTokens, 600),
			Temperature:  getFloatEnv(EnvLLMTemperature, 0.7),
			Timeout:      getDurationEnv(EnvLLMTimeout, CompletionRequest),
			SystemRole:   getBoolEnv(EnvLLMSystemRole, true),
		},

		Search: SearchConfig{
			APIKey:        getEnv(EnvSerperAPIKey, ""),
			Endpoint:      getEnv(EnvSearchEndpoint, "https://google.serper.dev/search"),
			Country:       getEnv(EnvSearchCountry, "ng"),
			Language:      getEnv(EnvSearchLanguage, "en"),
			Limit:         getIntEnv(EnvSearchLimit, 5),
			RecencyWindow: getDurationEnv(EnvSearchRecencyWindow, 30*24*time.Hour),
			Timeout:       getDurationEnv(EnvSearchTimeout, SearchRequest),
			WebEnabled:    getBoolEnv(EnvWebSearchEnabled, true),
		},

		Scraper: ScraperConfig{
			NewsURL: getEnv(EnvNewsURL, "https://www.myschoolgist.com/ng/tag/www-mapoly-edu-ng/"),
			Timeout: getDurationEnv(EnvScraperTimeout, ScraperRequest),
		},

		Knowledge: KnowledgeConfig{
			File: getEnv(EnvKnowledgeFile, ""),
			R2: R2Config{
				Enabled:         getBoolEnv(EnvR2Enabled, false),
				AccountID:       getEnv(EnvR2AccountID, ""),
				AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
				SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
				BucketName:      getEnv(EnvR2BucketName, ""),
				Key:             getEnv(EnvR2KnowledgeKey, "knowledge/knowledge.json"),
			},
		},

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		Sentry: SentryConfig{
			Enabled:     getBoolEnv(EnvSentryEnabled, false),
			DSN:         getEnv(EnvSentryDSN, ""),
			Environment: getEnv(EnvSentryEnvironment, environment),
			SampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
		},

		BetterStack: BetterStackConfig{
			Enabled:  getBoolEnv(EnvBetterStackEnabled, false),
			Token:    getEnv(EnvBetterStackToken, ""),
			Endpoint: getEnv(EnvBetterStackEndpoint, ""),
		},

		Line: LineConfig{
			Enabled:       getBoolEnv(EnvLineEnabled, false),
			ChannelSecret: getEnv(EnvLineChannelSecret, ""),
			ChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are well formed.
// Missing API keys are not validation errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvRequestTimeout, c.RequestTimeout))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm config: %w", err))
	}
	if err := c.Search.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search config: %w", err))
	}
	if c.Scraper.NewsURL == "" {
		errs = append(errs, errors.New(EnvNewsURL+" is required"))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvScraperTimeout, c.Scraper.Timeout))
	}
	if r2 := c.Knowledge.R2; r2.Enabled {
		if r2.AccountID == "" || r2.AccessKeyID == "" || r2.SecretAccessKey == "" || r2.BucketName == "" {
			errs = append(errs, errors.New("R2 knowledge source enabled but credentials are incomplete"))
		}
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		errs = append(errs, errors.New(EnvSentryDSN+" is required when Sentry is enabled"))
	}
	if c.BetterStack.Enabled && c.BetterStack.Token == "" {
		errs = append(errs, errors.New(EnvBetterStackToken+" is required when Better Stack is enabled"))
	}
	if c.Line.Enabled && (c.Line.ChannelSecret == "" || c.Line.ChannelToken == "") {
		errs = append(errs, errors.New("LINE enabled but channel secret or access token is missing"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks LLM settings.
func (c LLMConfig) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderXAI, ProviderOpenAI, ProviderGroq, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("%s must be one of xai, openai, groq, gemini, got %q", EnvLLMProvider, c.Provider))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvLLMMaxTokens, c.MaxTokens))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 2], got %v", EnvLLMTemperature, c.Temperature))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLLMTimeout, c.Timeout))
	}
	return errors.Join(errs...)
}

// Validate checks search settings.
func (c SearchConfig) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New(EnvSearchEndpoint+" is required"))
	}
	if c.Limit <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvSearchLimit, c.Limit))
	}
	if c.RecencyWindow <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSearchRecencyWindow, c.RecencyWindow))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSearchTimeout, c.Timeout))
	}
	return errors.Join(errs...)
}

// APIKey returns the key for the configured provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderXAI:
		return c.XAIAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

// APIKeyEnv returns the environment variable that holds the configured provider's key.
func (c LLMConfig) APIKeyEnv() string {
	switch c.Provider {
	case ProviderOpenAI:
		return EnvOpenAIAPIKey
	case ProviderGroq:
		return EnvGroqAPIKey
	case ProviderGemini:
		return EnvGeminiAPIKey
	default:
		return EnvXAIAPIKey
	}
}

// IsProduction reports whether diagnostics must be withheld from clients.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated environment variable, dropping empty items
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
