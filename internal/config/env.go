// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "MAPGPT_PORT"
	EnvLogLevel        = "MAPGPT_LOG_LEVEL"
	EnvEnvironment     = "MAPGPT_ENVIRONMENT"
	EnvShutdownTimeout = "MAPGPT_SHUTDOWN_TIMEOUT"
	EnvRequestTimeout  = "MAPGPT_REQUEST_TIMEOUT"
	EnvCORSOrigins     = "MAPGPT_CORS_ORIGINS"

	// LLM
	EnvLLMProvider    = "MAPGPT_LLM_PROVIDER"
	EnvXAIAPIKey      = "MAPGPT_XAI_API_KEY"
	EnvOpenAIAPIKey   = "MAPGPT_OPENAI_API_KEY"
	EnvGroqAPIKey     = "MAPGPT_GROQ_API_KEY"
	EnvGeminiAPIKey   = "MAPGPT_GEMINI_API_KEY"
	EnvLLMModel       = "MAPGPT_LLM_MODEL"
	EnvLLMBaseURL     = "MAPGPT_LLM_BASE_URL"
	EnvLLMMaxTokens   = "MAPGPT_LLM_MAX_TOKENS"
	EnvLLMTemperature = "MAPGPT_LLM_TEMPERATURE"
	EnvLLMTimeout     = "MAPGPT_LLM_TIMEOUT"
	EnvLLMSystemRole  = "MAPGPT_LLM_SYSTEM_ROLE"

	// Search
	EnvSerperAPIKey        = "MAPGPT_SERPER_API_KEY"
	EnvSearchEndpoint      = "MAPGPT_SEARCH_ENDPOINT"
	EnvSearchCountry       = "MAPGPT_SEARCH_COUNTRY"
	EnvSearchLanguage      = "MAPGPT_SEARCH_LANGUAGE"
	EnvSearchLimit         = "MAPGPT_SEARCH_LIMIT"
	EnvSearchRecencyWindow = "MAPGPT_SEARCH_RECENCY_WINDOW"
	EnvSearchTimeout       = "MAPGPT_SEARCH_TIMEOUT"
	EnvWebSearchEnabled    = "MAPGPT_WEB_SEARCH_ENABLED"

	// Scraper
	EnvNewsURL        = "MAPGPT_NEWS_URL"
	EnvScraperTimeout = "MAPGPT_SCRAPER_TIMEOUT"

	// Knowledge base
	EnvKnowledgeFile = "MAPGPT_KNOWLEDGE_FILE"

	// R2 Knowledge Source Feature
	EnvR2Enabled         = "MAPGPT_R2_ENABLED"
	EnvR2AccountID       = "MAPGPT_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "MAPGPT_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "MAPGPT_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "MAPGPT_R2_BUCKET_NAME"
	EnvR2KnowledgeKey    = "MAPGPT_R2_KNOWLEDGE_KEY"

	// Sentry Feature
	EnvSentryEnabled     = "MAPGPT_SENTRY_ENABLED"
	EnvSentryDSN         = "MAPGPT_SENTRY_DSN"
	EnvSentryEnvironment = "MAPGPT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "MAPGPT_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "MAPGPT_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "MAPGPT_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "MAPGPT_BETTERSTACK_ENDPOINT"

	// Metrics Auth
	EnvMetricsUsername = "MAPGPT_METRICS_USERNAME"
	EnvMetricsPassword = "MAPGPT_METRICS_PASSWORD"

	// LINE Feature
	EnvLineEnabled            = "MAPGPT_LINE_ENABLED"
	EnvLineChannelSecret      = "MAPGPT_LINE_CHANNEL_SECRET"
	EnvLineChannelAccessToken = "MAPGPT_LINE_CHANNEL_ACCESS_TOKEN"
)
