package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/mapgpt/mapgpt-go/internal/config"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
)

// openaiCompleter talks to any OpenAI-compatible chat-completion endpoint
// (xAI, OpenAI, Groq) through a custom BaseURL.
type openaiCompleter struct {
	client      openai.Client
	provider    Provider
	model       string
	apiKeyEnv   string
	hasKey      bool
	maxTokens   int64
	temperature float64
	recorder    Recorder
}

// newOpenAICompleter creates an OpenAI-compatible completer.
// An empty API key is accepted; Complete then fails with a ConfigError.
func newOpenAICompleter(cfg config.LLMConfig, provider Provider, transport http.RoundTripper, recorder Recorder) (*openaiCompleter, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		endpoint, ok := ProviderEndpoint[provider]
		if !ok {
			return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
		}
		baseURL = endpoint
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel[provider]
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey()),
		option.WithHTTPClient(newHTTPClient(cfg.Timeout, transport)),
		option.WithMaxRetries(0),
	)

	return &openaiCompleter{
		client:      client,
		provider:    provider,
		model:       model,
		apiKeyEnv:   cfg.APIKeyEnv(),
		hasKey:      cfg.APIKey() != "",
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		recorder:    recorder,
	}, nil
}

// Complete sends messages as one chat-completion request.
func (c *openaiCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.hasKey {
		return "", domerrors.NewConfigError(c.apiKeyEnv, "set it to enable "+c.provider.String()+" completions")
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		err = upstreamError(err)
		c.recorder.RecordUpstream(serviceName, duration.Seconds(), err)
		slog.WarnContext(ctx, "chat completion failed",
			"provider", c.provider,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", err
	}
	c.recorder.RecordUpstream(serviceName, duration.Seconds(), nil)
	c.recorder.RecordTokens(c.provider.String(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	slog.DebugContext(ctx, "chat completion finished",
		"provider", c.provider,
		"model", c.model,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"choices", len(resp.Choices),
		"duration_ms", duration.Milliseconds())

	if len(resp.Choices) == 0 {
		return NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Provider returns the provider type for this completer.
func (c *openaiCompleter) Provider() Provider {
	return c.provider
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// upstreamError normalizes SDK and transport failures to *UpstreamError.
func upstreamError(err error) error {
	var upErr *domerrors.UpstreamError
	if errors.As(err, &upErr) {
		return upErr
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return domerrors.NewUpstreamError(serviceName, apiErr.StatusCode, apiErr.RawJSON(), nil)
	}
	return domerrors.NewUpstreamError(serviceName, 0, "", err)
}
