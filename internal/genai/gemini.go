package genai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mapgpt/mapgpt-go/internal/config"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
)

// geminiCompleter uses the native Gemini SDK. System messages become the
// request's system instruction; assistant turns map to the model role.
type geminiCompleter struct {
	client      *genai.Client // nil when no API key is configured
	model       string
	apiKeyEnv   string
	maxTokens   int32
	temperature float32
	recorder    Recorder
}

func newGeminiCompleter(ctx context.Context, cfg config.LLMConfig, transport http.RoundTripper, recorder Recorder) (*geminiCompleter, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel[ProviderGemini]
	}

	c := &geminiCompleter{
		model:       model,
		apiKeyEnv:   cfg.APIKeyEnv(),
		maxTokens:   int32(cfg.MaxTokens), //nolint:gosec // validated positive and small
		temperature: float32(cfg.Temperature),
		recorder:    recorder,
	}
	if cfg.APIKey() == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey(),
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  newHTTPClient(cfg.Timeout, transport),
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return c, nil
}

// Complete sends messages as one GenerateContent request.
func (c *geminiCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", domerrors.NewConfigError(c.apiKeyEnv, "set it to enable gemini completions")
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			genConfig.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
	duration := time.Since(start)

	if err != nil {
		err = upstreamError(err)
		c.recorder.RecordUpstream(serviceName, duration.Seconds(), err)
		slog.WarnContext(ctx, "generate content failed",
			"provider", ProviderGemini,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", err
	}
	c.recorder.RecordUpstream(serviceName, duration.Seconds(), nil)

	if resp != nil && resp.UsageMetadata != nil {
		c.recorder.RecordTokens(ProviderGemini.String(),
			int64(resp.UsageMetadata.PromptTokenCount),
			int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return NoResponse, nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

// Provider returns the provider type for this completer.
func (c *geminiCompleter) Provider() Provider {
	return ProviderGemini
}
