package genai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mapgpt/mapgpt-go/internal/config"
)

// New creates the Completer for cfg.Provider. recorder may be nil.
// A missing API key is not an error here; the returned Completer reports it
// on each call so the rest of the service keeps working.
func New(ctx context.Context, cfg config.LLMConfig, recorder Recorder) (Completer, error) {
	return newWithTransport(ctx, cfg, nil, recorder)
}

func newWithTransport(ctx context.Context, cfg config.LLMConfig, transport http.RoundTripper, recorder Recorder) (Completer, error) {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	provider := Provider(cfg.Provider)
	if cfg.APIKey() == "" {
		slog.WarnContext(ctx, "completion API key not set; completions will fail until configured",
			"provider", provider,
			"env", cfg.APIKeyEnv())
	}

	switch {
	case provider == ProviderGemini:
		c, err := newGeminiCompleter(ctx, cfg, transport, recorder)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "completion client created", "provider", provider, "model", c.model)
		return c, nil
	case provider.IsOpenAICompatible():
		c, err := newOpenAICompleter(cfg, provider, transport, recorder)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "completion client created", "provider", provider, "model", c.model)
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
