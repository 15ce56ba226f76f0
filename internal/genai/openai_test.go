package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapgpt/mapgpt-go/internal/config"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
)

type recordedCall struct {
	service string
	err     error
}

type fakeRecorder struct {
	calls      []recordedCall
	prompt     int64
	completion int64
}

func (r *fakeRecorder) RecordUpstream(service string, _ float64, err error) {
	r.calls = append(r.calls, recordedCall{service: service, err: err})
}

func (r *fakeRecorder) RecordTokens(_ string, prompt, completion int64) {
	r.prompt += prompt
	r.completion += completion
}

func testLLMConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:    config.ProviderXAI,
		XAIAPIKey:   "test-key",
		BaseURL:     baseURL,
		MaxTokens:   600,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}
}

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "grok-3",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "MAPOLY is in Abeokuta."}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
}`

func TestOpenAICompleter_Complete(t *testing.T) {
	t.Parallel()

	var captured struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		MaxTokens   int       `json:"max_tokens"`
		Temperature float64   `json:"temperature"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c, err := New(context.Background(), testLLMConfig(srv.URL), rec)
	require.NoError(t, err)
	assert.Equal(t, ProviderXAI, c.Provider())

	got, err := c.Complete(context.Background(), []Message{
		SystemMessage("You answer questions about MAPOLY."),
		UserMessage("Where is MAPOLY?"),
	})
	require.NoError(t, err)
	assert.Equal(t, "MAPOLY is in Abeokuta.", got)

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "grok-3", captured.Model)
	assert.Equal(t, 600, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 1e-9)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, RoleSystem, captured.Messages[0].Role)
	assert.Equal(t, RoleUser, captured.Messages[1].Role)
	assert.Equal(t, "Where is MAPOLY?", captured.Messages[1].Content)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "completion", rec.calls[0].service)
	assert.NoError(t, rec.calls[0].err)
	assert.Equal(t, int64(12), rec.prompt)
	assert.Equal(t, int64(6), rec.completion)
}

func TestOpenAICompleter_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","created":1700000000,"model":"grok-3","choices":[]}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), testLLMConfig(srv.URL), nil)
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), []Message{UserMessage("hi mapoly")})
	require.NoError(t, err)
	assert.Equal(t, NoResponse, got)
}

func TestOpenAICompleter_ServerErrorNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	c, err := New(context.Background(), testLLMConfig(srv.URL), rec)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []Message{UserMessage("hi mapoly")})
	require.Error(t, err)

	var upErr *domerrors.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, int32(1), hits.Load())

	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].err)
}

func TestOpenAICompleter_NonJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway login</html>"))
	}))
	defer srv.Close()

	c, err := New(context.Background(), testLLMConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []Message{UserMessage("hi mapoly")})
	var upErr *domerrors.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusOK, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "gateway login")
}

func TestOpenAICompleter_MissingKey(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := testLLMConfig(srv.URL)
	cfg.Provider = config.ProviderGroq
	cfg.XAIAPIKey = "unused"

	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []Message{UserMessage("hi mapoly")})
	require.Error(t, err)
	assert.True(t, domerrors.IsMissingAPIKey(err))
	assert.Contains(t, err.Error(), config.EnvGroqAPIKey)
	assert.Equal(t, int32(0), hits.Load())
}

func TestNew_UnsupportedProvider(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.LLMConfig{Provider: "cerebras"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cerebras")
}

func TestNew_DefaultModels(t *testing.T) {
	t.Parallel()

	for _, provider := range []Provider{ProviderXAI, ProviderOpenAI, ProviderGroq} {
		cfg := config.LLMConfig{Provider: provider.String(), MaxTokens: 10, Timeout: time.Second}
		c, err := New(context.Background(), cfg, nil)
		require.NoError(t, err, provider)
		oc, ok := c.(*openaiCompleter)
		require.True(t, ok)
		assert.Equal(t, DefaultModel[provider], oc.model, provider)
	}
}

func TestIsJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isJSON(tt.contentType), tt.contentType)
	}
}
