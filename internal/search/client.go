// Package search is the client for the hosted search collaborator
// (serper.dev request and response shapes).
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mapgpt/mapgpt-go/internal/config"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

const (
	serviceName = "search"

	// TypeSearch and TypeNews select the result list the collaborator returns.
	TypeSearch = "search"
	TypeNews   = "news"

	maxErrorBody = 2048
	// maxResponseBody caps a result page; real pages are a few KB.
	maxResponseBody = 4 << 20
)

// Query is one search request.
type Query struct {
	Q    string
	Type string // TypeSearch (default) or TypeNews
	Num  int    // 0 lets the collaborator decide
}

// Client calls the search endpoint. Safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	country    string
	language   string
	httpClient *http.Client
}

// NewClient builds a client from search config. An empty API key is allowed;
// Search then fails with a ConfigError.
func NewClient(cfg config.SearchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.SearchRequest
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		country:    cfg.Country,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type requestBody struct {
	Q    string `json:"q"`
	GL   string `json:"gl,omitempty"`
	HL   string `json:"hl,omitempty"`
	Type string `json:"type,omitempty"`
	Num  int    `json:"num,omitempty"`
}

type responseBody struct {
	Organic []Result `json:"organic"`
	News    []Result `json:"news"`
}

// Search runs q and returns the collaborator's records in source order.
// News queries read the "news" list and fall back to "organic", and vice versa.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	if c.apiKey == "" {
		return nil, domerrors.NewConfigError(config.EnvSerperAPIKey, "Get a key at https://serper.dev.")
	}

	payload, err := json.Marshal(requestBody{
		Q:    q.Q,
		GL:   c.country,
		HL:   c.language,
		Type: q.Type,
		Num:  q.Num,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domerrors.NewUpstreamError(serviceName, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, domerrors.NewUpstreamError(serviceName, resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxResponseBody {
		return nil, domerrors.NewFormatError(serviceName, "response body exceeds size limit", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domerrors.NewUpstreamError(serviceName, resp.StatusCode, stringutil.Truncate(string(body), maxErrorBody), nil)
	}

	var parsed responseBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domerrors.NewFormatError(serviceName, "decode body", err)
	}

	primary, secondary := parsed.Organic, parsed.News
	if q.Type == TypeNews {
		primary, secondary = secondary, primary
	}
	if len(primary) == 0 {
		return secondary, nil
	}
	return primary, nil
}
