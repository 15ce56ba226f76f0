// Package scraper fetches and parses HTML pages for news retrieval.
package scraper

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

const (
	serviceName  = "scrape"
	maxErrorBody = 1024
)

// Client is an HTTP client for scraping. Each call makes exactly one request;
// failures are returned to the caller, never retried.
type Client struct {
	httpClient *http.Client
	userAgent  func() string
}

// NewClient creates a new scraper client
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				// gzip is decoded in GetDocument.
				DisableCompression: true,
			},
		},
		userAgent: uarand.GetRandom,
	}
}

// Get performs a single GET with a browser-like User-Agent.
// The caller must close the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-NG,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domerrors.NewUpstreamError(serviceName, 0, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, domerrors.NewUpstreamError(serviceName, resp.StatusCode, stringutil.CollapseSpace(string(body)), nil)
	}
	return resp, nil
}

// GetDocument fetches url and parses it as HTML, decoding gzip bodies and
// non-UTF-8 charsets announced in the Content-Type header.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, domerrors.NewFormatError(serviceName, "decompress gzip", err)
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	doc, err := goquery.NewDocumentFromReader(decodeCharset(reader, resp.Header.Get("Content-Type")))
	if err != nil {
		return nil, domerrors.NewFormatError(serviceName, "parse HTML", err)
	}
	return doc, nil
}

// decodeCharset wraps r with a decoder for the charset named in contentType.
// UTF-8, missing and unrecognized charsets pass through unchanged.
func decodeCharset(r io.Reader, contentType string) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r
	}
	name := strings.ToLower(strings.TrimSpace(params["charset"]))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}
