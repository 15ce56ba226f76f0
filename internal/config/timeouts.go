// Package config provides centralized timeout constants for the application.
//
// Every outbound call made while answering a prompt runs under the request
// deadline (RequestProcessing) and its own per-collaborator timeout, whichever
// fires first. A prompt never waits on more than one collaborator at a time, so
// the worst case is one scrape or search followed by one completion.
package config

import "time"

// HTTP server timeouts
const (
	// RequestProcessing bounds the whole pipeline for a single prompt.
	// Covers one retrieval call plus one completion call.
	RequestProcessing = 60 * time.Second

	// HTTPRead is the HTTP server read timeout. Prompts are small JSON bodies.
	HTTPRead = 10 * time.Second

	// HTTPWrite must accommodate RequestProcessing + response serialization.
	HTTPWrite = 65 * time.Second

	// ResponseWriteMargin is added to a configured request timeout to get the
	// server write timeout, leaving room to serialize the error envelope.
	ResponseWriteMargin = 5 * time.Second

	// HTTPIdle is the HTTP server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Collaborator timeouts
const (
	// CompletionRequest is the timeout for one chat-completion call.
	// Large models can take tens of seconds for a 600-token answer.
	CompletionRequest = 45 * time.Second

	// SearchRequest is the timeout for one search API call.
	SearchRequest = 15 * time.Second

	// ScraperRequest is the timeout for fetching the news page.
	ScraperRequest = 20 * time.Second

	// KnowledgeDownload is the timeout for fetching the knowledge base from R2 at startup.
	KnowledgeDownload = 30 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second

	// LogFlush bounds how long remote log shipping may delay process exit.
	LogFlush = 5 * time.Second
)

// WriteTimeout is the HTTP server write timeout for a request timeout.
// It never drops below HTTPWrite.
func WriteTimeout(requestTimeout time.Duration) time.Duration {
	return max(HTTPWrite, requestTimeout+ResponseWriteMargin)
}
