// Package metrics defines the Prometheus metrics exported on /metrics.
// All Record* methods are safe to call on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Upstream collaborator metrics (completion, search, scrape)
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamDurationSeconds *prometheus.HistogramVec

	// Pipeline metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// LLM token usage
	LLMTokensTotal *prometheus.CounterVec

	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Knowledge base
	KnowledgeTopics *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapgpt_upstream_requests_total",
				Help: "Total number of collaborator calls by service and status",
			},
			[]string{"service", "status"}, // service: completion, search, scrape; status: success, error
		),

		UpstreamDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mapgpt_upstream_duration_seconds",
				Help:    "Collaborator call duration in seconds by service",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45},
			},
			[]string{"service"},
		),

		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapgpt_chat_requests_total",
				Help: "Total number of answered prompts by pipeline stage and status",
			},
			[]string{"stage", "status"}, // stage: help, out_of_domain, news_source, topic, recency, web, passthrough
		),

		ChatDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mapgpt_chat_duration_seconds",
				Help:    "End-to-end prompt processing duration in seconds by pipeline stage",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),

		LLMTokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapgpt_llm_tokens_total",
				Help: "Total LLM tokens by provider and kind",
			},
			[]string{"provider", "kind"}, // kind: prompt, completion
		),

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mapgpt_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"event_type"},
		),

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapgpt_webhook_requests_total",
				Help: "Total number of webhook events by type and status",
			},
			[]string{"event_type", "status"},
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapgpt_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: validation, config, upstream, internal, invalid_signature
		),

		KnowledgeTopics: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mapgpt_knowledge_topics",
				Help: "Number of topics in the loaded knowledge base by source",
			},
			[]string{"source"}, // source: embedded, file, r2
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordUpstream records one collaborator call
func (m *Metrics) RecordUpstream(service string, duration float64, err error) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(service, status(err)).Inc()
	m.UpstreamDurationSeconds.WithLabelValues(service).Observe(duration)
}

// RecordChat records one processed prompt
func (m *Metrics) RecordChat(stage string, duration float64, err error) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(stage, status(err)).Inc()
	m.ChatDurationSeconds.WithLabelValues(stage).Observe(duration)
}

// RecordTokens records LLM token usage
func (m *Metrics) RecordTokens(provider string, prompt, completion int64) {
	if m == nil {
		return
	}
	if prompt > 0 {
		m.LLMTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		m.LLMTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	}
}

// RecordWebhook records a webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	if m == nil {
		return
	}
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// SetKnowledgeTopics records the size of the loaded knowledge base
func (m *Metrics) SetKnowledgeTopics(source string, n int) {
	if m == nil {
		return
	}
	m.KnowledgeTopics.Reset()
	m.KnowledgeTopics.WithLabelValues(source).Set(float64(n))
}
