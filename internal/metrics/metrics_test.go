package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.UpstreamRequestsTotal == nil || m.UpstreamDurationSeconds == nil {
		t.Error("upstream metrics not initialized")
	}
	if m.ChatRequestsTotal == nil || m.ChatDurationSeconds == nil {
		t.Error("chat metrics not initialized")
	}
	if m.WebhookRequestsTotal == nil || m.HTTPErrorsTotal == nil || m.KnowledgeTopics == nil {
		t.Error("auxiliary metrics not initialized")
	}
}

func TestRecordUpstream(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordUpstream("search", 0.4, nil)
	m.RecordUpstream("search", 1.2, nil)
	m.RecordUpstream("completion", 3.0, errors.New("status 500"))

	if got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("search", "success")); got != 2 {
		t.Errorf("search success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("completion", "error")); got != 1 {
		t.Errorf("completion error = %v, want 1", got)
	}
}

func TestRecordChat(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordChat("help", 0.001, nil)
	m.RecordChat("news_source", 2.5, errors.New("scrape failed"))

	if got := testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("help", "success")); got != 1 {
		t.Errorf("help success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("news_source", "error")); got != 1 {
		t.Errorf("news_source error = %v, want 1", got)
	}
}

func TestRecordTokens(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTokens("xai", 120, 80)
	m.RecordTokens("xai", 0, 20)

	if got := testutil.ToFloat64(m.LLMTokensTotal.WithLabelValues("xai", "prompt")); got != 120 {
		t.Errorf("prompt tokens = %v, want 120", got)
	}
	if got := testutil.ToFloat64(m.LLMTokensTotal.WithLabelValues("xai", "completion")); got != 100 {
		t.Errorf("completion tokens = %v, want 100", got)
	}
}

func TestSetKnowledgeTopics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetKnowledgeTopics("embedded", 3)
	m.SetKnowledgeTopics("r2", 5)

	if got := testutil.CollectAndCount(m.KnowledgeTopics); got != 1 {
		t.Errorf("expected one source series after reload, got %d", got)
	}
	if got := testutil.ToFloat64(m.KnowledgeTopics.WithLabelValues("r2")); got != 5 {
		t.Errorf("r2 topics = %v, want 5", got)
	}
}

func TestRecordWebhookAndHTTPError(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordWebhook("message", "success", 0.2)
	m.RecordHTTPError("validation", "api")

	if got := testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "success")); got != 1 {
		t.Errorf("webhook = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("validation", "api")); got != 1 {
		t.Errorf("http errors = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// Should not panic
	m.RecordUpstream("search", 1, nil)
	m.RecordChat("web", 1, nil)
	m.RecordTokens("xai", 1, 1)
	m.RecordWebhook("message", "success", 1)
	m.RecordHTTPError("internal", "api")
	m.SetKnowledgeTopics("embedded", 1)
}
