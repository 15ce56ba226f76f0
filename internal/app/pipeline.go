package app

import (
	"context"
	"fmt"

	"github.com/mapgpt/mapgpt-go/internal/chat"
	"github.com/mapgpt/mapgpt-go/internal/config"
	"github.com/mapgpt/mapgpt-go/internal/genai"
	"github.com/mapgpt/mapgpt-go/internal/knowledge"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/metrics"
	"github.com/mapgpt/mapgpt-go/internal/retrieval"
	"github.com/mapgpt/mapgpt-go/internal/scraper"
	"github.com/mapgpt/mapgpt-go/internal/search"
)

// Pipeline is the chat service together with what it was built from.
type Pipeline struct {
	Base      *knowledge.Base
	Source    string
	Completer genai.Completer
	Service   *chat.Service
}

// BuildPipeline loads the knowledge base and wires the retrieval and
// completion collaborators into a chat service. m may be nil.
func BuildPipeline(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*Pipeline, error) {
	base, source, err := LoadKnowledge(ctx, cfg.Knowledge, log)
	if err != nil {
		return nil, err
	}

	var recorder genai.Recorder
	if m != nil {
		recorder = m
	}
	completer, err := genai.New(ctx, cfg.LLM, recorder)
	if err != nil {
		return nil, fmt.Errorf("completion client: %w", err)
	}

	return newPipeline(cfg, base, source, completer, m, log), nil
}

func newPipeline(cfg *config.Config, base *knowledge.Base, source string, completer genai.Completer, m *metrics.Metrics, log *logger.Logger) *Pipeline {
	m.SetKnowledgeTopics(source, base.Topics.Len())
	scraperClient := scraper.NewClient(cfg.Scraper.Timeout)

	opts := retrieval.Options{
		InstitutionTokens: base.InstitutionTokens,
		Scope:             base.General.ShortName,
		RecencyWindow:     cfg.Search.RecencyWindow,
		Limit:             cfg.Search.Limit,
		WebSearch:         cfg.Search.WebEnabled,
	}
	var chatRecorder chat.Recorder
	if m != nil {
		opts.Recorder = m
		chatRecorder = m
	}
	dispatcher := retrieval.NewDispatcher(
		retrieval.ScrapedNews(scraperClient, cfg.Scraper.NewsURL),
		search.NewClient(cfg.Search),
		opts,
	)

	service := chat.NewService(base, dispatcher, completer, log, chat.Options{
		SystemRole: cfg.LLM.SystemRole,
		Recorder:   chatRecorder,
	})

	return &Pipeline{
		Base:      base,
		Source:    source,
		Completer: completer,
		Service:   service,
	}
}
