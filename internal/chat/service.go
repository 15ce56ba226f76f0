package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/genai"
	"github.com/mapgpt/mapgpt-go/internal/knowledge"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/retrieval"
)

// Stage names the pipeline branch that produced an answer.
type Stage string

// Stages in precedence order.
const (
	StageHelp        Stage = "help"
	StageOutOfDomain Stage = "out_of_domain"
	StageNewsSource  Stage = "news_source"
	StageTopic       Stage = "topic"
	StageRecency     Stage = "recency"
	StageWeb         Stage = "web"
	StagePassthrough Stage = "passthrough"
)

// Retriever is the retrieval dispatcher as seen by the pipeline.
type Retriever interface {
	IsNewsSource(promptLower string) bool
	MentionsNews(promptLower string) bool
	Classify(promptLower string) retrieval.Intent
	Fetch(ctx context.Context, intent retrieval.Intent, prompt string) (retrieval.Result, error)
}

// Recorder receives per-prompt metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordChat(stage string, duration float64, err error)
}

// Answer is the outcome of one prompt.
type Answer struct {
	Text   string
	Stage  Stage
	Topics []string // topics whose context was supplied
	// Sources is the number of retrieved items in the digest.
	Sources int
}

// request carries the per-prompt values shared by predicates and handlers.
type request struct {
	prompt string
	lower  string
}

// step is one (predicate, handler) pair. The first step whose predicate holds
// handles the prompt.
type step struct {
	stage Stage
	when  func(r request) bool
	run   func(ctx context.Context, r request) (Answer, error)
}

// Service answers prompts. It is safe for concurrent use; the knowledge base
// is never mutated after construction.
type Service struct {
	base      *knowledge.Base
	composer  *Composer
	retriever Retriever
	completer genai.Completer
	recorder  Recorder
	logger    *logger.Logger
	steps     []step
}

// Options configures a Service.
type Options struct {
	SystemRole bool
	Recorder   Recorder // may be nil
}

// NewService wires the pipeline.
func NewService(base *knowledge.Base, retriever Retriever, completer genai.Completer, log *logger.Logger, opts Options) *Service {
	s := &Service{
		base:      base,
		composer:  NewComposer(base, opts.SystemRole),
		retriever: retriever,
		completer: completer,
		recorder:  opts.Recorder,
		logger:    log.WithModule("chat"),
	}
	s.steps = []step{
		{stage: StageHelp, when: s.isHelp, run: s.canned(StageHelp)},
		{stage: StageOutOfDomain, when: s.isOutOfDomain, run: s.canned(StageOutOfDomain)},
		{stage: StageNewsSource, when: s.isNewsSource, run: s.retrieve(StageNewsSource, retrieval.IntentNewsSource)},
		{stage: StageRecency, when: s.isRecency, run: s.retrieve(StageRecency, retrieval.IntentRecency)},
		{stage: StageTopic, when: s.hasTopic, run: s.answerFromTopics},
		{stage: StageWeb, when: s.intentIs(retrieval.IntentWeb), run: s.retrieve(StageWeb, retrieval.IntentWeb)},
		{stage: StagePassthrough, when: func(request) bool { return true }, run: s.passthrough},
	}
	return s
}

// Stages returns the pipeline stages in evaluation order.
func (s *Service) Stages() []Stage {
	out := make([]Stage, len(s.steps))
	for i, st := range s.steps {
		out[i] = st.stage
	}
	return out
}

// Answer runs prompt through the pipeline. A blank prompt is a ValidationError.
// At most one retrieval call and one completion call are made, in that order.
func (s *Service) Answer(ctx context.Context, prompt string) (Answer, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Answer{}, domerrors.NewValidationError("prompt", "Prompt is required and must be a non-empty string")
	}

	r := request{prompt: prompt, lower: strings.ToLower(prompt)}
	for _, st := range s.steps {
		if !st.when(r) {
			continue
		}

		start := time.Now()
		answer, err := st.run(ctx, r)
		duration := time.Since(start)
		if s.recorder != nil {
			s.recorder.RecordChat(string(st.stage), duration.Seconds(), err)
		}

		log := s.logger.WithFields(map[string]any{
			"stage":       st.stage,
			"duration_ms": duration.Milliseconds(),
		})
		if err != nil {
			log.WithError(err).ErrorContext(ctx, "prompt failed")
			return Answer{}, err
		}
		log.WithFields(map[string]any{
			"topics":  answer.Topics,
			"sources": answer.Sources,
		}).InfoContext(ctx, "prompt answered")
		return answer, nil
	}

	// The passthrough step always matches.
	return Answer{}, errors.New("chat: no pipeline stage matched")
}

func (s *Service) isHelp(r request) bool {
	return s.base.IsHelp(r.prompt)
}

func (s *Service) isOutOfDomain(r request) bool {
	return !s.base.InDomain(r.lower)
}

func (s *Service) isNewsSource(r request) bool {
	return s.retriever.IsNewsSource(r.lower)
}

func (s *Service) hasTopic(r request) bool {
	return len(s.base.Topics.MatchedTopics(r.lower)) > 0
}

// isRecency holds for recency prompts, except that a prompt naming a topic
// stays with the topic unless it asks for news.
func (s *Service) isRecency(r request) bool {
	if s.retriever.Classify(r.lower) != retrieval.IntentRecency {
		return false
	}
	return !s.hasTopic(r) || s.retriever.MentionsNews(r.lower)
}

func (s *Service) intentIs(intent retrieval.Intent) func(request) bool {
	return func(r request) bool {
		return s.retriever.Classify(r.lower) == intent
	}
}

func (s *Service) canned(stage Stage) func(context.Context, request) (Answer, error) {
	return func(_ context.Context, r request) (Answer, error) {
		text, _, _ := s.composer.ShortCircuit(r.prompt)
		return Answer{Text: text, Stage: stage}, nil
	}
}

func (s *Service) answerFromTopics(ctx context.Context, r request) (Answer, error) {
	topics := s.base.Topics.MatchedTopics(r.lower)
	text, err := s.complete(ctx, r.prompt, s.base.Topics.Match(r.lower))
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text, Stage: StageTopic, Topics: topics}, nil
}

func (s *Service) retrieve(stage Stage, intent retrieval.Intent) func(context.Context, request) (Answer, error) {
	return func(ctx context.Context, r request) (Answer, error) {
		result, err := s.retriever.Fetch(ctx, intent, r.prompt)
		if err != nil {
			return Answer{}, err
		}
		text, err := s.complete(ctx, r.prompt, result.Digest)
		if err != nil {
			return Answer{}, err
		}
		return Answer{Text: text, Stage: stage, Sources: result.Count}, nil
	}
}

func (s *Service) passthrough(ctx context.Context, r request) (Answer, error) {
	text, err := s.complete(ctx, r.prompt, "")
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text, Stage: StagePassthrough}, nil
}

func (s *Service) complete(ctx context.Context, prompt, additional string) (string, error) {
	text, err := s.completer.Complete(ctx, s.composer.Compose(prompt, additional))
	if err != nil {
		return "", domerrors.NewWrapper("chat", "complete").Wrap(err, "completion failed")
	}
	return text, nil
}
