// Package retrieval decides whether a prompt needs live data and fetches it:
// a scrape of the institution's news page, a recency-windowed news search, or
// a general web search. Results are rendered as a digest for the prompt.
package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mapgpt/mapgpt-go/internal/config"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/rank"
	"github.com/mapgpt/mapgpt-go/internal/scraper"
	"github.com/mapgpt/mapgpt-go/internal/scraper/mapoly"
	"github.com/mapgpt/mapgpt-go/internal/search"
	"github.com/mapgpt/mapgpt-go/internal/stringutil"
	"github.com/mapgpt/mapgpt-go/internal/timeparse"
)

// Intent is the retrieval chosen for a prompt.
type Intent string

// Intents in precedence order.
const (
	IntentNewsSource Intent = "news_source"
	IntentRecency    Intent = "recency"
	IntentWeb        Intent = "web"
	IntentNone       Intent = "none"
)

var (
	newsSourceTerms = []string{"news", "information", "updates"}
	newsTerms       = []string{"news", "updates"}
	recencyTerms    = []string{"latest", "today", "recent", "happening now", "news"}
)

// Searcher is the search collaborator.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
}

// NewsFunc fetches the institution's news listing in page order.
type NewsFunc func(ctx context.Context) ([]search.Result, error)

// Recorder receives collaborator timings. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordUpstream(service string, duration float64, err error)
}

// Options configures a Dispatcher.
type Options struct {
	// InstitutionTokens trigger the news-source branch together with a news term.
	InstitutionTokens []string
	// Scope is appended to search queries that do not already name the institution.
	Scope         string
	RecencyWindow time.Duration
	Limit         int
	// WebSearch enables the general search branch; when false such prompts get no retrieval.
	WebSearch bool
	Now       func() time.Time
	Recorder  Recorder
}

// Dispatcher classifies prompts and performs at most one retrieval call per prompt.
type Dispatcher struct {
	news     NewsFunc
	searcher Searcher
	opts     Options
}

// Result is the outcome of one retrieval.
type Result struct {
	Intent Intent
	Digest string // empty only for IntentNone
	Count  int    // results included in the digest
}

// NewDispatcher creates a dispatcher. news or searcher may be nil when the
// corresponding branch is never reached.
func NewDispatcher(news NewsFunc, searcher Searcher, opts Options) *Dispatcher {
	if opts.Limit <= 0 {
		opts.Limit = rank.DefaultLimit
	}
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = 30 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	tokens := make([]string, len(opts.InstitutionTokens))
	for i, tok := range opts.InstitutionTokens {
		tokens[i] = strings.ToLower(tok)
	}
	opts.InstitutionTokens = tokens
	return &Dispatcher{news: news, searcher: searcher, opts: opts}
}

// Classify picks the retrieval for a lowercased prompt. First match wins:
// institution token with a news term, then a recency term, then web search.
func (d *Dispatcher) Classify(promptLower string) Intent {
	switch {
	case d.IsNewsSource(promptLower):
		return IntentNewsSource
	case stringutil.ContainsAny(promptLower, recencyTerms...):
		return IntentRecency
	case d.opts.WebSearch:
		return IntentWeb
	default:
		return IntentNone
	}
}

// IsNewsSource reports whether the prompt asks for the institution's own news.
func (d *Dispatcher) IsNewsSource(promptLower string) bool {
	return stringutil.ContainsAny(promptLower, d.opts.InstitutionTokens...) &&
		stringutil.ContainsAny(promptLower, newsSourceTerms...)
}

// MentionsNews reports whether the prompt asks for news at all, with or
// without naming the institution.
func (d *Dispatcher) MentionsNews(promptLower string) bool {
	return stringutil.ContainsAny(promptLower, newsTerms...)
}

// Retrieve classifies prompt and performs the matching retrieval.
func (d *Dispatcher) Retrieve(ctx context.Context, prompt string) (Result, error) {
	return d.Fetch(ctx, d.Classify(strings.ToLower(prompt)), prompt)
}

// Fetch performs the retrieval for intent. Any collaborator error fails the
// call; zero results yield the intent's literal digest instead.
func (d *Dispatcher) Fetch(ctx context.Context, intent Intent, prompt string) (Result, error) {
	switch intent {
	case IntentNewsSource:
		return d.fetchNewsSource(ctx)
	case IntentRecency, IntentWeb:
		return d.fetchSearch(ctx, intent, prompt)
	default:
		return Result{Intent: IntentNone}, nil
	}
}

func (d *Dispatcher) fetchNewsSource(ctx context.Context) (Result, error) {
	wrapper := domerrors.NewWrapper("retrieval", "scrape_news")
	if d.news == nil {
		return Result{}, wrapper.Wrap(domerrors.NewConfigError(config.EnvNewsURL, ""), "news source not configured")
	}

	start := time.Now()
	items, err := d.news(ctx)
	d.record("scrape", start, err)
	if err != nil {
		return Result{}, wrapper.Wrap(err, "Failed to fetch news from the Mapoly blog")
	}

	// Page order is kept; only the count is bounded.
	now := d.opts.Now()
	ranked := make([]rank.Ranked, 0, min(len(items), d.opts.Limit))
	for _, item := range items[:min(len(items), d.opts.Limit)] {
		ranked = append(ranked, rank.Ranked{Result: item, SortTimestamp: timeparse.Normalize(item.Date, now)})
	}

	slog.DebugContext(ctx, "News source scraped", "articles", len(items), "kept", len(ranked))
	return Result{
		Intent: IntentNewsSource,
		Digest: FormatDigest(ranked, NoNewsSourceResults),
		Count:  len(ranked),
	}, nil
}

func (d *Dispatcher) fetchSearch(ctx context.Context, intent Intent, prompt string) (Result, error) {
	wrapper := domerrors.NewWrapper("retrieval", "search_"+string(intent))
	if d.searcher == nil {
		return Result{}, wrapper.Wrap(domerrors.NewConfigError(config.EnvSerperAPIKey, ""), "search not configured")
	}

	q := search.Query{Q: d.scoped(prompt)}
	empty := NoWebResults
	now := d.opts.Now()
	opts := rank.Options{Limit: d.opts.Limit}
	if intent == IntentRecency {
		q.Type = search.TypeNews
		empty = NoRecentResults
		opts.Since = rank.WindowStart(now, d.opts.RecencyWindow)
	}

	start := time.Now()
	items, err := d.searcher.Search(ctx, q)
	d.record("search", start, err)
	if err != nil {
		return Result{}, wrapper.Wrapf(err, "Search for %q failed", q.Q)
	}

	ranked := rank.Rank(items, opts, now)
	slog.DebugContext(ctx, "Search completed",
		"intent", string(intent), "results", len(items), "kept", len(ranked))
	return Result{
		Intent: intent,
		Digest: FormatDigest(ranked, empty),
		Count:  len(ranked),
	}, nil
}

func (d *Dispatcher) scoped(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if d.opts.Scope == "" || stringutil.ContainsAny(strings.ToLower(prompt), d.opts.InstitutionTokens...) {
		return prompt
	}
	return prompt + " " + d.opts.Scope
}

func (d *Dispatcher) record(service string, start time.Time, err error) {
	if d.opts.Recorder != nil {
		d.opts.Recorder.RecordUpstream(service, time.Since(start).Seconds(), err)
	}
}

// ScrapedNews adapts the MAPOLY news scraper to a NewsFunc.
func ScrapedNews(client *scraper.Client, pageURL string) NewsFunc {
	return func(ctx context.Context) ([]search.Result, error) {
		return mapoly.ScrapeNews(ctx, client, pageURL)
	}
}
