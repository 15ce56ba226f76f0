// Package mapoly scrapes the MAPOLY news listing.
package mapoly

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mapgpt/mapgpt-go/internal/scraper"
	"github.com/mapgpt/mapgpt-go/internal/search"
	"github.com/mapgpt/mapgpt-go/internal/sliceutil"
	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

const (
	// DefaultNewsURL is the tag page listing MAPOLY news posts.
	DefaultNewsURL = "https://www.myschoolgist.com/ng/tag/www-mapoly-edu-ng/"

	noTitle   = "No title"
	noSummary = "No summary"
)

// ScrapeNews fetches pageURL and returns one result per <article>, in page order.
func ScrapeNews(ctx context.Context, client *scraper.Client, pageURL string) ([]search.Result, error) {
	doc, err := client.GetDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news page: %w", err)
	}
	return parseNewsPage(doc, pageURL), nil
}

// parseNewsPage extracts posts from a WordPress-style listing:
//
//	<article>
//	  <h2><a href="/ng/post">Title</a></h2>
//	  <time datetime="2025-04-01T09:00:00+01:00">April 1, 2025</time>
//	  <p>Summary</p>
//	</article>
func parseNewsPage(doc *goquery.Document, pageURL string) []search.Result {
	base, _ := url.Parse(pageURL)

	results := make([]search.Result, 0)
	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		title := stringutil.CollapseSpace(article.Find("h2").First().Text())
		if title == "" {
			title = noTitle
		}

		summary := stringutil.CollapseSpace(article.Find("p").First().Text())
		if summary == "" {
			summary = noSummary
		}

		link := pageURL
		if href, ok := article.Find("a[href]").First().Attr("href"); ok {
			link = resolve(base, href, pageURL)
		}

		results = append(results, search.Result{
			Title:   title,
			Link:    link,
			Snippet: summary,
			Date:    publishedAt(article),
		})
	})

	return sliceutil.Deduplicate(results, func(r search.Result) string { return r.Link + "\x00" + r.Title })
}

// publishedAt prefers the machine-readable datetime attribute over the display text.
func publishedAt(article *goquery.Selection) string {
	t := article.Find("time").First()
	if dt, ok := t.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	return stringutil.CollapseSpace(t.Text())
}

func resolve(base *url.URL, href, fallback string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return fallback
	}
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
