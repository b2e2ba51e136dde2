// Package fetcher collects the day's raw evidence: higher-ed news from RSS
// feeds and IT leadership job postings from Google Jobs. Fetching is the only
// layer that retries; everything downstream treats the evidence set as fixed
// for the run.
package fetcher

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dynamic-campus/leadgen-cli/internal/config"
	"github.com/dynamic-campus/leadgen-cli/internal/model"
	"github.com/dynamic-campus/leadgen-cli/internal/resilience"
)

// techKeywords prefilters articles: an item mentioning none of these is
// campus news with no technology angle and never reaches the oracle.
var techKeywords = []string{
	"cybersecurity", "data", "ai", "artificial intelligence", "technology",
	"digital", "infrastructure", "cio", "erp", "lms", "sis", "software",
	"innovation", "modernization", "it strategy", "cloud", "analytics",
	"machine learning", "automation", "platform", "database",
	"security", "network", "computing", "online learning", "e-learning",
	"edtech", "learning management",
}

// RSSFetcher pulls recent articles from the configured feed list.
type RSSFetcher struct {
	cfg    config.FeedsConfig
	health *HealthTracker
	client *http.Client
	parser *gofeed.Parser
	now    func() time.Time
}

// NewRSSFetcher builds a fetcher from feed configuration.
func NewRSSFetcher(cfg config.FeedsConfig, health *HealthTracker) *RSSFetcher {
	timeout := time.Duration(cfg.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &RSSFetcher{
		cfg:    cfg,
		health: health,
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// FetchArticles pulls every enabled feed concurrently and returns the
// technology-relevant items published within the configured window, ordered
// by feed position for determinism. Individual feed failures are recorded
// and skipped; only a context error aborts the whole fetch.
func (f *RSSFetcher) FetchArticles(ctx context.Context) ([]model.EvidenceItem, error) {
	windowStart := f.now().AddDate(0, 0, -f.windowDays())

	// one result slot per feed keeps output order independent of goroutine
	// scheduling
	results := make([][]model.EvidenceItem, len(f.cfg.URLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, feedURL := range f.cfg.URLs {
		i, feedURL := i, feedURL
		if f.health != nil && !f.health.Enabled(feedURL) {
			zap.S().Debugw("skipping disabled feed", "feed", feedURL)
			continue
		}

		g.Go(func() error {
			items, err := f.fetchOne(gctx, feedURL, windowStart)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.S().Warnw("feed fetch failed", "feed", feedURL, "error", err)
				if f.health != nil {
					f.health.RecordFailure(feedURL, err)
				}
				return nil
			}
			if f.health != nil {
				f.health.RecordSuccess(feedURL)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.EvidenceItem
	for _, items := range results {
		all = append(all, items...)
	}
	return dedupeByURL(all), nil
}

func (f *RSSFetcher) fetchOne(ctx context.Context, feedURL string, windowStart time.Time) ([]model.EvidenceItem, error) {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("rss", feedURL)
	feed, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*gofeed.Feed, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("fetcher: feed %s returned status %d", feedURL, resp.StatusCode),
				resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("fetcher: feed %s returned status %d", feedURL, resp.StatusCode)
		}
		return f.parser.Parse(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	maxItems := f.cfg.MaxPerFeed
	if maxItems <= 0 {
		maxItems = 25
	}

	var items []model.EvidenceItem
	for _, entry := range feed.Items {
		if len(items) >= maxItems {
			break
		}
		published := entryTime(entry)
		if published.IsZero() || published.Before(windowStart) {
			continue
		}
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			continue
		}
		summary := strings.TrimSpace(entry.Description)
		if !techRelevant(title + " " + summary) {
			continue
		}
		items = append(items, model.EvidenceItem{
			Title:       title,
			URL:         link,
			Summary:     summary,
			SourceName:  strings.TrimSpace(feed.Title),
			PublishedAt: published,
			OriginKind:  model.OriginArticle,
		})
	}
	return items, nil
}

func (f *RSSFetcher) windowDays() int {
	if f.cfg.WindowDays > 0 {
		return f.cfg.WindowDays
	}
	return 7
}

func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Time{}
}

// techRelevant reports whether text mentions any technology keyword. Matching
// on word boundaries keeps short keywords like "ai" from firing inside
// ordinary words.
func techRelevant(text string) bool {
	padded := " " + strings.ToLower(nonAlnum.Replace(text)) + " "
	for _, kw := range techKeywords {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

var nonAlnum = strings.NewReplacer(
	",", " ", ".", " ", ";", " ", ":", " ", "!", " ", "?", " ",
	"(", " ", ")", " ", "[", " ", "]", " ", "'", " ", "\"", " ",
	"/", " ", "-", " ",
)

// dedupeByURL keeps the first occurrence of each URL, preserving order.
func dedupeByURL(items []model.EvidenceItem) []model.EvidenceItem {
	seen := map[string]bool{}
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(item.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
