package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamic-campus/leadgen-cli/internal/config"
	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

var feedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item>
		<title>%s</title>
		<link>%s</link>
		<description>Coverage from around campus.</description>
		<pubDate>%s</pubDate>
	</item>`, title, link, published.Format(time.RFC1123Z))
}

func rssFeed(title string, items ...string) string {
	body := ""
	for _, it := range items {
		body += it
	}
	return fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title>%s</channel></rss>`, title, body)
}

func newTestRSSFetcher(t *testing.T, urls []string) *RSSFetcher {
	t.Helper()
	f := NewRSSFetcher(config.FeedsConfig{
		URLs:       urls,
		WindowDays: 7,
		MaxPerFeed: 10,
	}, nil)
	f.now = func() time.Time { return feedNow }
	return f
}

func TestFetchArticles(t *testing.T) {
	t.Run("keeps recent tech items", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, rssFeed("Higher Ed Wire",
				rssItem("Acme State plans ERP overhaul", "https://news.example.com/a", feedNow.AddDate(0, 0, -1)),
				rssItem("New stadium seating announced", "https://news.example.com/b", feedNow.AddDate(0, 0, -1)),
				rssItem("Old cloud migration story", "https://news.example.com/c", feedNow.AddDate(0, 0, -30)),
			))
		}))
		defer srv.Close()

		items, err := newTestRSSFetcher(t, []string{srv.URL}).FetchArticles(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Acme State plans ERP overhaul", items[0].Title)
		assert.Equal(t, "Higher Ed Wire", items[0].SourceName)
		assert.Equal(t, model.OriginArticle, items[0].OriginKind)
	})

	t.Run("failed feed is skipped not fatal", func(t *testing.T) {
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, rssFeed("Good Feed",
				rssItem("College cybersecurity incident response", "https://news.example.com/d", feedNow.AddDate(0, 0, -2)),
			))
		}))
		defer good.Close()
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer bad.Close()

		items, err := newTestRSSFetcher(t, []string{bad.URL, good.URL}).FetchArticles(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "College cybersecurity incident response", items[0].Title)
	})

	t.Run("duplicate urls across feeds collapse", func(t *testing.T) {
		payload := rssFeed("Feed",
			rssItem("Statewide LMS consolidation", "https://news.example.com/shared", feedNow.AddDate(0, 0, -1)),
		)
		srv1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, payload)
		}))
		defer srv1.Close()
		srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, payload)
		}))
		defer srv2.Close()

		items, err := newTestRSSFetcher(t, []string{srv1.URL, srv2.URL}).FetchArticles(context.Background())
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("disabled feed never fetched", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			fmt.Fprint(w, rssFeed("Feed"))
		}))
		defer srv.Close()

		health := NewHealthTracker(t.TempDir()+"/health.json", 1)
		health.RecordFailure(srv.URL, fmt.Errorf("boom"))

		f := NewRSSFetcher(config.FeedsConfig{URLs: []string{srv.URL}, WindowDays: 7}, health)
		f.now = func() time.Time { return feedNow }

		items, err := f.FetchArticles(context.Background())
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.False(t, called)
	})
}

func TestTechRelevant(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"University launches cloud migration", true},
		{"ERP selection committee formed", true},
		{"Football team wins championship", false},
		{"Dining hall renovation complete", false},
		{"AI governance task force", true},
		// "ai" must not match inside a word
		{"Repair work on main quad", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, techRelevant(tt.text))
		})
	}
}
