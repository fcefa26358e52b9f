package scraper_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
	"github.com/jonesrussell/content-engine/internal/scraper"
)

func TestCleanHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty input", raw: "", want: ""},
		{name: "plain text unchanged", raw: "hello world", want: "hello world"},
		{name: "tags stripped", raw: "<p>hello <b>world</b></p>", want: "hello world"},
		{
			name: "boilerplate removed",
			raw:  "<p>story text. Continue reading</p>",
			want: "story text.",
		},
		{
			name: "whitespace collapsed",
			raw:  "<div>one\n\n  two\tthree</div>",
			want: "one two three",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, scraper.CleanHTML(tt.raw))
		})
	}
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Fresh Story With Enough Words</title>
      <link>https://example.com/fresh</link>
      <pubDate>%s</pubDate>
      <description>%s</description>
    </item>
    <item>
      <title>Too Short</title>
      <link>https://example.com/short</link>
      <pubDate>%s</pubDate>
      <description>tiny</description>
    </item>
  </channel>
</rss>`

func TestRSSSource_Fetch(t *testing.T) {
	t.Parallel()

	longBody := strings.Repeat("word ", 60)
	now := timeRFC1123Now()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssFixture, now, longBody, now)
	}))
	defer server.Close()

	source := scraper.NewRSSSource(
		[]scraper.FeedSource{{Name: "Test Feed", URL: server.URL}},
		logger.NewNop(),
	)

	items, fetchErr := source.Fetch(context.Background(), 10)
	require.NoError(t, fetchErr)

	// The short item is filtered by the minimum word count.
	require.Len(t, items, 1)
	assert.Equal(t, "Fresh Story With Enough Words", items[0].Title)
	assert.Equal(t, "Test Feed", items[0].SourceName)
	assert.Equal(t, domain.SourceRSS, items[0].SourceType)
	assert.NotEmpty(t, items[0].Slug)
	assert.False(t, items[0].PublishedAt.IsZero())
}

func TestRSSSource_AllFeedsFailing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := scraper.NewRSSSource(
		[]scraper.FeedSource{{Name: "Broken", URL: server.URL}},
		logger.NewNop(),
	)

	_, fetchErr := source.Fetch(context.Background(), 10)
	assert.Error(t, fetchErr)
}

func TestNewsAPISource_Fetch(t *testing.T) {
	t.Parallel()

	longContent := strings.Repeat("word ", 30)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "Example Wire"},
					"author": "Jo Reporter",
					"title": "Economy Grows",
					"content": %q,
					"url": "https://example.com/economy",
					"urlToImage": "https://example.com/img.jpg",
					"publishedAt": "2026-08-30T10:00:00Z"
				},
				{
					"source": {"name": "Example Wire"},
					"title": "[Removed]",
					"content": "gone"
				}
			]
		}`, longContent)
	}))
	defer server.Close()

	source := scraper.NewNewsAPISource("test-key", logger.NewNop()).WithBaseURL(server.URL)

	items, fetchErr := source.Fetch(context.Background(), 20)
	require.NoError(t, fetchErr)

	require.Len(t, items, 1)
	assert.Equal(t, "Economy Grows", items[0].Title)
	assert.Equal(t, "Example Wire", items[0].SourceName)
	assert.Equal(t, domain.SourceNewsAPI, items[0].SourceType)
	assert.Equal(t, "Jo Reporter", items[0].Author)
}

func TestNewsAPISource_NoKeyYieldsNothing(t *testing.T) {
	t.Parallel()

	source := scraper.NewNewsAPISource("", logger.NewNop())

	items, fetchErr := source.Fetch(context.Background(), 20)
	require.NoError(t, fetchErr)
	assert.Empty(t, items)
}

func TestNewsAPISource_UpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := scraper.NewNewsAPISource("test-key", logger.NewNop()).WithBaseURL(server.URL)

	_, fetchErr := source.Fetch(context.Background(), 20)
	assert.Error(t, fetchErr)
}

const tradingViewFixture = `<html><body><table><tbody>
  <tr data-rowkey="SP:SPX">
    <td>S&amp;P 500</td><td>US$5,432.10</td><td>+1.25%</td><td>+67.20</td><td>5,440.00</td><td>5,380.00</td>
  </tr>
  <tr data-rowkey="NSE:NIFTY">
    <td>Nifty 50</td><td>₹24,010.50</td><td>−0.40%</td><td>−96.40</td><td>24,120.00</td><td>23,980.00</td>
  </tr>
  <tr><td>row without key is skipped</td></tr>
</tbody></table></body></html>`

func TestTradingViewSource_FetchQuotes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, tradingViewFixture)
	}))
	defer server.Close()

	source := scraper.NewTradingViewSource(server.URL, logger.NewNop())

	quotes, fetchErr := source.FetchQuotes(context.Background(), 0)
	require.NoError(t, fetchErr)
	require.Len(t, quotes, 2)

	spx := quotes[0]
	assert.Equal(t, "SPX", spx.Symbol)
	assert.Equal(t, "SP", spx.Exchange)
	assert.Equal(t, "S&P 500", spx.Name)
	assert.InDelta(t, 5432.10, spx.Last, 0.001)
	assert.InDelta(t, 1.25, spx.ChangePercent, 0.001)
	assert.Equal(t, "USD", spx.Currency)

	nifty := quotes[1]
	assert.Equal(t, "NIFTY", nifty.Symbol)
	assert.Equal(t, "INR", nifty.Currency)
	assert.InDelta(t, -0.40, nifty.ChangePercent, 0.001)
	assert.InDelta(t, -96.40, nifty.Change, 0.001)
}

func TestTradingViewSource_LimitTruncates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, tradingViewFixture)
	}))
	defer server.Close()

	source := scraper.NewTradingViewSource(server.URL, logger.NewNop())

	quotes, fetchErr := source.FetchQuotes(context.Background(), 1)
	require.NoError(t, fetchErr)
	assert.Len(t, quotes, 1)
}

func TestTradingViewSource_NoRows(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body><p>maintenance</p></body></html>")
	}))
	defer server.Close()

	source := scraper.NewTradingViewSource(server.URL, logger.NewNop())

	_, fetchErr := source.FetchQuotes(context.Background(), 0)
	assert.Error(t, fetchErr)
}

// timeRFC1123Now formats the current time the way RSS pubDate expects.
func timeRFC1123Now() string {
	return time.Now().UTC().Format(http.TimeFormat)
}
