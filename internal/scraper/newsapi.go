package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/httpclient"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// NewsAPI adapter defaults.
const (
	defaultNewsAPIBase    = "https://newsapi.org/v2"
	defaultNewsAPILimit   = 20
	newsAPIRequestTimeout = 30 * time.Second
	newsAPISourceName     = "newsapi"
)

// newsAPIResponse is the top-headlines payload shape.
type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

// newsAPIArticle is one article entry in a NewsAPI response.
type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// NewsAPISource fetches top headlines from newsapi.org.
type NewsAPISource struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	minWords int
	logger   logger.Logger
}

// NewNewsAPISource creates a NewsAPI adapter. An empty API key produces
// an adapter that yields zero items instead of failing.
func NewNewsAPISource(apiKey string, log logger.Logger) *NewsAPISource {
	return &NewsAPISource{
		apiKey:   apiKey,
		baseURL:  defaultNewsAPIBase,
		client:   httpclient.New(&httpclient.Config{Timeout: newsAPIRequestTimeout}),
		minWords: 10,
		logger:   log,
	}
}

// WithBaseURL points the adapter at a different endpoint. Used in tests.
func (s *NewsAPISource) WithBaseURL(baseURL string) *NewsAPISource {
	s.baseURL = baseURL
	return s
}

// Name identifies the adapter.
func (s *NewsAPISource) Name() string {
	return newsAPISourceName
}

// Fetch requests up to limit top headlines.
func (s *NewsAPISource) Fetch(ctx context.Context, limit int) ([]domain.RawItem, error) {
	if s.apiKey == "" {
		s.logger.Warn("NewsAPI key not set, skipping")
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultNewsAPILimit
	}

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("sortBy", "publishedAt")

	endpoint := s.baseURL + "/top-headlines?" + params.Encode()

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("build newsapi request: %w", reqErr)
	}

	resp, doErr := s.client.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("newsapi request: %w", doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d", resp.StatusCode)
	}

	var payload newsAPIResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", decodeErr)
	}

	items := make([]domain.RawItem, 0, len(payload.Articles))
	for i := range payload.Articles {
		if item, ok := s.parseArticle(&payload.Articles[i]); ok {
			items = append(items, item)
		}
	}

	s.logger.Info("NewsAPI fetch complete", logger.Int("items", len(items)))
	return items, nil
}

// parseArticle converts one NewsAPI entry into a raw item, dropping
// entries without a usable title or body.
func (s *NewsAPISource) parseArticle(a *newsAPIArticle) (domain.RawItem, bool) {
	if a.Title == "" || a.Title == "[Removed]" {
		return domain.RawItem{}, false
	}

	content := CleanHTML(a.Content)
	if content == "" {
		content = CleanHTML(a.Description)
	}
	if wordCount(content) < s.minWords {
		return domain.RawItem{}, false
	}

	item := domain.RawItem{
		Title:      domain.CollapseWhitespace(a.Title),
		Content:    content,
		SourceURL:  a.URL,
		SourceName: a.Source.Name,
		SourceType: domain.SourceNewsAPI,
		Author:     a.Author,
		ImageURL:   a.URLToImage,
	}
	if ts, parseErr := time.Parse(time.RFC3339, a.PublishedAt); parseErr == nil {
		item.PublishedAt = ts.UTC()
	}
	item.Normalize()

	return item, true
}
