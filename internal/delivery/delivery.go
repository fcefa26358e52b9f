// Package delivery pushes enriched articles and market quotes to the
// admin backend over HTTP. Retry policy for transient failures lives
// here, not in the pipeline.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/httpclient"
	"github.com/jonesrussell/content-engine/internal/logger"
	"github.com/jonesrussell/content-engine/internal/retry"
)

// Delivery endpoint paths and payload constants.
const (
	articlesPath = "/api/articles/ingest"
	marketPath   = "/api/market/ingest"
	healthPath   = "/api/health"

	senderName     = "content-engine"
	marketDataType = "indices"
	requestTimeout = 60 * time.Second
)

// errTransientStatus marks upstream statuses worth retrying.
var errTransientStatus = errors.New("transient upstream status")

// Result is the ingest outcome reported by the admin backend.
type Result struct {
	Inserted          int      `json:"inserted"`
	Failed            int      `json:"failed"`
	FailedIdentifiers []string `json:"failedIdentifiers"`
}

// Deliverer ships pipeline output downstream.
type Deliverer interface {
	DeliverArticles(ctx context.Context, articles []*domain.EnrichedArticle) (*Result, error)
	DeliverMarketData(ctx context.Context, quotes []domain.MarketQuote) (*Result, error)
	Ping(ctx context.Context) bool
}

// Config configures the delivery client.
type Config struct {
	// BaseURL is the admin backend root, without a trailing slash.
	BaseURL string
	// APIKey is sent as a bearer token on every request.
	APIKey string
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// Retry controls backoff for transient failures.
	Retry retry.Config
}

// Client is the HTTP Deliverer.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	retryCfg retry.Config
	logger   logger.Logger
}

// New creates a delivery client.
func New(cfg *Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = requestTimeout
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}
	retryCfg.IsRetryable = isDeliveryRetryable

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		client:   httpclient.New(&httpclient.Config{Timeout: timeout}),
		retryCfg: retryCfg,
		logger:   log,
	}
}

// DeliverArticles posts enriched articles to the ingest endpoint. An
// empty batch is a no-op.
func (c *Client) DeliverArticles(ctx context.Context, articles []*domain.EnrichedArticle) (*Result, error) {
	if len(articles) == 0 {
		return &Result{}, nil
	}

	payload := map[string]any{
		"source":   senderName,
		"articles": articles,
	}

	result, postErr := c.postJSON(ctx, articlesPath, payload)
	if postErr != nil {
		return nil, postErr
	}

	c.logger.Info("articles delivered",
		logger.Int("inserted", result.Inserted),
		logger.Int("failed", result.Failed),
	)

	return result, nil
}

// DeliverMarketData posts market quotes to the ingest endpoint. An
// empty batch is a no-op.
func (c *Client) DeliverMarketData(ctx context.Context, quotes []domain.MarketQuote) (*Result, error) {
	if len(quotes) == 0 {
		return &Result{}, nil
	}

	payload := map[string]any{
		"scraperName": senderName,
		"dataType":    marketDataType,
		"items":       quotes,
	}

	result, postErr := c.postJSON(ctx, marketPath, payload)
	if postErr != nil {
		return nil, postErr
	}

	c.logger.Info("market data delivered",
		logger.Int("inserted", result.Inserted),
		logger.Int("failed", result.Failed),
	)

	return result, nil
}

// Ping reports whether the admin backend health endpoint answers.
func (c *Client) Ping(ctx context.Context) bool {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if reqErr != nil {
		return false
	}
	c.setHeaders(req)

	resp, doErr := c.client.Do(req)
	if doErr != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// postJSON sends the payload with retry and decodes the ingest result.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*Result, error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal delivery payload: %w", marshalErr)
	}

	var result Result

	doErr := retry.Do(ctx, c.retryCfg, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if reqErr != nil {
			return fmt.Errorf("build delivery request: %w", reqErr)
		}
		c.setHeaders(req)

		resp, sendErr := c.client.Do(req)
		if sendErr != nil {
			return fmt.Errorf("delivery request: %w", sendErr)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %d from %s", errTransientStatus, resp.StatusCode, path)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("delivery endpoint %s returned status %d", path, resp.StatusCode)
		}

		result = Result{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
			return fmt.Errorf("decode delivery response: %w", decodeErr)
		}

		return nil
	})
	if doErr != nil {
		return nil, doErr
	}

	return &result, nil
}

// setHeaders applies the content type and bearer auth headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// isDeliveryRetryable retries network failures and transient upstream
// statuses.
func isDeliveryRetryable(err error) bool {
	return errors.Is(err, errTransientStatus) || retry.DefaultIsRetryable(err)
}
