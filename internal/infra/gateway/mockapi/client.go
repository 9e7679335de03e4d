package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

const requestTimeout = 10 * time.Second

// FeedTransaction is one item of the external transaction feed. Amount and
// CreatedAt are kept loose: the feed is third-party data and individual bad
// items are skipped by the importer, not fatal.
type FeedTransaction struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    json.RawMessage `json:"amount"`
	CreatedAt string          `json:"createdAt"`
}

// ParseAmount interprets the feed amount, which may be a number or a quoted
// string.
func (t FeedTransaction) ParseAmount() (decimal.Decimal, error) {
	if len(t.Amount) == 0 {
		return decimal.Zero, fmt.Errorf("amount is missing")
	}
	var d decimal.Decimal
	if err := json.Unmarshal(t.Amount, &d); err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %s: %w", string(t.Amount), err)
	}
	return d, nil
}

// ParseCreatedAt interprets the feed timestamp (RFC3339).
func (t FeedTransaction) ParseCreatedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, t.CreatedAt)
}

// Client is an HTTP client for the external transaction feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new feed client.
func NewClient(feedURL string, log *logger.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.WithField("component", "mockapi"),
	}
}

// FetchTransactions fetches the full feed.
func (c *Client) FetchTransactions(ctx context.Context) ([]FeedTransaction, error) {
	start := time.Now()
	c.logger.Debug("fetching feed", "url", c.feedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("feed error", "status_code", resp.StatusCode)
		return nil, fmt.Errorf("feed error: status %d", resp.StatusCode)
	}

	var items []FeedTransaction
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	c.logger.Info("feed fetched", "count", len(items), "duration_ms", time.Since(start).Milliseconds())
	return items, nil
}
