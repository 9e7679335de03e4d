package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ledgerly-app/ledgerly/internal/ledgerview"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

const (
	requestTimeout = 30 * time.Second

	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRF-Token"
)

// TransportError is a network-level or malformed-response failure, as
// opposed to a structured rejection the server produced on purpose.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if an error is (or wraps) a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client is an HTTP client for the ledger API. It keeps the CSRF cookie the
// server issues and echoes it back as a request header on every mutation.
// It implements ledgerview.Gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new ledger API client.
func NewClient(baseURL string, log *logger.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		logger: log.WithField("component", "ledgerapi"),
	}
}

// SetBaseURL overrides the base URL (useful for testing)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// ListTransactions fetches one page of transactions. An empty cursor reads
// the first page; a non-empty filter scopes by type.
func (c *Client) ListTransactions(ctx context.Context, cursor string, filter ledgerview.Filter) (*ledgerview.Page, error) {
	params := url.Values{}
	if cursor == "" {
		cursor = "1"
	}
	params.Set("page", cursor)
	if filter != ledgerview.FilterAll {
		params.Set("type", string(filter))
	}

	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/transactions", params, nil)
	if err != nil {
		return nil, &TransportError{Op: "list transactions", Err: err}
	}
	if status != http.StatusOK {
		return nil, &TransportError{Op: "list transactions", Err: fmt.Errorf("unexpected status %d", status)}
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: "list transactions", Err: fmt.Errorf("decode response: %w", err)}
	}

	page := &ledgerview.Page{
		Transactions: make([]ledgerview.Transaction, 0, len(resp.Transactions)),
		TotalBalance: parseOptionalDecimal(resp.TotalBalance),
		HasNext:      resp.HasNext,
		NextCursor:   parseCursor(resp.NextPageNumber),
	}
	for _, p := range resp.Transactions {
		page.Transactions = append(page.Transactions, toViewTransaction(p))
	}
	return page, nil
}

// CreateTransaction records a new transaction. Structured rejections come
// back as *ledgerview.Rejection; anything else is a *TransportError.
func (c *Client) CreateTransaction(ctx context.Context, txType ledgerview.Type, amount string) (*ledgerview.CreateResult, error) {
	if err := c.ensureCSRF(ctx); err != nil {
		return nil, &TransportError{Op: "create transaction", Err: err}
	}

	payload, err := json.Marshal(createRequest{Type: string(txType), Amount: amount})
	if err != nil {
		return nil, &TransportError{Op: "create transaction", Err: err}
	}

	body, status, err := c.doRequest(ctx, http.MethodPost, "/api/transactions", nil, payload)
	if err != nil {
		return nil, &TransportError{Op: "create transaction", Err: err}
	}

	if status < 200 || status > 299 {
		if rej, ok := parseRejection(body); ok {
			return nil, rej
		}
		return nil, &TransportError{Op: "create transaction", Err: fmt.Errorf("unexpected status %d", status)}
	}

	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: "create transaction", Err: fmt.Errorf("decode response: %w", err)}
	}

	return &ledgerview.CreateResult{
		Message:      resp.Message,
		TotalBalance: parseOptionalDecimal(resp.TotalBalance),
		Transaction:  toViewTransaction(resp.NewTransaction),
	}, nil
}

// Import triggers the server-side bulk import. The request carries no body.
func (c *Client) Import(ctx context.Context) (*ledgerview.ImportResult, error) {
	if err := c.ensureCSRF(ctx); err != nil {
		return nil, &TransportError{Op: "import", Err: err}
	}

	body, status, err := c.doRequest(ctx, http.MethodPost, "/api/transactions/import", nil, nil)
	if err != nil {
		return nil, &TransportError{Op: "import", Err: err}
	}

	if status < 200 || status > 299 {
		if rej, ok := parseRejection(body); ok {
			return nil, rej
		}
		return nil, &TransportError{Op: "import", Err: fmt.Errorf("unexpected status %d", status)}
	}

	var resp importResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: "import", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &ledgerview.ImportResult{Message: resp.Message}, nil
}

// doRequest performs one HTTP request and returns the body and status code.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, int, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.logger.Debug("API request", "method", method, "url", reqURL)
	start := time.Now()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodHead {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(csrfHeaderName, token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, resp.StatusCode, nil
}

// ensureCSRF makes sure the cookie jar holds a CSRF token before a
// mutation, priming it with a cheap read when needed.
func (c *Client) ensureCSRF(ctx context.Context) error {
	if c.csrfToken() != "" {
		return nil
	}
	_, _, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	if c.csrfToken() == "" {
		return fmt.Errorf("server did not issue a CSRF cookie")
	}
	return nil
}

func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}
