package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"astryxnodes/internal/domain"
)

const ErrNotConfigured = "Sales API not configured"

// Result is the outcome of one forwarding attempt. Forward never returns
// an error; every failure is folded into a Result with Success false.
type Result struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Configured reports whether the attempt reached the network. A result of an
// unconfigured client is not a delivery failure.
func (r Result) Configured() bool {
	return r.Error != ErrNotConfigured
}

type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	termMonths int
	now        func() time.Time
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, termMonths int, logger *zap.Logger) *Client {
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		termMonths: termMonths,
		now:        time.Now,
		logger:     logger,
	}
}

func (c *Client) Forward(ctx context.Context, order domain.Order) Result {
	logger := c.logger.With(zap.String("orderNumber", order.OrderNumber))

	if c.apiKey == "" {
		logger.Info("sales API key not configured, skipping order sync")
		return Result{Success: false, Error: ErrNotConfigured}
	}

	bought := order.CreatedAt
	if bought.IsZero() {
		bought = c.now()
	}

	body, err := json.Marshal(NewRecord(order, bought, c.termMonths))
	if err != nil {
		logger.Error("encoding sales record", zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sales/auto", bytes.NewReader(body))
	if err != nil {
		logger.Error("building sales request", zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		logger.Error("sending order to sales API", zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		logger.Error("reading sales API response", zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		logger.Error("sales API returned error status", zap.Int("status", res.StatusCode), zap.ByteString("body", data))
		return Result{Success: false, Error: fmt.Sprintf("Sales API error: %d", res.StatusCode)}
	}

	if !json.Valid(data) {
		logger.Error("invalid response from sales API", zap.ByteString("body", data))
		return Result{Success: false, Error: "Invalid response from sales API"}
	}

	logger.Info("order sent to sales API", zap.ByteString("response", data))
	return Result{Success: true, Response: json.RawMessage(data)}
}
