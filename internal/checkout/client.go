package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"astryxnodes/internal/dto"
)

// APIError is a non-2xx answer from the checkout server. Message carries the
// server's "error" field when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("checkout API returned %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the checkout HTTP API.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) PaymentConfig(ctx context.Context) (dto.PaymentConfigResponse, error) {
	var out dto.PaymentConfigResponse
	err := c.do(ctx, http.MethodGet, "/api/payment-config", nil, &out)
	return out, err
}

func (c *Client) StripeKey(ctx context.Context) (string, error) {
	var out dto.StripeKeyResponse
	if err := c.do(ctx, http.MethodGet, "/api/stripe-key", nil, &out); err != nil {
		return "", err
	}
	return out.PublishableKey, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req dto.CreatePaymentIntentRequest) (string, error) {
	var out dto.CreatePaymentIntentResponse
	if err := c.do(ctx, http.MethodPost, "/api/create-payment-intent", req, &out); err != nil {
		return "", err
	}
	return out.ClientSecret, nil
}

func (c *Client) CreateOrder(ctx context.Context, req dto.SubmitOrderRequest) (dto.SubmitOrderResponse, error) {
	var out dto.SubmitOrderResponse
	err := c.do(ctx, http.MethodPost, "/api/create-order", req, &out)
	return out, err
}

func (c *Client) CompleteOrder(ctx context.Context, req dto.SubmitOrderRequest) (dto.SubmitOrderResponse, error) {
	var out dto.SubmitOrderResponse
	err := c.do(ctx, http.MethodPost, "/api/complete-order", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e dto.ErrorResponse
		_ = json.Unmarshal(data, &e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
