// Package client is a typed Go client of the Bloomhaus admin API covering the
// allocation workflow: suggestions, drafting, allocate, confirm, and delivery
// contact.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is returned when the API rejects the bearer token. Callers
// redirect to login instead of retrying.
var ErrUnauthorized = errors.New("client: unauthorized")

// APIError is a non-2xx response carrying the server's typed error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: api error %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the admin API with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client for the given API base URL and bearer token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base URL required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("client: bearer token required")
	}
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type suggestionsResponse struct {
	OrderID     int64               `json:"order_id"`
	Suggestions []NurserySuggestion `json:"suggestions"`
}

// AllocationSuggestions returns candidate nurseries in the server's ranking.
func (c *Client) AllocationSuggestions(ctx context.Context, orderID int64) ([]NurserySuggestion, error) {
	var out suggestionsResponse
	path := fmt.Sprintf("/api/v1/orders/admin/%d/allocation-suggestions", orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// Order fetches the admin view of one order.
func (c *Client) Order(ctx context.Context, orderID int64) (*Order, error) {
	var out Order
	path := fmt.Sprintf("/api/v1/orders/admin/%d", orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Allocate submits the drafted split, replacing the order's proposed
// fulfillments in a single request.
func (c *Client) Allocate(ctx context.Context, orderID int64, submission Submission) ([]Fulfillment, error) {
	var out []Fulfillment
	path := fmt.Sprintf("/api/v1/orders/admin/%d/allocate", orderID)
	if err := c.do(ctx, http.MethodPost, path, submission, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfirmAllocation commits the proposed fulfillments. The explicit user
// confirmation gate belongs to the caller.
func (c *Client) ConfirmAllocation(ctx context.Context, orderID int64) (*Order, error) {
	var out Order
	path := fmt.Sprintf("/api/v1/orders/admin/%d/confirm", orderID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type deliveryContactPayload struct {
	DeliveryName  string  `json:"delivery_name"`
	DeliveryPhone string  `json:"delivery_phone"`
	DeliveryNotes *string `json:"delivery_notes,omitempty"`
}

// SetDeliveryContact records the recipient for a confirmed fulfillment. Empty
// name or phone is rejected before any request is made.
func (c *Client) SetDeliveryContact(ctx context.Context, fulfillmentID int64, name, phone string, notes *string) (*Fulfillment, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, errors.New("client: delivery name required")
	}
	if phone == "" {
		return nil, errors.New("client: delivery phone required")
	}
	payload := deliveryContactPayload{DeliveryName: name, DeliveryPhone: phone}
	if notes != nil {
		if trimmed := strings.TrimSpace(*notes); trimmed != "" {
			payload.DeliveryNotes = &trimmed
		}
	}

	var out Fulfillment
	path := fmt.Sprintf("/api/v1/orders/admin/fulfillments/%d/delivery-contact", fulfillmentID)
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	var env envelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			return fmt.Errorf("client: decode envelope: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return errors.New("client: empty data envelope")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: decode data: %w", err)
	}
	return nil
}
