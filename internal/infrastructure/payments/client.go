// Package payments talks to the hosted checkout provider. The provider owns
// the payment page, card handling and settlement; this service only opens
// sessions and records confirmations.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/library-system/internal/core/ports"
)

const providerName = "payflow"

// Config points the client at the provider's API.
type Config struct {
	BaseURL   string
	SecretKey string
	// SuccessURL and CancelURL are passed through to the hosted page.
	SuccessURL string
	CancelURL  string
	// Timeout bounds every provider call. Defaults to 15s.
	Timeout time.Duration
}

// Client implements the checkout provider API over HTTP.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return providerName }

type sessionRequest struct {
	ReferenceID   string `json:"referenceId"`
	CustomerEmail string `json:"customerEmail"`
	AmountCents   int64  `json:"amountCents"`
	Currency      string `json:"currency"`
	Description   string `json:"description,omitempty"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// CreateSession opens a hosted checkout session. Each call carries a fresh
// Idempotency-Key so a retried request cannot open two sessions.
func (c *Client) CreateSession(ctx context.Context, in ports.CheckoutSessionInput) (*ports.CheckoutSession, error) {
	if c.cfg.SecretKey == "" {
		return nil, fmt.Errorf("payments: secret key not configured")
	}

	body, err := json.Marshal(sessionRequest{
		ReferenceID:   in.ReferenceID,
		CustomerEmail: in.CustomerEmail,
		AmountCents:   in.AmountCents,
		Currency:      in.Currency,
		Description:   in.Description,
		SuccessURL:    c.cfg.SuccessURL,
		CancelURL:     c.cfg.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payments: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("payments: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var perr providerError
		if json.Unmarshal(respBody, &perr) == nil && perr.Error.Message != "" {
			return nil, fmt.Errorf("payments: provider error (%d): %s", resp.StatusCode, perr.Error.Message)
		}
		return nil, fmt.Errorf("payments: provider error (%d)", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("payments: decode response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("payments: provider returned incomplete session")
	}

	return &ports.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
