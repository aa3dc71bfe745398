// Package thawani is a minimal client for the Thawani session-based
// checkout API. Amounts are integers in baisa.
package thawani

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const StatusPaid = "paid"

var ErrNoSession = errors.New("thawani: no session id in response")

type Client struct {
	APIURL      string
	APIKey      string
	PublishKey  string
	CheckoutURL string
	HTTP        *http.Client
}

func NewClient(apiURL, apiKey, publishKey, checkoutURL string) *Client {
	return &Client{
		APIURL:      apiURL,
		APIKey:      apiKey,
		PublishKey:  publishKey,
		CheckoutURL: checkoutURL,
		HTTP:        &http.Client{Timeout: 15 * time.Second},
	}
}

type LineItem struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
}

type SessionRequest struct {
	ClientReferenceID string            `json:"client_reference_id"`
	Mode              string            `json:"mode"`
	Products          []LineItem        `json:"products"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	Metadata          map[string]string `json:"metadata"`
}

type SessionSummary struct {
	SessionID         string `json:"session_id"`
	ClientReferenceID string `json:"client_reference_id"`
}

type Session struct {
	SessionID         string            `json:"session_id"`
	ClientReferenceID string            `json:"client_reference_id"`
	PaymentStatus     string            `json:"payment_status"`
	TotalAmount       int64             `json:"total_amount"` // baisa
	Metadata          map[string]string `json:"metadata"`
}

// CreateSession registers a checkout session and returns its id.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	if req.Mode == "" {
		req.Mode = "payment"
	}
	var out struct {
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/checkout/session", req, &out); err != nil {
		return "", err
	}
	if out.Data.SessionID == "" {
		return "", ErrNoSession
	}
	return out.Data.SessionID, nil
}

// ListSessions pages through recent sessions.
func (c *Client) ListSessions(ctx context.Context, limit, skip int) ([]SessionSummary, error) {
	var out struct {
		Data []SessionSummary `json:"data"`
	}
	path := fmt.Sprintf("/checkout/session/?limit=%d&skip=%d", limit, skip)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetSession fetches full detail for one session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var out struct {
		Data *Session `json:"data"`
	}
	path := fmt.Sprintf("/checkout/session/%s?limit=1&skip=0", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, ErrNoSession
	}
	return out.Data, nil
}

// PaymentLink builds the customer-facing redirect URL.
func (c *Client) PaymentLink(sessionID string) string {
	return fmt.Sprintf("%s/pay/%s?key=%s", c.CheckoutURL, sessionID, c.PublishKey)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.APIURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("thawani-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("thawani %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("thawani %s %s: status %d: %s", method, path, resp.StatusCode, b)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
