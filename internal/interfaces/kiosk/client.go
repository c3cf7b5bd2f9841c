package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LastTicket is the data of GET /api/get-last-ticket.
type LastTicket struct {
	TicketNumber     int    `json:"ticketNumber"`
	Timestamp        string `json:"timestamp,omitempty"`
	NextTicketNumber string `json:"nextTicketNumber"`
}

// Ticket is the data returned after a ticket was recorded.
type Ticket struct {
	TicketNumber string `json:"ticketNumber"`
	Timestamp    string `json:"timestamp"`
}

// APIError is a failure reported by the server in the error envelope.
type APIError struct {
	Status  int
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// Client calls the ticket API of a running server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) LastTicket(ctx context.Context) (*LastTicket, error) {
	var out LastTicket
	if err := c.do(ctx, http.MethodGet, "/api/get-last-ticket", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitTicket(ctx context.Context, number string) (*Ticket, error) {
	var out Ticket
	body := map[string]string{"ticketNumber": number}
	if err := c.do(ctx, http.MethodPost, "/api/submit-ticket", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) IssueTicket(ctx context.Context) (*Ticket, error) {
	var out Ticket
	if err := c.do(ctx, http.MethodPost, "/api/issue-ticket", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServerVersion returns the version reported by GET /version.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version check: unexpected status %d", resp.StatusCode)
	}
	var info struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("version check: %w", err)
	}
	return info.Version, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: unexpected response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		if env.Error == nil {
			env.Error = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		env.Error.Status = resp.StatusCode
		return env.Error
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
