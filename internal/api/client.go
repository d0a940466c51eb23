// Package api is the typed HTTP client for the Poupix REST backend.
// One method per (resource, verb) pair; no retries, no caching, no
// batching. Every call classifies a non-2xx response as an *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Error describes a failed API call.
type Error struct {
	Status  int
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %d %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %d %s", e.Path, e.Status, http.StatusText(e.Status))
}

// Client issues requests against one Poupix backend. Resource groups
// mirror the API surface: Users, Groups, Transactions.
type Client struct {
	baseURL    string
	httpClient *http.Client

	Users        *UserService
	Groups       *GroupService
	Transactions *TransactionService
}

// New creates a client for the backend at baseURL (including the /api
// prefix). All requests share the one timeout.
func New(baseURL string, timeout time.Duration) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	c.Users = &UserService{client: c}
	c.Groups = &GroupService{client: c}
	c.Transactions = &TransactionService{client: c}
	return c
}

// do issues one request and decodes the body into out (skipped when out
// is nil). body is JSON-encoded when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Status:  resp.StatusCode,
			Path:    path,
			Message: errorMessage(resp.Body),
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls the message out of an {"error": ...} body, if the
// backend sent one.
func errorMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
