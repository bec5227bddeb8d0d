package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/core"
)

// Client talks to the remote expense API over HTTP. Authentication is a
// bearer token; the owner travels in a header so the backend can run its
// per-record ownership check.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) List(ctx context.Context, ownerID string) ([]core.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/expenses", ownerID, nil)
	if err != nil {
		return nil, err
	}

	var records []core.Record
	if err := c.do(req, &records); err != nil {
		return nil, fmt.Errorf("list remote records: %w", err)
	}
	return records, nil
}

func (c *Client) Create(ctx context.Context, ownerID string, rec core.Record) (core.Record, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("marshal record: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/expenses", ownerID, bytes.NewReader(body))
	if err != nil {
		return core.Record{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var stored core.Record
	if err := c.do(req, &stored); err != nil {
		return core.Record{}, fmt.Errorf("create remote record %d: %w", rec.ID, err)
	}
	return stored, nil
}

func (c *Client) Delete(ctx context.Context, recordID int64, ownerID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/expenses/"+strconv.FormatInt(recordID, 10), ownerID, nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete remote record %d: %w", recordID, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, ownerID string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Owner-Id", ownerID)
	return req, nil
}

// do executes the request and maps the authorization and not-found
// statuses onto their sentinel errors. Both are terminal outcomes the
// caller must surface, never retry.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrNotAuthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote API status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
