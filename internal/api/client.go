package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "ALEXANDRIA_HTTP_TIMEOUT"
	passwordEnvKey     = "ALEXANDRIA_UI_PASSWORD"
)

// Client talks to a running alexandria UI server.
type Client struct {
	baseURL  string
	http     *http.Client
	password string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: httpTimeoutFromEnv()},
		password: os.Getenv(passwordEnvKey),
	}
}

// WithPassword sets the UI password sent as basic credentials.
func (c *Client) WithPassword(password string) *Client {
	c.password = password
	return c
}

// Ping checks whether the UI server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// Status reports the daemon state as the server sees it.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, nil, &resp)
	return resp, err
}

// Search runs a free-text search.
func (c *Client) Search(ctx context.Context, text string, page, pageSize int) (SearchResponse, error) {
	query := url.Values{}
	query.Set("q", text)
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	var resp SearchResponse
	err := c.do(ctx, http.MethodGet, "/v1/search", query, nil, &resp)
	return resp, err
}

// Resolve finds one item. Query keys are uri, claim_id or name.
func (c *Client) Resolve(ctx context.Context, query url.Values) (ResolveResponse, error) {
	var resp ResolveResponse
	err := c.do(ctx, http.MethodGet, "/v1/resolve", query, nil, &resp)
	return resp, err
}

// Download asks the server to fetch a stream.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (DownloadResponse, error) {
	var resp DownloadResponse
	err := c.do(ctx, http.MethodPost, "/v1/downloads", nil, req, &resp)
	return resp, err
}

// History lists recorded events, newest first.
func (c *Client) History(ctx context.Context, kind string, limit int) ([]HistoryEvent, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("kind", kind)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp []HistoryEvent
	err := c.do(ctx, http.MethodGet, "/v1/history", query, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.password != "" {
		req.SetBasicAuth("alexandria", c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
