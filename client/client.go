// Package client provides a thin Go client for the Janus HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	routerErrors "github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// DefaultTimeout is the per-request timeout used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// Config holds the connection settings for a Client.
type Config struct {
	// Address is the base URL of the server, e.g. "http://localhost:8080".
	// A bare host:port is accepted and assumed to be http.
	Address string

	// Token is an optional bearer token sent with every request.
	Token string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client communicates with a Janus server over its HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at cfg.Address.
func New(cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, routerErrors.New(routerErrors.CodeInvalidRequest, "client address must not be empty")
	}

	baseURL := cfg.Address
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Query executes a SQL statement and returns its result.
func (c *Client) Query(ctx context.Context, query string, args ...interface{}) (*models.QueryResult, error) {
	body := map[string]interface{}{"query": query}
	if len(args) > 0 {
		body["args"] = args
	}

	var result models.QueryResult
	if err := c.post(ctx, "/v1/query", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Explain returns the routing decision and plan for a statement without
// executing it.
func (c *Client) Explain(ctx context.Context, query string) (*models.ExplainResult, error) {
	var result models.ExplainResult
	if err := c.post(ctx, "/v1/explain", map[string]string{"query": query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Classify returns the query type for a statement.
func (c *Client) Classify(ctx context.Context, query string) (*models.ClassifyResult, error) {
	var result models.ClassifyResult
	if err := c.post(ctx, "/v1/classify", map[string]string{"query": query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health reports whether the server and both engines are healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return routerErrors.Wrap(err, routerErrors.CodeInvalidRequest, "failed to build request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return routerErrors.Wrap(err, routerErrors.CodeConnectionFailed, "health check failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return routerErrors.New(routerErrors.CodeUnavailable, fmt.Sprintf("server reported %s", resp.Status))
	}
	return nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return routerErrors.Wrap(err, routerErrors.CodeInvalidRequest, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return routerErrors.Wrap(err, routerErrors.CodeInvalidRequest, "failed to build request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return routerErrors.Wrap(err, routerErrors.CodeConnectionFailed, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return routerErrors.Wrap(err, routerErrors.CodeInternal, "failed to decode response")
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeError turns a non-2xx response into a RouterError, preferring the
// server's own error envelope when one is present.
func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error *routerErrors.RouterError `json:"error"`
	}
	if err == nil && json.Unmarshal(body, &envelope) == nil && envelope.Error != nil && envelope.Error.Code != "" {
		return envelope.Error
	}

	return routerErrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("server returned %s", resp.Status))
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return routerErrors.CodeInvalidRequest
	case http.StatusUnauthorized:
		return routerErrors.CodeUnauthorized
	case http.StatusServiceUnavailable:
		return routerErrors.CodeUnavailable
	case http.StatusGatewayTimeout:
		return routerErrors.CodeDeadlineExceeded
	default:
		return routerErrors.CodeInternal
	}
}
