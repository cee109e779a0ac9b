// Package platform implements the HTTP client handle through which all
// auth and data operations reach the remote identity/data service.
package platform

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

// Client is the configured connection handle. It is constructed once during
// bootstrap and read-shared for the lifetime of the process; it holds no
// mutable state beyond the underlying http.Client.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// New builds a client bound to the service URL and anonymous key obtained
// from the config endpoint.
func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient is used by tests to supply a custom transport.
func NewWithHTTPClient(baseURL, anonKey string, hc *http.Client) *Client {
	c := New(baseURL, anonKey)
	c.http = hc
	return c
}

// Auth exposes the identity operations of the service.
func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{client: c}
}

// From starts a query against a table of the service's REST surface.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

// do issues a request with the service headers applied and decodes the
// response into out when out is non-nil. Non-2xx responses are turned into
// *ServiceError carrying the service-supplied message.
func (c *Client) do(ctx context.Context, method, path string, accessToken string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("platform: build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("platform: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serviceErrorFromResponse(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("platform: decode response: %w", err)
		}
	}
	return nil
}
