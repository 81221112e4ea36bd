package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the fashion-search SDK entry point. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "fashion-search-go-sdk",
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// Search runs the semantic search pipeline for a free-text prompt.
func (c *Client) Search(ctx context.Context, prompt string) (SearchResponse, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("encode search request: %w", err)
	}

	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search", bytes.NewReader(body), &resp); err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}

// Item fetches one product by its parent ASIN.
func (c *Client) Item(ctx context.Context, parentASIN string) (Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(parentASIN), nil, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Health reports component availability. A degraded system returns the
// report alongside a non-nil *APIError with StatusCode 503.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var h HealthStatus
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &h); err != nil {
		return h, err
	}
	return h, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// parseError maps a structured error body onto APIError, wrapping the
// not-found sentinel for 404s.
func (c *Client) parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Code != "" {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Message
	} else {
		apiErr.Code = "unknown"
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	if resp.StatusCode == http.StatusNotFound && apiErr.Code == "product_not_found" {
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	}
	return apiErr
}
