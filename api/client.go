package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
)

// Client talks to a running htmltoc server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new htmltoc server client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// do posts body to path and returns the response. Error statuses are
// returned as *ErrorResponse.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (*http.Response, []byte, error) {
	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Message == "" {
			return nil, nil, fmt.Errorf("server error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		errResp.StatusCode = resp.StatusCode
		return nil, nil, &errResp
	}

	return resp, respBody, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/health", nil, "", nil)
	return err
}

// TOC sends a document and returns the rewritten document.
func (c *Client) TOC(ctx context.Context, doc io.Reader, contentType string, p Params) (*Document, error) {
	resp, body, err := c.do(ctx, http.MethodPost, "/api/toc", p.query(), contentType, doc)
	if err != nil {
		return nil, err
	}
	warnings, _ := strconv.Atoi(resp.Header.Get("X-Toc-Warnings"))
	return &Document{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Warnings:    warnings,
	}, nil
}

// Outline sends a document and returns its TOC entries.
func (c *Client) Outline(ctx context.Context, doc io.Reader, contentType string, p Params) (*Outline, error) {
	_, body, err := c.do(ctx, http.MethodPost, "/api/outline", p.query(), contentType, doc)
	if err != nil {
		return nil, err
	}
	var out Outline
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func (p Params) query() url.Values {
	q := url.Values{}
	if p.Format != "" {
		q.Set("format", p.Format)
	}
	if p.Encoding != "" {
		q.Set("encoding", p.Encoding)
	}
	if p.Target != "" {
		q.Set("target", p.Target)
	}
	if p.StrictWrappers != nil {
		q.Set("strict", strconv.FormatBool(*p.StrictWrappers))
	}
	if p.Markdown {
		q.Set("markdown", "true")
	}
	return q
}

// ContentType returns the request content type for an input format name.
func ContentType(format string) string {
	switch format {
	case "html":
		return "text/html"
	case "markdown":
		return "text/markdown"
	default:
		return "application/xhtml+xml"
	}
}
