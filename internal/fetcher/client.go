// Package fetcher wraps outbound HTTP for the service adapters. A fetch
// either succeeds and decodes JSON into the caller's result, or degrades to
// an empty result: transport and status failures are logged, never
// propagated. Caching is the adapters' concern, not this package's.
package fetcher

import (
	"context"
	"log/slog"

	"resty.dev/v3"
)

// Client issues GET requests against a single upstream base URL.
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient creates a client bound to baseURL. No retries: a failed fetch
// is reported to the caller as empty and the pipeline moves on.
func NewClient(baseURL string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	return &Client{
		baseURL: baseURL,
		http:    client,
	}
}

// GetJSON issues a single GET to endpoint with the given query parameters
// and headers, decoding the JSON response into out. It returns false on any
// network error, timeout, redirect failure, or non-2xx status, leaving out
// untouched.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query map[string]string, headers map[string]string, out any) bool {
	req := c.http.R().
		SetContext(ctx).
		SetResult(out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		slog.Error("fetcher: request failed",
			"url", c.baseURL+endpoint,
			"error", NewNetworkError(err))
		return false
	}

	if !resp.IsSuccess() {
		slog.Error("fetcher: upstream returned error status",
			"url", resp.Request.URL,
			"error", ClassifyHTTPError(resp.StatusCode()))
		return false
	}

	slog.Debug("fetcher: response received", "url", resp.Request.URL, "status_code", resp.StatusCode())
	return true
}
