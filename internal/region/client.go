// Package region implements the remote region lookup service client.
package region

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/service"
)

// Ensure we implement the interface.
var _ service.RegionLookup = (*Client)(nil)

// searchResponse is the body returned by GET /regions.
type searchResponse struct {
	Regions []model.Region `json:"regions"`
}

// Client queries a region search API over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      common.RetryOptions
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(opts common.RetryOptions) ClientOption {
	return func(c *Client) {
		c.retry = opts
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: region api url: %w", common.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: region api url %q must be http or https", common.ErrInvalidConfig, baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchRegions returns regions whose name matches query.
func (c *Client) FetchRegions(ctx context.Context, query string) ([]model.Region, error) {
	u, err := url.Parse(c.baseURL + "/regions")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	var regions []model.Region
	err = common.WithRetry(ctx, func() error {
		var fetchErr error
		regions, fetchErr = c.fetch(ctx, u.String())
		return fetchErr
	}, c.retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", common.ErrLookupFailed, query, err)
	}

	slog.Debug("fetched regions", "query", query, "count", len(regions))
	return regions, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]model.Region, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.ErrRateLimit
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &common.RetryableError{Err: fmt.Errorf("server error: %d", resp.StatusCode), Retryable: true}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Retryable: false,
		}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode regions: %w", err)
	}
	if decoded.Regions == nil {
		decoded.Regions = []model.Region{}
	}
	return decoded.Regions, nil
}
