// Package googlebooks provides access to the Google Books volumes API for
// catalog metadata.
package googlebooks

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client provides access to the Google Books volumes API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	apiKey  string
	country string
}

// NewClient creates a new Google Books client.
// Rate limited to stay well inside the unauthenticated quota.
func NewClient(apiKey, country string, logger *slog.Logger) *Client {
	if country == "" {
		country = "US"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 request per second, burst of 5
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
		apiKey:      apiKey,
		country:     country,
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
