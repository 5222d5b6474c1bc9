package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/booklendapp/booklend-server/internal/normalize"
)

const (
	volumesBaseURL    = "https://www.googleapis.com/books/v1/volumes"
	defaultMaxResults = 10
	maxResultsCap     = 40 // API hard limit
)

// Search queries the volumes API and returns normalized book inputs ready
// for the catalog reconciler.
func (c *Client) Search(ctx context.Context, query string, startIndex, maxResults int) ([]normalize.BookInput, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxResultsCap {
		maxResults = maxResultsCap
	}
	if startIndex < 0 {
		startIndex = 0
	}

	// Build search URL
	params := url.Values{}
	params.Set("q", query)
	params.Set("startIndex", strconv.Itoa(startIndex))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("country", c.country)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := volumesBaseURL + "?" + params.Encode()

	c.logger.Debug("searching Google Books",
		"query", query,
		"start_index", startIndex,
	)

	// Make request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	// Parse response
	var volumes volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumes); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("Google Books search results",
		"query", query,
		"total", volumes.TotalItems,
		"returned", len(volumes.Items),
	)

	results := make([]normalize.BookInput, 0, len(volumes.Items))
	for i := range volumes.Items {
		results = append(results, convertVolume(&volumes.Items[i]))
	}
	return results, nil
}

// FindByID fetches a single volume by its Google Books volume ID.
func (c *Client) FindByID(ctx context.Context, volumeID string) (*normalize.BookInput, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	volumeID = strings.TrimSpace(volumeID)
	if volumeID == "" {
		return nil, fmt.Errorf("volume id is empty")
	}

	volumeURL := volumesBaseURL + "/" + url.PathEscape(volumeID)
	if c.apiKey != "" {
		volumeURL += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, volumeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("volume request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrVolumeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("volume lookup failed: status %d", resp.StatusCode)
	}

	var v volume
	if err := json.UnmarshalRead(resp.Body, &v); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	input := convertVolume(&v)
	return &input, nil
}
