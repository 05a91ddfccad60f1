// Package buildings is a client for the campus buildings feed: a single JSON
// array of building records served over HTTP.
package buildings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"campusmap/internal/models"
)

// DefaultEndpoint is the Georgia Tech places API.
const DefaultEndpoint = "https://m.gatech.edu/api/gtplaces/buildings"

const defaultUserAgent = "campusmap/1.0"

// maxBodyBytes bounds the response read; the real feed is a few hundred KB.
const maxBodyBytes = 16 << 20

type Client struct {
	httpClient *http.Client
	userAgent  string
	endpoint   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
		endpoint:   endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// FetchBuildings issues one GET against the endpoint and decodes the body as
// a JSON array. Record order is preserved.
func (c *Client) FetchBuildings(ctx context.Context) ([]models.Building, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var records []models.Building
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode buildings: %w", err)
	}
	if records == nil {
		// a literal `null` body is not a list
		return nil, fmt.Errorf("decode buildings: response is not a JSON array")
	}
	return records, nil
}
