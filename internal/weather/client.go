// FilePath: internal/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// ErrRemote marks a reachable-but-erroring upstream response (non-2xx
// status or an unusable payload), as opposed to a transport failure.
var ErrRemote = errors.New("weather service error")

// RainfallSource is the single capability the weather poller consumes.
type RainfallSource interface {
	CurrentRainfall(ctx context.Context) (float64, error)
}

// Client fetches current rainfall from the Open-Meteo forecast API.
type Client struct {
	client    *http.Client
	baseURL   string
	latitude  float64
	longitude float64
}

type currentResponse struct {
	Current struct {
		Rain *float64 `json:"rain"`
	} `json:"current"`
}

// NewClient creates an Open-Meteo client for the given coordinates. The
// timeout bounds every fetch so a hung upstream cannot stall the
// poller's loop.
func NewClient(latitude, longitude float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:    &http.Client{Timeout: timeout},
		baseURL:   defaultBaseURL,
		latitude:  latitude,
		longitude: longitude,
	}
}

// WithBaseURL overrides the upstream URL, used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// BuildURL assembles the request URL for the current-rainfall query.
func (c *Client) BuildURL() string {
	return fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current=rain&timezone=auto",
		c.baseURL, c.latitude, c.longitude)
}

// CurrentRainfall fetches the current rainfall value in millimeters.
// Transport failures are returned as-is; reachable upstream errors wrap
// ErrRemote so callers can tell the two outcomes apart.
func (c *Client) CurrentRainfall(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rainfall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: status %d, body: %s", ErrRemote, resp.StatusCode, string(body))
	}

	var current currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&current); err != nil {
		return 0, fmt.Errorf("%w: failed to decode response: %v", ErrRemote, err)
	}
	if current.Current.Rain == nil {
		return 0, fmt.Errorf("%w: response missing rain field", ErrRemote)
	}

	return *current.Current.Rain, nil
}
