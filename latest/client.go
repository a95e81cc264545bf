package latest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ltst/latest-block/circuitbreaker"
	"github.com/ltst/latest-block/logging"
	"github.com/ltst/latest-block/metrics"
)

const latestPath = "/api/latestext"

// Client fetches the latest update for a channel from the remote API.
// It issues exactly one request per call: no retry, no caching. A
// circuit breaker short-circuits calls while the upstream keeps failing.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	breaker circuitbreaker.CircuitBreaker
	logger  *logging.Logger
}

// New creates a new Client against the given base URL. The API key is
// injected here rather than embedded so deployments can rotate it.
func New(baseURL, apiKey string, timeout time.Duration, logger *logging.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
			HalfOpenRequests: 1,
			Logger:           logger,
			Name:             "latest",
		}),
		logger: logger,
	}
}

// Latest fetches the most recent update for the given channel
func (c *Client) Latest(ctx context.Context, channelID string) (*Result, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}

	reqURL, err := c.buildURL(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	c.logger.Debug("Fetching latest update", map[string]interface{}{
		"channelId": channelID,
	})

	metrics.FetchesInFlight.Inc()
	start := time.Now()
	var result *Result
	err = c.breaker.Execute(func() error {
		var fetchErr error
		result, fetchErr = c.doFetch(ctx, reqURL)
		return fetchErr
	})
	metrics.FetchesInFlight.Dec()
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Latest update fetch failed", map[string]interface{}{
			"channelId": channelID,
			"error":     err.Error(),
		})
		return nil, err
	}

	metrics.FetchesTotal.WithLabelValues("success").Inc()
	return result, nil
}

// buildURL assembles the fetch URL. The channel identifier is passed
// through verbatim; only standard query encoding is applied.
func (c *Client) buildURL(channelID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u.Path = latestPath

	q := u.Query()
	q.Set("channelId", channelID)
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// doFetch performs the actual HTTP request and decodes the response
func (c *Client) doFetch(ctx context.Context, reqURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request returned status %d: %s", resp.StatusCode, resp.Status)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &result, nil
}
