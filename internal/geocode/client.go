package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"roost/internal/platform/config"
	"roost/pkg/platform/sentinel"
)

// Client calls a Mapbox-style forward-geocoding API: one GET per query with
// limit=1, using only features[0].geometry of the response.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
	metrics *Metrics
}

// NewClient builds the provider client. The configured timeout is the only
// guard against a hung provider, so it must always be set.
func NewClient(cfg config.Geocoder, logger *slog.Logger, metrics *Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

type forwardResponse struct {
	Features []struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Forward resolves the query to its single best match.
func (c *Client) Forward(ctx context.Context, query string) (Point, error) {
	if c.metrics != nil {
		c.metrics.Lookups.Inc()
	}

	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Point{}, fmt.Errorf("build geocode request: %w", err)
	}
	q := req.URL.Query()
	q.Set("limit", "1")
	if c.token != "" {
		q.Set("access_token", c.token)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(ctx, query, err)
		return Point{}, fmt.Errorf("geocode %q: %w", query, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.fail(ctx, query, fmt.Errorf("provider status %d", resp.StatusCode))
		return Point{}, fmt.Errorf("geocode %q: provider status %d: %w", query, resp.StatusCode, sentinel.ErrUnavailable)
	}

	var body forwardResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.fail(ctx, query, err)
		return Point{}, fmt.Errorf("decode geocode response: %w", sentinel.ErrUnavailable)
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		if c.metrics != nil {
			c.metrics.NoMatch.Inc()
		}
		return Point{}, fmt.Errorf("geocode %q: %w", query, sentinel.ErrNoMatch)
	}

	coords := body.Features[0].Geometry.Coordinates
	return NewPoint(coords[0], coords[1]), nil
}

func (c *Client) fail(ctx context.Context, query string, err error) {
	if c.metrics != nil {
		c.metrics.Failures.Inc()
	}
	c.logger.WarnContext(ctx, "geocode lookup failed", "query", query, "error", err)
}
