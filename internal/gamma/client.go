// Package gamma is the client for the Polymarket Gamma API. All endpoints
// are public reads; the client is safe for concurrent use and applies a
// shared outbound rate limit.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/polymarket-feed/internal/config"
	"golang.org/x/time/rate"
)

type Client struct {
	baseURL     string
	userAgent   string
	client      *http.Client
	rateLimiter *rate.Limiter
}

// Tag is an upstream topical label used to partition markets by subject.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// SearchEvent is one event entry from the public-search response. Markets
// are kept raw; normalization happens in the market package.
type SearchEvent struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Slug     string            `json:"slug"`
	Volume   json.RawMessage   `json:"volume"`
	Image    string            `json:"image"`
	EndDate  string            `json:"endDate"`
	Category string            `json:"category"`
	Markets  []json.RawMessage `json:"markets"`
}

type SearchResponse struct {
	Events []SearchEvent `json:"events"`
}

func NewClient(cfg config.GammaConfig) *Client {
	client := &http.Client{
		Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
	}

	rateLimiter := rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitPerSecond)

	return &Client{
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		client:      client,
		rateLimiter: rateLimiter,
	}
}

// Tags fetches the full tag catalog.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.get(ctx, "/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// MarketsByTag fetches up to limit open markets under one tag, including
// related tags. Markets come back raw so malformed entries degrade
// per-market rather than failing the response.
func (c *Client) MarketsByTag(ctx context.Context, tagID string, limit int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("tag_id", tagID)
	q.Set("related_tags", "true")
	q.Set("closed", "false")
	q.Set("limit", strconv.Itoa(limit))

	var markets []json.RawMessage
	if err := c.get(ctx, "/markets", q, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// TrendingMarkets fetches open markets ordered by 24h volume upstream.
func (c *Client) TrendingMarkets(ctx context.Context, limit int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("closed", "false")
	q.Set("order", "volume24hr")
	q.Set("ascending", "false")
	q.Set("limit", strconv.Itoa(limit))

	var markets []json.RawMessage
	if err := c.get(ctx, "/markets", q, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// Search queries the Gamma public-search endpoint.
func (c *Client) Search(ctx context.Context, query string, limitPerType int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit_per_type", strconv.Itoa(limitPerType))

	var resp SearchResponse
	if err := c.get(ctx, "/public-search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gamma %s: status %d, body: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
