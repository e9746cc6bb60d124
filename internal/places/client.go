package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var ErrUpstream = errors.New("places service error")

// StatusError is returned when the places service answers with a non-2xx
// status. It matches ErrUpstream with errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("places API status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}

// Search is the fixed query sent with every lookup.
type Search struct {
	Categories   string `yaml:"categories"`
	RadiusMeters int    `yaml:"radius_meters"`
	Limit        int    `yaml:"limit"`
}

func DefaultSearch() Search {
	return Search{
		Categories:   "healthcare.hospital",
		RadiusMeters: 5000,
		Limit:        5,
	}
}

type Options struct {
	APIKey     string
	BaseURL    string
	Search     Search
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	search     Search
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.geoapify.com"
	}

	def := DefaultSearch()
	search := opts.Search
	if strings.TrimSpace(search.Categories) == "" {
		search.Categories = def.Categories
	}
	if search.RadiusMeters <= 0 {
		search.RadiusMeters = def.RadiusMeters
	}
	if search.Limit <= 0 {
		search.Limit = def.Limit
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		search:     search,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

// FindNearby returns at most Search.Limit facilities around the coordinate,
// in the order the service returned them. A service that answers with no
// features yields an empty slice and a nil error; transport failures and
// non-2xx statuses are returned as errors.
func (c *Client) FindNearby(ctx context.Context, lat, lon float64) ([]Facility, error) {
	if c.httpClient == nil {
		return nil, errors.New("http client is nil")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(lat, lon), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: strings.TrimSpace(string(rawBody))}
	}

	var decoded featureCollection
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	facilities := make([]Facility, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		facility, ok := f.Properties.toFacility()
		if !ok {
			c.logger.Debug("skipping place without coordinates", "place_id", f.Properties.PlaceID)
			continue
		}
		facilities = append(facilities, facility)
		if len(facilities) == c.search.Limit {
			break
		}
	}

	c.logger.Debug("places lookup done", "found", len(facilities))
	return facilities, nil
}

func (c *Client) searchURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("categories", c.search.Categories)
	q.Set("filter", fmt.Sprintf("circle:%s,%s,%d", formatCoord(lon), formatCoord(lat), c.search.RadiusMeters))
	q.Set("limit", strconv.Itoa(c.search.Limit))
	q.Set("apiKey", c.apiKey)
	return c.baseURL + "/v2/places?" + q.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
