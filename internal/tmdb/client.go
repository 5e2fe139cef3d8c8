// Package tmdb looks up TV titles on The Movie Database.
package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/bangumi"
	"github.com/pders01/anirss/internal/debuglog"
	"github.com/pders01/anirss/internal/storage"
)

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("tmdb api key required")

// Result represents a single TMDB search match.
type Result struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// SearchOptions contains optional parameters for TMDB TV search.
type SearchOptions struct {
	Year int
}

// CacheKey returns a stable string representation for caching.
func (o SearchOptions) CacheKey() string {
	return "y=" + strconv.Itoa(o.Year)
}

// Client provides access to the TMDB API for searches.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	cache      *storage.Cache
	cacheTTL   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache stores search responses in cache for ttl.
func WithCache(cache *storage.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchTV performs a TMDB TV search with optional filters.
func (c *Client) SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	key := "tv:" + query + "|" + opts.CacheKey()
	var payload Response
	if c.cache != nil && c.cache.Get(storage.TMDBBucket, key, c.cacheTTL, &payload) {
		return &payload, nil
	}

	endpoint, err := url.Parse(c.baseURL + "/search/tv")
	if err != nil {
		return nil, errors.Wrap(err, "parse tmdb url")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if opts.Year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(opts.Year))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, errors.Wrapf(err, "execute request (latency=%v)", latency)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("tmdb tv search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode tmdb response")
	}
	if c.cache != nil {
		if err := c.cache.Put(storage.TMDBBucket, key, &payload); err != nil {
			debuglog.Warnf("tmdb cache write %s: %v", key, err)
		}
	}
	return &payload, nil
}

// Name returns the TMDB title of sub and records the match on sub.TMDB. It
// returns "" when the client is nil, nothing matches, or the lookup fails.
func (c *Client) Name(ctx context.Context, sub *storage.Subscription) string {
	if c == nil || sub == nil {
		return ""
	}
	query := bangumi.StripSeason(sub.Title)
	if query == "" {
		return ""
	}

	resp, err := c.SearchTV(ctx, query, SearchOptions{Year: sub.Year})
	if err == nil && len(resp.Results) == 0 && sub.Year > 0 {
		// A season that aired years after the first one is filed under the
		// first air date.
		resp, err = c.SearchTV(ctx, query, SearchOptions{})
	}
	if err != nil {
		debuglog.Warnf("tmdb lookup %q: %v", query, err)
		return ""
	}
	if len(resp.Results) == 0 {
		debuglog.Debugf("tmdb: no match for %q", query)
		return ""
	}

	best := resp.Results[0]
	name := strings.TrimSpace(best.Name)
	if name == "" {
		return ""
	}
	sub.TMDB = &storage.TMDBInfo{ID: best.ID, Name: name, Date: best.FirstAirDate}
	return name
}
