// Package statsapi is a client for the pitcher statistics backend, which
// serves the merged season table, archetype clusters and the similarity graph.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

const (
	// DefaultBaseURL is where the backend listens in development
	DefaultBaseURL = "http://localhost:8000"

	// Timeout for backend requests
	requestTimeout = 10 * time.Second

	DefaultCacheSize = 256
	DefaultCacheTTL  = 5 * time.Minute

	// findLimit bounds the search used to resolve a pitcher by name
	findLimit = 50
)

// Client fetches pitcher data from the statistics backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *expirable.LRU[string, []byte]
	hits       atomic.Int64
	misses     atomic.Int64
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache sizes the response cache. A size below zero disables caching.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size < 0 {
			c.cache = nil
			return
		}
		if size == 0 {
			size = DefaultCacheSize
		}
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		c.cache = expirable.NewLRU[string, []byte](size, nil, ttl)
	}
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		cache: expirable.NewLRU[string, []byte](DefaultCacheSize, nil, DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListPitchers returns one page of pitchers
func (c *Client) ListPitchers(ctx context.Context, q models.PitcherQuery) (models.PitcherPage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Archetype != "" {
		params.Set("archetype", q.Archetype)
	}
	if q.Position != "" {
		params.Set("position", q.Position)
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", q.SortOrder)
	}
	params.Set("skip", strconv.Itoa(q.Skip))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var page models.PitcherPage
	if err := c.get(ctx, "/pitchers", params, &page); err != nil {
		return models.PitcherPage{}, err
	}
	if page.Data == nil {
		page.Data = []models.Record{}
	}
	return page, nil
}

// Archetypes returns the sorted archetype names
func (c *Client) Archetypes(ctx context.Context) ([]string, error) {
	var archetypes []string
	if err := c.get(ctx, "/archetypes", nil, &archetypes); err != nil {
		return nil, err
	}
	if archetypes == nil {
		archetypes = []string{}
	}
	return archetypes, nil
}

// Similar returns the closest pitchers within the named pitcher's archetype
func (c *Client) Similar(ctx context.Context, name string) ([]models.Record, error) {
	var similar []models.Record
	path := "/pitchers/" + url.PathEscape(name) + "/similar"
	if err := c.get(ctx, path, nil, &similar); err != nil {
		return nil, err
	}
	if similar == nil {
		similar = []models.Record{}
	}
	return similar, nil
}

// Graph returns the similarity network
func (c *Client) Graph(ctx context.Context, q models.GraphQuery) (models.Graph, error) {
	params := url.Values{}
	for _, m := range q.Metrics {
		params.Add("metrics", m)
	}
	if q.Neighbors > 0 {
		params.Set("neighbors", strconv.Itoa(q.Neighbors))
	}
	if q.TargetPlayer != "" {
		params.Set("target_player", q.TargetPlayer)
	}

	var graph models.Graph
	if err := c.get(ctx, "/graph-data", params, &graph); err != nil {
		return models.Graph{}, err
	}
	if graph.Nodes == nil {
		graph.Nodes = []models.GraphNode{}
	}
	if graph.Links == nil {
		graph.Links = []models.GraphLink{}
	}
	return graph, nil
}

// FindPitcher resolves a pitcher by exact name, ignoring case
func (c *Client) FindPitcher(ctx context.Context, name string) (models.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrPitcherNotFound
	}

	q := models.DefaultPitcherQuery()
	q.Search = name
	q.Limit = findLimit
	page, err := c.ListPitchers(ctx, q)
	if err != nil {
		return nil, err
	}

	for _, rec := range page.Data {
		if strings.EqualFold(rec.Name(), name) {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, models.ErrPitcherNotFound)
}

// Ping checks that the backend is reachable. It bypasses the cache.
func (c *Client) Ping(ctx context.Context) error {
	var info struct {
		Message      string `json:"message"`
		PitcherCount int    `json:"pitcher_count"`
	}
	body, err := c.fetch(ctx, c.baseURL+"/")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if info.PitcherCount == 0 {
		log.Printf("Warning: stats backend at %s has no pitchers loaded", c.baseURL)
	}
	return nil
}

// CacheStats reports response cache usage
type CacheStats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// CacheStats returns the current cache counters
func (c *Client) CacheStats() CacheStats {
	stats := CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	if c.cache != nil {
		stats.Size = c.cache.Len()
	}
	return stats
}

// PurgeCache drops every cached response
func (c *Client) PurgeCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// get fetches path with params, through the cache, and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL = fmt.Sprintf("%s?%s", apiURL, params.Encode())
	}

	body, ok := c.cached(apiURL)
	if !ok {
		var err error
		body, err = c.fetch(ctx, apiURL)
		if err != nil {
			return err
		}
		if c.cache != nil {
			c.cache.Add(apiURL, body)
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok := c.cache.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return body, ok
}

// fetch performs a GET and returns the body of a 200 response
func (c *Client) fetch(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body), err: models.ErrPitcherNotFound}
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// StatusError is a non-200 response from the backend
type StatusError struct {
	Code int
	Body string
	err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.err
}
