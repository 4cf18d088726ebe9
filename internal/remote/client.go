// Package remote talks to the scheduling API that owns nurse availability.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wardrota/wardrota/internal/availability"
)

const nursesCacheKey = "wardrota:nurses"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: http %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client implements availability.Backend over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger

	// writes is nil when saves are not throttled.
	writes *rate.Limiter

	redis    *redis.Client
	cacheTTL time.Duration
}

var _ availability.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSaveRate limits ReplaceWeek calls to perSecond with the given burst.
// A non-positive rate disables the limit.
func WithSaveRate(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.writes = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.writes = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRedisCache caches the nurse directory in Redis for ttl.
func WithRedisCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(c *Client) {
		c.redis = rdb
		c.cacheTTL = ttl
	}
}

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the Redis connection, if any.
func (c *Client) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// ListNurses returns the nurse directory, served from the cache when warm.
func (c *Client) ListNurses(ctx context.Context) ([]availability.Nurse, error) {
	var nurses []availability.Nurse
	if c.readCache(ctx, nursesCacheKey, &nurses) {
		c.logger.Debug().Int("count", len(nurses)).Msg("nurses served from cache")
		return nurses, nil
	}

	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/v1/nurses", nil, &nurses); err != nil {
		return nil, fmt.Errorf("listing nurses: %w", err)
	}
	c.writeCache(ctx, nursesCacheKey, nurses)
	return nurses, nil
}

// InvalidateNurses drops the cached directory.
func (c *Client) InvalidateNurses(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, nursesCacheKey).Err()
}

// FetchWeek reads the records of one nurse-week. Availability is never
// cached since other operators may be editing it.
func (c *Client) FetchWeek(ctx context.Context, nurseID string, weekStart time.Time) ([]availability.RangeRecord, error) {
	records := []availability.RangeRecord{}
	if err := c.doJSON(ctx, http.MethodGet, c.availabilityURL(nurseID, weekStart), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceWeek sends the full record list for one nurse-week.
func (c *Client) ReplaceWeek(ctx context.Context, nurseID string, weekStart time.Time, records []availability.RangeRecord) error {
	if c.writes != nil {
		if err := c.writes.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for save slot: %w", err)
		}
	}
	if records == nil {
		records = []availability.RangeRecord{}
	}
	return c.doJSON(ctx, http.MethodPut, c.availabilityURL(nurseID, weekStart), records, nil)
}

func (c *Client) availabilityURL(nurseID string, weekStart time.Time) string {
	return fmt.Sprintf("%s/api/v1/nurses/%s/availability?week_start=%s",
		c.baseURL, url.PathEscape(nurseID), url.QueryEscape(weekStart.Format(availability.DateLayout)))
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.addHeaders(req)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	l := c.logger.With().
		Str("request_id", req.Header.Get("X-Request-ID")).
		Str("method", req.Method).
		Str("url", req.URL.Path).
		Logger()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		l.Debug().Err(err).Msg("request failed")
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	l.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     req.Method,
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
}
