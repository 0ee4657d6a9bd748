package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sm-junior0/ndarehe-sub001/internal/auth"
	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
	"github.com/sm-junior0/ndarehe-sub001/internal/repository"
)

const (
	HeaderRequestID = "X-Request-ID"
	defaultTimeout  = 30 * time.Second
)

// Client talks to the ndarehe admin REST API. The bearer token is fixed at
// construction; every call fails fast with auth.ErrNoToken when it is empty.
type Client struct {
	baseURL    string
	token      auth.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
	now        func() time.Time

	cache         repository.ResponseCache
	cacheTTL      time.Duration
	cachePrefixes []string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 5
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache enables GET response caching for paths starting with one of prefixes.
func WithCache(cache repository.ResponseCache, ttl time.Duration, prefixes ...string) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
		c.cachePrefixes = append([]string(nil), prefixes...)
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL string, token auth.Token, opts ...Option) *Client {
	nop := zerolog.Nop()
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     &nop,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() auth.Token {
	return c.token
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func decodeEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &EnvelopeError{Message: "malformed response", Err: err}
	}
	if !env.Success {
		msg := env.message()
		if msg == "" {
			msg = "request was not successful"
		}
		return &EnvelopeError{Message: msg}
	}
	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &EnvelopeError{Message: "unexpected data shape", Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.token.Check(c.now()); err != nil {
		return err
	}

	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	resource := resourceLabel(path)
	cacheable := method == http.MethodGet && c.cacheable(path)

	if cacheable {
		if data, ok := c.readCache(ctx, target); ok {
			metrics.ObserveAPI(method, resource, "cache", 0)
			return decodeEnvelope(data, out)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Method: method, Path: target, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", c.token.Bearer())
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome := "transport_error"
		if isCanceled(err) {
			outcome = "canceled"
		}
		metrics.ObserveAPI(method, resource, outcome, time.Since(start))
		return &TransportError{Method: method, Path: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveAPI(method, resource, "transport_error", time.Since(start))
		return &TransportError{Method: method, Path: target, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", target).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("admin api call")

	if resp.StatusCode >= 300 {
		metrics.ObserveAPI(method, resource, "http_error", time.Since(start))
		return newHTTPError(resp.StatusCode, data)
	}
	if err := decodeEnvelope(data, out); err != nil {
		metrics.ObserveAPI(method, resource, "envelope_error", time.Since(start))
		return err
	}
	metrics.ObserveAPI(method, resource, "ok", time.Since(start))

	if cacheable {
		c.writeCache(ctx, target, data)
	}
	if method != http.MethodGet {
		c.invalidate(ctx, path)
	}
	return nil
}

func (c *Client) cacheable(path string) bool {
	if c.cache == nil || c.cacheTTL <= 0 {
		return false
	}
	for _, p := range c.cachePrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (c *Client) readCache(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("response cache read failed")
		return nil, false
	}
	return data, ok
}

func (c *Client) writeCache(ctx context.Context, key string, data []byte) {
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("response cache write failed")
	}
}

// derivedPrefixes hold aggregates computed from every collection.
var derivedPrefixes = []string{"/admin/dashboard", "/admin/activity", "/admin/reports/"}

// invalidate drops cached responses of the mutated collection and of the
// aggregates derived from it.
func (c *Client) invalidate(ctx context.Context, path string) {
	if c.cache == nil {
		return
	}
	for _, prefix := range append([]string{collectionPath(path)}, derivedPrefixes...) {
		if err := c.cache.DeletePrefix(ctx, prefix); err != nil {
			c.logger.Warn().Err(err).Str("prefix", prefix).Msg("response cache invalidation failed")
		}
	}
}

// collectionPath trims a record path down to its collection:
// /admin/tours/42/verify -> /admin/tours.
func collectionPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 3 && parts[0] == "admin" && parts[1] == "help":
		return "/" + strings.Join(parts[:3], "/")
	case len(parts) >= 2:
		return "/" + strings.Join(parts[:2], "/")
	default:
		return path
	}
}

func resourceLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "admin" {
		if parts[1] == "help" && len(parts) >= 3 {
			return "help_" + parts[2]
		}
		return parts[1]
	}
	return "other"
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func recordPath(collection, id string, suffix ...string) string {
	p := collection + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
