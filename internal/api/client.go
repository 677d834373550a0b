package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/cache"
	"github.com/aquamarinepk/aqm"
)

const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
	maxErrorBody   = 4096
)

// Client talks JSON to the restaurant backend. Successful GET replies are
// remembered so a later failing GET for the same path can be answered from
// memory while the entry is younger than the cache ttl.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	cache   *cache.ResponseCache
	logger  aqm.Logger
}

type Option func(*Client)

type noCacheKey struct{}

// WithoutCache marks ctx so GETs made with it fail instead of falling back to
// a cached reply. Successful replies are still stored.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	bypass, _ := ctx.Value(noCacheKey{}).(bool)
	return bypass
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithTokenSource(ts auth.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func WithCache(rc *cache.ResponseCache) Option {
	return func(c *Client) {
		c.cache = rc
	}
}

func WithLogger(logger aqm.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: aqm.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, dest interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, dest)
}

// GetQuery issues a GET with query parameters appended to path.
func (c *Client) GetQuery(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, dest)
}

func (c *Client) Post(ctx context.Context, path string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) Put(ctx context.Context, path string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) Patch(ctx context.Context, path string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, body, dest)
}

func (c *Client) Delete(ctx context.Context, path string, dest interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, dest)
}

// Do sends one request. No retries are attempted.
func (c *Client) Do(ctx context.Context, method, path string, body, dest interface{}) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}

	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		if method == http.MethodGet && !cacheBypassed(ctx) {
			if cached, ok := c.fromCache(path); ok {
				c.logger.Info("serving cached response", "path", path, "error", err)
				return decodeBody(cached, dest)
			}
		}
		return err
	}

	if method == http.MethodGet && c.cache != nil {
		c.cache.Set(cacheKey(method, path), raw)
	}

	return decodeBody(raw, dest)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

func (c *Client) fromCache(path string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(cacheKey(http.MethodGet, path))
}

func cacheKey(method, path string) string {
	return method + " /" + strings.TrimLeft(path, "/")
}
