package imageanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/buildinfo"
	"github.com/matzehuels/layoutfix/pkg/cache"
	"github.com/matzehuels/layoutfix/pkg/observability"
)

// Client defaults.
const (
	DefaultURL     = "http://image-analysis:3334"
	DefaultTimeout = 30 * time.Second
	HealthTimeout  = 5 * time.Second
)

// Client talks to the image-analysis provider. Successful results are
// cached; failures degrade to [Default] instead of surfacing an error.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	logger  *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCache stores results in ch for ttl.
func WithCache(ch cache.Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		if ch != nil {
			c.cache = ch
		}
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyer overrides the cache key layout.
func WithKeyer(k cache.Keyer) ClientOption {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a Client for the provider at baseURL. An empty baseURL
// uses [DefaultURL].
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.TTLAnalysis,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Analyze returns the analysis for imageURL at the target size. Cached
// results are served unless refresh is set. Provider failures are logged
// and yield [Default]; only context cancellation is returned as an error.
func (c *Client) Analyze(ctx context.Context, imageURL string, width, height int, refresh bool) (Analysis, error) {
	key := c.keyer.AnalysisKey(imageURL, width, height)
	if !refresh {
		var a Analysis
		if ok, err := cache.GetJSON(ctx, c.cache, key, &a); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "analysis")
			return a, nil
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	var a Analysis
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		a, err = c.fetch(ctx, imageURL, width, height)
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Default(), ctxErr
		}
		c.logger.Warn("image analysis failed, using default", "image", truncate(imageURL, 100), "err", err)
		return Default(), nil
	}

	if data, err := json.Marshal(a); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Debug("cache analysis", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "analysis", len(data))
		}
	}
	c.logger.Info("image analysis completed",
		"image", truncate(imageURL, 100),
		"focal_x", a.FocalPoint.Normalized.X,
		"focal_y", a.FocalPoint.Normalized.Y,
		"suggested", a.SuggestedTextPosition,
		"dark", a.Brightness.IsDark)
	return a, nil
}

func (c *Client) fetch(ctx context.Context, imageURL string, width, height int) (Analysis, error) {
	body, err := json.Marshal(analyzeRequest{ImageURL: imageURL, Width: width, Height: height})
	if err != nil {
		return Analysis{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return Analysis{}, err
	}
	defer resp.Body.Close()

	var a Analysis
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return a, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

// Healthy reports whether the provider answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Invalidate drops the cached analysis for imageURL at the given size.
func (c *Client) Invalidate(ctx context.Context, imageURL string, width, height int) error {
	return c.cache.Delete(ctx, c.keyer.AnalysisKey(imageURL, width, height))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
