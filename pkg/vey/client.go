// Package vey is a client for the Vey address validation API.
package vey

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public API base URL.
	DefaultEndpoint = "https://api.vey.example"

	// DefaultTimeout bounds each call when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a fresh UUID on every API call.
	RequestIDHeader = "X-Request-Id"

	defaultUserAgent = "vey-go/1.0"
)

// Client validates and normalizes addresses against the remote API.
//
// A Client holds one pooled HTTP connection set for its lifetime and is safe
// for concurrent use. Call Close when it is no longer needed.
type Client interface {
	// ValidateAddress checks addr for the given ISO country code. A result
	// with Valid false is not an error.
	ValidateAddress(ctx context.Context, addr Address, countryCode string) (*ValidationResult, error)

	// NormalizeAddress returns the canonical form of addr.
	NormalizeAddress(ctx context.Context, addr Address, countryCode string) (*Address, error)

	// EncodePID builds a place identifier from address components. No I/O.
	EncodePID(components map[string]string) string

	// Close releases pooled connections. Later calls fail with ErrClosed.
	Close()
}

// Option configures the client.
type Option func(*httpClient)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *httpClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Its own timeout applies and
// WithTimeout is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.timeout = d
	}
}

// WithRateLimit caps outbound calls to rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	header    http.Header
	http      *http.Client
	limiter   *rate.Limiter
	closed    atomic.Bool
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &httpClient{
		endpoint:  DefaultEndpoint,
		userAgent: defaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.endpoint = strings.TrimRight(c.endpoint, "/")

	if c.http == nil {
		c.http = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c.header = http.Header{}
	c.header.Set("Authorization", "Bearer "+apiKey)
	c.header.Set("Content-Type", "application/json")
	c.header.Set("Accept", "application/json")
	c.header.Set("User-Agent", c.userAgent)

	return c, nil
}

// addressRequest is the request body shared by /validate and /normalize.
type addressRequest struct {
	Address     Address `json:"address"`
	CountryCode string  `json:"countryCode"`
}

func (c *httpClient) ValidateAddress(ctx context.Context, addr Address, countryCode string) (*ValidationResult, error) {
	body, err := c.post(ctx, "/validate", addressRequest{Address: addr, CountryCode: countryCode})
	if err != nil {
		return nil, eris.Wrap(err, "vey: validate")
	}

	var result ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "vey: unmarshal validation result")
	}
	return &result, nil
}

func (c *httpClient) NormalizeAddress(ctx context.Context, addr Address, countryCode string) (*Address, error) {
	body, err := c.post(ctx, "/normalize", addressRequest{Address: addr, CountryCode: countryCode})
	if err != nil {
		return nil, eris.Wrap(err, "vey: normalize")
	}

	var normalized Address
	if err := json.Unmarshal(body, &normalized); err != nil {
		return nil, eris.Wrap(err, "vey: unmarshal normalized address")
	}
	return &normalized, nil
}

func (c *httpClient) EncodePID(components map[string]string) string {
	return EncodePID(components)
}

func (c *httpClient) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.http.CloseIdleConnections()
}

// post sends payload as JSON to path and returns the body of a 2xx response.
func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "vey: rate limit")
		}
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "vey: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, eris.Wrap(err, "vey: create request")
	}
	req.Header = c.header.Clone()
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "vey: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "vey: read response")
	}

	zap.L().Debug("vey: api call",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}
