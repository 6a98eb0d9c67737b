package flickr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/flickfinder/internal"
	"codeberg.org/snonux/flickfinder/internal/failure"
	"codeberg.org/snonux/flickfinder/internal/logging"
	"codeberg.org/snonux/flickfinder/internal/query"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultRequestsPerSec   = 1.0
	defaultBurst            = 3
	defaultMaxResponseBytes = 8 * 1024 * 1024
	defaultMaxImageBytes    = 10 * 1024 * 1024
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

// Config holds the client settings
type Config struct {
	Endpoint          query.Endpoint
	Timeout           time.Duration // per request, including the body
	RequestsPerSecond float64       // request pacing; <= 0 disables it
	Burst             int
	MaxResponseBytes  int64
	MaxImageBytes     int64
	BreakerThreshold  uint32        // consecutive failures that open the breaker
	BreakerCooldown   time.Duration // how long the breaker stays open
	UserAgent         string
}

// DefaultConfig returns settings for the public Flickr API
func DefaultConfig() Config {
	return Config{
		Endpoint:          query.DefaultEndpoint,
		Timeout:           defaultTimeout,
		RequestsPerSecond: defaultRequestsPerSec,
		Burst:             defaultBurst,
		MaxResponseBytes:  defaultMaxResponseBytes,
		MaxImageBytes:     defaultMaxImageBytes,
		BreakerThreshold:  defaultBreakerThreshold,
		BreakerCooldown:   defaultBreakerCooldown,
		UserAgent:         "flickfinder/" + internal.Version,
	}
}

// Client talks to the Flickr REST API and downloads photos
type Client struct {
	config        Config
	httpClient    *http.Client
	limiter       *rate.Limiter
	searchBreaker *gobreaker.CircuitBreaker
	imageBreaker  *gobreaker.CircuitBreaker
	logger        logrus.FieldLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used when the request context carries none
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client. An invalid endpoint is a configuration
// error and is reported here rather than on the first search.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Endpoint.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.Discard(),
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	c.limiter = rate.NewLimiter(limit, cfg.Burst)

	for _, opt := range opts {
		opt(c)
	}

	c.searchBreaker = c.newBreaker("flickr-api")
	c.imageBreaker = c.newBreaker("flickr-images")

	return c, nil
}

// newBreaker builds one breaker per remote concern, so a failing photo host
// never blocks searches against the API and vice versa
func (c *Client) newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     c.config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.config.BreakerThreshold
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up, by cancel or by deadline, is not the remote side failing
			return err == nil || errors.Is(err, errCallerDone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Endpoint == (query.Endpoint{}) {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = def.MaxResponseBytes
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = def.MaxImageBytes
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = def.BreakerThreshold
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return cfg
}

// Endpoint returns the API endpoint the client queries
func (c *Client) Endpoint() query.Endpoint {
	return c.config.Endpoint
}

// Search runs one flickr.photos.search request and validates the reply.
// Every failure is a *failure.Error whose kind names the first check that
// did not pass.
func (c *Client) Search(ctx context.Context, params query.Parameters) (*SearchResponse, error) {
	u, err := c.config.Endpoint.Encode(params)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx, c.logger).WithField("url", redact(u))
	start := time.Now()

	raw, err := c.get(ctx, c.searchBreaker, u.String(), c.config.MaxResponseBytes)
	if err != nil {
		log.WithError(err).Warn("Search request failed")
		return nil, failure.Wrap(failure.KindTransport, err, "search request failed")
	}

	log = log.WithFields(logrus.Fields{
		"status":   raw.status,
		"bytes":    len(raw.body),
		"duration": time.Since(start).String(),
	})

	if raw.status < 200 || raw.status > 299 {
		log.Warn("Search returned non-2xx status")
		return nil, failure.New(failure.KindBadStatus, "server responded with status %d", raw.status).
			WithContext("status", raw.status)
	}
	if len(raw.body) == 0 {
		log.Warn("Search returned no data")
		return nil, failure.New(failure.KindEmptyBody, "server returned no data")
	}
	if raw.truncated {
		return nil, failure.New(failure.KindDecode, "response exceeds %d bytes", c.config.MaxResponseBytes)
	}

	resp, err := DecodeSearchResponse(raw.body)
	if err != nil {
		log.WithError(err).Warn("Search response rejected")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"pages":  resp.TotalPages,
		"photos": len(resp.Photos),
	}).Debug("Search succeeded")
	return resp, nil
}

// Image is a downloaded photo
type Image struct {
	URL         string
	ContentType string
	Data        []byte
}

// FetchImage downloads the photo at imageURL. Any failure is reported as
// failure.KindImageFetchFailed.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (*Image, error) {
	log := logging.FromContext(ctx, c.logger).WithField("image_url", imageURL)

	raw, err := c.get(ctx, c.imageBreaker, imageURL, c.config.MaxImageBytes)
	if err != nil {
		log.WithError(err).Warn("Image download failed")
		return nil, failure.Wrap(failure.KindImageFetchFailed, err, "download failed")
	}
	if raw.status < 200 || raw.status > 299 {
		log.WithField("status", raw.status).Warn("Image download returned non-2xx status")
		return nil, failure.New(failure.KindImageFetchFailed, "download failed with status %d", raw.status).
			WithContext("status", raw.status)
	}
	if raw.truncated {
		return nil, failure.New(failure.KindImageFetchFailed, "image exceeds maximum size of %d bytes", c.config.MaxImageBytes)
	}
	if len(raw.body) == 0 {
		return nil, failure.New(failure.KindImageFetchFailed, "image is empty")
	}

	contentType := raw.header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(raw.body)
	}

	log.WithField("bytes", len(raw.body)).Debug("Image downloaded")
	return &Image{
		URL:         imageURL,
		ContentType: contentType,
		Data:        raw.body,
	}, nil
}

// rawResponse is a fully read HTTP response
type rawResponse struct {
	status    int
	header    http.Header
	body      []byte
	truncated bool
}

// errServerStatus marks 5xx replies so the breaker counts them as failures
var errServerStatus = errors.New("server error status")

// errCallerDone marks failures caused by the caller's own context ending
var errCallerDone = errors.New("caller context done")

// get performs a paced, breaker-guarded GET and reads at most limit bytes
// of the body. Only transport problems are returned as errors; any HTTP
// status comes back in the response.
func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, rawURL string, limit int64) (*rawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	out, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errCallerDone, err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: failed to read body: %w", errCallerDone, err)
			}
			return nil, fmt.Errorf("failed to read body: %w", err)
		}

		raw := &rawResponse{
			status: resp.StatusCode,
			header: resp.Header,
			body:   body,
		}
		if int64(len(body)) > limit {
			raw.body = body[:limit]
			raw.truncated = true
		}
		if resp.StatusCode >= 500 {
			return raw, errServerStatus
		}
		return raw, nil
	})

	if errors.Is(err, errServerStatus) {
		return out.(*rawResponse), nil
	}
	if err != nil {
		return nil, err
	}
	return out.(*rawResponse), nil
}

// redact hides the API key in logged URLs
func redact(u *url.URL) string {
	q := u.Query()
	if q.Get(query.KeyAPIKey) == "" {
		return u.String()
	}
	q.Set(query.KeyAPIKey, "REDACTED")
	clone := *u
	clone.RawQuery = q.Encode()
	return clone.String()
}
