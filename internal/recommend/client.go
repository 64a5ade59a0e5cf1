package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/yildizm/movierec/internal/logger"
	"golang.org/x/time/rate"
)

// RecommendPath is the fixed endpoint path on the backend
const RecommendPath = "/recommend"

// maxBodyBytes bounds how much of a response is read
const maxBodyBytes = 4 << 20

// Log messages read back by the history command. Abandoned requests are
// logged at debug level under their own message and are not outcomes.
const (
	LogMsgFetched   = "recommendations fetched"
	LogMsgFailed    = "recommendation request failed"
	LogMsgAbandoned = "recommendation request abandoned"
)

// errRequestTimeout is the cause attached to the client's own deadline
var errRequestTimeout = errors.New("request timeout exceeded")

// Config holds client settings
type Config struct {
	// BaseURL of the backend, e.g. http://localhost:5000
	BaseURL string

	// Timeout bounds a single request; zero means no timeout
	Timeout time.Duration

	// RateLimit in requests per second; zero or less disables pacing
	RateLimit float64

	// Burst for the rate limiter
	Burst int

	Breaker BreakerConfig
}

// DefaultConfig returns a client configuration for a local backend
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:5000",
		Timeout:   10 * time.Second,
		RateLimit: 5,
		Burst:     2,
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL scheme %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// Client requests recommendations from the backend
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *rate.Limiter
	breaker    *breaker
	log        *logger.Logger
}

// NewClient creates a client for the configured backend
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{},
		baseURL:    baseURL,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	c.limiter = rate.NewLimiter(limit, max(cfg.Burst, 1))
	c.breaker = newBreaker("recommend-api", cfg.Breaker, c.log)

	return c, nil
}

// RequestURL returns the URL issued for userID and algo
func (c *Client) RequestURL(userID string, algo Algorithm) string {
	endpoint := c.baseURL.JoinPath(RecommendPath)

	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("algo", string(algo))
	endpoint.RawQuery = q.Encode()

	return endpoint.String()
}

// BreakerState reports the circuit state for diagnostics
func (c *Client) BreakerState() string {
	return c.breaker.state()
}

// Recommend fetches recommendations for userID computed by algo.
// The result keeps the server's order.
func (c *Client) Recommend(ctx context.Context, userID string, algo Algorithm) ([]Movie, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	fields := []logger.Field{
		logger.F("user_id", userID),
		logger.F("algo", string(algo)),
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, c.config.Timeout, errRequestTimeout)
		defer cancel()
	}

	start := time.Now()
	movies, err := c.recommend(ctx, userID, algo)
	fields = append(fields, logger.Duration(time.Since(start)))

	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fields = append(fields, logger.F("kind", string(fe.Kind)))
			if fe.StatusCode > 0 {
				fields = append(fields, logger.F("status", fe.StatusCode))
			}
			if fe.ServerMessage != "" {
				fields = append(fields, logger.F("server_error", fe.ServerMessage))
			}
		}
		fields = append(fields, logger.Error(err))
		if KindOf(err) == ErrKindCanceled {
			c.log.DebugWithFields(LogMsgAbandoned, fields)
		} else {
			c.log.ErrorWithFields(LogMsgFailed, fields)
		}
		return nil, err
	}

	fields = append(fields, logger.Count(len(movies)))
	c.log.InfoWithFields(LogMsgFetched, fields)
	return movies, nil
}

func (c *Client) recommend(ctx context.Context, userID string, algo Algorithm) ([]Movie, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, contextFailure(ctx, err)
	}

	return c.breaker.execute(func() ([]Movie, error) {
		return c.fetch(ctx, c.RequestURL(userID, algo))
	})
}

// fetch performs the GET and decodes the body
func (c *Client) fetch(ctx context.Context, endpoint string) ([]Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, newFetchError(ErrKindNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextFailure(ctx, err)
		}
		return nil, newFetchError(ErrKindNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextFailure(ctx, err)
		}
		return nil, newFetchError(ErrKindNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{Kind: ErrKindStatus, StatusCode: resp.StatusCode}
		var errorResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errorResp) == nil {
			fe.ServerMessage = errorResp.Error
		}
		return nil, fe
	}

	return decodeMovies(body)
}

// contextFailure tells the client's own timeout apart from the caller
// giving up
func contextFailure(ctx context.Context, err error) *FetchError {
	if errors.Is(context.Cause(ctx), errRequestTimeout) {
		return newFetchError(ErrKindTimeout, err)
	}
	return newFetchError(ErrKindCanceled, err)
}

// decodeMovies accepts only a JSON array; null or an object is malformed
func decodeMovies(body []byte) ([]Movie, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, newFetchError(ErrKindDecode, fmt.Errorf("expected JSON array, got %q", preview(trimmed)))
	}

	var movies []Movie
	if err := json.Unmarshal(trimmed, &movies); err != nil {
		return nil, newFetchError(ErrKindDecode, err)
	}
	if movies == nil {
		movies = []Movie{}
	}
	return movies, nil
}

func preview(b []byte) string {
	const limit = 40
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
