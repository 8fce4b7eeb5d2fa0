package figma

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/artifact-search/internal/logger"
)

const (
	// DefaultBaseURL is the Figma REST API root.
	DefaultBaseURL = "https://api.figma.com/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxAttempts bounds the number of requests made for one call.
	MaxAttempts = 3

	// InitialBackoff is the first wait of the retry schedule.
	InitialBackoff = time.Second

	// HeaderToken carries the personal access token.
	HeaderToken = "X-Figma-Token"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimiter replaces the default proactive limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// Client is a Figma REST client with throttling and retries.
type Client struct {
	token       string
	baseURL     string
	rateLimiter *RateLimiter

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	once sync.Once
	http *http.Client
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:       token,
		baseURL:     DefaultBaseURL,
		rateLimiter: NewRateLimiter(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// httpClient creates the HTTP client on first use.
func (c *Client) httpClient() *http.Client {
	c.once.Do(func() {
		c.http = &http.Client{Timeout: DefaultTimeout}
	})
	return c.http
}

// GetFile returns the raw JSON document of a file.
func (c *Client) GetFile(ctx context.Context, fileKey string) ([]byte, error) {
	return c.get(ctx, "/files/"+url.PathEscape(fileKey), nil)
}

// GetNodes returns the raw JSON for the given node ids of a file.
func (c *Client) GetNodes(ctx context.Context, fileKey string, ids ...string) ([]byte, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	return c.get(ctx, "/files/"+url.PathEscape(fileKey)+"/nodes", q)
}

// Ping calls /me once, without retries.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.do(ctx, c.baseURL+"/me")
	if err != nil {
		return fmt.Errorf("figma: %w", err)
	}
	if res.status != http.StatusOK {
		return res.apiError()
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
}

// response is one completed HTTP exchange.
type response struct {
	url        string
	status     int
	body       []byte
	retryAfter time.Duration
}

func (r *response) apiError() *APIError {
	return &APIError{
		StatusCode: r.status,
		Message:    strings.TrimSpace(string(r.body)),
		URL:        r.url,
	}
}

// get performs a GET with retries. 429, 5xx and client timeouts are retried;
// any other non-200 status fails at once.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	schedule := newBackOff()
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		wait := schedule.NextBackOff()

		res, err := c.do(ctx, u)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !isTimeout(err) {
				return nil, fmt.Errorf("figma: %w", err)
			}
			logger.Warn("Figma timeout, waiting %s", wait)
			lastErr = err

		case res.status == http.StatusOK:
			return res.body, nil

		case res.status == http.StatusTooManyRequests:
			wait = max(wait, res.retryAfter)
			logger.Warn("Figma rate limited, waiting %s", wait)
			lastErr = &RateLimitError{RetryAfter: res.retryAfter}

		case res.status >= http.StatusInternalServerError:
			logger.Warn("Figma server error %d, waiting %s", res.status, wait)
			lastErr = res.apiError()

		default:
			return nil, res.apiError()
		}

		if attempt == MaxAttempts {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, MaxAttempts, lastErr)
}

// do sends a single throttled GET.
func (c *Client) do(ctx context.Context, u string) (*response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(HeaderToken, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.StatusCode != http.StatusOK {
		reader = io.LimitReader(resp.Body, maxErrorBody)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &response{
		url:        u,
		status:     resp.StatusCode,
		body:       body,
		retryAfter: RetryAfter(resp, time.Now()),
	}, nil
}

// newBackOff returns the 1s, 2s, 4s retry schedule without jitter.
func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = InitialBackoff << MaxAttempts
	b.Reset()
	return b
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
