// Package market retrieves index quotes, daily history and headlines from the Yahoo Finance
// chart and search endpoints.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public quote service.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

//nolint:gochecknoglobals // default values are overwritten by WithHTTPClient and WithRateLimit.
var (
	defaultTimeout   = 10 * time.Second
	defaultRate      = rate.Limit(8)
	defaultBurst     = 4
	breakerTimeout   = 30 * time.Second
	breakerFailLimit = uint32(5)
)

// Source is everything the tracker needs from a market data provider.
type Source interface {
	Quote(ctx context.Context, idx Index) (Quote, error)
	History(ctx context.Context, ticker string, days int) ([]Bar, error)
	News(ctx context.Context, ticker string, n int) ([]Headline, error)
}

// Client is the HTTP implementation of Source.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// ClientOption mutates Client configuration.
type ClientOption func(*Client)

// WithBaseURL configures the API base URL for production or tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base == "" {
			return
		}
		if u, err := url.Parse(base); err == nil {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit caps outgoing requests per second. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header. The quote service rejects requests without one.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient constructs a new Client with defaults.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent(),
		limiter:    rate.NewLimiter(defaultRate, defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == nil {
		u, err := url.Parse(DefaultBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid default baseURL: %w", err)
		}
		c.baseURL = u
	}

	st := gobreaker.Settings{Name: "quotes:" + c.baseURL.Host, Timeout: breakerTimeout}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= breakerFailLimit
	}
	// A missing symbol is an answer, not an outage.
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logrus.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Debug("circuit breaker state change")
	}
	c.breaker = gobreaker.NewCircuitBreaker(st)
	return c, nil
}

func defaultUserAgent() string {
	return fmt.Sprintf("run-ticker (%s; %s)", runtime.GOOS, runtime.GOARCH)
}

// joinURLPath joins two URL paths with exactly one slash boundary.
func joinURLPath(basePath, addPath string) string {
	switch {
	case basePath == "" || basePath == "/":
		return addPath
	case addPath == "":
		return basePath
	case hasTrailingSlash(basePath) && hasLeadingSlash(addPath):
		return basePath + addPath[1:]
	case !hasTrailingSlash(basePath) && !hasLeadingSlash(addPath):
		return basePath + "/" + addPath
	default:
		return basePath + addPath
	}
}

func hasTrailingSlash(p string) bool { return len(p) > 0 && p[len(p)-1] == '/' }
func hasLeadingSlash(p string) bool  { return len(p) > 0 && p[0] == '/' }

func (c *Client) buildURL(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = joinURLPath(u.Path, path)
	u.RawQuery = q.Encode()
	return u.String()
}

// getJSON waits for a rate-limit token, then performs a GET through the circuit breaker and
// decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, q), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, handleHTTPError(resp)
		}
		return nil, decodeJSON(resp.Body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// remoteErrorBody matches the error envelope of both the chart and search endpoints.
type remoteErrorBody struct {
	Chart struct {
		Error *remoteErrorDetail `json:"error"`
	} `json:"chart"`
	Finance struct {
		Error *remoteErrorDetail `json:"error"`
	} `json:"finance"`
}

type remoteErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (b remoteErrorBody) detail() remoteErrorDetail {
	switch {
	case b.Chart.Error != nil:
		return *b.Chart.Error
	case b.Finance.Error != nil:
		return *b.Finance.Error
	default:
		return remoteErrorDetail{}
	}
}

// handleHTTPError maps a non-success response to a package error. It consumes the body.
func handleHTTPError(resp *http.Response) error {
	var body remoteErrorBody
	_ = decodeJSON(resp.Body, &body)
	d := body.detail()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, d.Description)
	}
	return RemoteError{StatusCode: resp.StatusCode, Code: d.Code, Description: d.Description}
}

func decodeJSON[T any](r io.Reader, out T) error {
	return json.NewDecoder(r).Decode(out)
}
