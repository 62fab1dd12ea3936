package videodb

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultBaseURL is the public VideoDB API endpoint.
	DefaultBaseURL = "https://api.videodb.io"

	// AccessTokenHeader carries the API key on every request.
	AccessTokenHeader = "x-access-token"

	// RequestIDHeader carries the per-call correlation id.
	RequestIDHeader = "X-Request-Id"
)

type Option func(*Options)

type Options struct {
	retryCount        int
	retryWaitTime     time.Duration
	retryMaxWaitTime  time.Duration
	timeout           time.Duration
	pollInterval      time.Duration
	pollMaxInterval   time.Duration
	pollTimeout       time.Duration
	pollMultiplier    float64
	pollJitter        float64
	requestLogger     RequestLogger
	retryPolicy       func(*resty.Response, error) bool
	requestHeaders    map[string]string
	httpClient        *http.Client
	metricsRegisterer prometheus.Registerer
}

func newClientOptions() *Options {
	return &Options{
		retryCount:       3,
		retryWaitTime:    500 * time.Millisecond,
		retryMaxWaitTime: 3 * time.Second,
		timeout:          30 * time.Second,
		pollInterval:     time.Second,
		pollMaxInterval:  30 * time.Second,
		pollTimeout:      5 * time.Minute,
		pollMultiplier:   2.0,
		pollJitter:       0.2,
		requestLogger:    &NoopLogger{},
		retryPolicy:      DefaultRetryPolicy,
		requestHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}
}

// WithRetryCount sets the number of transport-level retries for a single
// physical request. Zero disables retries.
func WithRetryCount(count int) Option {
	return func(o *Options) {
		if count >= 0 {
			o.retryCount = count
		}
	}
}

func WithRetryWaitTime(waitTime time.Duration) Option {
	return func(o *Options) {
		if waitTime >= 100*time.Millisecond {
			o.retryWaitTime = waitTime
		}
	}
}

func WithRetryMaxWaitTime(maxWaitTime time.Duration) Option {
	return func(o *Options) {
		if maxWaitTime >= 100*time.Millisecond {
			o.retryMaxWaitTime = maxWaitTime
		}
	}
}

// WithDefaultTimeout sets the timeout applied to each physical request when
// the call does not supply its own via [WithTimeout].
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithPollInterval sets the first delay between status polls of an
// asynchronous job.
func WithPollInterval(interval time.Duration) Option {
	return func(o *Options) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithPollMaxInterval caps the delay between two status polls.
func WithPollMaxInterval(interval time.Duration) Option {
	return func(o *Options) {
		if interval > 0 {
			o.pollMaxInterval = interval
		}
	}
}

// WithPollTimeout sets the total time a call may spend waiting for an
// asynchronous job before failing with a [PollTimeoutError].
func WithPollTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.pollTimeout = timeout
		}
	}
}

// WithPollJitter sets the randomization factor (0.0 to 1.0) applied to poll
// delays.
func WithPollJitter(jitter float64) Option {
	return func(o *Options) {
		if jitter >= 0 && jitter <= 1 {
			o.pollJitter = jitter
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

func WithRetryPolicy(policy func(*resty.Response, error) bool) Option {
	return func(o *Options) {
		if policy != nil {
			o.retryPolicy = policy
		}
	}
}

// WithRequestHeader adds a default header sent on every request. The
// access token and content negotiation headers cannot be replaced here.
func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)

		if header == "" ||
			strings.EqualFold(header, "Content-Type") ||
			strings.EqualFold(header, "Accept") ||
			strings.EqualFold(header, AccessTokenHeader) {
			return
		}

		o.requestHeaders[header] = value
	}
}

// WithHTTPClient sets the underlying HTTP client, for example to tune the
// connection pool or install a custom transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithMetricsRegisterer enables Prometheus metrics for the client and
// registers its collectors with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) {
		if reg != nil {
			o.metricsRegisterer = reg
		}
	}
}

func (o *Options) Validate() error {
	if o.retryCount < 0 {
		return errors.New("retryCount must be non-negative")
	}

	if o.retryCount > 100 {
		return errors.New("retryCount must not exceed 100")
	}

	if o.retryWaitTime < 100*time.Millisecond {
		return errors.New("retryWaitTime must be at least 100ms")
	}

	if o.retryWaitTime > time.Minute {
		return fmt.Errorf("retryWaitTime must not exceed %v", time.Minute)
	}

	if o.retryMaxWaitTime < 100*time.Millisecond {
		return errors.New("retryMaxWaitTime must be at least 100ms")
	}

	if o.retryMaxWaitTime > 5*time.Minute {
		return fmt.Errorf("retryMaxWaitTime must not exceed %v", 5*time.Minute)
	}

	if o.retryMaxWaitTime < o.retryWaitTime {
		return fmt.Errorf("retryMaxWaitTime (%v) must be greater than or equal to retryWaitTime (%v)", o.retryMaxWaitTime, o.retryWaitTime)
	}

	if o.timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if o.pollInterval <= 0 {
		return errors.New("pollInterval must be positive")
	}

	if o.pollMaxInterval < o.pollInterval {
		return fmt.Errorf("pollMaxInterval (%v) must be greater than or equal to pollInterval (%v)", o.pollMaxInterval, o.pollInterval)
	}

	if o.pollTimeout <= 0 {
		return errors.New("pollTimeout must be positive")
	}

	if o.pollMultiplier < 1 {
		return errors.New("pollMultiplier must be at least 1")
	}

	if o.pollJitter < 0 || o.pollJitter > 1 {
		return errors.New("pollJitter must be between 0 and 1")
	}

	if o.requestLogger == nil {
		return errors.New("requestLogger must not be nil")
	}

	if o.retryPolicy == nil {
		return errors.New("retryPolicy must not be nil")
	}

	return nil
}
