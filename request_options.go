package videodb

import (
	"strings"
	"time"
)

// RequestOption configures a single call made through [Client.Request] or
// one of the verb methods.
type RequestOption func(*requestConfig)

type requestConfig struct {
	baseURL     string
	headers     map[string]string
	queryParams map[string]string
	timeout     time.Duration
	body        any
}

func newRequestConfig(opts []RequestOption) *requestConfig {
	cfg := &requestConfig{
		headers:     map[string]string{},
		queryParams: map[string]string{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithBaseURLOverride sends the call to baseURL instead of the client's
// configured base URL.
func WithBaseURLOverride(baseURL string) RequestOption {
	return func(c *requestConfig) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithHeader sets a header for this call only. It replaces a default header
// of the same name.
func WithHeader(header, value string) RequestOption {
	return func(c *requestConfig) {
		header = strings.TrimSpace(header)
		if header != "" {
			c.headers[header] = value
		}
	}
}

// WithQueryParam adds a query parameter. Empty values are dropped.
func WithQueryParam(name, value string) RequestOption {
	return func(c *requestConfig) {
		if name != "" && value != "" {
			c.queryParams[name] = value
		}
	}
}

// WithQueryParams adds several query parameters. Empty values are dropped.
func WithQueryParams(params map[string]string) RequestOption {
	return func(c *requestConfig) {
		for name, value := range params {
			if name != "" && value != "" {
				c.queryParams[name] = value
			}
		}
	}
}

// WithTimeout bounds each physical request of this call, overriding the
// client's default timeout. It does not bound the time spent polling an
// asynchronous job; use the context or [WithPollTimeout] for that.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(c *requestConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithBody attaches a value to be sent as the JSON request body.
func WithBody(body any) RequestOption {
	return func(c *requestConfig) {
		c.body = body
	}
}
