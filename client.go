package videodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Client is the VideoDB transport client. It owns a pooled HTTP session,
// authenticates every request, retries transient failures and waits for
// asynchronous jobs to finish. A Client is safe for concurrent use.
type Client struct {
	baseURL  string
	options  *Options
	client   *resty.Client
	transfer *resty.Client
	metrics  *metrics
}

// New creates a client for the API at baseURL, authenticated with apiKey.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL must be set")
	}

	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key must be set")
	}

	options := newClientOptions()
	for _, o := range opts {
		o(options)
	}

	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	m, err := newMetrics(options.metricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		options: options,
		metrics: m,
	}

	c.client = c.newSession().
		SetHeaders(options.requestHeaders).
		SetHeader(AccessTokenHeader, apiKey)

	// Presigned upload URLs and the streaming service must not see the
	// access token.
	c.transfer = c.newSession()

	options.requestLogger.Debugf("initialized VideoDB client with base URL %s", baseURL)

	return c, nil
}

func (c *Client) newSession() *resty.Client {
	var session *resty.Client
	if c.options.httpClient != nil {
		hc := *c.options.httpClient
		session = resty.NewWithClient(&hc)
	} else {
		session = resty.New()
	}

	hc := session.GetClient()
	hc.Transport = &attemptTimeoutTransport{next: hc.Transport}

	return session.
		SetLogger(c.options.requestLogger).
		SetRetryCount(c.options.retryCount).
		SetRetryWaitTime(c.options.retryWaitTime).
		SetRetryMaxWaitTime(c.options.retryMaxWaitTime).
		AddRetryCondition(c.options.retryPolicy).
		AddRetryHook(c.onRetry)
}

func (c *Client) onRetry(resp *resty.Response, err error) {
	if resp == nil || resp.Request == nil {
		return
	}

	c.metrics.observeRetry(resp.Request.Method)

	reason := ""
	if err != nil {
		reason = err.Error()
	} else {
		reason = resp.Status()
	}

	c.options.requestLogger.Warnf("attempt %d of %s %s failed: %s", resp.Request.Attempt, resp.Request.Method, resp.Request.URL, reason)
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.client.GetClient().CloseIdleConnections()
	c.transfer.GetClient().CloseIdleConnections()
}

// Request performs an API call and returns the envelope's data payload.
//
// A call whose job the server runs synchronously but answers with status
// "processing" is resolved by polling the job's output URL until it
// finishes. A job the caller submitted as asynchronous is acknowledged with
// a nil payload and nil error. Every failure is returned as an
// [*AuthenticationError], [*InvalidRequestError] or [*PollTimeoutError].
func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (json.RawMessage, error) {
	if c == nil {
		return nil, errors.New("videodb client is nil")
	}

	cfg := newRequestConfig(opts)
	requestID := uuid.NewString()

	resp, err := c.execute(ctx, method, c.resolveURL(cfg.baseURL, path), requestID, cfg)
	if err != nil {
		return nil, err
	}

	return c.interpret(ctx, resp, requestID)
}

// Get performs a GET request. Query parameters are supplied with
// [WithQueryParam] or [WithQueryParams].
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, opts...)
}

// Post performs a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, withBodyFirst(body, opts)...)
}

// Put performs a PUT request with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, path, withBodyFirst(body, opts)...)
}

// Patch performs a PATCH request with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPatch, path, withBodyFirst(body, opts)...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, path, opts...)
}

func withBodyFirst(body any, opts []RequestOption) []RequestOption {
	return append([]RequestOption{WithBody(body)}, opts...)
}

func (c *Client) resolveURL(override, path string) string {
	base := c.baseURL
	if override != "" {
		base = strings.TrimRight(override, "/")
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// execute runs one physical exchange, retried by the transport, against an
// absolute URL and returns the response only if it is 2xx. The timeout bounds
// each attempt; ctx bounds the whole exchange.
func (c *Client) execute(ctx context.Context, method, url, requestID string, cfg *requestConfig) (*resty.Response, error) {
	timeout := cfg.timeout
	if timeout == 0 {
		timeout = c.options.timeout
	}

	req := c.client.R().
		SetContext(withAttemptTimeout(ctx, timeout)).
		SetHeader(RequestIDHeader, requestID).
		SetHeaders(cfg.headers).
		SetQueryParams(cfg.queryParams)

	if cfg.body != nil {
		req.SetBody(cfg.body)
	}

	c.options.requestLogger.Debugf("%s %s (request_id: %s)", method, url, requestID)

	start := time.Now()
	resp, err := req.Execute(method, url)
	c.metrics.observeRequest(method, statusCode(resp), time.Since(start))

	if err != nil {
		c.options.requestLogger.Errorf("%s %s failed: %v (request_id: %s)", method, url, err, requestID)
		return nil, classifyTransportError(err, resp, requestID)
	}

	if !resp.IsSuccess() {
		exhausted := c.retriesExhausted(resp)
		c.options.requestLogger.Debugf("%s %s returned %d (request_id: %s)", method, url, resp.StatusCode(), requestID)
		return nil, classifyResponse(resp, requestID, exhausted)
	}

	return resp, nil
}

// retriesExhausted reports whether resp is a retryable failure left over
// after the transport used its whole retry budget.
func (c *Client) retriesExhausted(resp *resty.Response) bool {
	retries := c.options.retryCount
	return retries > 0 && resp.Request.Attempt > retries && c.options.retryPolicy(resp, nil)
}

// interpret decides what a successful response means for the caller.
func (c *Client) interpret(ctx context.Context, resp *resty.Response, requestID string) (json.RawMessage, error) {
	env, err := decodeEnvelope(resp.Body())
	if err != nil {
		message := resp.String()
		if strings.TrimSpace(message) == "" {
			message = "empty response body"
		}
		return nil, &InvalidRequestError{
			Message:   message,
			RequestID: requestID,
			Response:  resp,
			Err:       err,
		}
	}

	switch env.disposition() {
	case dispositionAccepted:
		c.options.requestLogger.Debugf("job accepted for background processing (request_id: %s)", requestID)
		return nil, nil

	case dispositionPoll:
		outputURL := env.outputURL()
		if outputURL == "" {
			return nil, &InvalidRequestError{
				Message:   "processing response has no output_url",
				RequestID: requestID,
				Response:  resp,
			}
		}
		return c.poll(ctx, outputURL, requestID)

	case dispositionPayload:
		return env.Data, nil

	default:
		return nil, &InvalidRequestError{
			Message:   env.failureMessage(),
			RequestID: requestID,
			Response:  resp,
		}
	}
}
