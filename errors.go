package videodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrAuthentication matches every [AuthenticationError].
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidRequest matches every [InvalidRequestError].
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPollTimeout matches every [PollTimeoutError].
	ErrPollTimeout = errors.New("asynchronous job did not complete in time")
)

// Error is returned for local precondition violations, such as supplying
// neither or both of two mutually exclusive inputs.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("videodb: %s: %v", e.Message, e.Err)
	}
	return "videodb: " + e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// AuthenticationError is returned when the API rejects the access token.
type AuthenticationError struct {
	Message   string
	RequestID string
	Response  *resty.Response
	Err       error
}

func (e *AuthenticationError) Error() string {
	return "authentication error: " + e.Message
}

// Unwrap returns the underlying error.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// StatusCode returns the HTTP status of the triggering response, or 0.
func (e *AuthenticationError) StatusCode() int {
	return statusCode(e.Response)
}

// InvalidRequestError covers every other request, response or protocol
// failure: non-2xx statuses, malformed bodies, unsuccessful envelopes,
// exhausted retries, timeouts and connection failures.
type InvalidRequestError struct {
	Message   string
	RequestID string
	Response  *resty.Response
	Err       error
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Message
}

// Unwrap returns the underlying error.
func (e *InvalidRequestError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// StatusCode returns the HTTP status of the triggering response, or 0.
func (e *InvalidRequestError) StatusCode() int {
	return statusCode(e.Response)
}

// PollTimeoutError is returned when an asynchronous job is still pending
// after the poll timeout has elapsed.
type PollTimeoutError struct {
	URL        string
	Elapsed    time.Duration
	Attempts   int
	LastStatus Status
	RequestID  string
	Response   *resty.Response
	Err        error
}

func (e *PollTimeoutError) Error() string {
	msg := fmt.Sprintf("job at %s still %s after %v (%d polls)", e.URL, e.LastStatus, e.Elapsed.Round(time.Millisecond), e.Attempts)
	if e.Err != nil {
		msg += fmt.Sprintf(": last error: %v", e.Err)
	}
	return "poll timeout: " + msg
}

// Unwrap returns the last error seen while polling, if any.
func (e *PollTimeoutError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *PollTimeoutError) Is(target error) bool {
	return target == ErrPollTimeout
}

func statusCode(r *resty.Response) int {
	if r == nil || r.RawResponse == nil {
		return 0
	}
	return r.StatusCode()
}

// classifyResponse maps a non-2xx response to a typed error. exhausted
// reports that the transport gave up retrying a retryable response.
func classifyResponse(resp *resty.Response, requestID string, exhausted bool) error {
	message := extractErrorMessage(resp.Body())

	if resp.StatusCode() == http.StatusUnauthorized {
		return &AuthenticationError{
			Message:   message,
			RequestID: requestID,
			Response:  resp,
		}
	}

	if exhausted {
		message = "Max retries exceeded: " + message
	}

	return &InvalidRequestError{
		Message:   message,
		RequestID: requestID,
		Response:  resp,
	}
}

// classifyTransportError maps a failure that produced no usable response.
func classifyTransportError(err error, resp *resty.Response, requestID string) error {
	var message string

	switch {
	case errors.Is(err, context.Canceled):
		message = "Request canceled"
	case isTimeout(err):
		message = "Request timed out"
	case isConnectionError(err):
		message = "Connection error"
	default:
		message = err.Error()
	}

	return &InvalidRequestError{
		Message:   message,
		RequestID: requestID,
		Response:  resp,
		Err:       err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, net.ErrClosed)
}

// extractErrorMessage returns the body's "message" field if present, the raw
// body otherwise, and "Unknown error" for an empty body.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}

	if raw := strings.TrimSpace(string(body)); raw != "" {
		return raw
	}

	return "Unknown error"
}
