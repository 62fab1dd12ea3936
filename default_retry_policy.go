package videodb

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// retryableStatusCodes are the responses the API returns for transient
// server-side conditions.
var retryableStatusCodes = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// DefaultRetryPolicy is the default retry condition used by [Client]. It
// retries on HTTP 429 (rate limit), on 500, 502, 503 and 504, and on
// transient connection errors such as a reset or refused connection. It does
// not retry on context cancellation, deadline exceeded, or DNS resolution
// failures.
//
// The policy only governs physical request attempts. Waiting for an
// asynchronous job to finish is handled separately by the poll loop.
//
// Supply a custom function via [WithRetryPolicy] to override this behaviour.
func DefaultRetryPolicy(r *resty.Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}

		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return false
		}

		return true
	}

	if r == nil {
		return false
	}

	_, ok := retryableStatusCodes[r.StatusCode()]
	return ok
}
