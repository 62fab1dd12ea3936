package videodb

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

type attemptTimeoutKey struct{}

// withAttemptTimeout marks ctx so that every physical attempt made under it,
// including transport retries, gets its own deadline of timeout. The backoff
// between attempts is bounded only by ctx itself.
func withAttemptTimeout(ctx context.Context, timeout time.Duration) context.Context {
	return context.WithValue(ctx, attemptTimeoutKey{}, timeout)
}

// attemptTimeoutTransport applies the timeout set by withAttemptTimeout to a
// single round trip. The deadline covers reading the body and is released
// when the body is closed.
type attemptTimeoutTransport struct {
	next http.RoundTripper
}

func (t *attemptTimeoutTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	timeout, _ := req.Context().Value(attemptTimeoutKey{}).(time.Duration)
	if timeout <= 0 {
		return next.RoundTrip(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), timeout)

	resp, err := next.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// CloseIdleConnections lets [http.Client.CloseIdleConnections] reach the
// wrapped transport.
func (t *attemptTimeoutTransport) CloseIdleConnections() {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	if closer, ok := next.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.cancel)
	return err
}
