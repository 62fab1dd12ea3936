package videodb

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"
	"time"
)

// newTestClient returns a client with short backoff and polling delays.
func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()

	defaults := []Option{
		WithRetryWaitTime(100 * time.Millisecond),
		WithRetryMaxWaitTime(100 * time.Millisecond),
		WithPollInterval(5 * time.Millisecond),
		WithPollMaxInterval(20 * time.Millisecond),
		WithPollTimeout(2 * time.Second),
	}

	c, err := New(baseURL, "test-key", append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)

	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func assertJSONEqual(t *testing.T, got []byte, want string) {
	t.Helper()

	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("failed to decode %s: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("failed to decode %s: %v", want, err)
	}
	if !reflect.DeepEqual(g, w) {
		t.Errorf("payload = %s, want %s", got, want)
	}
}
