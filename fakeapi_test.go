package videodb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type apiRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Raw    []byte
}

// JSON decodes the request body into a generic value.
func (r apiRequest) JSON(t *testing.T) any {
	t.Helper()

	var v any
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		t.Fatalf("request body %q is not JSON: %v", r.Raw, err)
	}
	return v
}

// Object decodes the request body into a JSON object.
func (r apiRequest) Object(t *testing.T) map[string]any {
	t.Helper()

	obj, ok := r.JSON(t).(map[string]any)
	if !ok {
		t.Fatalf("request body %q is not a JSON object", r.Raw)
	}
	return obj
}

// fakeAPI is an in-process VideoDB API that records every request.
type fakeAPI struct {
	t      *testing.T
	mux    *http.ServeMux
	server *httptest.Server

	mu       sync.Mutex
	requests []apiRequest
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{t: t, mux: http.NewServeMux()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))

		f.mu.Lock()
		f.requests = append(f.requests, apiRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Raw:    raw,
		})
		f.mu.Unlock()

		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)

	return f
}

// reply registers a handler answering pattern with a successful envelope
// around data.
func (f *fakeAPI) reply(pattern, data string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"success": true, "status": "done", "data": %s}`, data))
	})
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

func (f *fakeAPI) connection(opts ...ConnectionOption) *Connection {
	f.t.Helper()

	conn, err := NewConnection(newTestClient(f.t, f.server.URL), opts...)
	if err != nil {
		f.t.Fatalf("NewConnection() error = %v", err)
	}
	return conn
}

func (f *fakeAPI) all() []apiRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiRequest(nil), f.requests...)
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last() apiRequest {
	f.t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		f.t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Errorf(_ string, _ ...any) {}
func (l *recordingLogger) Debugf(_ string, _ ...any) {}

func (l *recordingLogger) Warnf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}
