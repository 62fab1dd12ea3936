package videodb

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewClientOptions(t *testing.T) {
	t.Parallel()

	opts := newClientOptions()

	if opts.retryCount != 3 {
		t.Errorf("expected retryCount=3, got %d", opts.retryCount)
	}

	if opts.retryWaitTime != 500*time.Millisecond {
		t.Errorf("expected retryWaitTime=500ms, got %v", opts.retryWaitTime)
	}

	if opts.retryMaxWaitTime != 3*time.Second {
		t.Errorf("expected retryMaxWaitTime=3s, got %v", opts.retryMaxWaitTime)
	}

	if opts.timeout != 30*time.Second {
		t.Errorf("expected timeout=30s, got %v", opts.timeout)
	}

	if opts.pollInterval != time.Second {
		t.Errorf("expected pollInterval=1s, got %v", opts.pollInterval)
	}

	if opts.pollMaxInterval != 30*time.Second {
		t.Errorf("expected pollMaxInterval=30s, got %v", opts.pollMaxInterval)
	}

	if opts.pollTimeout != 5*time.Minute {
		t.Errorf("expected pollTimeout=5m, got %v", opts.pollTimeout)
	}

	if opts.requestLogger == nil {
		t.Error("expected requestLogger to be set")
	}

	if opts.retryPolicy == nil {
		t.Error("expected retryPolicy to be set")
	}

	if opts.requestHeaders["Content-Type"] != "application/json" {
		t.Errorf("expected Content-Type=application/json, got %s", opts.requestHeaders["Content-Type"])
	}

	if opts.metricsRegisterer != nil {
		t.Error("expected metrics to be disabled by default")
	}
}

func TestWithRetryCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"valid positive", 5, 5},
		{"zero", 0, 0},
		{"negative ignored", -1, 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newClientOptions()
			WithRetryCount(tt.input)(opts)

			if opts.retryCount != tt.expected {
				t.Errorf("expected retryCount=%d, got %d", tt.expected, opts.retryCount)
			}
		})
	}
}

func TestWithRetryWaitTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    time.Duration
		expected time.Duration
	}{
		{"valid", 200 * time.Millisecond, 200 * time.Millisecond},
		{"minimum valid", 100 * time.Millisecond, 100 * time.Millisecond},
		{"below minimum ignored", 50 * time.Millisecond, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newClientOptions()
			WithRetryWaitTime(tt.input)(opts)

			if opts.retryWaitTime != tt.expected {
				t.Errorf("expected retryWaitTime=%v, got %v", tt.expected, opts.retryWaitTime)
			}
		})
	}
}

func TestWithRetryMaxWaitTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    time.Duration
		expected time.Duration
	}{
		{"valid", 5 * time.Second, 5 * time.Second},
		{"minimum valid", 100 * time.Millisecond, 100 * time.Millisecond},
		{"below minimum ignored", 50 * time.Millisecond, 3 * time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newClientOptions()
			WithRetryMaxWaitTime(tt.input)(opts)

			if opts.retryMaxWaitTime != tt.expected {
				t.Errorf("expected retryMaxWaitTime=%v, got %v", tt.expected, opts.retryMaxWaitTime)
			}
		})
	}
}

func TestPollOptions(t *testing.T) {
	t.Parallel()

	opts := newClientOptions()
	WithPollInterval(10 * time.Millisecond)(opts)
	WithPollMaxInterval(40 * time.Millisecond)(opts)
	WithPollTimeout(time.Second)(opts)
	WithPollJitter(0)(opts)

	if opts.pollInterval != 10*time.Millisecond {
		t.Errorf("expected pollInterval=10ms, got %v", opts.pollInterval)
	}
	if opts.pollMaxInterval != 40*time.Millisecond {
		t.Errorf("expected pollMaxInterval=40ms, got %v", opts.pollMaxInterval)
	}
	if opts.pollTimeout != time.Second {
		t.Errorf("expected pollTimeout=1s, got %v", opts.pollTimeout)
	}
	if opts.pollJitter != 0 {
		t.Errorf("expected pollJitter=0, got %v", opts.pollJitter)
	}

	// Invalid values keep the previous setting.
	WithPollInterval(0)(opts)
	WithPollMaxInterval(-time.Second)(opts)
	WithPollTimeout(0)(opts)
	WithPollJitter(1.5)(opts)
	WithDefaultTimeout(0)(opts)

	if opts.pollInterval != 10*time.Millisecond || opts.pollMaxInterval != 40*time.Millisecond ||
		opts.pollTimeout != time.Second || opts.pollJitter != 0 || opts.timeout != 30*time.Second {
		t.Error("invalid poll options should be ignored")
	}
}

func TestWithRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("valid logger", func(t *testing.T) {
		t.Parallel()

		opts := newClientOptions()
		logger := &NoopLogger{}
		WithRequestLogger(logger)(opts)

		if opts.requestLogger != logger {
			t.Error("expected requestLogger to be set")
		}
	})

	t.Run("nil ignored", func(t *testing.T) {
		t.Parallel()

		opts := newClientOptions()
		originalLogger := opts.requestLogger
		WithRequestLogger(nil)(opts)

		if opts.requestLogger != originalLogger {
			t.Error("nil logger should be ignored")
		}
	})
}

func TestWithRetryPolicy(t *testing.T) {
	t.Parallel()

	opts := newClientOptions()
	WithRetryPolicy(nil)(opts)

	if opts.retryPolicy == nil {
		t.Fatal("nil policy should be ignored")
	}

	called := false
	WithRetryPolicy(func(_ *resty.Response, _ error) bool {
		called = true
		return false
	})(opts)

	opts.retryPolicy(nil, nil)
	if !called {
		t.Error("expected custom retryPolicy to be installed")
	}
}

func TestWithRequestHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		header        string
		value         string
		expectIgnored bool
	}{
		{"valid header", "X-Custom", "value", false},
		{"empty header ignored", "", "value", true},
		{"whitespace header ignored", "   ", "value", true},
		{"Content-Type protected", "Content-Type", "text/plain", true},
		{"content-type protected (case insensitive)", "content-type", "text/plain", true},
		{"Accept protected", "Accept", "text/plain", true},
		{"access token protected", "X-Access-Token", "other", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newClientOptions()
			originalLen := len(opts.requestHeaders)

			WithRequestHeader(tt.header, tt.value)(opts)

			if tt.expectIgnored {
				if len(opts.requestHeaders) != originalLen {
					t.Errorf("expected header %q to be ignored", tt.header)
				}
				if opts.requestHeaders["Content-Type"] != "application/json" {
					t.Error("Content-Type should not be changed")
				}
			} else if opts.requestHeaders[tt.header] != tt.value {
				t.Errorf("expected header %s=%s, got %s", tt.header, tt.value, opts.requestHeaders[tt.header])
			}
		})
	}
}

func TestWithHTTPClientAndMetrics(t *testing.T) {
	t.Parallel()

	opts := newClientOptions()
	hc := &http.Client{}
	reg := prometheus.NewRegistry()

	WithHTTPClient(nil)(opts)
	WithMetricsRegisterer(nil)(opts)
	if opts.httpClient != nil || opts.metricsRegisterer != nil {
		t.Fatal("nil values should be ignored")
	}

	WithHTTPClient(hc)(opts)
	WithMetricsRegisterer(reg)(opts)
	if opts.httpClient != hc {
		t.Error("expected httpClient to be set")
	}
	if opts.metricsRegisterer != reg {
		t.Error("expected metricsRegisterer to be set")
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*Options)
		wantError string
	}{
		{
			name:      "valid defaults",
			modify:    func(_ *Options) {},
			wantError: "",
		},
		{
			name:      "negative retryCount",
			modify:    func(o *Options) { o.retryCount = -1 },
			wantError: "retryCount must be non-negative",
		},
		{
			name:      "retryCount exceeds max",
			modify:    func(o *Options) { o.retryCount = 101 },
			wantError: "retryCount must not exceed 100",
		},
		{
			name:      "retryWaitTime below minimum",
			modify:    func(o *Options) { o.retryWaitTime = 50 * time.Millisecond },
			wantError: "retryWaitTime must be at least 100ms",
		},
		{
			name:      "retryWaitTime exceeds max",
			modify:    func(o *Options) { o.retryWaitTime = 2 * time.Minute },
			wantError: "retryWaitTime must not exceed 1m0s",
		},
		{
			name:      "retryMaxWaitTime exceeds max",
			modify:    func(o *Options) { o.retryMaxWaitTime = 6 * time.Minute },
			wantError: "retryMaxWaitTime must not exceed 5m0s",
		},
		{
			name: "retryMaxWaitTime less than retryWaitTime",
			modify: func(o *Options) {
				o.retryWaitTime = 1 * time.Second
				o.retryMaxWaitTime = 500 * time.Millisecond
			},
			wantError: "retryMaxWaitTime (500ms) must be greater than or equal to retryWaitTime (1s)",
		},
		{
			name:      "zero timeout",
			modify:    func(o *Options) { o.timeout = 0 },
			wantError: "timeout must be positive",
		},
		{
			name: "pollMaxInterval less than pollInterval",
			modify: func(o *Options) {
				o.pollInterval = 2 * time.Second
				o.pollMaxInterval = time.Second
			},
			wantError: "pollMaxInterval (1s) must be greater than or equal to pollInterval (2s)",
		},
		{
			name:      "zero pollTimeout",
			modify:    func(o *Options) { o.pollTimeout = 0 },
			wantError: "pollTimeout must be positive",
		},
		{
			name:      "pollMultiplier below one",
			modify:    func(o *Options) { o.pollMultiplier = 0.5 },
			wantError: "pollMultiplier must be at least 1",
		},
		{
			name:      "nil requestLogger",
			modify:    func(o *Options) { o.requestLogger = nil },
			wantError: "requestLogger must not be nil",
		},
		{
			name:      "nil retryPolicy",
			modify:    func(o *Options) { o.retryPolicy = nil },
			wantError: "retryPolicy must not be nil",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newClientOptions()
			tt.modify(opts)

			err := opts.Validate()

			if tt.wantError == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.wantError)
				} else if err.Error() != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, err.Error())
				}
			}
		})
	}
}
