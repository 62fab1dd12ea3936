package videodb

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the client's Prometheus collectors. A nil *metrics records
// nothing.
type metrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retryCounter    *prometheus.CounterVec
	pollCounter     *prometheus.CounterVec
	pollDuration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "videodb",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of physical API requests",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "videodb",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds, retries included",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method"},
		),
		retryCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "videodb",
				Subsystem: "client",
				Name:      "retries_total",
				Help:      "Total number of transport-level retries",
			},
			[]string{"method"},
		),
		pollCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "videodb",
				Subsystem: "client",
				Name:      "job_polls_total",
				Help:      "Total number of asynchronous job status polls",
			},
			[]string{"outcome"},
		),
		pollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "videodb",
				Subsystem: "client",
				Name:      "job_wait_seconds",
				Help:      "Time spent waiting for asynchronous jobs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
	}

	var err error
	m.requestCounter, err = register(reg, m.requestCounter)
	if err != nil {
		return nil, err
	}
	m.requestDuration, err = register(reg, m.requestDuration)
	if err != nil {
		return nil, err
	}
	m.retryCounter, err = register(reg, m.retryCounter)
	if err != nil {
		return nil, err
	}
	m.pollCounter, err = register(reg, m.pollCounter)
	if err != nil {
		return nil, err
	}
	m.pollDuration, err = register(reg, m.pollDuration)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, reusing an identical collector registered by
// another client.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observeRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestCounter.WithLabelValues(method, label).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *metrics) observeRetry(method string) {
	if m == nil {
		return
	}
	m.retryCounter.WithLabelValues(method).Inc()
}

func (m *metrics) observePoll(outcome string) {
	if m == nil {
		return
	}
	m.pollCounter.WithLabelValues(outcome).Inc()
}

func (m *metrics) observeJobWait(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pollDuration.Observe(elapsed.Seconds())
}
