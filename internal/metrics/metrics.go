// Package metrics exposes Prometheus collectors for the lookup pool.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Task outcomes recorded by ObserveTask.
const (
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
	TaskPanicked  = "panicked"
)

var (
	weatherTasksTotal          *prometheus.CounterVec
	weatherActiveWorkers       prometheus.Gauge
	weatherPoolSize            prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		weatherTasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_tasks_total",
				Help: "Total number of pool tasks finished, labeled by status.",
			},
			[]string{"status"},
		)

		weatherActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "weather_active_workers",
				Help: "Number of workers currently running a lookup.",
			},
		)

		weatherPoolSize = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "weather_pool_size",
				Help: "Number of workers in the lookup pool.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTask increments the task counter for the given status.
func ObserveTask(status string) {
	weatherTasksTotal.WithLabelValues(status).Inc()
}

// SetPoolSize records how many workers the pool started.
func SetPoolSize(n int) {
	weatherPoolSize.Set(float64(n))
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	weatherActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	weatherActiveWorkers.Dec()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
