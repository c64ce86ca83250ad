package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for
// automation cycle execution. All methods are nil-safe so callers can run
// without metrics in tests.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cycleTotal      *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	fallbackTotal   *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "automation",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "automation",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	cycleTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "automation",
		Subsystem: "cycle",
		Name:      "runs_total",
		Help:      "Total number of automation cycles by trigger and outcome.",
	}, []string{"trigger", "status"})

	cycleDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "automation",
		Subsystem: "cycle",
		Name:      "duration_seconds",
		Help:      "Duration of automation cycles.",
		Buckets:   prometheus.DefBuckets,
	})

	fallbackTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "automation",
		Subsystem: "datasource",
		Name:      "fallbacks_total",
		Help:      "Total number of synthetic fallback snapshots served by data source.",
	}, []string{"source"})

	collectors := []prometheus.Collector{requestDuration, requestTotal, cycleTotal, cycleDuration, fallbackTotal}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cycleTotal:      cycleTotal,
		cycleDuration:   cycleDuration,
		fallbackTotal:   fallbackTotal,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// CycleCompleted records the outcome of one automation cycle.
func (c *Collector) CycleCompleted(trigger string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.cycleTotal.WithLabelValues(trigger, status).Inc()
	c.cycleDuration.Observe(elapsed.Seconds())
}

// FallbackServed records that a data source substituted synthetic data.
func (c *Collector) FallbackServed(source string) {
	if c == nil {
		return
	}
	c.fallbackTotal.WithLabelValues(source).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
