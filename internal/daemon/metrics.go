package daemon

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics is the Prometheus collector set, grounded on
// flextape/service/service.go's package-level promauto-registered
// gauges/counters/histograms: collectors are registered once per process
// against the default registerer, not per Daemon instance, since
// registering the same metric name twice panics.
type metrics struct {
	queueDepth      prometheus.Gauge
	jobsTotal       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	metricQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poudriered_queue_depth",
		Help: "Number of commands currently waiting in the execution queue.",
	})
	metricJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poudriered_jobs_total",
		Help: "Child jobs completed, by exit classification.",
	}, []string{"class"})
	metricRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poudriered_request_duration_seconds",
		Help:    "Time spent handling one socket request, by outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
)

func newMetrics() *metrics {
	return &metrics{
		queueDepth:      metricQueueDepth,
		jobsTotal:       metricJobsTotal,
		requestDuration: metricRequestDuration,
	}
}

// ServeMetrics starts a best-effort HTTP exporter on addr. Callers run it in
// its own goroutine; a nil/empty addr means metrics are disabled.
func ServeMetrics(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
