// Package metrics exposes Prometheus counters for the API, the classifier,
// the assistant and the intake pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vishwaguru"

// Recorder holds every metric on a private registry so tests can build
// as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	Detections      *prometheus.CounterVec
	Fallbacks       *prometheus.CounterVec
	IssuesCreated   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers all metrics plus the Go runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Detections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Classifier calls by detector and outcome",
		}, []string{"detector", "outcome"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_fallbacks_total",
			Help:      "Assistant calls answered with a fallback value",
		}, []string{"operation", "reason"}),
		IssuesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_created_total",
			Help:      "Issues persisted by source",
		}, []string{"source"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
	}
}

// ObserveDetection implements inference.Observer.
func (r *Recorder) ObserveDetection(detector, outcome string) {
	r.Detections.WithLabelValues(detector, outcome).Inc()
}

// ObserveFallback implements assistant.Observer.
func (r *Recorder) ObserveFallback(operation, reason string) {
	r.Fallbacks.WithLabelValues(operation, reason).Inc()
}

// IssueCreated implements intake.Recorder.
func (r *Recorder) IssueCreated(source string) {
	r.IssuesCreated.WithLabelValues(source).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
