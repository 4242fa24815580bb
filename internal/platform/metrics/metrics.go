package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	gatherer prometheus.Gatherer

	EventsPublished  *prometheus.CounterVec
	HandlerFailures  *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	ThingsCreated    prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates all Prometheus metrics on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the metrics on reg, which is also served by Handler.
// Each container gets its own registry so tests can build several.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published on the bus",
		}, []string{"event"}),
		HandlerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "event_handler_failures_total",
			Help: "Total number of event handler invocations that returned an error",
		}, []string{"event"}),
		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_dispatch_duration_seconds",
			Help:    "Time spent dispatching one event to all of its handlers",
			Buckets: prometheus.DefBuckets,
		}, []string{"event"}),
		ThingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "things_created_total",
			Help: "Total number of things created",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// EventPublished counts an event handed to the bus.
func (m *Metrics) EventPublished(eventName string) {
	m.EventsPublished.WithLabelValues(eventName).Inc()
}

// HandlerFailed counts a failed handler invocation.
func (m *Metrics) HandlerFailed(eventName string) {
	m.HandlerFailures.WithLabelValues(eventName).Inc()
}

// ObserveDispatch records how long one event took to dispatch.
func (m *Metrics) ObserveDispatch(eventName string, d time.Duration) {
	m.DispatchDuration.WithLabelValues(eventName).Observe(d.Seconds())
}

// IncrementThingsCreated increments the things created counter by 1
func (m *Metrics) IncrementThingsCreated() {
	m.ThingsCreated.Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
