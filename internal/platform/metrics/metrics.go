// Package metrics provides Prometheus metric collection and exposure for the
// application. Request metrics are recorded by HTTP middleware, lifecycle
// metrics arrive through the events package via EventRecorder, and the reaper
// reports its sweep counts directly.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records application metrics into a Prometheus registry.
type Collector struct {
	registrations   prometheus.Counter
	logins          prometheus.Counter
	logouts         prometheus.Counter
	tasksCreated    *prometheus.CounterVec
	tasksCompleted  prometheus.Counter
	tasksDeleted    prometheus.Counter
	sessionsReaped  prometheus.Counter
	httpRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a new Collector and registers its metrics with the
// provided registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_registrations_total",
			Help: "Total number of accounts registered",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_logins_total",
			Help: "Total number of sessions issued through login",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_logouts_total",
			Help: "Total number of sessions revoked through logout",
		}),
		tasksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_tasks_created_total",
			Help: "Total number of tasks created, by category",
		}, []string{"category"}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_tasks_completed_total",
			Help: "Total number of tasks marked completed",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_tasks_deleted_total",
			Help: "Total number of tasks deleted",
		}),
		sessionsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_sessions_reaped_total",
			Help: "Total number of expired sessions removed by the reaper",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_http_requests_total",
			Help: "Total number of HTTP requests, by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docket_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.logouts,
		c.tasksCreated,
		c.tasksCompleted,
		c.tasksDeleted,
		c.sessionsReaped,
		c.httpRequests,
		c.requestDuration,
	)

	return c
}

// RecordRegistration counts a successful account registration.
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin counts a successfully issued session.
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordLogout counts a session revoked through logout.
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// RecordTaskCreated counts a created task under its category.
func (c *Collector) RecordTaskCreated(category string) {
	c.tasksCreated.WithLabelValues(category).Inc()
}

// RecordTaskCompleted counts a task transitioning to completed.
func (c *Collector) RecordTaskCompleted() {
	c.tasksCompleted.Inc()
}

// RecordTaskDeleted counts a deleted task.
func (c *Collector) RecordTaskDeleted() {
	c.tasksDeleted.Inc()
}

// RecordSessionsReaped adds the number of sessions removed in a reaper sweep.
func (c *Collector) RecordSessionsReaped(count int64) {
	c.sessionsReaped.Add(float64(count))
}

// RecordHTTPRequest counts a served HTTP request and observes its latency.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns an HTTP handler that serves gathered metrics for
// Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
