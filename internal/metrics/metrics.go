package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the servers. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	GateDecisions     *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	TenantRepairs     *prometheus.CounterVec
	DailyReports      *prometheus.CounterVec
	EventsPublished   *prometheus.CounterVec
	NotificationsSent *prometheus.CounterVec
	DashboardDuration prometheus.Histogram
	TenantsRegistered prometheus.Counter
}

// New creates and registers all collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flownest_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_subscription_gate_decisions_total",
			Help: "Subscription gate outcomes (admitted, expired, terminated)",
		}, []string{"outcome"}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_subscription_status_transitions_total",
			Help: "Subscription status writes made by the gate",
		}, []string{"from", "to"}),
		TenantRepairs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_tenant_link_repairs_total",
			Help: "Owner tenant link repairs by result",
		}, []string{"result"}),
		DailyReports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_daily_reports_total",
			Help: "Daily sales reports by result (sent, skipped, failed)",
		}, []string{"result"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_events_published_total",
			Help: "Domain events published by type and result",
		}, []string{"type", "result"}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flownest_notifications_sent_total",
			Help: "Notification deliveries by channel and result",
		}, []string{"channel", "result"}),
		DashboardDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "flownest_dashboard_duration_seconds",
			Help:    "Duration of dashboard aggregation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TenantsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "flownest_tenants_registered_total",
			Help: "Total number of owner registrations",
		}),
	}
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// GateDecision records a subscription gate outcome.
func (m *Metrics) GateDecision(outcome string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(outcome).Inc()
}

// StatusTransition records a persisted status change.
func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// TenantRepair records the result of a tenant link repair.
func (m *Metrics) TenantRepair(result string) {
	if m == nil {
		return
	}
	m.TenantRepairs.WithLabelValues(result).Inc()
}

// DailyReport records the result for one owner's daily report.
func (m *Metrics) DailyReport(result string) {
	if m == nil {
		return
	}
	m.DailyReports.WithLabelValues(result).Inc()
}

// EventPublished records a domain event publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, result(err)).Inc()
}

// NotificationSent records a delivery attempt on a channel.
func (m *Metrics) NotificationSent(channel string, err error) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel, result(err)).Inc()
}

// ObserveDashboard records the duration of a dashboard build.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDashboard(start time.Time) {
	if m == nil {
		return
	}
	m.DashboardDuration.Observe(time.Since(start).Seconds())
}

// IncrementTenantsRegistered records a successful owner registration.
func (m *Metrics) IncrementTenantsRegistered() {
	if m == nil {
		return
	}
	m.TenantsRegistered.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
