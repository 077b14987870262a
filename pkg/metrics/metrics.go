package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	UsersRegistered prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
	LeadsCreated    prometheus.Counter
	EmailsSent      prometheus.Counter
	ChatbotRequests prometheus.Counter
	ExportsCreated  *prometheus.CounterVec
	LeadsPerStage   *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		LeadsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created",
		}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of outreach emails sent",
		}),
		ChatbotRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chatbot_requests_total",
			Help: "Total number of chatbot queries",
		}),
		ExportsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_created_total",
				Help: "Total number of report exports created",
			},
			[]string{"format"}, // csv, excel, pdf
		),
		LeadsPerStage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leads_per_stage",
				Help: "Current number of leads in each pipeline stage",
			},
			[]string{"stage"},
		),

		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of active WebSocket connections",
		}),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // Use route pattern, not actual path

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	}
}

// RecordUserRegistered increments users registered counter
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegistered.Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordLeadCreated increments leads created counter
func (m *Metrics) RecordLeadCreated() {
	m.LeadsCreated.Inc()
}

// RecordEmailSent increments emails sent counter
func (m *Metrics) RecordEmailSent() {
	m.EmailsSent.Inc()
}

// RecordChatbotRequest increments chatbot requests counter
func (m *Metrics) RecordChatbotRequest() {
	m.ChatbotRequests.Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated(format string) {
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// SetLeadsPerStage updates the per-stage lead count gauge
func (m *Metrics) SetLeadsPerStage(stage string, count int) {
	m.LeadsPerStage.WithLabelValues(stage).Set(float64(count))
}

// WSConnected increments the active WebSocket gauge
func (m *Metrics) WSConnected() {
	m.WSConnections.Inc()
}

// WSDisconnected decrements the active WebSocket gauge
func (m *Metrics) WSDisconnected() {
	m.WSConnections.Dec()
}
