package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all agent metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Worker runtime
	WorkerEvents  *prometheus.CounterVec
	WorkerLatency *prometheus.HistogramVec
	PushPayloads  *prometheus.CounterVec

	// Tray
	NotificationsShown    prometheus.Counter
	NotificationsReplaced prometheus.Counter
	NotificationClicks    *prometheus.CounterVec

	// Window clients
	WindowsFocused prometheus.Counter
	WindowsOpened  prometheus.Counter

	// Backend
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
}

// New creates and registers all agent metrics
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		WorkerEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Worker events handled, by type and outcome",
		}, []string{"type", "status"}),
		WorkerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_duration_seconds",
			Help:      "Time from dispatch until every extended-lifetime task settled",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"type"}),
		PushPayloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "push_payloads_total",
			Help:      "Push payloads by decode result",
		}, []string{"result"}),

		NotificationsShown: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tray",
			Name:      "notifications_shown_total",
			Help:      "Notifications displayed",
		}),
		NotificationsReplaced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tray",
			Name:      "notifications_replaced_total",
			Help:      "Notifications that replaced a visible one with the same tag",
		}),
		NotificationClicks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tray",
			Name:      "notification_clicks_total",
			Help:      "Notification clicks by action",
		}, []string{"action"}),

		WindowsFocused: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clients",
			Name:      "windows_focused_total",
			Help:      "Existing windows focused by click routing",
		}),
		WindowsOpened: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clients",
			Name:      "windows_opened_total",
			Help:      "Windows opened by click routing",
		}),

		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests to the job-alert backend",
		}, []string{"method", "status"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
