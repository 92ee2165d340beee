package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	storeMutations            *prometheus.CounterVec
	snapshotsDelivered        prometheus.Counter
	snapshotFanoutDuration    prometheus.Histogram
	activeSubscriptions       prometheus.Gauge
	authenticationEventsTotal *prometheus.CounterVec
	usersRegisteredTotal      prometheus.Counter
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		storeMutations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_mutations_total",
				Help: "Total number of transaction store mutations",
			},
			[]string{"operation"},
		),
		snapshotsDelivered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "store_snapshots_delivered_total",
				Help: "Total number of snapshot broadcasts delivered to subscribers",
			},
		),
		snapshotFanoutDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "store_snapshot_fanout_duration_milliseconds",
				Help:    "Snapshot broadcast duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		activeSubscriptions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "store_subscriptions_active",
				Help: "Current number of live snapshot subscriptions",
			},
		),
		authenticationEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		usersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of registered users",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "store.mutations":
		if operation := tags["operation"]; operation != "" {
			m.storeMutations.WithLabelValues(operation).Inc()
		}
	case "store.snapshots.delivered":
		m.snapshotsDelivered.Inc()
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
		if tags["event_type"] == "registration_succeeded" {
			m.usersRegisteredTotal.Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	if name == "store.snapshot.fanout" {
		m.snapshotFanoutDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	if name == "store.subscriptions.active" {
		m.activeSubscriptions.Set(value)
	}
}
