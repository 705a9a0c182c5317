package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Check outcomes by check type and resolved status
	CheckOutcome *prometheus.CounterVec

	// Authority call latencies by jurisdiction
	AuthorityLatency *prometheus.HistogramVec

	// OCR extraction latency
	ExtractionLatency prometheus.Histogram

	// Notification delivery results
	NotificationsSent *prometheus.CounterVec
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careguard_verification_outcomes_total",
			Help: "Total verification outcomes by check type and status",
		}, []string{"check_type", "status"}),

		AuthorityLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careguard_authority_request_duration_seconds",
			Help:    "Duration of WWCC registry calls by jurisdiction",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"jurisdiction"}),

		ExtractionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "careguard_ocr_request_duration_seconds",
			Help:    "Duration of document extraction calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),

		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careguard_notifications_sent_total",
			Help: "Verification notification delivery results",
		}, []string{"result"}),
	}
}

// IncrementOutcome records a resolved verification check.
func (m *Metrics) IncrementOutcome(checkType, status string) {
	if m != nil {
		m.CheckOutcome.WithLabelValues(checkType, status).Inc()
	}
}

// ObserveAuthorityLatency records the duration of one registry call.
func (m *Metrics) ObserveAuthorityLatency(jurisdiction string, d time.Duration) {
	if m != nil {
		m.AuthorityLatency.WithLabelValues(jurisdiction).Observe(d.Seconds())
	}
}

// ObserveExtractionLatency records the duration of one OCR call.
func (m *Metrics) ObserveExtractionLatency(d time.Duration) {
	if m != nil {
		m.ExtractionLatency.Observe(d.Seconds())
	}
}

// IncrementNotification records a notification delivery attempt.
func (m *Metrics) IncrementNotification(result string) {
	if m != nil {
		m.NotificationsSent.WithLabelValues(result).Inc()
	}
}
