package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons used as the "reason" label.
const (
	ReasonNotFound          = "not_found"
	ReasonClosed            = "closed"
	ReasonAlreadyRegistered = "already_registered"
	ReasonFull              = "full"
)

// Notification outcomes used as the "outcome" label.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Metrics provides observability for registration admission and confirmation delivery.
type Metrics struct {
	RegistrationsAdmitted prometheus.Counter
	RegistrationsRejected *prometheus.CounterVec
	Unregistrations       prometheus.Counter
	AdmissionDuration     prometheus.Histogram
	Notifications         *prometheus.CounterVec
	NotificationsInflight prometheus.Gauge
}

// New creates a Metrics instance with every collector registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsAdmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_registrations_admitted_total",
			Help: "Total number of registrations admitted",
		}),
		RegistrationsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_registrations_rejected_total",
			Help: "Total number of registration attempts rejected, by reason",
		}, []string{"reason"}),
		Unregistrations: f.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_unregistrations_total",
			Help: "Total number of registrations released by their owner",
		}),
		AdmissionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventhub_admission_duration_seconds",
			Help:    "Duration of the atomic admission step, including lock wait",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_registration_notifications_total",
			Help: "Registration confirmations attempted, by outcome",
		}, []string{"outcome"}),
		NotificationsInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "eventhub_registration_notifications_inflight",
			Help: "Registration confirmations currently being delivered",
		}),
	}
}

// IncrementAdmitted records a successful admission.
func (m *Metrics) IncrementAdmitted() {
	m.RegistrationsAdmitted.Inc()
}

// IncrementRejected records a refused admission.
func (m *Metrics) IncrementRejected(reason string) {
	m.RegistrationsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementUnregistered() {
	m.Unregistrations.Inc()
}

// ObserveAdmission records the duration of an admission.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAdmission(start time.Time) {
	m.AdmissionDuration.Observe(time.Since(start).Seconds())
}

// IncrementNotification records the outcome of one confirmation delivery.
func (m *Metrics) IncrementNotification(outcome string) {
	m.Notifications.WithLabelValues(outcome).Inc()
}
