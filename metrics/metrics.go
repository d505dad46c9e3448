package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for reconciler operations
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeRejected   = "photo_rejected"
	OutcomeError      = "error"
)

// Metrics provides observability for license reconciliation.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Compensations   *prometheus.CounterVec
	OwnersCreated   prometheus.Counter
	OwnerRaceRetry  prometheus.Counter
	PhotoCleanupErr prometheus.Counter
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simregistry_operations_total",
			Help: "License operations by kind and outcome",
		}, []string{"operation", "outcome"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simregistry_compensations_total",
			Help: "Compensating actions run after a failed operation",
		}, []string{"step", "outcome"}),
		OwnersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "simregistry_owners_created_total",
			Help: "Owners created on first submission of a NIK",
		}),
		OwnerRaceRetry: factory.NewCounter(prometheus.CounterOpts{
			Name: "simregistry_owner_race_retries_total",
			Help: "Owner creations that lost a uniqueness race and re-fetched the winner",
		}),
		PhotoCleanupErr: factory.NewCounter(prometheus.CounterOpts{
			Name: "simregistry_photo_cleanup_failures_total",
			Help: "Best-effort photo deletions that failed and were swallowed",
		}),
	}
}

// ObserveOperation records one finished operation
func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveCompensation records one compensating action
func (m *Metrics) ObserveCompensation(step string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.Compensations.WithLabelValues(step, outcome).Inc()
}

// IncOwnerCreated records a newly created owner
func (m *Metrics) IncOwnerCreated() {
	if m == nil {
		return
	}
	m.OwnersCreated.Inc()
}

// IncOwnerRaceRetry records a lost owner creation race
func (m *Metrics) IncOwnerRaceRetry() {
	if m == nil {
		return
	}
	m.OwnerRaceRetry.Inc()
}

// IncPhotoCleanupFailure records a swallowed photo deletion failure
func (m *Metrics) IncPhotoCleanupFailure() {
	if m == nil {
		return
	}
	m.PhotoCleanupErr.Inc()
}
