package service

import (
	"context"
	"log/slog"

	"simregistry-backend/metrics"
)

type sagaStep struct {
	name string
	fn   func(ctx context.Context) error
}

// saga tracks the compensating actions of a multi-step operation.
// Compensations run in reverse order when the operation fails; finalizers run
// in order once the database write has committed. Both are best-effort: a
// failing step is logged and the remaining steps still run.
type saga struct {
	operation     string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	compensations []sagaStep
	finalizers    []sagaStep
}

func newSaga(operation string, logger *slog.Logger, m *metrics.Metrics) *saga {
	return &saga{operation: operation, logger: logger, metrics: m}
}

// compensate registers an undo action for a step that has completed
func (s *saga) compensate(name string, fn func(ctx context.Context) error) {
	s.compensations = append(s.compensations, sagaStep{name: name, fn: fn})
}

// finalize registers an action that may only run after the commit
func (s *saga) finalize(name string, fn func(ctx context.Context) error) {
	s.finalizers = append(s.finalizers, sagaStep{name: name, fn: fn})
}

// rollback runs the compensations in reverse registration order
func (s *saga) rollback(ctx context.Context, cause error) {
	// Cleanup must survive a cancelled request
	ctx = context.WithoutCancel(ctx)
	for i := len(s.compensations) - 1; i >= 0; i-- {
		step := s.compensations[i]
		err := step.fn(ctx)
		s.metrics.ObserveCompensation(step.name, err)
		if err != nil {
			s.logger.Warn("compensation failed",
				"operation", s.operation,
				"step", step.name,
				"cause", cause,
				"error", err,
			)
			continue
		}
		s.logger.Info("compensation applied",
			"operation", s.operation,
			"step", step.name,
			"cause", cause,
		)
	}
	s.compensations = nil
	s.finalizers = nil
}

// commit drops the compensations and runs the finalizers in order
func (s *saga) commit(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, step := range s.finalizers {
		if err := step.fn(ctx); err != nil {
			s.metrics.IncPhotoCleanupFailure()
			s.logger.Warn("post-commit cleanup failed",
				"operation", s.operation,
				"step", step.name,
				"error", err,
			)
		}
	}
	s.compensations = nil
	s.finalizers = nil
}
