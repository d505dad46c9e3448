package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings tunes the circuit breaker around a storage backend
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

// DefaultBreakerSettings trips after five consecutive backend failures
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerStorage guards a Storage backend with a circuit breaker.
// While the breaker is open every call fails fast with ErrStorageFailure.
type BreakerStorage struct {
	next    Storage
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerStorage wraps next with a circuit breaker
func NewBreakerStorage(next Storage, settings BreakerSettings, logger *slog.Logger) *BreakerStorage {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Caller mistakes are not backend faults
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrInvalidPath)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerStorage{next: next, breaker: cb}
}

func (b *BreakerStorage) execute(fn func() (any, error)) (any, error) {
	result, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, failure("circuit open", err)
	}
	return result, err
}

// Upload stores data through the breaker
func (b *BreakerStorage) Upload(ctx context.Context, storagePath string, contentType string, data io.Reader) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Upload(ctx, storagePath, contentType, data)
	})
	return err
}

// Download retrieves data through the breaker
func (b *BreakerStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.Download(ctx, storagePath)
	})
	if err != nil {
		return nil, err
	}
	return result.(io.ReadCloser), nil
}

// Exists checks presence through the breaker
func (b *BreakerStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.Exists(ctx, storagePath)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// Delete removes data through the breaker
func (b *BreakerStorage) Delete(ctx context.Context, storagePath string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Delete(ctx, storagePath)
	})
	return err
}
