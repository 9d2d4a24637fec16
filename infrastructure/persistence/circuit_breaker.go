// Package persistence holds decorators shared by the repository
// implementations.
package persistence

import (
	"context"
	"errors"
	"time"

	"seds-backend/application/ports"
	"seds-backend/domain/core/entities"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for the answer write breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns the default configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreakerAnswerRepository guards answer writes with a circuit
// breaker. Reads pass straight through.
type CircuitBreakerAnswerRepository struct {
	ports.AnswerRepository
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewCircuitBreakerAnswerRepository wraps inner with a breaker
func NewCircuitBreakerAnswerRepository(inner ports.AnswerRepository, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreakerAnswerRepository {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Domain outcomes are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.GetDomainError(err) != nil
		},
	})

	return &CircuitBreakerAnswerRepository{AnswerRepository: inner, cb: cb, logger: logger}
}

// Save writes through the breaker. An open breaker fails fast with an
// unavailable error.
func (r *CircuitBreakerAnswerRepository) Save(ctx context.Context, answer entities.AnswerRecord) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.AnswerRepository.Save(ctx, answer)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		r.logger.Warn("Answer write rejected by circuit breaker",
			zap.String("answer_entry", answer.AnswerEntry),
			zap.Error(err),
		)
		return pkgerrors.NewUnavailableError("answer store").WithCause(err)
	}
	return err
}

// State reports the breaker state
func (r *CircuitBreakerAnswerRepository) State() gobreaker.State {
	return r.cb.State()
}
