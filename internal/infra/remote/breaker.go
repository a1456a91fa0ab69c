package remote

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
)

type BreakerConfig struct {
	// consecutive failures that open the breaker
	MaxFailures int
	// how long the breaker stays open before letting a probe through
	OpenTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

func newBreaker(name string, cfg BreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("remote breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: answeredByBackend,
	})
}

// answeredByBackend treats refusals the backend made on purpose (auth, 4xx
// business rules) as a healthy backend. Only transport failures and 5xx
// count towards opening the breaker.
func answeredByBackend(err error) bool {
	if err == nil || errors.Is(err, domain.ErrUnauthenticated) {
		return true
	}

	var rejected *domain.RemoteRejectedError
	if errors.As(err, &rejected) {
		return rejected.StatusCode >= 400 && rejected.StatusCode < http.StatusInternalServerError
	}
	return false
}

// breakerError maps the breaker's own refusals to a rejection without reason.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.RemoteRejectedError{Cause: err}
	}
	return err
}
