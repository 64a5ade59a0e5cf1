package recommend

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/yildizm/movierec/internal/logger"
)

// BreakerConfig configures the circuit breaker around the backend.
// A zero FailureThreshold disables the breaker.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open
	MaxRequests uint32

	// Interval after which closed-state counts are reset
	Interval time.Duration

	// Timeout spent open before probing again
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold uint32
}

// breaker wraps fetches with gobreaker. Only network errors, request
// timeouts and 5xx responses count as failures; a 4xx or a bad body says
// nothing about backend health. Caller cancellations are not counted.
type breaker struct {
	cb  *gobreaker.CircuitBreaker[[]Movie]
	log *logger.Logger
}

func newBreaker(name string, cfg BreakerConfig, log *logger.Logger) *breaker {
	if cfg.FailureThreshold == 0 {
		return nil
	}

	b := &breaker{log: log}
	threshold := cfg.FailureThreshold

	b.cb = gobreaker.NewCircuitBreaker[[]Movie](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				log.WarnWithFields("opening circuit", []logger.Field{
					logger.F("consecutive_failures", int(counts.ConsecutiveFailures)),
				})
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var fe *FetchError
			if errors.As(err, &fe) {
				return !fe.countsAsFailure()
			}
			return false
		},
		IsExcluded: func(err error) bool {
			var fe *FetchError
			return errors.As(err, &fe) && fe.excludedFromBreaker()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.InfoWithFields("circuit state transition", []logger.Field{
				logger.F("breaker", name),
				logger.F("from", from.String()),
				logger.F("to", to.String()),
			})
		},
	})

	return b
}

// execute runs fn through the breaker; a nil breaker runs fn directly
func (b *breaker) execute(fn func() ([]Movie, error)) ([]Movie, error) {
	if b == nil {
		return fn()
	}

	movies, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, newFetchError(ErrKindUnavailable, err)
		}
		return nil, err
	}
	return movies, nil
}

func (b *breaker) state() string {
	if b == nil {
		return "disabled"
	}
	return b.cb.State().String()
}
