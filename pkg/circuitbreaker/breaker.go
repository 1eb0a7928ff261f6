package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

type Config struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
	// IsSuccessful decides which errors count against the upstream. Nil
	// means every error does.
	IsSuccessful func(err error) bool
}

func DefaultConfig() Config {
	return Config{
		ConsecutiveFailures: 5,
		Cooldown:            30 * time.Second,
	}
}

// New returns a breaker guarding one upstream.
func New[T any](name string, cfg Config, log logrus.FieldLogger) *gobreaker.CircuitBreaker[T] {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = DefaultConfig().ConsecutiveFailures
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
		IsSuccessful: cfg.IsSuccessful,
	})
}

// IsOpen reports whether err was returned because the breaker refused the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
