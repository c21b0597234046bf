package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/seenimoa/marketdesk/internal/metrics"
)

// BreakerConfig tunes the circuit breaker placed in front of a provider.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips after 60% of at least five calls fail and
// probes again after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Breaker wraps a Generator with a circuit breaker and records generation
// latency. While open it fails fast with ErrProviderDown.
type Breaker struct {
	next    Generator
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewBreaker wraps next.
func NewBreaker(next Generator, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Breaker{next: next, logger: logger}
	b.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + next.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the provider's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return b
}

func (b *Breaker) Name() string { return b.next.Name() }

// State exposes the breaker state for health reporting.
func (b *Breaker) State() gobreaker.State { return b.breaker.State() }

// Generate forwards to the wrapped provider through the breaker.
func (b *Breaker) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn("generation rejected by open breaker", slog.String("provider", b.next.Name()))
		err = ErrProviderDown
	}
	metrics.ObserveGeneration(b.next.Name(), start, err)
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}
