package feed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/sigmaguard/market"
)

// GuardConfig bounds calls to an upstream source.
type GuardConfig struct {
	Name          string        `yaml:"name" default:"prices"`
	RatePerSecond float64       `yaml:"rate_per_second" default:"5" validate:"gt=0"`
	Burst         int           `yaml:"burst" default:"5" validate:"gte=1"`
	Timeout       time.Duration `yaml:"timeout" default:"30s"`
	MaxFailures   uint32        `yaml:"max_failures" default:"5" validate:"gte=1"`
	OpenFor       time.Duration `yaml:"open_for" default:"1m"`
}

// Guarded wraps a Source with a rate limiter, a circuit breaker and a
// per-call timeout.
type Guarded struct {
	src     Source
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewGuarded(src Source, cfg GuardConfig) *Guarded {
	st := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenFor,
	}
	maxFail := cfg.MaxFailures
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= maxFail
	}
	st.IsSuccessful = func(err error) bool {
		// neither a ticker with no data nor a caller that gave up says
		// anything about upstream health
		return err == nil || errors.Is(err, market.ErrNoData) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).
			Str("to", to.String()).Msg("price source breaker")
	}
	return &Guarded{
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		cb:      gobreaker.NewCircuitBreaker(st),
		timeout: cfg.Timeout,
	}
}

func (g *Guarded) Candles(ctx context.Context, ticker string) ([]market.Candle, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.src.Candles(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return out.([]market.Candle), nil
}

// State reports the breaker state ("closed", "open", "half-open").
func (g *Guarded) State() string {
	return g.cb.State().String()
}
