package rosette

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the optional circuit breaker in front of the
// transport. The breaker opens when at least three requests have been made
// within Interval and the failure ratio reaches ReadyToTripRatio; while
// open, calls fail immediately without touching the network.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		ReadyToTripRatio: 0.6,
	}
}

// WithCircuitBreaker places a circuit breaker in front of every request
// the client makes, including retried ones.
func WithCircuitBreaker(cfg BreakerConfig) Option {
	return func(c *Client) { c.breaker = &cfg }
}

type requestResult struct {
	data    []byte
	status  int
	headers http.Header
}

// breakerTransport wraps the retrying transport request path with a
// gobreaker state machine.
type breakerTransport struct {
	cb *gobreaker.CircuitBreaker
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *breakerTransport {
	st := gobreaker.Settings{
		Name:        "rosette",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("circuit breaker tripped", "name", name, "from", from.String(), "to", to.String())
			}
		},
	}
	return &breakerTransport{cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *breakerTransport) execute(ctx context.Context, fn func() ([]byte, int, http.Header, error)) ([]byte, int, http.Header, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		data, status, headers, err := fn()
		if err != nil {
			return nil, err
		}
		return &requestResult{data: data, status: status, headers: headers}, nil
	})
	if err != nil {
		return nil, 0, nil, err
	}
	r := res.(*requestResult)
	return r.data, r.status, r.headers, nil
}
