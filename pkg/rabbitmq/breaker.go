// Package rabbitmq publishes and consumes order events over AMQP.
package rabbitmq

import (
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Publisher sends one message to an exchange.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// BreakerPublisher stops calling a failing broker for a cool-down period so
// order requests are not held up by publish timeouts.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// BreakerSettings tunes when the breaker opens and for how long.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Zero means 30s.
	OpenTimeout time.Duration
}

// NewBreakerPublisher wraps next in a circuit breaker.
func NewBreakerPublisher(next Publisher, st BreakerSettings, log *zap.Logger) *BreakerPublisher {
	if st.ConsecutiveFailures == 0 {
		st.ConsecutiveFailures = 5
	}
	if st.OpenTimeout == 0 {
		st.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order-events",
		MaxRequests: 1,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerPublisher{next: next, cb: cb}
}

// Publish forwards to the wrapped publisher unless the breaker is open, in
// which case it fails fast with gobreaker.ErrOpenState.
func (p *BreakerPublisher) Publish(exchange, routingKey string, body []byte) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(exchange, routingKey, body)
	})
	return err
}

// State reports the breaker state, e.g. for the health endpoint.
func (p *BreakerPublisher) State() string {
	return p.cb.State().String()
}
