package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerClient wraps a Client with a circuit breaker so that a failing
// provider stops receiving calls instead of stalling the whole pipeline.
type BreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker
}

// BreakerSettings holds tuning knobs for the circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker once reached. Default 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	// Default 30s.
	OpenTimeout time.Duration
}

// NewBreakerClient wraps client with a circuit breaker.
func NewBreakerClient(client Client, settings BreakerSettings) *BreakerClient {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
	})

	return &BreakerClient{
		inner:   client,
		breaker: cb,
	}
}

// Chat sends a chat request through the circuit breaker.
func (b *BreakerClient) Chat(ctx context.Context, messages []Message) (*Response, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Chat(ctx, messages)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}

// ChatWithStructuredOutput sends a structured output request through the
// circuit breaker.
func (b *BreakerClient) ChatWithStructuredOutput(ctx context.Context, messages []Message, schema any) (json.RawMessage, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.ChatWithStructuredOutput(ctx, messages, schema)
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

// Close closes the underlying client.
func (b *BreakerClient) Close() error {
	return b.inner.Close()
}
