package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyClient struct {
	err   error
	calls int
}

func (f *flakyClient) Chat(ctx context.Context, messages []Message) (*Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Content: "ok"}, nil
}

func (f *flakyClient) ChatWithStructuredOutput(ctx context.Context, messages []Message, schema any) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{}`), nil
}

func (f *flakyClient) Close() error { return nil }

func TestBreakerPassesThrough(t *testing.T) {
	inner := &flakyClient{}
	client := NewBreakerClient(inner, BreakerSettings{})

	resp, err := client.Chat(context.Background(), []Message{NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, inner.calls)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	providerErr := errors.New("provider down")
	inner := &flakyClient{err: providerErr}
	client := NewBreakerClient(inner, BreakerSettings{
		ConsecutiveFailures: 3,
		OpenTimeout:         time.Minute,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.Chat(ctx, nil)
		assert.ErrorIs(t, err, providerErr)
	}

	// Breaker is now open: the provider stops receiving calls
	_, err := client.Chat(ctx, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerRecovers(t *testing.T) {
	providerErr := errors.New("provider down")
	inner := &flakyClient{err: providerErr}
	client := NewBreakerClient(inner, BreakerSettings{
		ConsecutiveFailures: 1,
		OpenTimeout:         50 * time.Millisecond,
	})

	ctx := context.Background()
	_, err := client.Chat(ctx, nil)
	assert.ErrorIs(t, err, providerErr)

	_, err = client.Chat(ctx, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	// After the open timeout the breaker half-opens and a success closes it
	inner.err = nil
	time.Sleep(60 * time.Millisecond)

	resp, err := client.Chat(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}
