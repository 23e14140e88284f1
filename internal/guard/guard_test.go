package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "test-key")
	rl.Check(ctx, "test-key")
	result := rl.Check(ctx, "test-key")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	require.True(t, rl.Check(ctx, "ip").Allowed)
	assert.False(t, rl.Check(ctx, "ip").Allowed)

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Check(ctx, "ip").Allowed)
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	rl := NewRedisRateLimiter(client, "login", 1, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Check(context.Background(), "10.0.0.1").Allowed)
	}
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)

	result := cb.Check(context.Background(), "arena.wallet.transaction.posted")
	assert.True(t, result.Allowed)
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "topic-a")
	cb.RecordFailure("topic-a")
	cb.RecordFailure("topic-a")

	result := cb.Check(ctx, "topic-a")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "topic-a")
	cb.RecordFailure("topic-a")
	cb.RecordSuccess("topic-a")
	cb.RecordFailure("topic-a")

	result := cb.Check(ctx, "topic-a")
	assert.True(t, result.Allowed)
}

func TestCircuitBreaker_HalfOpenTrial(t *testing.T) {
	cb := NewCircuitBreaker(1, 5*time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	cb.RecordFailure("topic-a")
	require.False(t, cb.Check(ctx, "topic-a").Allowed)

	now = now.Add(6 * time.Second)
	require.True(t, cb.Check(ctx, "topic-a").Allowed)

	cb.RecordFailure("topic-a")
	assert.False(t, cb.Check(ctx, "topic-a").Allowed, "failed trial call reopens the circuit")

	now = now.Add(6 * time.Second)
	require.True(t, cb.Check(ctx, "topic-a").Allowed)
	cb.RecordSuccess("topic-a")
	assert.True(t, cb.Check(ctx, "topic-a").Allowed)
}

type flakyPublisher struct {
	calls int
	err   error
}

func (p *flakyPublisher) Publish(context.Context, string, []byte, []byte) error {
	p.calls++
	return p.err
}

func TestBreakerPublisher(t *testing.T) {
	ctx := context.Background()
	next := &flakyPublisher{err: errors.New("broker down")}
	pub := NewBreakerPublisher(next, NewCircuitBreaker(2, time.Minute))

	assert.Error(t, pub.Publish(ctx, "t", nil, nil))
	assert.Error(t, pub.Publish(ctx, "t", nil, nil))
	err := pub.Publish(ctx, "t", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, 2, next.calls, "open circuit short-circuits the broker")

	next.err = nil
	assert.NoError(t, pub.Publish(ctx, "other", nil, nil))
}
