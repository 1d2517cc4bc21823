package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyedEvent struct{ key string }

func (keyedEvent) Type() string { return "test.keyed" }

func keyOf(e domain.Event) string { return e.(keyedEvent).key }

func TestWithIdempotency_SkipsProcessedKeys(t *testing.T) {
	var calls atomic.Int32
	h := WithIdempotency(func(ctx context.Context, e domain.Event) error {
		calls.Add(1)
		return nil
	}, NewIdempotencyTracker(), keyOf, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h(context.Background(), keyedEvent{key: "a"}))
	require.NoError(t, h(context.Background(), keyedEvent{key: "a"}))
	require.NoError(t, h(context.Background(), keyedEvent{key: "b"}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWithIdempotency_FailureIsRetried(t *testing.T) {
	tracker := NewIdempotencyTracker()
	fail := true
	h := WithIdempotency(func(ctx context.Context, e domain.Event) error {
		if fail {
			return errors.New("transient")
		}
		return nil
	}, tracker, keyOf, "test", nil)

	require.Error(t, h(context.Background(), keyedEvent{key: "a"}))
	assert.False(t, tracker.Seen("a"))

	fail = false
	require.NoError(t, h(context.Background(), keyedEvent{key: "a"}))
	assert.True(t, tracker.Seen("a"))
}

func TestWithIdempotency_EmptyKeyAlwaysRuns(t *testing.T) {
	var calls int
	h := WithIdempotency(func(ctx context.Context, e domain.Event) error {
		calls++
		return nil
	}, NewIdempotencyTracker(), keyOf, "test", nil)

	require.NoError(t, h(context.Background(), keyedEvent{}))
	require.NoError(t, h(context.Background(), keyedEvent{}))
	assert.Equal(t, 2, calls)
}

func TestWithIdempotency_ConcurrentDeliveries(t *testing.T) {
	var calls atomic.Int32
	h := WithIdempotency(func(ctx context.Context, e domain.Event) error {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return nil
	}, NewIdempotencyTracker(), keyOf, "test", nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h(context.Background(), keyedEvent{key: "same"}))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyTracker_Retention(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tracker := NewIdempotencyTracker(WithRetention(time.Minute))
	tracker.now = func() time.Time { return now }

	var calls int
	h := WithIdempotency(func(ctx context.Context, e domain.Event) error {
		calls++
		return nil
	}, tracker, keyOf, "test", nil)

	require.NoError(t, h(context.Background(), keyedEvent{key: "k"}))
	now = now.Add(30 * time.Second)
	require.NoError(t, h(context.Background(), keyedEvent{key: "k"}))
	assert.Equal(t, 1, calls)

	now = now.Add(time.Minute)
	assert.False(t, tracker.Seen("k"))
	require.NoError(t, h(context.Background(), keyedEvent{key: "k"}))
	assert.Equal(t, 2, calls)
}
