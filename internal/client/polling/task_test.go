package polling

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_StopsWhenFnReturnsFalse(t *testing.T) {
	var n atomic.Int32
	task := Every(context.Background(), time.Millisecond, func(context.Context) bool {
		return n.Add(1) < 3
	})

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	assert.EqualValues(t, 3, n.Load())
	task.Stop()
}

func TestEvery_StopIsIdempotent(t *testing.T) {
	var n atomic.Int32
	task := Every(context.Background(), time.Millisecond, func(context.Context) bool {
		n.Add(1)
		return true
	})
	require.Eventually(t, func() bool { return n.Load() > 0 }, time.Second, time.Millisecond)

	task.Stop()
	task.Stop()
	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}

func TestEvery_EndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Every(ctx, time.Hour, func(context.Context) bool { return true })
	cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task ignored context cancellation")
	}
}

func TestEvery_NonPositiveIntervalFallsBack(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		var n atomic.Int32
		task := Every(context.Background(), interval, func(context.Context) bool {
			n.Add(1)
			return true
		})

		select {
		case <-task.Done():
			t.Fatalf("task with interval %v finished early", interval)
		case <-time.After(20 * time.Millisecond):
		}
		task.Stop()
		assert.Zero(t, n.Load(), "fallback interval is not zero")
	}
}
