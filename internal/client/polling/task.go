// Package polling keeps the admin view of one event's matching run in sync
// with the backend.
//
// A Monitor fetches the event status and match list when opened and, for as
// long as the server reports a run in flight, re-fetches both on a fixed
// interval. It stops on its own once the run is no longer active, and for good
// when closed.
package polling

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval replaces a non-positive interval passed to Every.
const DefaultInterval = 5 * time.Second

// Task is a handle to a function repeated on a ticker.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every calls fn every interval until fn returns false, Stop is called or ctx
// ends. The first call happens one interval after Every returns. A
// non-positive interval is replaced by DefaultInterval.
func Every(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !fn(ctx) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return t
}

// Stop cancels the task and waits for an in-flight call of fn to return. It
// is safe to call more than once but must not be called from fn itself.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
