// Package lock serializes allocation commits per worker.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotHeld is returned when releasing a lock that has expired or been
// taken over by another holder.
var ErrNotHeld = errors.New("lock not held")

// Locker hands out exclusive, context-aware locks by key. The returned
// release function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func() error, err error)
}

// WorkerKey is the lock key guarding a worker's commitments.
func WorkerKey(workerID string) string { return "workload:lock:worker:" + workerID }

// Local is an in-process Locker. It is enough when a single process owns the
// database.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *Local) Lock(ctx context.Context, key string) (func() error, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() error {
		released := false
		once.Do(func() {
			<-ch
			released = true
		})
		if !released {
			return ErrNotHeld
		}
		return nil
	}, nil
}
