// Package lazy provides single-flight lazy initialization for expensive
// shared resources such as local model handles.
package lazy

import (
	"context"
	"sync"
)

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateFailed
)

// Handle defers initialization until the first Get. Concurrent callers
// during initialization all wait for the same attempt instead of starting
// their own. The outcome is recorded: later callers see the ready value or
// the recorded failure without re-running init.
type Handle[T any] struct {
	init func(ctx context.Context) (T, error)

	mu    sync.Mutex
	st    state
	done  chan struct{}
	value T
	err   error
}

func New[T any](init func(ctx context.Context) (T, error)) *Handle[T] {
	return &Handle[T]{init: init}
}

// Get returns the initialized value, running init on the first call. A
// waiter whose context expires gives up waiting; the in-flight
// initialization itself keeps running and its result still counts.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	h.mu.Lock()
	switch h.st {
	case stateReady:
		v := h.value
		h.mu.Unlock()
		return v, nil
	case stateFailed:
		err := h.err
		h.mu.Unlock()
		var zero T
		return zero, err
	case stateInitializing:
		done := h.done
		h.mu.Unlock()
		select {
		case <-done:
			return h.Get(ctx)
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	h.done = make(chan struct{})
	h.st = stateInitializing
	done := h.done
	h.mu.Unlock()

	value, err := h.init(ctx)

	h.mu.Lock()
	if err != nil {
		h.st = stateFailed
		h.err = err
	} else {
		h.st = stateReady
		h.value = value
	}
	h.mu.Unlock()
	close(done)

	if err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// Ready reports whether initialization has completed successfully.
func (h *Handle[T]) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.st == stateReady
}
