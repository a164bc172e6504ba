package extension

import (
	"errors"
	"sync"
	"time"
)

// EventBroker delivers events synchronously to listeners in registration order, stopping at the
// first listener that returns a non-nil result.
type EventBroker[E any, R any] struct {
	mu sync.RWMutex
	ls listeners[func(E) *R]
}

// Emit sends a copy of event to each listener until one returns a result, which is returned to
// the caller.  Returns nil if no listener responded.
func (eb *EventBroker[E, R]) Emit(event *E) *R {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, l := range eb.ls.funcs {
		if result := l(*event); result != nil {
			return result
		}
	}
	return nil
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
func (eb *EventBroker[E, R]) AddListener(name string, listener func(E) *R) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.ls.put(name, listener)
}

// RemoveListener unregisters the named listener.
func (eb *EventBroker[E, R]) RemoveListener(name string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.ls.remove(name)
}

// AsyncEventBroker delivers each event to every listener on its own goroutine.  No result is
// collected.
type AsyncEventBroker[E any] struct {
	mu sync.RWMutex
	ls listeners[func(E)]
}

// Emit sends a copy of event to each registered listener in parallel.
func (eb *AsyncEventBroker[E]) Emit(event *E) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, l := range eb.ls.funcs {
		go l(*event)
	}
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
func (eb *AsyncEventBroker[E]) AddListener(name string, listener func(E)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.ls.put(name, listener)
}

// RemoveListener unregisters the named listener.
func (eb *AsyncEventBroker[E]) RemoveListener(name string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.ls.remove(name)
}

// AsyncTestListener registers a listener that buffers up to capacity events, and returns a func
// that waits for the next one.  The listener unregisters itself after capacity events were read.
func (eb *AsyncEventBroker[E]) AsyncTestListener(name string, capacity int) func() (*E, error) {
	events := make(chan E, capacity)
	eb.AddListener(name, func(e E) { events <- e })

	count := 0
	return func() (*E, error) {
		count++
		if count >= capacity {
			defer eb.RemoveListener(name)
		}

		select {
		case e := <-events:
			return &e, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("timeout waiting for event")
		}
	}
}
