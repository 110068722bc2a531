package dispatch

import (
	"context"
	"sync"

	"github.com/keshon/dispatchkit/pkg/util"
)

// EventHandler handles one fired signal.
type EventHandler func(ctx context.Context, args ...any) error

// Emitter is a named-signal registry. Handlers for a signal run concurrently
// when the signal fires and the fire call returns only after every handler
// has finished; failures are joined rather than short-circuiting siblings.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string]map[int]EventHandler
	nextID   int
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string]map[int]EventHandler)}
}

// On registers a handler for a signal and returns a func that removes it.
func (e *Emitter) On(signal string, h EventHandler) (off func()) {
	e.mu.Lock()
	if e.handlers[signal] == nil {
		e.handlers[signal] = make(map[int]EventHandler)
	}
	id := e.nextID
	e.nextID++
	e.handlers[signal][id] = h
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if hs, ok := e.handlers[signal]; ok {
				delete(hs, id)
				if len(hs) == 0 {
					delete(e.handlers, signal)
				}
			}
		})
	}
}

// HandlerCount returns the number of handlers registered for a signal.
func (e *Emitter) HandlerCount(signal string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[signal])
}

// Fire invokes every handler registered for the signal concurrently and
// waits for the whole group. The handler set is snapshotted up front, so a
// handler registered or removed mid-fire does not affect this fire.
func (e *Emitter) Fire(ctx context.Context, signal string, args ...any) error {
	e.mu.RLock()
	snapshot := make([]EventHandler, 0, len(e.handlers[signal]))
	for _, h := range e.handlers[signal] {
		snapshot = append(snapshot, h)
	}
	e.mu.RUnlock()

	return util.FanOut(ctx, len(snapshot), len(snapshot), func(ctx context.Context, i int) error {
		return snapshot[i](ctx, args...)
	})
}
