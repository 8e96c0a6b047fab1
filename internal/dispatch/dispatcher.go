// Package dispatch routes inbound frames to registered handlers by declared
// type.
//
// Frames are handled synchronously in arrival order on whichever goroutine
// calls Dispatch; the dispatcher never reorders or batches. A frame with no
// registered handler is dropped with a diagnostic, not an error: the server
// adds event kinds over time and an old client must keep working.
package dispatch

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/connection"
)

// Handler processes one frame of a registered type.
type Handler func(frame connection.Frame)

// Stats contains routing counters.
type Stats struct {
	Dispatched int64
	Unhandled  int64
}

// Dispatcher routes frames to handlers by exact type match.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler

	dispatched atomic.Int64
	unhandled  atomic.Int64
}

// New creates a dispatcher with no handlers registered.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// Register sets the handler for an event type, replacing any previous one.
func (d *Dispatcher) Register(eventType string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = handler
}

// Dispatch routes one frame. Unknown types are counted and dropped.
func (d *Dispatcher) Dispatch(frame connection.Frame) {
	d.mu.RLock()
	handler, ok := d.handlers[frame.Type]
	d.mu.RUnlock()

	if !ok {
		d.unhandled.Add(1)
		d.logger.Debug("no handler for frame type, dropping", "type", frame.Type)
		return
	}

	handler(frame)
	d.dispatched.Add(1)
}

// Stats returns current routing counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Unhandled:  d.unhandled.Load(),
	}
}
