package hook

import (
	"context"

	"github.com/charmbracelet/log"
)

// DefaultQueueSize bounds the number of pending events.
const DefaultQueueSize = 32

// Dispatcher fans events out to subscribed hooks on its own goroutine, so a
// slow hook never stalls the caller.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	logger   *log.Logger
	queue    chan Request
}

// NewDispatcher creates a Dispatcher. A nil logger falls back to
// log.Default().
func NewDispatcher(m *Manager, e *Executor, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		manager:  m,
		executor: e,
		logger:   logger.WithPrefix("hook"),
		queue:    make(chan Request, DefaultQueueSize),
	}
}

// Dispatch queues req. It reports false when the queue is full and the
// event was dropped.
func (d *Dispatcher) Dispatch(req Request) bool {
	select {
	case d.queue <- req:
		return true
	default:
		d.logger.Warn("queue full, dropping event", "event", req.Event)
		return false
	}
}

// Run executes queued events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			d.deliver(ctx, req)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, req Request) {
	for _, h := range d.manager.Subscribers(req.Event) {
		resp, err := d.executor.Execute(ctx, h, req)
		switch {
		case err != nil:
			d.logger.Warn("hook failed", "hook", h.Manifest.Name, "event", req.Event, "err", err)
		case !resp.Success:
			d.logger.Warn("hook reported failure", "hook", h.Manifest.Name, "event", req.Event, "error", resp.Error)
		default:
			d.logger.Debug("hook ran", "hook", h.Manifest.Name, "event", req.Event)
		}
	}
}
