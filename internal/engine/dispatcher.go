package engine

import (
	"context"
	"sync"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
	"github.com/pavelc4/aether-media-bot/pkg/worker"
)

type HandlerFunc func(ctx context.Context, ev Event) error

// Dispatcher serialises events per user. Each user has a FIFO mailbox that is
// drained by at most one pool job at a time, so events of one user are handled
// in arrival order while different users proceed in parallel.
type Dispatcher struct {
	ctx     context.Context
	pool    *worker.Pool
	handle  HandlerFunc
	mu      sync.Mutex
	pending map[int64][]Event
	active  map[int64]bool
}

func NewDispatcher(ctx context.Context, pool *worker.Pool, handle HandlerFunc) *Dispatcher {
	return &Dispatcher{
		ctx:     ctx,
		pool:    pool,
		handle:  handle,
		pending: make(map[int64][]Event),
		active:  make(map[int64]bool),
	}
}

// Dispatch queues ev. It reports false if the pool no longer accepts work.
func (d *Dispatcher) Dispatch(ev Event) bool {
	d.mu.Lock()
	d.pending[ev.UserID] = append(d.pending[ev.UserID], ev)
	if d.active[ev.UserID] {
		d.mu.Unlock()
		return true
	}
	d.active[ev.UserID] = true
	d.mu.Unlock()

	userID := ev.UserID
	if !d.pool.Submit(func() error { d.drain(userID); return nil }) {
		d.mu.Lock()
		delete(d.pending, userID)
		delete(d.active, userID)
		d.mu.Unlock()
		return false
	}
	return true
}

func (d *Dispatcher) drain(userID int64) {
	for {
		d.mu.Lock()
		queue := d.pending[userID]
		if len(queue) == 0 {
			delete(d.pending, userID)
			delete(d.active, userID)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.pending[userID] = queue[1:]
		d.mu.Unlock()

		d.run(ev)
	}
}

func (d *Dispatcher) run(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panicked", "user", ev.UserID, "panic", r)
		}
	}()
	if err := d.handle(d.ctx, ev); err != nil {
		logger.Error("Event handling failed", "user", ev.UserID, "error", err)
	}
}

// Pending returns the number of queued events across all users.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, q := range d.pending {
		n += len(q)
	}
	return n
}
