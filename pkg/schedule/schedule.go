// Package schedule runs delayed callbacks behind cancellable handles so a
// component can drop every pending timer when it is torn down.
package schedule

import (
	"sync"
	"time"
)

// Handle is a pending callback.
type Handle interface {
	// Cancel stops the callback if it has not run yet and reports whether it
	// did so.
	Cancel() bool
}

type Scheduler interface {
	After(d time.Duration, fn func()) Handle
}

// Real schedules on the runtime timer wheel.
type Real struct{}

func (Real) After(d time.Duration, fn func()) Handle {
	return realHandle{t: time.AfterFunc(d, fn)}
}

type realHandle struct{ t *time.Timer }

func (h realHandle) Cancel() bool { return h.t.Stop() }

// Group tracks handles created through it. CancelAll is safe to call more
// than once; scheduling after it is a no-op.
type Group struct {
	s Scheduler

	mu      sync.Mutex
	next    uint64
	pending map[uint64]Handle
	closed  bool
}

func NewGroup(s Scheduler) *Group {
	return &Group{s: s, pending: make(map[uint64]Handle)}
}

func (g *Group) After(d time.Duration, fn func()) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return noopHandle{}
	}

	id := g.next
	g.next++

	h := g.s.After(d, func() {
		g.mu.Lock()
		_, live := g.pending[id]
		delete(g.pending, id)
		g.mu.Unlock()
		if live {
			fn()
		}
	})
	g.pending[id] = h
	return groupHandle{g: g, id: id}
}

// Pending reports how many callbacks have neither run nor been cancelled.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Group) CancelAll() {
	g.mu.Lock()
	pending := g.pending
	g.pending = make(map[uint64]Handle)
	g.closed = true
	g.mu.Unlock()

	for _, h := range pending {
		h.Cancel()
	}
}

func (g *Group) cancel(id uint64) bool {
	g.mu.Lock()
	h, ok := g.pending[id]
	delete(g.pending, id)
	g.mu.Unlock()

	if !ok {
		return false
	}
	h.Cancel()
	return true
}

type groupHandle struct {
	g  *Group
	id uint64
}

func (h groupHandle) Cancel() bool { return h.g.cancel(h.id) }

type noopHandle struct{}

func (noopHandle) Cancel() bool { return false }
