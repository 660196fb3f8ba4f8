package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic scheduler for tests: nothing runs until Advance
// moves its clock past a callback's deadline.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	seq       uint64
	fn        func()
	cancelled bool
	done      bool
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) After(d time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTask{at: m.now + d, seq: m.seq, fn: fn}
	m.seq++
	m.tasks = append(m.tasks, t)
	return manualHandle{m: m, t: t}
}

// Advance moves the clock forward by d and runs due callbacks in deadline
// order. Callbacks may schedule further work; anything that falls due within
// the same window runs too.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.at
		t.done = true
		m.mu.Unlock()

		t.fn()
	}
}

// Pending counts callbacks that have not run or been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if !t.done && !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.done && !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live

	sort.Slice(m.tasks, func(i, j int) bool {
		if m.tasks[i].at == m.tasks[j].at {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at < m.tasks[j].at
	})

	if len(m.tasks) == 0 || m.tasks[0].at > target {
		return nil
	}
	return m.tasks[0]
}

type manualHandle struct {
	m *Manual
	t *manualTask
}

func (h manualHandle) Cancel() bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()

	if h.t.done || h.t.cancelled {
		return false
	}
	h.t.cancelled = true
	return true
}
