package chatbot

import (
	"sync"
	"time"

	"WhipStore/pkg/schedule"
)

const (
	DefaultDelay = time.Second
	DefaultSpeed = 30 * time.Millisecond
)

// Typer reveals a reply one rune at a time: the first prefix after Delay,
// each following one Speed later.
type Typer struct {
	Sched schedule.Scheduler
	Delay time.Duration
	Speed time.Duration
}

// Type schedules emit for every prefix of text and done after the full text.
// Cancelling the returned handle stops the remaining steps; done is not
// called then.
func (t Typer) Type(text string, emit func(prefix string), done func()) schedule.Handle {
	h := &typing{}
	runes := []rune(text)

	delay, speed := t.Delay, t.Speed
	if delay < 0 {
		delay = 0
	}
	if speed <= 0 {
		speed = DefaultSpeed
	}

	var step func(i int)
	step = func(i int) {
		if h.stopped() {
			return
		}
		if i >= len(runes) {
			if done != nil {
				done()
			}
			return
		}
		emit(string(runes[:i+1]))
		h.set(t.Sched.After(speed, func() { step(i + 1) }))
	}

	h.set(t.Sched.After(delay, func() { step(0) }))
	return h
}

type typing struct {
	mu        sync.Mutex
	cur       schedule.Handle
	cancelled bool
}

func (h *typing) set(next schedule.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		next.Cancel()
		return
	}
	h.cur = next
}

func (h *typing) stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

func (h *typing) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return false
	}
	h.cancelled = true
	if h.cur != nil {
		h.cur.Cancel()
	}
	return true
}
