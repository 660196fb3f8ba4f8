package storefront

import (
	"sync"
	"time"

	"WhipStore/internal/view"
	"WhipStore/pkg/schedule"
)

const (
	NoticeSuccess = "success"
	NoticeError   = "error"

	DefaultNoticeTTL = 1500 * time.Millisecond

	NoStockMessage  = "No hay suficiente stock disponible"
	LoginRequired   = "Debes iniciar sesión para realizar una compra"
	CheckoutPending = "El pago todavía no está disponible"
)

func AddedMessage(name, size string) string {
	return name + " (" + size + ") agregado al carrito"
}

// Notices holds the toast messages of every session until their timer
// dismisses them.
type Notices struct {
	ttl    time.Duration
	timers *schedule.Group

	mu        sync.Mutex
	next      uint64
	bySession map[string][]pendingNotice
}

type pendingNotice struct {
	id     uint64
	notice view.Notice
}

func NewNotices(s schedule.Scheduler, ttl time.Duration) *Notices {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notices{
		ttl:       ttl,
		timers:    schedule.NewGroup(s),
		bySession: make(map[string][]pendingNotice),
	}
}

// Push shows a notice to sid until the TTL elapses.
func (n *Notices) Push(sid, kind, text string) view.Notice {
	v := view.Notice{Kind: kind, Text: text}

	n.mu.Lock()
	id := n.next
	n.next++
	n.bySession[sid] = append(n.bySession[sid], pendingNotice{id: id, notice: v})
	n.mu.Unlock()

	n.timers.After(n.ttl, func() { n.dismiss(sid, id) })
	return v
}

// Live lists sid's notices oldest first.
func (n *Notices) Live(sid string) []view.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	pending := n.bySession[sid]
	out := make([]view.Notice, len(pending))
	for i, p := range pending {
		out[i] = p.notice
	}
	return out
}

// Close cancels every outstanding dismissal. Notices pushed after Close
// never expire, so callers stop serving first.
func (n *Notices) Close() {
	n.timers.CancelAll()
}

func (n *Notices) dismiss(sid string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	pending := n.bySession[sid]
	for i, p := range pending {
		if p.id == id {
			pending = append(pending[:i], pending[i+1:]...)
			break
		}
	}
	if len(pending) == 0 {
		delete(n.bySession, sid)
		return
	}
	n.bySession[sid] = pending
}
