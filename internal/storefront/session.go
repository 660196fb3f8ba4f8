package storefront

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"WhipStore/internal/cart"
)

const (
	SessionCookie = "whip_sid"

	keyLoggedIn  = "isLoggedIn"
	keyUserEmail = "userEmail"

	sessionMaxAge = 30 * 24 * time.Hour
)

type sidKey struct{}

func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sidKey{}).(string)
	return sid
}

// withSession attaches the whip_sid session id, issuing a new one when the
// cookie is missing or not a UUID.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sidKey{}, sid)))
	})
}

// sessionLocks serializes the requests of one session.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(sid string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[sid]
	if !ok {
		e = &sessionLock{}
		l.locks[sid] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, sid)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// session is one request's handle on a shopper's state. The cart snapshot
// is reloaded from storage every time one is opened.
type session struct {
	id      string
	storage cart.Storage
	cart    *cart.Store
	log     *zap.Logger
}

func (s *Server) openSession(ctx context.Context) *session {
	sid := sessionID(ctx)
	log := s.Log.With(zap.String("session", sid))
	st := cart.Scope(s.Storage, sid)

	c := cart.NewStore(st, log)
	c.Load(ctx)
	return &session{id: sid, storage: st, cart: c, log: log}
}

// user reports the mock login state. Storage failures read as logged out.
func (ss *session) user(ctx context.Context) (loggedIn bool, email string) {
	v, ok, err := ss.storage.Get(ctx, keyLoggedIn)
	if err != nil {
		ss.log.Warn("session read failed", zap.Error(err))
		return false, ""
	}
	if !ok || v != "true" {
		return false, ""
	}

	email, _, err = ss.storage.Get(ctx, keyUserEmail)
	if err != nil {
		ss.log.Warn("session read failed", zap.Error(err))
	}
	return true, email
}

func (ss *session) login(ctx context.Context, email string) error {
	if err := ss.storage.Set(ctx, keyLoggedIn, "true"); err != nil {
		return err
	}
	return ss.storage.Set(ctx, keyUserEmail, email)
}

func (ss *session) logout(ctx context.Context) error {
	if err := ss.storage.Delete(ctx, keyLoggedIn); err != nil {
		return err
	}
	return ss.storage.Delete(ctx, keyUserEmail)
}
