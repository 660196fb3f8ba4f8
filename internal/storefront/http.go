// Package storefront serves the shop: the catalog and cart views, per
// session stock reconciliation, the mock login, the chatbot and the admin
// product table.
package storefront

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"WhipStore/internal/admin"
	"WhipStore/internal/auth"
	"WhipStore/internal/cart"
	"WhipStore/internal/catalog"
	"WhipStore/internal/chatbot"
	"WhipStore/internal/stock"
	"WhipStore/internal/view"
	"WhipStore/pkg/kit"
	"WhipStore/pkg/schedule"
)

const (
	loginLimitPerMin = 10
	chatLimitPerMin  = 30
	limitWindow      = 60 * time.Second

	readyTimeout = 2 * time.Second
)

type Server struct {
	Log      *zap.Logger
	Source   ProductSource
	Storage  cart.Storage
	Policy   stock.Policy
	Views    *view.Renderer
	Bot      *chatbot.Bot
	Typer    chatbot.Typer
	Notices  *Notices
	Checkout Checkout

	// AdminAuth issues admin tokens; without it every /admin route answers
	// 401.
	AdminAuth *auth.Server
	// Admin is loaded from Source on first use when nil.
	Admin *admin.Editor

	CookieSecure bool

	metrics  *domainMetrics
	sessions *sessionLocks
	adminMu  sync.Mutex
}

func (s *Server) defaults() {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.Storage == nil {
		s.Storage = cart.NewMemStorage()
	}
	if s.Views == nil {
		s.Views = view.MustRenderer()
	}
	if s.Bot == nil {
		s.Bot = chatbot.New(chatbot.DefaultKnowledge(), nil)
	}
	if s.Typer.Sched == nil {
		s.Typer = chatbot.Typer{Sched: schedule.Real{}, Delay: chatbot.DefaultDelay, Speed: chatbot.DefaultSpeed}
	}
	if s.Notices == nil {
		s.Notices = NewNotices(schedule.Real{}, DefaultNoticeTTL)
	}
	if s.Checkout == nil {
		s.Checkout = NoCheckout{}
	}
	if s.metrics == nil {
		s.metrics = newDomainMetrics(nil)
	}
	if s.sessions == nil {
		s.sessions = newSessionLocks()
	}
}

func (s *Server) Routes() http.Handler {
	s.defaults()

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	chatLimiter := kit.NewIPRateLimiter(chatLimitPerMin, limitWindow)

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", s.handleReadyz)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Post("/cart/add", s.handleFormAdd)
		r.Post("/cart/remove", s.handleFormRemove)
		r.Post("/cart/clear", s.handleFormClear)
		r.Post("/checkout", s.handleFormCheckout)

		r.Route("/api", func(r chi.Router) {
			r.Get("/catalog", s.handleCatalog)
			r.Get("/stock", s.handleStock)
			r.Get("/gallery/{id}", s.handleGallery)
			r.Get("/notices", s.handleNotices)

			r.Get("/cart", s.handleCart)
			r.Post("/cart/add", s.handleAdd)
			r.Post("/cart/remove", s.handleRemove)
			r.Post("/cart/clear", s.handleClear)
			r.Post("/checkout", s.handleCheckout)

			r.With(chatLimiter.Middleware).Post("/chat", s.handleChat)
			r.With(chatLimiter.Middleware).Get("/chat/stream", s.handleChatStream)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/status", s.handleStatus)
		})
	})

	r.Route("/admin", s.adminRoutes)

	return r
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Storage.(interface{ Ping(context.Context) error })
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed: storage", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "storage not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// locked runs fn holding the session lock, over a freshly loaded session.
func (s *Server) locked(r *http.Request, fn func(ss *session)) {
	unlock := s.sessions.lock(sessionID(r.Context()))
	defer unlock()
	fn(s.openSession(r.Context()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := view.Filters{
		Brand:     q.Get("brand"),
		Condition: q.Get("condition"),
		Size:      q.Get("size"),
		Sort:      q.Get("sort"),
	}

	s.locked(r, func(ss *session) {
		ctx := r.Context()
		cv, _ := s.catalogView(ctx, ss, f)
		items := ss.cart.Items()
		loggedIn, email := ss.user(ctx)

		page := view.IndexPage{
			Catalog:     cv,
			Cart:        view.BuildCart(items),
			MiniCart:    view.BuildMiniCart(items),
			LoggedIn:    loggedIn,
			Email:       email,
			Notices:     s.Notices.Live(ss.id),
			Suggestions: s.suggestions(),
		}
		s.renderHTML(w, r, "index", page)
	})
}

func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Views.Render(w, name, data); err != nil {
		s.Log.Error("render failed", zap.String("template", name), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) suggestions() []view.Suggestion {
	topics := s.Bot.Topics()
	out := make([]view.Suggestion, 0, len(topics))
	for _, t := range topics {
		out = append(out, view.Suggestion{Key: t.Key, Label: t.Label})
	}
	return out
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := view.Filters{
		Brand:     q.Get("brand"),
		Condition: q.Get("condition"),
		Size:      q.Get("size"),
		Sort:      q.Get("sort"),
	}

	s.locked(r, func(ss *session) {
		cv, err := s.catalogView(r.Context(), ss, f)
		if err != nil {
			kit.WriteJSON(w, http.StatusServiceUnavailable, cv)
			return
		}
		kit.WriteJSON(w, http.StatusOK, cv)
	})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("product_id")
	if id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}

	s.locked(r, func(ss *session) {
		st, err := s.cardState(r.Context(), ss, id, r.URL.Query().Get("size"))
		if err != nil {
			s.writeShopError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, st)
	})
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "invalid index", map[string]string{"index": raw})
			return
		}
		index = n
	}

	g, err := s.gallery(r.Context(), id, index)
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"notices": s.Notices.Live(sessionID(r.Context())),
	})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		kit.WriteJSON(w, http.StatusOK, ss.reply())
	})
}

type addReq struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Size      string `json:"size" validate:"max=16"`
}

type removeReq struct {
	Index *int `json:"index" validate:"required"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}

	s.locked(r, func(ss *session) {
		out, err := s.addToCart(r.Context(), ss, req.ProductID, req.Size)
		if err != nil {
			s.writeShopError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, out)
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req removeReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}

	s.locked(r, func(ss *session) {
		out, err := s.removeFromCart(r.Context(), ss, *req.Index)
		if err != nil {
			s.writeShopError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, out)
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		out, err := s.clearCart(r.Context(), ss)
		if err != nil {
			s.writeShopError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, out)
	})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		out, err := s.checkout(r.Context(), ss)
		if err != nil {
			s.writeShopError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, out)
	})
}

// The form variants back the plain HTML page: same transitions, then a
// redirect to the page.

func (s *Server) handleFormAdd(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("product_id")
	if id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}
	s.locked(r, func(ss *session) {
		if _, err := s.addToCart(r.Context(), ss, id, r.PostFormValue("size")); err != nil {
			s.writeShopError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func (s *Server) handleFormRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PostFormValue("index"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid index", nil)
		return
	}
	s.locked(r, func(ss *session) {
		if _, err := s.removeFromCart(r.Context(), ss, index); err != nil {
			s.writeShopError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func (s *Server) handleFormClear(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		if _, err := s.clearCart(r.Context(), ss); err != nil {
			s.writeShopError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func (s *Server) handleFormCheckout(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		if _, err := s.checkout(r.Context(), ss); err != nil {
			s.writeShopError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

type loginReq struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginStatus struct {
	LoggedIn bool   `json:"logged_in"`
	Email    string `json:"email,omitempty"`
}

// handleLogin accepts any non-empty pair; there is no real account behind
// the storefront login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}

	s.locked(r, func(ss *session) {
		if err := ss.login(r.Context(), req.Email); err != nil {
			ss.log.Error("login persist failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusInternalServerError, "session unavailable", nil)
			return
		}
		kit.WriteJSON(w, http.StatusOK, loginStatus{LoggedIn: true, Email: req.Email})
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		if err := ss.logout(r.Context()); err != nil {
			ss.log.Error("logout persist failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusInternalServerError, "session unavailable", nil)
			return
		}
		if isForm(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		kit.WriteJSON(w, http.StatusOK, loginStatus{})
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.locked(r, func(ss *session) {
		loggedIn, email := ss.user(r.Context())
		kit.WriteJSON(w, http.StatusOK, loginStatus{LoggedIn: loggedIn, Email: email})
	})
}

func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded"
}

// writeShopError maps domain failures onto the JSON error envelope.
func (s *Server) writeShopError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnknownProduct), errors.Is(err, catalog.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
	case errors.Is(err, ErrUnknownSize):
		kit.WriteError(w, r, http.StatusBadRequest, "size not offered", nil)
	case errors.Is(err, ErrNotLoggedIn):
		kit.WriteError(w, r, http.StatusUnauthorized, LoginRequired, nil)
	case errors.Is(err, ErrEmptyCart):
		kit.WriteError(w, r, http.StatusBadRequest, view.CartEmptyMessage, nil)
	case errors.Is(err, ErrCheckoutNotImplemented):
		kit.WriteError(w, r, http.StatusNotImplemented, CheckoutPending, nil)
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, catalog.ErrBadStatus):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	default:
		s.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
