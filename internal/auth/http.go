package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"WhipStore/pkg/kit"
)

const (
	// CookieName carries the admin token for plain page navigation.
	CookieName = "whip_admin"

	loginLimitPerMin = 5
	limitWindow      = 60 * time.Second
	defaultTokenTTL  = 15 * time.Minute
)

type ctxKey struct{}

// ClaimsFromContext returns the claims RequireAdmin stored.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(Claims)
	return c, ok
}

type Server struct {
	Log          *zap.Logger
	Store        AdminStore
	JWT          *TokenMaker
	TTL          time.Duration
	CookieSecure bool
}

// Routes serves /login, /logout and /whoami; mount it under /admin.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the session endpoints to an existing /admin router.
func (s *Server) Register(r chi.Router) {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)

	r.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.With(RequireAdmin(s.JWT)).Get("/whoami", s.handleWhoAmI)
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}

	u, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			s.Log.Error("admin verify failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	tok, err := s.JWT.New(u.Email, u.Role, ttl)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/admin",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok, ExpiresIn: int64(ttl.Seconds())})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"email": claims.Email,
		"role":  claims.Role,
	})
}

// RequireAdmin accepts a bearer token or the admin cookie and rejects
// anything without the admin role.
func RequireAdmin(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
					tok, ok = c.Value, true
				}
			}
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}
			if claims.Role != RoleAdmin {
				kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}
