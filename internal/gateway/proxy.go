package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"WhipStore/pkg/kit"
)

// NewReverseProxy forwards to target. Upstream failures become a 502 in the
// usual error envelope.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed",
			zap.String("upstream", u.Host),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
	}
	return p, nil
}

// InjectHeaders passes the gateway's request id upstream so both services
// log the same one.
func InjectHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(chimw.RequestIDHeader)
		if id := chimw.GetReqID(r.Context()); id != "" {
			r.Header.Set(chimw.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
