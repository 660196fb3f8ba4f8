package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"WhipStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	CatalogURL    string
	StorefrontURL string
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}

	catalogProxy, storefrontProxy, err := buildProxies(deps, httpDeps.Log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Group(func(pr chi.Router) {
		pr.Use(InjectHeaders)

		pr.Handle("/api/products", catalogProxy)
		pr.Handle("/api/products/*", catalogProxy)

		pr.Handle("/", storefrontProxy)
		pr.Handle("/*", storefrontProxy)
	})

	return r, nil
}

func buildProxies(deps Deps, log *zap.Logger) (catalogProxy, storefrontProxy http.Handler, err error) {
	cp, err := NewReverseProxy(deps.CatalogURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog url: %w", err)
	}

	sp, err := NewReverseProxy(deps.StorefrontURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("storefront url: %w", err)
	}

	return cp, sp, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	upstreams := []struct{ name, url string }{
		{"catalog", deps.CatalogURL},
		{"storefront", deps.StorefrontURL},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, u := range upstreams {
			if err := checkReady(ctx, u.url+"/readyz"); err != nil {
				log.Warn("readyz failed: "+u.name, zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, u.name+" not ready", nil)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	return nil
}
