package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"WhipStore/internal/auth"
	"WhipStore/internal/cart"
	"WhipStore/internal/catalog"
	"WhipStore/internal/chatbot"
	"WhipStore/internal/stock"
	"WhipStore/internal/storefront"
	"WhipStore/internal/view"
	"WhipStore/pkg/config"
	"WhipStore/pkg/kit"
	"WhipStore/pkg/schedule"
)

const minSecretLen = 32

func main() {
	service := "storefront"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	policy, err := stock.ParsePolicy(cfg.Storefront.StockPolicy)
	if err != nil {
		log.Fatal("invalid WHIP_STOCK_POLICY", zap.Error(err))
	}

	adminAuth, err := newAdminAuth(cfg, log)
	if err != nil {
		log.Fatal("admin auth init failed", zap.Error(err))
	}

	ctx := context.Background()

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("session storage init failed", zap.Error(err))
	}

	source := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	source.MaxRetries = cfg.Catalog.MaxRetries
	source.RetryDelay = cfg.Catalog.RetryDelay

	notices := storefront.NewNotices(schedule.Real{}, cfg.Storefront.ToastTTL)

	s := &storefront.Server{
		Log:     log,
		Source:  source,
		Storage: storage,
		Policy:  policy,
		Views:   view.MustRenderer(),
		Bot:     chatbot.New(chatbot.DefaultKnowledge(), rand.IntN),
		Typer: chatbot.Typer{
			Sched: schedule.Real{},
			Delay: cfg.Storefront.ChatDelay,
			Speed: cfg.Storefront.TypingSpeed,
		},
		Notices:      notices,
		AdminAuth:    adminAuth,
		CookieSecure: cfg.Storefront.CookieSecure,
	}

	reg := prometheus.NewRegistry()
	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	log.Info("storefront configured",
		zap.String("catalog_url", cfg.Catalog.BaseURL),
		zap.String("stock_policy", policy.String()),
		zap.Bool("admin_enabled", adminAuth != nil))

	if err := kit.RunHTTPServer(ctx, ":"+cfg.PortOr("8081"), h, log, notices.Close, closeStorage); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStorage keeps sessions in Redis when configured and in process memory
// otherwise.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (cart.Storage, func(), error) {
	if cfg.Redis.URL == "" {
		log.Warn("WHIP_REDIS_URL not set, sessions live in memory and are lost on restart")
		return cart.NewMemStorage(), func() {}, nil
	}

	client, err := cart.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	st := cart.NewRedisStorage(client, cfg.Redis.KeyPrefix, cfg.Redis.SessionTTL)
	return st, func() { _ = client.Close() }, nil
}

// newAdminAuth returns nil when the admin panel is not configured.
func newAdminAuth(cfg *config.Config, log *zap.Logger) (*auth.Server, error) {
	if cfg.Admin.JWTSecret == "" || cfg.Admin.PasswordHash == "" {
		log.Warn("admin panel disabled: set WHIP_ADMIN_JWT_SECRET and WHIP_ADMIN_PASSWORD_HASH")
		return nil, nil
	}
	if len(cfg.Admin.JWTSecret) < minSecretLen && !cfg.App.IsDev() {
		return nil, errors.New("WHIP_ADMIN_JWT_SECRET must be at least 32 chars")
	}

	store := auth.NewMemStore()
	if err := store.AddHash(cfg.Admin.Email, cfg.Admin.PasswordHash); err != nil {
		return nil, fmt.Errorf("WHIP_ADMIN_PASSWORD_HASH: %w", err)
	}

	return &auth.Server{
		Log:          log,
		Store:        store,
		JWT:          auth.NewTokenMaker(cfg.Admin.JWTSecret),
		TTL:          cfg.Admin.TokenTTL,
		CookieSecure: cfg.Storefront.CookieSecure,
	}, nil
}
