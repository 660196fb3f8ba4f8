package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"WhipStore/internal/catalog"
	"WhipStore/pkg/config"
	"WhipStore/pkg/kit"
)

func main() {
	service := "catalog"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("catalog store init failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.PortOr("8082"), h, log, closeStore); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore uses Postgres when a DSN is configured and the embedded seed
// otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.DB.DSN == "" {
		log.Info("WHIP_DB_DSN not set, serving the embedded catalog")
		return catalog.NewMemStore(), func() {}, nil
	}

	db, err := catalog.OpenPostgres(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	if cfg.DB.MigrateOnStart {
		if err := catalog.Migrate(ctx, db); err != nil {
			closeDB()
			return nil, nil, err
		}
	}

	st := catalog.NewPostgresStore(db)
	if err := st.Seed(ctx, catalog.SeedProducts()); err != nil {
		closeDB()
		return nil, nil, err
	}
	return st, closeDB, nil
}
