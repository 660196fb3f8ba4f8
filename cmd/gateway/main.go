package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"WhipStore/internal/gateway"
	"WhipStore/pkg/config"
	"WhipStore/pkg/kit"
)

func main() {
	service := "gateway"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	deps := gateway.Deps{
		CatalogURL:    cfg.Gateway.CatalogURL,
		StorefrontURL: cfg.Gateway.StorefrontURL,
	}

	reg := prometheus.NewRegistry()
	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(context.Background(), ":"+cfg.PortOr("8080"), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
