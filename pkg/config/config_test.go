package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WHIP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "per_size", cfg.Storefront.StockPolicy)
	require.Equal(t, 1500*time.Millisecond, cfg.Storefront.ToastTTL)
	require.Equal(t, uint64(0), cfg.Catalog.MaxRetries)
	require.Equal(t, "8081", cfg.PortOr("8081"))
	require.True(t, cfg.App.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WHIP_PORT", "9000")
	t.Setenv("WHIP_STOCK_POLICY", "shared")
	t.Setenv("WHIP_CATALOG_MAX_RETRIES", "3")
	t.Setenv("WHIP_CATALOG_RETRY_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9000", cfg.PortOr("8081"))
	require.Equal(t, "shared", cfg.Storefront.StockPolicy)
	require.Equal(t, uint64(3), cfg.Catalog.MaxRetries)
	require.Equal(t, 250*time.Millisecond, cfg.Catalog.RetryDelay)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("WHIP_TOAST_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
