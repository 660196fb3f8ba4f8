//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type cartReply struct {
	Added bool `json:"added"`
	Cart  struct {
		Rows []map[string]any `json:"rows"`
	} `json:"cart"`
	MiniCart struct {
		Count int `json:"count"`
	} `json:"mini_cart"`
}

func TestSystem_E2E_Cart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Timeout: 5 * time.Second, Jar: jar}

	var products []map[string]any
	doJSON(t, client, http.MethodGet, baseURL+"/api/products", nil, &products, http.StatusOK)
	require.NotEmpty(t, products)

	pid, _ := products[0]["id"].(string)
	require.NotEmpty(t, pid, "product id missing in %#v", products[0])

	var added cartReply
	doJSON(t, client, http.MethodPost, baseURL+"/api/cart/add", map[string]any{
		"product_id": pid,
	}, &added, http.StatusOK)
	require.True(t, added.Added)
	require.Equal(t, 1, added.MiniCart.Count)

	var got cartReply
	doJSON(t, client, http.MethodGet, baseURL+"/api/cart", nil, &got, http.StatusOK)
	require.Len(t, got.Cart.Rows, 1)

	var chat map[string]any
	doJSON(t, client, http.MethodPost, baseURL+"/api/chat", map[string]any{
		"message": "¿Hacen envíos?",
	}, &chat, http.StatusOK)
	require.NotEmpty(t, chat["text"])

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartContainer(t, ctx, "storefront")
		waitReady(t, ctx, baseURL+"/readyz")

		var after cartReply
		doJSON(t, client, http.MethodGet, baseURL+"/api/cart", nil, &after, http.StatusOK)
		require.Len(t, after.Cart.Rows, 1, "cart should survive a storefront restart")
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, want, resp.StatusCode, "%s %s", method, url)

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
