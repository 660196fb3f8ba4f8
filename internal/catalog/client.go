package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	ErrNotFound    = errors.New("catalog product not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client reads the catalog over HTTP. Transport failures and 5xx answers are
// retried MaxRetries times, RetryDelay apart; everything else fails at once.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	MaxRetries uint64
	RetryDelay time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		HTTP:       &http.Client{Timeout: timeout},
		RetryDelay: time.Second,
	}
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.getJSON(ctx, "/api/products", &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(id), &p); err != nil {
		return Product{}, err
	}
	p.Normalize()
	return p, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListProducts(ctx)
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	delay := c.RetryDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	b := retry.WithMaxRetries(c.MaxRetries, retry.NewConstant(delay))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		return c.fetch(ctx, path, dst)
	})
}

func (c *Client) fetch(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return retry.RetryableError(fmt.Errorf("%w: %w: status=%d", ErrUnavailable, ErrBadStatus, resp.StatusCode))
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
