package storefront

import (
	"context"
	"errors"

	"WhipStore/internal/cart"
	"WhipStore/internal/catalog"
)

// ProductSource is where the storefront reads the catalog from.
// catalog.Client satisfies it; StoreSource adapts a local store.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	Ping(ctx context.Context) error
}

type StoreSource struct {
	Store catalog.Store
}

func (s StoreSource) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.Store.ListSortedByID(ctx)
}

func (s StoreSource) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	p, ok, err := s.Store.Get(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (s StoreSource) Ping(ctx context.Context) error { return s.Store.Ping(ctx) }

var ErrCheckoutNotImplemented = errors.New("checkout not implemented")

// Order is what a checkout collaborator receives.
type Order struct {
	Email string          `json:"email"`
	Items []cart.LineItem `json:"items"`
	Total int64           `json:"total"`
}

// Checkout completes a purchase. The cart is cleared only when it returns nil.
type Checkout interface {
	Checkout(ctx context.Context, o Order) error
}

// NoCheckout is the default collaborator; payments are not wired.
type NoCheckout struct{}

func (NoCheckout) Checkout(context.Context, Order) error { return ErrCheckoutNotImplemented }
