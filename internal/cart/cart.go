// Package cart holds the per-session shopping cart: an ordered list of
// single-unit line items persisted as one JSON snapshot.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Key is the storage key of the snapshot. Bump it when LineItem changes shape.
const Key = "cart_v1"

var (
	ErrNoStock    = errors.New("no stock available")
	ErrOutOfRange = errors.New("cart index out of range")
)

// LineItem is one reserved unit. Name and price are copied at add time.
type LineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Size        string `json:"size"`
}

// StockChecker decides whether one more unit of productID/size fits.
type StockChecker interface {
	IsAvailable(productID, size string) bool
}

type Store struct {
	storage Storage
	log     *zap.Logger
	items   []LineItem
}

func NewStore(storage Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{storage: storage, log: log}
}

// Load replaces the in-memory list with the persisted snapshot. Missing,
// malformed or unreadable data yields an empty cart.
func (s *Store) Load(ctx context.Context) []LineItem {
	s.items = nil

	raw, ok, err := s.storage.Get(ctx, Key)
	if err != nil {
		s.log.Warn("cart load failed", zap.Error(err))
		return s.Items()
	}
	if !ok || raw == "" {
		return s.Items()
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("discarding malformed cart snapshot", zap.Error(err))
		return s.Items()
	}
	s.items = items
	return s.Items()
}

// Add appends line when chk reports stock for it.
func (s *Store) Add(ctx context.Context, line LineItem, chk StockChecker) error {
	if chk == nil || !chk.IsAvailable(line.ProductID, line.Size) {
		return ErrNoStock
	}

	next := append(s.Items(), line)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// RemoveAt drops the line at index and returns it.
func (s *Store) RemoveAt(ctx context.Context, index int) (LineItem, error) {
	if index < 0 || index >= len(s.items) {
		return LineItem{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(s.items))
	}

	removed := s.items[index]
	next := make([]LineItem, 0, len(s.items)-1)
	next = append(next, s.items[:index]...)
	next = append(next, s.items[index+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return LineItem{}, err
	}
	s.items = next
	return removed, nil
}

// Clear empties the cart and returns what it held.
func (s *Store) Clear(ctx context.Context) ([]LineItem, error) {
	prior := s.Items()
	if err := s.persist(ctx, []LineItem{}); err != nil {
		return nil, err
	}
	s.items = nil
	return prior, nil
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Total() int64 {
	return Total(s.items)
}

// Total sums line prices.
func Total(items []LineItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price
	}
	return sum
}

func (s *Store) persist(ctx context.Context, items []LineItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, Key, string(b)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
