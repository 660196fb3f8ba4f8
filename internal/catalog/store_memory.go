package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[ID]Product
}

// NewMemStore holds the given products, or the embedded seed when none are
// passed.
func NewMemStore(products ...Product) *MemStore {
	if len(products) == 0 {
		products = SeedProducts()
	}

	s := &MemStore{m: make(map[ID]Product, len(products))}
	for _, p := range products {
		s.m[p.ID] = p.Clone()
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[ID(id)]
	if !ok {
		return Product{}, false, nil
	}
	return p.Clone(), true, nil
}
