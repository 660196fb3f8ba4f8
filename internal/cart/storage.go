package cart

import (
	"context"
	"strings"
	"sync"
)

// Storage is a string key-value namespace, the server-side stand-in for a
// browser tab's local storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type MemStorage struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{m: make(map[string]string)}
}

func (s *MemStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Len reports the number of stored keys across every scope.
func (s *MemStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

type scoped struct {
	base   Storage
	prefix string
}

// Scope namespaces every key of base under the session id.
func Scope(base Storage, sessionID string) Storage {
	return scoped{base: base, prefix: "session:" + strings.TrimSpace(sessionID) + ":"}
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.base.Get(ctx, s.prefix+key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.base.Set(ctx, s.prefix+key, value)
}

func (s scoped) Delete(ctx context.Context, key string) error {
	return s.base.Delete(ctx, s.prefix+key)
}
