package auth

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]Admin
}

func NewMemStore() *MemStore {
	return &MemStore{byEmail: make(map[string]Admin)}
}

// AddHash registers an admin from a precomputed bcrypt hash, the form kept in
// configuration.
func (s *MemStore) AddHash(email, hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email = normalizeEmail(email)
	s.byEmail[email] = Admin{Email: email, Hash: []byte(hash), Role: RoleAdmin}
	return nil
}

// AddPassword hashes password and registers the admin.
func (s *MemStore) AddPassword(email, password string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	return s.AddHash(email, string(hash))
}

func (s *MemStore) Verify(_ context.Context, email, password string) (Admin, error) {
	email = normalizeEmail(email)

	s.mu.RLock()
	u, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok {
		return Admin{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return Admin{}, ErrInvalidCredentials
	}

	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
