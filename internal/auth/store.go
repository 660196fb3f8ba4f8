package auth

import (
	"context"
	"errors"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Admin struct {
	Email string
	Hash  []byte
	Role  string
}

type AdminStore interface {
	Verify(ctx context.Context, email, password string) (Admin, error)
}
