package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer    = "whip-admin"
	RoleAdmin = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenMaker struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(email, role string, ttl time.Duration) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	now := t.now()

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	if len(t.secret) == 0 {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithTimeFunc(t.now))
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}
