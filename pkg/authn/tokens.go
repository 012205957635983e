// Package authn issues and verifies the bearer tokens of pwstore and checks
// login credentials.
package authn

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

// Claims are the claims carried by a pwstore token. Subject is the user id.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// UserID parses the user id from the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	secret []byte

	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time
}

// NewTokens creates a token issuer with the given signing secret and token
// lifetime.
func NewTokens(secret []byte, ttl time.Duration) (*Tokens, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}, nil
}

// SetTTL changes the lifetime of tokens issued from now on.
func (t *Tokens) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t.mu.Lock()
	t.ttl = ttl
	t.mu.Unlock()
}

// TTL returns the current token lifetime.
func (t *Tokens) TTL() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ttl
}

// Issue signs a token for user and returns it with its expiry.
func (t *Tokens) Issue(user *model.User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.TTL())

	claims := Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token's signature and expiry and returns its claims.
func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
