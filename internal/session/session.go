// Package session is the per-browsing-session key/value store that carts and
// cached discounts live in.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value in the session.
var ErrNotFound = errors.New("session key not found")

// Session is a key/value bag scoped to one browsing session.
type Session interface {
	ID() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Provider opens the session identified by id, creating it lazily.
type Provider interface {
	Open(id string) Session
}
