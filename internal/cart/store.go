// Package cart keeps the shopping cart and the cached discount inside a session.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kedai/internal/models"
	"kedai/internal/session"
)

const (
	linesKey    = "cart"
	discountKey = "applied_discount"
)

// Store is a typed view over one session.
type Store struct {
	sess session.Session
}

// NewStore wraps sess.
func NewStore(sess session.Session) *Store {
	return &Store{sess: sess}
}

// SessionID returns the id of the underlying session.
func (s *Store) SessionID() string {
	return s.sess.ID()
}

// Lines returns the cart lines. An absent cart is empty, not an error.
func (s *Store) Lines(ctx context.Context) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	found, err := s.load(ctx, linesKey, &lines)
	if err != nil || !found {
		return []models.CartLine{}, err
	}
	return lines, nil
}

// SaveLines replaces the cart. Saving no lines removes the cart key.
func (s *Store) SaveLines(ctx context.Context, lines []models.CartLine) error {
	if len(lines) == 0 {
		return s.sess.Delete(ctx, linesKey)
	}
	return s.save(ctx, linesKey, lines)
}

// Discount returns the cached discount, or nil when none is applied.
func (s *Store) Discount(ctx context.Context) (*models.AppliedDiscount, error) {
	var d models.AppliedDiscount
	found, err := s.load(ctx, discountKey, &d)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

// SaveDiscount caches d in the session.
func (s *Store) SaveDiscount(ctx context.Context, d models.AppliedDiscount) error {
	return s.save(ctx, discountKey, d)
}

// ClearDiscount drops the cached discount.
func (s *Store) ClearDiscount(ctx context.Context) error {
	return s.sess.Delete(ctx, discountKey)
}

// Clear empties the cart and drops the cached discount with it.
func (s *Store) Clear(ctx context.Context) error {
	return s.sess.Delete(ctx, linesKey, discountKey)
}

func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.sess.Get(ctx, key)
	if errors.Is(err, session.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s from session: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s from session: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.sess.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s to session: %w", key, err)
	}
	return nil
}
