package repositories

import (
	"context"
	"fmt"
	"sync"

	"kedai/internal/models"

	"github.com/google/uuid"
)

// MockMenuRepository is an in-memory implementation of MenuRepository.
type MockMenuRepository struct {
	items map[string]models.MenuItem
	mu    sync.RWMutex
}

// NewMockMenuRepository creates a new instance of MockMenuRepository.
func NewMockMenuRepository() *MockMenuRepository {
	return &MockMenuRepository{
		items: make(map[string]models.MenuItem),
	}
}

// GetByID returns a menu item by its ID.
func (r *MockMenuRepository) GetByID(_ context.Context, id string) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item with ID %s: %w", id, ErrMenuItemNotFound)
	}
	return &item, nil
}

// Create adds a new menu item.
func (r *MockMenuRepository) Create(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}
