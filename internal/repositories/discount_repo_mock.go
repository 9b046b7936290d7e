package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"kedai/internal/models"
)

// MockDiscountRepository is an in-memory implementation of DiscountRepository.
type MockDiscountRepository struct {
	codes  map[uint]models.DiscountCode
	nextID uint
	mu     sync.Mutex
}

// NewMockDiscountRepository creates a new instance of MockDiscountRepository.
func NewMockDiscountRepository() *MockDiscountRepository {
	return &MockDiscountRepository{
		codes: make(map[uint]models.DiscountCode),
	}
}

// Create adds a new discount code.
func (r *MockDiscountRepository) Create(_ context.Context, code *models.DiscountCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code.Code = strings.ToUpper(strings.TrimSpace(code.Code))
	for _, existing := range r.codes {
		if existing.Code == code.Code {
			return fmt.Errorf("discount code %s already exists", code.Code)
		}
	}
	if code.ID == 0 {
		r.nextID++
		code.ID = r.nextID
	} else if code.ID > r.nextID {
		r.nextID = code.ID
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	r.codes[code.ID] = *code
	return nil
}

// GetByID returns a discount code by its ID.
func (r *MockDiscountRepository) GetByID(_ context.Context, id uint) (*models.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[id]
	if !ok {
		return nil, fmt.Errorf("discount code with ID %d: %w", id, ErrDiscountNotFound)
	}
	return &code, nil
}

// FindByCode returns a discount code by its code, ignoring case.
func (r *MockDiscountRepository) FindByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.TrimSpace(code)
	for _, dc := range r.codes {
		if strings.EqualFold(dc.Code, needle) {
			return &dc, nil
		}
	}
	return nil, fmt.Errorf("discount code %s: %w", code, ErrDiscountNotFound)
}

// IncrementUsage bumps TimesUsed under the lock while below MaxUses.
func (r *MockDiscountRepository) IncrementUsage(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[id]
	if !ok {
		return fmt.Errorf("discount code with ID %d: %w", id, ErrDiscountNotFound)
	}
	if code.Exhausted() {
		return fmt.Errorf("discount code %d: %w", id, ErrDiscountExhausted)
	}
	code.TimesUsed++
	r.codes[id] = code
	return nil
}

// DecrementUsage releases one previously claimed use.
func (r *MockDiscountRepository) DecrementUsage(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[id]
	if !ok {
		return fmt.Errorf("discount code with ID %d: %w", id, ErrDiscountNotFound)
	}
	if code.TimesUsed > 0 {
		code.TimesUsed--
		r.codes[id] = code
	}
	return nil
}
