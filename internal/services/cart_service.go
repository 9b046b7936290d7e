package services

import (
	"context"
	"fmt"

	"kedai/internal/cart"
	"kedai/internal/models"
	"kedai/internal/repositories"

	"go.uber.org/zap"
)

// CartView is a cart with its totals.
type CartView struct {
	Lines     []models.CartLine `json:"lines"`
	Totals    models.Totals     `json:"totals"`
	ItemCount int               `json:"item_count"`
}

// CartService edits the session cart. Prices are captured from the menu when
// an item is added and are not refreshed afterwards.
type CartService struct {
	menuRepo repositories.MenuRepository
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(menuRepo repositories.MenuRepository, log *zap.Logger) *CartService {
	return &CartService{
		menuRepo: menuRepo,
		log:      log,
	}
}

// View returns the current cart.
func (s *CartService) View(ctx context.Context, store *cart.Store) (*CartView, error) {
	lines, err := store.Lines(ctx)
	if err != nil {
		return nil, err
	}
	return newCartView(lines), nil
}

// AddItem puts quantity of a menu item into the cart. A quantity below one is
// treated as one. Adding an item already in the cart with the same options
// increases that line instead of adding another.
func (s *CartService) AddItem(ctx context.Context, store *cart.Store, menuItemID string, quantity int, opts models.LineOptions) (*CartView, error) {
	item, err := s.menuRepo.GetByID(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, fmt.Errorf("%s: %w", item.Name, ErrMenuItemUnavailable)
	}
	if quantity < 1 {
		quantity = 1
	}

	lines, err := store.Lines(ctx)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].SameLine(item.ID, opts) {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, models.CartLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   quantity,
			Options:    opts,
		})
	}

	if err := store.SaveLines(ctx, lines); err != nil {
		return nil, err
	}
	s.log.Debug("cart item added",
		zap.String("session_id", store.SessionID()),
		zap.String("menu_item_id", item.ID),
		zap.Int("quantity", quantity),
	)
	return newCartView(lines), nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line; a line
// that is not in the cart is ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, store *cart.Store, menuItemID string, opts models.LineOptions, quantity int) (*CartView, error) {
	lines, err := store.Lines(ctx)
	if err != nil {
		return nil, err
	}

	idx := findLine(lines, menuItemID, opts)
	if idx < 0 {
		return newCartView(lines), nil
	}
	if quantity <= 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	} else {
		lines[idx].Quantity = quantity
	}

	if err := store.SaveLines(ctx, lines); err != nil {
		return nil, err
	}
	return newCartView(lines), nil
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, store *cart.Store, menuItemID string, opts models.LineOptions) (*CartView, error) {
	lines, err := store.Lines(ctx)
	if err != nil {
		return nil, err
	}

	idx := findLine(lines, menuItemID, opts)
	if idx < 0 {
		return nil, fmt.Errorf("menu item %s: %w", menuItemID, ErrCartLineNotFound)
	}
	lines = append(lines[:idx], lines[idx+1:]...)

	if err := store.SaveLines(ctx, lines); err != nil {
		return nil, err
	}
	return newCartView(lines), nil
}

// Clear empties the cart and drops any applied discount.
func (s *CartService) Clear(ctx context.Context, store *cart.Store) error {
	return store.Clear(ctx)
}

func findLine(lines []models.CartLine, menuItemID string, opts models.LineOptions) int {
	for i, l := range lines {
		if l.SameLine(menuItemID, opts) {
			return i
		}
	}
	return -1
}

func newCartView(lines []models.CartLine) *CartView {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return &CartView{
		Lines:     lines,
		Totals:    CalculateTotals(lines),
		ItemCount: count,
	}
}
