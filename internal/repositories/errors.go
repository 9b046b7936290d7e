package repositories

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDiscountNotFound  = errors.New("discount code not found")
	ErrDiscountExhausted = errors.New("discount code has reached its usage limit")
	ErrMenuItemNotFound  = errors.New("menu item not found")
)
