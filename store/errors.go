package store

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")

	ErrEmailTaken     = errors.New("email already registered")
	ErrCategoryExists = errors.New("category name already exists")

	// ErrInsufficientStock means a conditional decrement would have taken
	// stock below zero; the document is left untouched.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStatusConflict means the order exists but no longer holds the
	// status the transition was predicated on.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
