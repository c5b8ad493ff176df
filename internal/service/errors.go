package service

import (
	"errors"

	"shop-service/internal/store"
)

var (
	// ErrNotFound is returned when a product or order lookup misses
	ErrNotFound = store.ErrNotFound
	// ErrConflict is returned when a unique value is already taken
	ErrConflict = store.ErrConflict
	// ErrPermissionDenied is returned when an order is looked up with the wrong email
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidInput is returned for requests the store would reject
	ErrInvalidInput = errors.New("invalid input")
	// ErrProductInUse is returned when deleting a product that orders still reference
	ErrProductInUse = errors.New("product is referenced by existing orders")
)
