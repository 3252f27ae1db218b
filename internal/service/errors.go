package service

import (
	"errors"
	"fmt"

	"inventory-orders/internal/repository"
)

var (
	ErrNoProducts    = errors.New("products not found")
	ErrNoOrders      = errors.New("orders not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrInvalidItem   = errors.New("order item quantity must be positive")

	// ErrInsufficientStock is shared with the repository so either layer's
	// error matches the same sentinel
	ErrInsufficientStock = repository.ErrInsufficientStock
)

// InsufficientStockError reports the order line that could not be reserved
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold for this error
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
