package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidOrder      = errors.New("invalid order request")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports how many items were actually left at the
// moment the conditional decrement was refused. errors.Is matches it against
// ErrInsufficientStock.
type InsufficientStockError struct {
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Only %d items left.", e.Remaining)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
