package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrLotNotFound            = errors.New("warehouse lot not found")
	ErrProductNotFound        = errors.New("branch product not found")
	ErrProductExists          = errors.New("branch product still exists")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidQuantity        = errors.New("quantity must be a positive whole number")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrConcurrentModification = errors.New("stock was modified concurrently")
	ErrPersistence            = errors.New("stock store failure")
)

// InsufficientStockError reports how much was asked for and how much was there.
type InsufficientStockError struct {
	LotID     string
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	target := "lot " + e.LotID
	if e.ProductID != "" {
		target = "product " + e.ProductID
	}
	return fmt.Sprintf("insufficient stock in %s: requested %d, available %d", target, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Persistence tags a store error so callers can tell it apart from domain failures.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// Expected reports whether err is a recoverable domain outcome rather than a fault.
func Expected(err error) bool {
	return errors.Is(err, ErrLotNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrProductExists) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidArgument)
}
