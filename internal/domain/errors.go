package domain

import "fmt"

// ValidationError rejects a malformed write before anything is stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing row addressed by id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ItemNotFoundError reports that a sale referenced a catalog item that does not exist.
type ItemNotFoundError struct {
	Ref ItemRef
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Ref.Kind, e.Ref.ID)
}

// InsufficientStockError carries the quantity still available so callers can say "only N left".
type InsufficientStockError struct {
	Ref       ItemRef
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %d (need %d, have %d)",
		e.Ref.Kind, e.Ref.ID, e.Requested, e.Available)
}

type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1, got %d", e.Quantity)
}

// ConflictError rejects a write that would break a reference held elsewhere.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }
