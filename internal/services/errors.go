package services

import (
	"errors"
	"fmt"

	"shop-backend/internal/models"
)

var (
	// ErrInvalidAmount is returned for zero, negative or non-finite amounts.
	// Rejected before any write.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrCustomerNotFound is returned when the customer does not exist in the
	// calling store.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrPaymentNotFound is returned when reversing a ledger entry that does
	// not exist in the calling store.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrEmptyOrder is returned for a checkout with no items. Rejected before
	// any write.
	ErrEmptyOrder = errors.New("order must contain at least one item")

	// ErrBalanceNotSettled blocks deleting a customer whose balance is not
	// zero; deleting would orphan ledger history that still means something.
	ErrBalanceNotSettled = errors.New("customer balance must be settled before deletion")
)

// PartialCheckoutError reports a checkout whose order committed but whose
// ledger step failed afterwards. The order is durable and valid; the money
// movement is not recorded. Callers must surface this distinctly from full
// success so the user is directed to reconciliation instead of seeing a
// silent partial result.
type PartialCheckoutError struct {
	Order *models.Order
	Step  string // "payment" or "debt"
	Err   error
}

func (e *PartialCheckoutError) Error() string {
	return fmt.Sprintf("order %s created but ledger %s step failed: %v", e.Order.OrderNumber, e.Step, e.Err)
}

func (e *PartialCheckoutError) Unwrap() error {
	return e.Err
}
