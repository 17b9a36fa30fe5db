/*
errors.go - Centralized error types for the inventory domain

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses via the classification
  helpers at the bottom.

ERROR CATEGORIES:
  1. Not-found errors - A referenced entity does not exist
  2. Stock errors - The non-negative quantity invariant would be violated
  3. Validation errors - Malformed input (non-positive quantity, empty lines)

USAGE:
  Structured errors wrap sentinels, so both forms work:

    if errors.Is(err, inventory.ErrInsufficientStock) { ... }

    var stockErr *inventory.InsufficientStockError
    if errors.As(err, &stockErr) {
        // stockErr.Available, stockErr.Requested
    }

SEE ALSO:
  - ledger.go: Produces InsufficientStockError
  - api/handlers.go: Maps these to HTTP statuses
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientStock is returned when a change would drive an item's
	// quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrItemNotFound is returned when a referenced item doesn't exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrSupplierNotFound is returned when a referenced supplier doesn't exist.
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrCustomerNotFound is returned when a referenced customer doesn't exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInvoiceNotFound is returned when a referenced invoice doesn't exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvalidQuantity is returned for non-positive requested quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrItemReferenced is returned when deleting an item that invoice lines
	// or ledger transactions still reference.
	ErrItemReferenced = errors.New("item is referenced by invoices or transactions")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports the shortfall for a specific item.
// The request boundary needs Available and Requested to render a message.
type InsufficientStockError struct {
	ItemID    ItemID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: available %d, requested %d",
		e.ItemID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Shortfall is how many units the request exceeds the available stock by.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// NotFoundError identifies which entity was missing.
type NotFoundError struct {
	Kind string // "item", "supplier", "customer", "invoice"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "supplier":
		return ErrSupplierNotFound
	case "customer":
		return ErrCustomerNotFound
	case "invoice":
		return ErrInvoiceNotFound
	default:
		return ErrItemNotFound
	}
}

// ValidationError reports malformed input rejected at the domain boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrSupplierNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrInvoiceNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// rather than a persistence failure.
func IsClientError(err error) bool {
	var validationErr *ValidationError
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrItemReferenced) ||
		errors.As(err, &validationErr)
}
