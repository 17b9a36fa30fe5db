/*
Package invoicing turns purchase requests into durable invoices.

PURPOSE:
  An invoice is the one multi-step state change in the system: header, lines,
  decremented item quantities, and ledger records must all commit together or
  not at all. This package holds the invoice entities and the Builder that
  drives that unit of work.

KEY CONCEPTS IN THIS FILE (types.go):
  - Invoice: Header with computed total, status, and creation date
  - InvoiceLine: One item purchase with the unit price FROZEN at invoice time
  - LineRequest: The fixed-shape input validated at the boundary

FROZEN PRICE:
  InvoiceLine.UnitPrice is a copy of the item's price at the moment the
  invoice was built. Changing the item's price later must never change what
  historical invoices say was charged.

SEE ALSO:
  - builder.go: The all-or-nothing build operation
  - store.go: Invoice persistence on top of the inventory gateway
*/
package invoicing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type InvoiceID int64

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a client-supplied status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// =============================================================================
// INVOICE - Header with computed total
// =============================================================================

type Invoice struct {
	ID         InvoiceID
	CustomerID *inventory.CustomerID
	Total      decimal.Decimal // Computed by the builder, never client-supplied
	Date       time.Time
	Status     Status
}

// PaymentTermDays is the fixed payment term. The due date is computed, not
// stored.
const PaymentTermDays = 30

// DueDate returns the invoice date plus the fixed payment term.
func (inv Invoice) DueDate() time.Time {
	return inv.Date.AddDate(0, 0, PaymentTermDays)
}

// =============================================================================
// INVOICE LINE - One purchased item, price frozen at invoice time
// =============================================================================

type InvoiceLine struct {
	ID        int64
	InvoiceID InvoiceID
	ItemID    inventory.ItemID
	Quantity  int
	UnitPrice decimal.Decimal // Frozen copy of the item price at build time
}

// Total is the line amount: frozen unit price times quantity.
func (l InvoiceLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// =============================================================================
// LINE REQUEST - Boundary input shape
// =============================================================================

// LineRequest is the fixed-shape request for one invoice line. Validation
// happens in the builder, uniformly for every call path.
type LineRequest struct {
	ItemID   inventory.ItemID
	Quantity int
}
