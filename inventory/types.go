/*
Package inventory provides the core stock management domain.

PURPOSE:
  This package contains the entities and the Stock Ledger for an inventory
  backend: items with a non-negative quantity, reference data (suppliers,
  customers), and the append-only transaction log that explains every
  quantity change.

KEY CONCEPTS IN THIS FILE (types.go):
  - Item: A stocked product with quantity, price, and reorder threshold
  - StockTransaction: An immutable ledger entry recording a quantity change
  - Supplier/Customer: Reference data with no invariants of their own

DESIGN PRINCIPLES:
  1. Immutability: Stock transactions are never modified or deleted
  2. Precision: Uses decimal.Decimal for all monetary values - no float drift
  3. Auditability: Item.Quantity always equals its initial quantity plus the
     sum of its transaction deltas

SEE ALSO:
  - ledger.go: The mutation gate enforcing the non-negative invariant
  - store.go: Persistence gateway interface
  - errors.go: Sentinel and structured error types
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Entity ids are assigned by the store on first save (0 = not yet persisted).
type (
	ItemID        int64
	SupplierID    int64
	CustomerID    int64
	TransactionID int64
)

// =============================================================================
// MONEY HELPERS
// =============================================================================

// NewPrice builds a decimal price from a float as received at the API
// boundary. Internal arithmetic stays in decimal from this point on.
func NewPrice(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// ITEM - Stocked product
// =============================================================================

type Item struct {
	ID          ItemID
	Name        string
	Description string
	Quantity    int // Invariant: never negative. Mutated only via the ledger.
	Price       decimal.Decimal
	Category    string
	MinStock    int // Reorder threshold; items with Quantity <= MinStock are "low stock"
	Expiration  *time.Time
	SupplierID  *SupplierID
	Barcode     string
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i Item) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// =============================================================================
// STOCK TRANSACTION - Atomic change to an item's quantity
// =============================================================================

// Reason codes. Reason is free-form in storage but these are the
// conventional values written by the engine.
const (
	ReasonSale       = "sale"
	ReasonRestock    = "restock"
	ReasonAdjustment = "adjustment"
)

// StockTransaction is an immutable audit record. Created once as part of the
// unit of work that changed the quantity, never mutated or deleted.
type StockTransaction struct {
	ID             TransactionID
	ItemID         ItemID
	ChangeQuantity int // Signed delta: negative for sales, positive for restock
	Timestamp      time.Time
	Reason         string
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type Supplier struct {
	ID          SupplierID
	Name        string
	ContactInfo string
}

type Customer struct {
	ID          CustomerID
	Name        string
	Phone       string
	Address     string
	ContactInfo string
}
