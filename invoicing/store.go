/*
store.go - Invoice persistence on top of the inventory gateway

PURPOSE:
  Extends inventory.Store with invoice operations, and defines the
  transactional session the builder commits through.

THE SESSION:
  TxStore.WithTx hands the callback a Store scoped to one database
  transaction. If the callback errors, everything written through that
  session is rolled back. This is the explicit unit-of-work object the
  builder uses: invoice header, lines, updated items, and ledger records
  all go through one session and become visible together or not at all.

SEE ALSO:
  - inventory/store.go: Base gateway interface
  - store/sqlite: Production implementation
  - store/memory: Snapshot-rollback implementation for tests
*/
package invoicing

import (
	"context"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// STORE - Inventory gateway plus invoice persistence
// =============================================================================

type Store interface {
	inventory.Store

	// SaveInvoice inserts (assigning ID) when inv.ID == 0, updates otherwise.
	SaveInvoice(ctx context.Context, inv *Invoice) error
	SaveInvoiceLine(ctx context.Context, line *InvoiceLine) error

	GetInvoice(ctx context.Context, id InvoiceID) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	LinesByInvoice(ctx context.Context, id InvoiceID) ([]InvoiceLine, error)

	// SetInvoiceStatus transitions the header status independently of the
	// lines. The status has already been validated by ParseStatus.
	SetInvoiceStatus(ctx context.Context, id InvoiceID, status Status) error
}

// =============================================================================
// TRANSACTIONAL STORE - Explicit unit-of-work session
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
