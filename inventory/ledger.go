/*
ledger.go - The stock mutation gate

PURPOSE:
  Every quantity change goes through the Stock Ledger. It enforces the one
  hard invariant of the inventory - an item's quantity never goes negative -
  and pairs every accepted change with an immutable StockTransaction
  explaining it.

CRITICAL INVARIANTS:
  1. NON-NEGATIVE: item.Quantity + delta >= 0, or the change is rejected
  2. PAIRED: every accepted change produces exactly one audit record
  3. NO PARTIAL APPLICATION: a rejected change mutates nothing

TRANSACTION BOUNDARY:
  ApplyChange does NOT persist anything. It mutates the caller's in-memory
  Item and hands back the staged StockTransaction; the caller decides when
  (and whether) the pair is committed. This keeps the ledger usable inside
  a larger unit of work - the invoice builder stages changes for many items
  and commits them all at once.

WHY QUANTITY LIVES ON THE ITEM:
  Quantity is denormalized onto Item for cheap reads, but the transaction
  log remains the source of truth for how it got there:

    Item.Quantity == initial quantity + sum(tx.ChangeQuantity)

  Because ApplyChange is the only mutation path and always emits a matching
  record, the equation holds after any sequence of operations.

SEE ALSO:
  - invoicing/builder.go: Drives the ledger across many lines atomically
  - store.go: AppendTransaction persists the staged records
*/
package inventory

import "time"

// =============================================================================
// STOCK LEDGER
// =============================================================================

// StockLedger mediates quantity changes. It is stateless; all state lives on
// the Item and in the persisted transaction log.
type StockLedger struct{}

func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// ApplyChange applies a signed quantity delta to the item.
//
// On success the item's quantity is updated in place and a staged
// StockTransaction is returned - timestamped at the moment of application,
// not yet persisted. On failure the item is untouched and the error is a
// *InsufficientStockError identifying the shortfall.
//
// ApplyChange never commits; the caller controls the transaction boundary.
func (l *StockLedger) ApplyChange(item *Item, delta int, reason string, at time.Time) (StockTransaction, error) {
	if item.Quantity+delta < 0 {
		return StockTransaction{}, &InsufficientStockError{
			ItemID:    item.ID,
			Available: item.Quantity,
			Requested: -delta,
		}
	}

	item.Quantity += delta
	return StockTransaction{
		ItemID:         item.ID,
		ChangeQuantity: delta,
		Timestamp:      at,
		Reason:         reason,
	}, nil
}
