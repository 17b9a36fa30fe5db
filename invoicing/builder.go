/*
builder.go - All-or-nothing invoice construction

PURPOSE:
  Turns a customer's requested purchase (a list of item/quantity pairs) into
  a durable Invoice with consistent totals and ledger entries, as a single
  unit of work. This is the hard core of the system: every other operation
  is a single-record write.

THE CONTRACT:
  1. Non-positive quantities and empty line lists are rejected up front,
     for every call path - no reliance on upstream filtering.
  2. Lines are processed in input order. A missing item or insufficient
     stock on ANY line aborts the whole build: no partial invoice, no
     partial stock mutation, no partial transactions.
  3. Each line freezes the item's price at this moment; the invoice total
     is the decimal sum of price x quantity over all lines.
  4. Header, lines, updated items, and ledger records commit through one
     store session. Any persistence failure rolls everything back.
  5. Line order in the output mirrors input order.

CONCURRENCY:
  A builder-level mutex spans validation through commit for every mutating
  operation. Two concurrent builds against the same item therefore never
  both pass the availability check on stale quantity - the second sees the
  first's committed decrement. See the oversell test in builder_test.go.

DUPLICATE LINES:
  Two lines for the same item share one in-memory copy of it, so the second
  line validates against the quantity left after the first. A request for
  (A,3) + (A,4) needs 7 units of A.

FAILURE REPORTING:
  A failed build is reported once and never retried automatically - the
  operation is not idempotent, and blind retry could double-sell.

SEE ALSO:
  - inventory/ledger.go: The per-item mutation gate the builder drives
  - store.go: The transactional session
*/
package invoicing

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// BUILDER
// =============================================================================

// Builder owns every stock-mutating operation. All of them share one lock so
// that validation and commit form an indivisible window.
type Builder struct {
	store  TxStore
	ledger *inventory.StockLedger

	mu  sync.Mutex
	now func() time.Time // Injectable for tests
}

func NewBuilder(store TxStore) *Builder {
	return &Builder{
		store:  store,
		ledger: inventory.NewStockLedger(),
		now:    time.Now,
	}
}

// =============================================================================
// BUILD INVOICE
// =============================================================================

// BuildInvoice creates an invoice for the requested lines. See the file
// header for the full contract. Returned lines are in input order.
func (b *Builder) BuildInvoice(ctx context.Context, customerID *inventory.CustomerID, reqs []LineRequest) (*Invoice, []InvoiceLine, error) {
	if len(reqs) == 0 {
		return nil, nil, &inventory.ValidationError{Field: "items", Message: "at least one line is required"}
	}
	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, nil, &inventory.ValidationError{Field: "quantity", Message: "must be greater than zero"}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		invoice Invoice
		lines   []InvoiceLine
	)

	err := b.store.WithTx(ctx, func(s Store) error {
		if customerID != nil {
			if _, err := s.GetCustomer(ctx, *customerID); err != nil {
				return err
			}
		}

		// Validate and stage every line before writing anything. Items are
		// loaded once and shared across duplicate lines so quantities
		// accumulate.
		items := make(map[inventory.ItemID]*inventory.Item)
		var touched []*inventory.Item // First-touch order, for deterministic writes
		var staged []inventory.StockTransaction

		now := b.now()
		total := decimal.Zero
		lines = make([]InvoiceLine, 0, len(reqs))

		for _, req := range reqs {
			item, ok := items[req.ItemID]
			if !ok {
				loaded, err := s.GetItem(ctx, req.ItemID)
				if err != nil {
					return err
				}
				item = loaded
				items[req.ItemID] = item
				touched = append(touched, item)
			}

			tx, err := b.ledger.ApplyChange(item, -req.Quantity, inventory.ReasonSale, now)
			if err != nil {
				return err
			}
			staged = append(staged, tx)

			line := InvoiceLine{
				ItemID:    req.ItemID,
				Quantity:  req.Quantity,
				UnitPrice: item.Price, // Frozen at this moment
			}
			total = total.Add(line.Total())
			lines = append(lines, line)
		}

		invoice = Invoice{
			CustomerID: customerID,
			Total:      total,
			Date:       now,
			Status:     StatusPending,
		}
		if err := s.SaveInvoice(ctx, &invoice); err != nil {
			return err
		}

		for i := range lines {
			lines[i].InvoiceID = invoice.ID
			if err := s.SaveInvoiceLine(ctx, &lines[i]); err != nil {
				return err
			}
		}
		for _, item := range touched {
			if err := s.SaveItem(ctx, item); err != nil {
				return err
			}
		}
		for i := range staged {
			if err := s.AppendTransaction(ctx, &staged[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &invoice, lines, nil
}

// =============================================================================
// DIRECT STOCK OPERATIONS
// =============================================================================

// SellItem is the single-item sale path: one decrement, one ledger record,
// no invoice. Returns the remaining quantity.
func (b *Builder) SellItem(ctx context.Context, itemID inventory.ItemID, quantity int) (int, error) {
	return b.applyDirect(ctx, itemID, -quantity, inventory.ReasonSale, quantity)
}

// Restock increases an item's stock. Returns the new quantity.
func (b *Builder) Restock(ctx context.Context, itemID inventory.ItemID, quantity int) (int, error) {
	return b.applyDirect(ctx, itemID, quantity, inventory.ReasonRestock, quantity)
}

func (b *Builder) applyDirect(ctx context.Context, itemID inventory.ItemID, delta int, reason string, requested int) (int, error) {
	if requested <= 0 {
		return 0, &inventory.ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var remaining int
	err := b.store.WithTx(ctx, func(s Store) error {
		item, err := s.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		tx, err := b.ledger.ApplyChange(item, delta, reason, b.now())
		if err != nil {
			return err
		}
		if err := s.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := s.AppendTransaction(ctx, &tx); err != nil {
			return err
		}
		remaining = item.Quantity
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// UpdateItem persists field changes to an item. If the update changes the
// quantity, the delta is routed through the ledger as an adjustment record
// in the same session, so the audit invariant survives direct edits.
func (b *Builder) UpdateItem(ctx context.Context, updated *inventory.Item) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.WithTx(ctx, func(s Store) error {
		current, err := s.GetItem(ctx, updated.ID)
		if err != nil {
			return err
		}
		if delta := updated.Quantity - current.Quantity; delta != 0 {
			updated.Quantity = current.Quantity
			tx, err := b.ledger.ApplyChange(updated, delta, inventory.ReasonAdjustment, b.now())
			if err != nil {
				return err
			}
			if err := s.AppendTransaction(ctx, &tx); err != nil {
				return err
			}
		}
		return s.SaveItem(ctx, updated)
	})
}
