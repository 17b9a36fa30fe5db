/*
store.go - Persistence gateway for inventory entities

PURPOSE:
  Defines the interface between the domain logic and the database. The core
  never touches a storage handle directly; all reads and writes go through a
  Store, and units of work that must commit together go through a session
  obtained from TxStore (see invoicing/store.go).

LOOKUP CONTRACT:
  Get* methods return a typed *NotFoundError when the entity is absent.
  Callers match with errors.Is(err, ErrItemNotFound) etc.

APPEND-ONLY TRANSACTIONS:
  The transaction log has AppendTransaction and ListTransactions - no update,
  no delete. Corrections are new adjustment records.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for testing

SEE ALSO:
  - invoicing/store.go: Extends this with invoice persistence and WithTx
  - ledger.go: Produces the StockTransactions persisted here
*/
package inventory

import "context"

// =============================================================================
// STORE - Persistence gateway interface
// =============================================================================

type Store interface {
	// Items. SaveItem inserts (assigning ID) when item.ID == 0, updates
	// otherwise. DeleteItem fails with ErrItemReferenced while invoice lines
	// or ledger transactions reference the item.
	GetItem(ctx context.Context, id ItemID) (*Item, error)
	GetItemsByIDs(ctx context.Context, ids []ItemID) (map[ItemID]*Item, error)
	ListItems(ctx context.Context, category string) ([]Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	ListExpiringSoon(ctx context.Context, within int) ([]Item, error)
	SaveItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id ItemID) error

	// Suppliers.
	GetSupplier(ctx context.Context, id SupplierID) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	SaveSupplier(ctx context.Context, s *Supplier) error
	DeleteSupplier(ctx context.Context, id SupplierID) error

	// Customers.
	GetCustomer(ctx context.Context, id CustomerID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	SaveCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id CustomerID) error

	// Transaction log (append-only). itemID == 0 lists all items.
	AppendTransaction(ctx context.Context, tx *StockTransaction) error
	ListTransactions(ctx context.Context, itemID ItemID) ([]StockTransaction, error)
}
