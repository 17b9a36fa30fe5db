/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements inventory.Store and invoicing.TxStore using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  items:         Stocked products with quantity, price, reorder threshold
  suppliers:     Reference data, linked from items
  customers:     Reference data, linked from invoices
  transactions:  Immutable ledger of all stock changes
  invoices:      Invoice headers with computed totals
  invoice_lines: Per-item purchases with the price frozen at invoice time

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements touch the transactions table. Corrections
  are new adjustment records.

MONEY:
  Prices and totals are stored as decimal strings (TEXT), never as REAL.
  decimal.Decimal round-trips exactly through its String form.

TRANSACTIONS:
  WithTx wraps a callback in one BEGIN/COMMIT. The session handed to the
  callback routes EVERY operation - reads included - through the open
  *sql.Tx, so the callback observes its own uncommitted writes and never
  touches the store lock (which WithTx already holds).

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - inventory/store.go: Base interface definitions
  - invoicing/store.go: Invoice extensions and the TxStore session
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/invoicing"
)

// querier is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx. All statement helpers take one, so the same code serves direct
// calls and transactional sessions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite allows a single writer anyway, and a pooled
	// ":memory:" database is per-connection - a second one would be empty.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Suppliers (reference data)
	CREATE TABLE IF NOT EXISTS suppliers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		contact_info TEXT NOT NULL DEFAULT ''
	);

	-- Customers (reference data)
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		contact_info TEXT NOT NULL DEFAULT ''
	);

	-- Items
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		price TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		min_stock INTEGER NOT NULL DEFAULT 1,
		expiration TEXT,
		supplier_id INTEGER REFERENCES suppliers(id) ON DELETE SET NULL,
		barcode TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
	CREATE INDEX IF NOT EXISTS idx_items_supplier ON items(supplier_id);
	CREATE INDEX IF NOT EXISTS idx_items_expiration
		ON items(expiration) WHERE expiration IS NOT NULL;

	-- Stock transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL REFERENCES items(id),
		change_quantity INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id);

	-- Invoices
	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER REFERENCES customers(id) ON DELETE SET NULL,
		total TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(date);

	-- Invoice lines (price frozen at invoice time)
	CREATE TABLE IF NOT EXISTS invoice_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL REFERENCES invoices(id),
		item_id INTEGER NOT NULL REFERENCES items(id),
		quantity INTEGER NOT NULL,
		unit_price TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lines_invoice ON invoice_lines(invoice_id);
	CREATE INDEX IF NOT EXISTS idx_lines_item ON invoice_lines(item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ITEMS (inventory.Store interface)
// =============================================================================

func (s *Store) GetItem(ctx context.Context, id inventory.ItemID) (*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getItem(ctx, s.db, id)
}

func (s *Store) getItem(ctx context.Context, q querier, id inventory.ItemID) (*inventory.Item, error) {
	items, err := s.queryItems(ctx, q, selectItems+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &inventory.NotFoundError{Kind: "item", ID: int64(id)}
	}
	return &items[0], nil
}

func (s *Store) GetItemsByIDs(ctx context.Context, ids []inventory.ItemID) (map[inventory.ItemID]*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getItemsByIDs(ctx, s.db, ids)
}

func (s *Store) getItemsByIDs(ctx context.Context, q querier, ids []inventory.ItemID) (map[inventory.ItemID]*inventory.Item, error) {
	if len(ids) == 0 {
		return map[inventory.ItemID]*inventory.Item{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	items, err := s.queryItems(ctx, q, selectItems+" WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}

	result := make(map[inventory.ItemID]*inventory.Item, len(items))
	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

func (s *Store) ListItems(ctx context.Context, category string) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listItems(ctx, s.db, category)
}

func (s *Store) listItems(ctx context.Context, q querier, category string) ([]inventory.Item, error) {
	if category != "" {
		return s.queryItems(ctx, q, selectItems+" WHERE category = ? ORDER BY id", category)
	}
	return s.queryItems(ctx, q, selectItems+" ORDER BY id")
}

func (s *Store) ListLowStock(ctx context.Context) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLowStock(ctx, s.db)
}

func (s *Store) listLowStock(ctx context.Context, q querier) ([]inventory.Item, error) {
	return s.queryItems(ctx, q, selectItems+" WHERE quantity <= min_stock ORDER BY id")
}

func (s *Store) ListExpiringSoon(ctx context.Context, within int) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listExpiringSoon(ctx, s.db, within)
}

func (s *Store) listExpiringSoon(ctx context.Context, q querier, within int) ([]inventory.Item, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, within).Format(time.RFC3339)
	return s.queryItems(ctx, q,
		selectItems+" WHERE expiration IS NOT NULL AND expiration <= ? ORDER BY expiration",
		cutoff)
}

func (s *Store) SaveItem(ctx context.Context, item *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveItem(ctx, s.db, item)
}

func (s *Store) saveItem(ctx context.Context, q querier, item *inventory.Item) error {
	var expiration *string
	if item.Expiration != nil {
		t := item.Expiration.UTC().Format(time.RFC3339)
		expiration = &t
	}

	if item.ID == 0 {
		res, err := q.ExecContext(ctx, `
			INSERT INTO items (name, description, quantity, price, category, min_stock, expiration, supplier_id, barcode)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.Name, item.Description, item.Quantity, item.Price.String(),
			item.Category, item.MinStock, expiration, item.SupplierID, item.Barcode,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = inventory.ItemID(id)
		return nil
	}

	res, err := q.ExecContext(ctx, `
		UPDATE items SET name = ?, description = ?, quantity = ?, price = ?,
			category = ?, min_stock = ?, expiration = ?, supplier_id = ?, barcode = ?
		WHERE id = ?`,
		item.Name, item.Description, item.Quantity, item.Price.String(),
		item.Category, item.MinStock, expiration, item.SupplierID, item.Barcode,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireRow(res, "item", int64(item.ID))
}

func (s *Store) DeleteItem(ctx context.Context, id inventory.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteItem(ctx, s.db, id)
}

func (s *Store) deleteItem(ctx context.Context, q querier, id inventory.ItemID) error {
	// Items referenced by history must stay; the ledger and invoice lines
	// would dangle otherwise.
	var refs int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM invoice_lines WHERE item_id = ?)
		     + (SELECT COUNT(*) FROM transactions WHERE item_id = ?)`,
		id, id,
	).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return inventory.ErrItemReferenced
	}

	res, err := q.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "item", int64(id))
}

const selectItems = `
	SELECT id, name, description, quantity, price, category, min_stock, expiration, supplier_id, barcode
	FROM items`

func (s *Store) queryItems(ctx context.Context, q querier, query string, args ...any) ([]inventory.Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []inventory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(rows *sql.Rows) (inventory.Item, error) {
	var (
		item       inventory.Item
		price      string
		expiration sql.NullString
		supplierID sql.NullInt64
	)

	err := rows.Scan(
		&item.ID, &item.Name, &item.Description, &item.Quantity,
		&price, &item.Category, &item.MinStock, &expiration, &supplierID, &item.Barcode,
	)
	if err != nil {
		return item, fmt.Errorf("failed to scan item: %w", err)
	}

	item.Price = inventory.MustParseDecimal(price)
	if expiration.Valid {
		t, _ := time.Parse(time.RFC3339, expiration.String)
		item.Expiration = &t
	}
	if supplierID.Valid {
		sid := inventory.SupplierID(supplierID.Int64)
		item.SupplierID = &sid
	}
	return item, nil
}

// =============================================================================
// SUPPLIERS
// =============================================================================

func (s *Store) GetSupplier(ctx context.Context, id inventory.SupplierID) (*inventory.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSupplier(ctx, s.db, id)
}

func (s *Store) getSupplier(ctx context.Context, q querier, id inventory.SupplierID) (*inventory.Supplier, error) {
	var sup inventory.Supplier
	err := q.QueryRowContext(ctx,
		"SELECT id, name, contact_info FROM suppliers WHERE id = ?", id,
	).Scan(&sup.ID, &sup.Name, &sup.ContactInfo)

	if err == sql.ErrNoRows {
		return nil, &inventory.NotFoundError{Kind: "supplier", ID: int64(id)}
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]inventory.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSuppliers(ctx, s.db)
}

func (s *Store) listSuppliers(ctx context.Context, q querier) ([]inventory.Supplier, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, name, contact_info FROM suppliers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []inventory.Supplier
	for rows.Next() {
		var sup inventory.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.ContactInfo); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *Store) SaveSupplier(ctx context.Context, sup *inventory.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSupplier(ctx, s.db, sup)
}

func (s *Store) saveSupplier(ctx context.Context, q querier, sup *inventory.Supplier) error {
	if sup.ID == 0 {
		res, err := q.ExecContext(ctx,
			"INSERT INTO suppliers (name, contact_info) VALUES (?, ?)",
			sup.Name, sup.ContactInfo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert supplier: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		sup.ID = inventory.SupplierID(id)
		return nil
	}

	res, err := q.ExecContext(ctx,
		"UPDATE suppliers SET name = ?, contact_info = ? WHERE id = ?",
		sup.Name, sup.ContactInfo, sup.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", err)
	}
	return requireRow(res, "supplier", int64(sup.ID))
}

func (s *Store) DeleteSupplier(ctx context.Context, id inventory.SupplierID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteSupplier(ctx, s.db, id)
}

func (s *Store) deleteSupplier(ctx context.Context, q querier, id inventory.SupplierID) error {
	// ON DELETE SET NULL unlinks items.
	res, err := q.ExecContext(ctx, "DELETE FROM suppliers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "supplier", int64(id))
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Store) GetCustomer(ctx context.Context, id inventory.CustomerID) (*inventory.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCustomer(ctx, s.db, id)
}

func (s *Store) getCustomer(ctx context.Context, q querier, id inventory.CustomerID) (*inventory.Customer, error) {
	var c inventory.Customer
	err := q.QueryRowContext(ctx,
		"SELECT id, name, phone, address, contact_info FROM customers WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.ContactInfo)

	if err == sql.ErrNoRows {
		return nil, &inventory.NotFoundError{Kind: "customer", ID: int64(id)}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]inventory.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCustomers(ctx, s.db)
}

func (s *Store) listCustomers(ctx context.Context, q querier) ([]inventory.Customer, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, name, phone, address, contact_info FROM customers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []inventory.Customer
	for rows.Next() {
		var c inventory.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.ContactInfo); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) SaveCustomer(ctx context.Context, c *inventory.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCustomer(ctx, s.db, c)
}

func (s *Store) saveCustomer(ctx context.Context, q querier, c *inventory.Customer) error {
	if c.ID == 0 {
		res, err := q.ExecContext(ctx,
			"INSERT INTO customers (name, phone, address, contact_info) VALUES (?, ?, ?, ?)",
			c.Name, c.Phone, c.Address, c.ContactInfo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c.ID = inventory.CustomerID(id)
		return nil
	}

	res, err := q.ExecContext(ctx,
		"UPDATE customers SET name = ?, phone = ?, address = ?, contact_info = ? WHERE id = ?",
		c.Name, c.Phone, c.Address, c.ContactInfo, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return requireRow(res, "customer", int64(c.ID))
}

func (s *Store) DeleteCustomer(ctx context.Context, id inventory.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteCustomer(ctx, s.db, id)
}

func (s *Store) deleteCustomer(ctx context.Context, q querier, id inventory.CustomerID) error {
	// ON DELETE SET NULL keeps invoices; they just lose the customer link.
	res, err := q.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "customer", int64(id))
}

// =============================================================================
// TRANSACTION LOG (append-only)
// =============================================================================

func (s *Store) AppendTransaction(ctx context.Context, tx *inventory.StockTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendTransaction(ctx, s.db, tx)
}

func (s *Store) appendTransaction(ctx context.Context, q querier, tx *inventory.StockTransaction) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO transactions (item_id, change_quantity, timestamp, reason)
		VALUES (?, ?, ?, ?)`,
		tx.ItemID, tx.ChangeQuantity, tx.Timestamp.UTC().Format(time.RFC3339), tx.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = inventory.TransactionID(id)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, itemID inventory.ItemID) ([]inventory.StockTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTransactions(ctx, s.db, itemID)
}

func (s *Store) listTransactions(ctx context.Context, q querier, itemID inventory.ItemID) ([]inventory.StockTransaction, error) {
	query := `
		SELECT id, item_id, change_quantity, timestamp, reason
		FROM transactions`
	var args []any
	if itemID != 0 {
		query += " WHERE item_id = ?"
		args = append(args, itemID)
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []inventory.StockTransaction
	for rows.Next() {
		var (
			tx        inventory.StockTransaction
			timestamp string
		)
		if err := rows.Scan(&tx.ID, &tx.ItemID, &tx.ChangeQuantity, &timestamp, &tx.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// =============================================================================
// INVOICES (invoicing.Store interface)
// =============================================================================

func (s *Store) SaveInvoice(ctx context.Context, inv *invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInvoice(ctx, s.db, inv)
}

func (s *Store) saveInvoice(ctx context.Context, q querier, inv *invoicing.Invoice) error {
	if inv.ID == 0 {
		res, err := q.ExecContext(ctx,
			"INSERT INTO invoices (customer_id, total, date, status) VALUES (?, ?, ?, ?)",
			inv.CustomerID, inv.Total.String(), inv.Date.UTC().Format(time.RFC3339), inv.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		inv.ID = invoicing.InvoiceID(id)
		return nil
	}

	res, err := q.ExecContext(ctx,
		"UPDATE invoices SET customer_id = ?, total = ?, date = ?, status = ? WHERE id = ?",
		inv.CustomerID, inv.Total.String(), inv.Date.UTC().Format(time.RFC3339), inv.Status, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return requireRow(res, "invoice", int64(inv.ID))
}

func (s *Store) SaveInvoiceLine(ctx context.Context, line *invoicing.InvoiceLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInvoiceLine(ctx, s.db, line)
}

func (s *Store) saveInvoiceLine(ctx context.Context, q querier, line *invoicing.InvoiceLine) error {
	res, err := q.ExecContext(ctx,
		"INSERT INTO invoice_lines (invoice_id, item_id, quantity, unit_price) VALUES (?, ?, ?, ?)",
		line.InvoiceID, line.ItemID, line.Quantity, line.UnitPrice.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	line.ID = id
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id invoicing.InvoiceID) (*invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getInvoice(ctx, s.db, id)
}

func (s *Store) getInvoice(ctx context.Context, q querier, id invoicing.InvoiceID) (*invoicing.Invoice, error) {
	invoices, err := s.queryInvoices(ctx, q, selectInvoices+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, &inventory.NotFoundError{Kind: "invoice", ID: int64(id)}
	}
	return &invoices[0], nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listInvoices(ctx, s.db)
}

func (s *Store) listInvoices(ctx context.Context, q querier) ([]invoicing.Invoice, error) {
	return s.queryInvoices(ctx, q, selectInvoices+" ORDER BY id")
}

const selectInvoices = `
	SELECT id, customer_id, total, date, status
	FROM invoices`

func (s *Store) queryInvoices(ctx context.Context, q querier, query string, args ...any) ([]invoicing.Invoice, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []invoicing.Invoice
	for rows.Next() {
		var (
			inv        invoicing.Invoice
			customerID sql.NullInt64
			total      string
			date       string
		)
		if err := rows.Scan(&inv.ID, &customerID, &total, &date, &inv.Status); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		if customerID.Valid {
			cid := inventory.CustomerID(customerID.Int64)
			inv.CustomerID = &cid
		}
		inv.Total = inventory.MustParseDecimal(total)
		inv.Date, _ = time.Parse(time.RFC3339, date)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *Store) LinesByInvoice(ctx context.Context, id invoicing.InvoiceID) ([]invoicing.InvoiceLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linesByInvoice(ctx, s.db, id)
}

func (s *Store) linesByInvoice(ctx context.Context, q querier, id invoicing.InvoiceID) ([]invoicing.InvoiceLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, invoice_id, item_id, quantity, unit_price
		FROM invoice_lines
		WHERE invoice_id = ?
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []invoicing.InvoiceLine
	for rows.Next() {
		var (
			line      invoicing.InvoiceLine
			unitPrice string
		)
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ItemID, &line.Quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		line.UnitPrice = inventory.MustParseDecimal(unitPrice)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) SetInvoiceStatus(ctx context.Context, id invoicing.InvoiceID, status invoicing.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setInvoiceStatus(ctx, s.db, id, status)
}

func (s *Store) setInvoiceStatus(ctx context.Context, q querier, id invoicing.InvoiceID, status invoicing.Status) error {
	res, err := q.ExecContext(ctx, "UPDATE invoices SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return requireRow(res, "invoice", int64(id))
}

// =============================================================================
// TRANSACTIONAL STORE (invoicing.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The session's
// methods all go through the open *sql.Tx and must not touch s.mu, which is
// held here for the whole session.
func (s *Store) WithTx(ctx context.Context, fn func(store invoicing.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txStore{tx: sqlTx, parent: s}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) GetItem(ctx context.Context, id inventory.ItemID) (*inventory.Item, error) {
	return ts.parent.getItem(ctx, ts.tx, id)
}

func (ts *txStore) GetItemsByIDs(ctx context.Context, ids []inventory.ItemID) (map[inventory.ItemID]*inventory.Item, error) {
	return ts.parent.getItemsByIDs(ctx, ts.tx, ids)
}

func (ts *txStore) ListItems(ctx context.Context, category string) ([]inventory.Item, error) {
	return ts.parent.listItems(ctx, ts.tx, category)
}

func (ts *txStore) ListLowStock(ctx context.Context) ([]inventory.Item, error) {
	return ts.parent.listLowStock(ctx, ts.tx)
}

func (ts *txStore) ListExpiringSoon(ctx context.Context, within int) ([]inventory.Item, error) {
	return ts.parent.listExpiringSoon(ctx, ts.tx, within)
}

func (ts *txStore) SaveItem(ctx context.Context, item *inventory.Item) error {
	return ts.parent.saveItem(ctx, ts.tx, item)
}

func (ts *txStore) DeleteItem(ctx context.Context, id inventory.ItemID) error {
	return ts.parent.deleteItem(ctx, ts.tx, id)
}

func (ts *txStore) GetSupplier(ctx context.Context, id inventory.SupplierID) (*inventory.Supplier, error) {
	return ts.parent.getSupplier(ctx, ts.tx, id)
}

func (ts *txStore) ListSuppliers(ctx context.Context) ([]inventory.Supplier, error) {
	return ts.parent.listSuppliers(ctx, ts.tx)
}

func (ts *txStore) SaveSupplier(ctx context.Context, sup *inventory.Supplier) error {
	return ts.parent.saveSupplier(ctx, ts.tx, sup)
}

func (ts *txStore) DeleteSupplier(ctx context.Context, id inventory.SupplierID) error {
	return ts.parent.deleteSupplier(ctx, ts.tx, id)
}

func (ts *txStore) GetCustomer(ctx context.Context, id inventory.CustomerID) (*inventory.Customer, error) {
	return ts.parent.getCustomer(ctx, ts.tx, id)
}

func (ts *txStore) ListCustomers(ctx context.Context) ([]inventory.Customer, error) {
	return ts.parent.listCustomers(ctx, ts.tx)
}

func (ts *txStore) SaveCustomer(ctx context.Context, c *inventory.Customer) error {
	return ts.parent.saveCustomer(ctx, ts.tx, c)
}

func (ts *txStore) DeleteCustomer(ctx context.Context, id inventory.CustomerID) error {
	return ts.parent.deleteCustomer(ctx, ts.tx, id)
}

func (ts *txStore) AppendTransaction(ctx context.Context, tx *inventory.StockTransaction) error {
	return ts.parent.appendTransaction(ctx, ts.tx, tx)
}

func (ts *txStore) ListTransactions(ctx context.Context, itemID inventory.ItemID) ([]inventory.StockTransaction, error) {
	return ts.parent.listTransactions(ctx, ts.tx, itemID)
}

func (ts *txStore) SaveInvoice(ctx context.Context, inv *invoicing.Invoice) error {
	return ts.parent.saveInvoice(ctx, ts.tx, inv)
}

func (ts *txStore) SaveInvoiceLine(ctx context.Context, line *invoicing.InvoiceLine) error {
	return ts.parent.saveInvoiceLine(ctx, ts.tx, line)
}

func (ts *txStore) GetInvoice(ctx context.Context, id invoicing.InvoiceID) (*invoicing.Invoice, error) {
	return ts.parent.getInvoice(ctx, ts.tx, id)
}

func (ts *txStore) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	return ts.parent.listInvoices(ctx, ts.tx)
}

func (ts *txStore) LinesByInvoice(ctx context.Context, id invoicing.InvoiceID) ([]invoicing.InvoiceLine, error) {
	return ts.parent.linesByInvoice(ctx, ts.tx, id)
}

func (ts *txStore) SetInvoiceStatus(ctx context.Context, id invoicing.InvoiceID, status invoicing.Status) error {
	return ts.parent.setInvoiceStatus(ctx, ts.tx, id, status)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"invoice_lines", "invoices", "transactions", "items", "customers", "suppliers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &inventory.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// Interface checks.
var (
	_ invoicing.Store   = (*Store)(nil)
	_ invoicing.Store   = (*txStore)(nil)
	_ invoicing.TxStore = (*Store)(nil)
)
