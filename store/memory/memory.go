/*
memory.go - In-memory store (for testing/dev)

PURPOSE:
  A complete invoicing.TxStore backed by maps. Used by domain tests that
  don't want a database, and as the reference semantics the SQLite store
  must match.

TRANSACTION MODEL:
  WithTx snapshots the whole state up front and restores it if the callback
  errors. Writes inside the session go straight to the live maps, so reads
  through the session observe them; rollback is the snapshot swap.

COPY DISCIPLINE:
  Get/List methods return copies. Callers mutate their copy and Save it
  back; nothing outside the store aliases store-owned memory.
*/
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/invoicing"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	items        map[inventory.ItemID]inventory.Item
	suppliers    map[inventory.SupplierID]inventory.Supplier
	customers    map[inventory.CustomerID]inventory.Customer
	transactions []inventory.StockTransaction
	invoices     map[invoicing.InvoiceID]invoicing.Invoice
	lines        []invoicing.InvoiceLine

	nextItem     inventory.ItemID
	nextSupplier inventory.SupplierID
	nextCustomer inventory.CustomerID
	nextTx       inventory.TransactionID
	nextInvoice  invoicing.InvoiceID
	nextLine     int64
}

func New() *Memory {
	return &Memory{
		items:     make(map[inventory.ItemID]inventory.Item),
		suppliers: make(map[inventory.SupplierID]inventory.Supplier),
		customers: make(map[inventory.CustomerID]inventory.Customer),
		invoices:  make(map[invoicing.InvoiceID]invoicing.Invoice),
	}
}

// =============================================================================
// ITEMS
// =============================================================================

func (m *Memory) GetItem(_ context.Context, id inventory.ItemID) (*inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getItemLocked(id)
}

func (m *Memory) getItemLocked(id inventory.ItemID) (*inventory.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, &inventory.NotFoundError{Kind: "item", ID: int64(id)}
	}
	return &item, nil
}

func (m *Memory) GetItemsByIDs(_ context.Context, ids []inventory.ItemID) (map[inventory.ItemID]*inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getItemsByIDsLocked(ids)
}

func (m *Memory) getItemsByIDsLocked(ids []inventory.ItemID) (map[inventory.ItemID]*inventory.Item, error) {
	result := make(map[inventory.ItemID]*inventory.Item, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			copied := item
			result[id] = &copied
		}
	}
	return result, nil
}

func (m *Memory) ListItems(_ context.Context, category string) ([]inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listItemsLocked(func(item inventory.Item) bool {
		return category == "" || item.Category == category
	}), nil
}

func (m *Memory) ListLowStock(_ context.Context) ([]inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listItemsLocked(inventory.Item.LowStock), nil
}

func (m *Memory) ListExpiringSoon(_ context.Context, within int) ([]inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := time.Now().AddDate(0, 0, within)
	return m.listItemsLocked(func(item inventory.Item) bool {
		return item.Expiration != nil && !item.Expiration.After(cutoff)
	}), nil
}

func (m *Memory) listItemsLocked(keep func(inventory.Item) bool) []inventory.Item {
	var result []inventory.Item
	for _, item := range m.items {
		if keep(item) {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *Memory) SaveItem(_ context.Context, item *inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveItemLocked(item)
}

func (m *Memory) saveItemLocked(item *inventory.Item) error {
	if item.ID == 0 {
		m.nextItem++
		item.ID = m.nextItem
	} else if _, ok := m.items[item.ID]; !ok {
		return &inventory.NotFoundError{Kind: "item", ID: int64(item.ID)}
	}
	m.items[item.ID] = *item
	return nil
}

func (m *Memory) DeleteItem(_ context.Context, id inventory.ItemID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteItemLocked(id)
}

func (m *Memory) deleteItemLocked(id inventory.ItemID) error {
	if _, ok := m.items[id]; !ok {
		return &inventory.NotFoundError{Kind: "item", ID: int64(id)}
	}
	for _, line := range m.lines {
		if line.ItemID == id {
			return inventory.ErrItemReferenced
		}
	}
	for _, tx := range m.transactions {
		if tx.ItemID == id {
			return inventory.ErrItemReferenced
		}
	}
	delete(m.items, id)
	return nil
}

// =============================================================================
// SUPPLIERS
// =============================================================================

func (m *Memory) GetSupplier(_ context.Context, id inventory.SupplierID) (*inventory.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getSupplierLocked(id)
}

func (m *Memory) getSupplierLocked(id inventory.SupplierID) (*inventory.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, &inventory.NotFoundError{Kind: "supplier", ID: int64(id)}
	}
	return &s, nil
}

func (m *Memory) ListSuppliers(_ context.Context) ([]inventory.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]inventory.Supplier, 0, len(m.suppliers))
	for _, s := range m.suppliers {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveSupplier(_ context.Context, s *inventory.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveSupplierLocked(s)
}

func (m *Memory) saveSupplierLocked(s *inventory.Supplier) error {
	if s.ID == 0 {
		m.nextSupplier++
		s.ID = m.nextSupplier
	} else if _, ok := m.suppliers[s.ID]; !ok {
		return &inventory.NotFoundError{Kind: "supplier", ID: int64(s.ID)}
	}
	m.suppliers[s.ID] = *s
	return nil
}

func (m *Memory) DeleteSupplier(_ context.Context, id inventory.SupplierID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteSupplierLocked(id)
}

func (m *Memory) deleteSupplierLocked(id inventory.SupplierID) error {
	if _, ok := m.suppliers[id]; !ok {
		return &inventory.NotFoundError{Kind: "supplier", ID: int64(id)}
	}
	// Items keep existing; they just lose the supplier link.
	for itemID, item := range m.items {
		if item.SupplierID != nil && *item.SupplierID == id {
			item.SupplierID = nil
			m.items[itemID] = item
		}
	}
	delete(m.suppliers, id)
	return nil
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (m *Memory) GetCustomer(_ context.Context, id inventory.CustomerID) (*inventory.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCustomerLocked(id)
}

func (m *Memory) getCustomerLocked(id inventory.CustomerID) (*inventory.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, &inventory.NotFoundError{Kind: "customer", ID: int64(id)}
	}
	return &c, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]inventory.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]inventory.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveCustomer(_ context.Context, c *inventory.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCustomerLocked(c)
}

func (m *Memory) saveCustomerLocked(c *inventory.Customer) error {
	if c.ID == 0 {
		m.nextCustomer++
		c.ID = m.nextCustomer
	} else if _, ok := m.customers[c.ID]; !ok {
		return &inventory.NotFoundError{Kind: "customer", ID: int64(c.ID)}
	}
	m.customers[c.ID] = *c
	return nil
}

func (m *Memory) DeleteCustomer(_ context.Context, id inventory.CustomerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCustomerLocked(id)
}

func (m *Memory) deleteCustomerLocked(id inventory.CustomerID) error {
	if _, ok := m.customers[id]; !ok {
		return &inventory.NotFoundError{Kind: "customer", ID: int64(id)}
	}
	// Invoices survive the customer; the link goes away.
	for invID, inv := range m.invoices {
		if inv.CustomerID != nil && *inv.CustomerID == id {
			inv.CustomerID = nil
			m.invoices[invID] = inv
		}
	}
	delete(m.customers, id)
	return nil
}

// =============================================================================
// TRANSACTION LOG
// =============================================================================

func (m *Memory) AppendTransaction(_ context.Context, tx *inventory.StockTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendTransactionLocked(tx)
}

func (m *Memory) appendTransactionLocked(tx *inventory.StockTransaction) error {
	m.nextTx++
	tx.ID = m.nextTx
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *Memory) ListTransactions(_ context.Context, itemID inventory.ItemID) ([]inventory.StockTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []inventory.StockTransaction
	for _, tx := range m.transactions {
		if itemID == 0 || tx.ItemID == itemID {
			result = append(result, tx)
		}
	}
	return result, nil
}

// =============================================================================
// INVOICES
// =============================================================================

func (m *Memory) SaveInvoice(_ context.Context, inv *invoicing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveInvoiceLocked(inv)
}

func (m *Memory) saveInvoiceLocked(inv *invoicing.Invoice) error {
	if inv.ID == 0 {
		m.nextInvoice++
		inv.ID = m.nextInvoice
	} else if _, ok := m.invoices[inv.ID]; !ok {
		return &inventory.NotFoundError{Kind: "invoice", ID: int64(inv.ID)}
	}
	m.invoices[inv.ID] = *inv
	return nil
}

func (m *Memory) SaveInvoiceLine(_ context.Context, line *invoicing.InvoiceLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveInvoiceLineLocked(line)
}

func (m *Memory) saveInvoiceLineLocked(line *invoicing.InvoiceLine) error {
	m.nextLine++
	line.ID = m.nextLine
	m.lines = append(m.lines, *line)
	return nil
}

func (m *Memory) GetInvoice(_ context.Context, id invoicing.InvoiceID) (*invoicing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getInvoiceLocked(id)
}

func (m *Memory) getInvoiceLocked(id invoicing.InvoiceID) (*invoicing.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, &inventory.NotFoundError{Kind: "invoice", ID: int64(id)}
	}
	return &inv, nil
}

func (m *Memory) ListInvoices(_ context.Context) ([]invoicing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]invoicing.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		result = append(result, inv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) LinesByInvoice(_ context.Context, id invoicing.InvoiceID) ([]invoicing.InvoiceLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.linesByInvoiceLocked(id), nil
}

func (m *Memory) linesByInvoiceLocked(id invoicing.InvoiceID) []invoicing.InvoiceLine {
	var result []invoicing.InvoiceLine
	for _, line := range m.lines {
		if line.InvoiceID == id {
			result = append(result, line)
		}
	}
	return result
}

func (m *Memory) SetInvoiceStatus(_ context.Context, id invoicing.InvoiceID, status invoicing.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setInvoiceStatusLocked(id, status)
}

func (m *Memory) setInvoiceStatusLocked(id invoicing.InvoiceID, status invoicing.Status) error {
	inv, ok := m.invoices[id]
	if !ok {
		return &inventory.NotFoundError{Kind: "invoice", ID: int64(id)}
	}
	inv.Status = status
	m.invoices[id] = inv
	return nil
}

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[inventory.ItemID]inventory.Item)
	m.suppliers = make(map[inventory.SupplierID]inventory.Supplier)
	m.customers = make(map[inventory.CustomerID]inventory.Customer)
	m.transactions = nil
	m.invoices = make(map[invoicing.InvoiceID]invoicing.Invoice)
	m.lines = nil
	m.nextItem, m.nextSupplier, m.nextCustomer = 0, 0, 0
	m.nextTx, m.nextInvoice, m.nextLine = 0, 0, 0
	return nil
}

// =============================================================================
// TRANSACTION SUPPORT - Snapshot + rollback
// =============================================================================

// WithTx executes fn within a transaction.
// For the memory store, this is simulated with a snapshot + rollback on
// error. The store lock is held for the whole session, so the session view
// calls the unexported locked helpers directly.
func (m *Memory) WithTx(_ context.Context, fn func(invoicing.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	items        map[inventory.ItemID]inventory.Item
	suppliers    map[inventory.SupplierID]inventory.Supplier
	customers    map[inventory.CustomerID]inventory.Customer
	transactions []inventory.StockTransaction
	invoices     map[invoicing.InvoiceID]invoicing.Invoice
	lines        []invoicing.InvoiceLine

	nextItem     inventory.ItemID
	nextSupplier inventory.SupplierID
	nextCustomer inventory.CustomerID
	nextTx       inventory.TransactionID
	nextInvoice  invoicing.InvoiceID
	nextLine     int64
}

func (m *Memory) snapshot() memorySnapshot {
	snap := memorySnapshot{
		items:        make(map[inventory.ItemID]inventory.Item, len(m.items)),
		suppliers:    make(map[inventory.SupplierID]inventory.Supplier, len(m.suppliers)),
		customers:    make(map[inventory.CustomerID]inventory.Customer, len(m.customers)),
		transactions: append([]inventory.StockTransaction{}, m.transactions...),
		invoices:     make(map[invoicing.InvoiceID]invoicing.Invoice, len(m.invoices)),
		lines:        append([]invoicing.InvoiceLine{}, m.lines...),
		nextItem:     m.nextItem,
		nextSupplier: m.nextSupplier,
		nextCustomer: m.nextCustomer,
		nextTx:       m.nextTx,
		nextInvoice:  m.nextInvoice,
		nextLine:     m.nextLine,
	}
	for k, v := range m.items {
		snap.items[k] = v
	}
	for k, v := range m.suppliers {
		snap.suppliers[k] = v
	}
	for k, v := range m.customers {
		snap.customers[k] = v
	}
	for k, v := range m.invoices {
		snap.invoices[k] = v
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.items = snap.items
	m.suppliers = snap.suppliers
	m.customers = snap.customers
	m.transactions = snap.transactions
	m.invoices = snap.invoices
	m.lines = snap.lines
	m.nextItem = snap.nextItem
	m.nextSupplier = snap.nextSupplier
	m.nextCustomer = snap.nextCustomer
	m.nextTx = snap.nextTx
	m.nextInvoice = snap.nextInvoice
	m.nextLine = snap.nextLine
}

// txView is the session handed to WithTx callbacks. The parent's lock is
// already held, so every method goes straight to the locked helpers.
type txView struct {
	parent *Memory
}

func (tv *txView) GetItem(_ context.Context, id inventory.ItemID) (*inventory.Item, error) {
	return tv.parent.getItemLocked(id)
}

func (tv *txView) GetItemsByIDs(_ context.Context, ids []inventory.ItemID) (map[inventory.ItemID]*inventory.Item, error) {
	return tv.parent.getItemsByIDsLocked(ids)
}

func (tv *txView) ListItems(_ context.Context, category string) ([]inventory.Item, error) {
	return tv.parent.listItemsLocked(func(item inventory.Item) bool {
		return category == "" || item.Category == category
	}), nil
}

func (tv *txView) ListLowStock(_ context.Context) ([]inventory.Item, error) {
	return tv.parent.listItemsLocked(inventory.Item.LowStock), nil
}

func (tv *txView) ListExpiringSoon(_ context.Context, within int) ([]inventory.Item, error) {
	cutoff := time.Now().AddDate(0, 0, within)
	return tv.parent.listItemsLocked(func(item inventory.Item) bool {
		return item.Expiration != nil && !item.Expiration.After(cutoff)
	}), nil
}

func (tv *txView) SaveItem(_ context.Context, item *inventory.Item) error {
	return tv.parent.saveItemLocked(item)
}

func (tv *txView) DeleteItem(_ context.Context, id inventory.ItemID) error {
	return tv.parent.deleteItemLocked(id)
}

func (tv *txView) GetSupplier(_ context.Context, id inventory.SupplierID) (*inventory.Supplier, error) {
	return tv.parent.getSupplierLocked(id)
}

func (tv *txView) ListSuppliers(ctx context.Context) ([]inventory.Supplier, error) {
	result := make([]inventory.Supplier, 0, len(tv.parent.suppliers))
	for _, s := range tv.parent.suppliers {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) SaveSupplier(_ context.Context, s *inventory.Supplier) error {
	return tv.parent.saveSupplierLocked(s)
}

func (tv *txView) DeleteSupplier(_ context.Context, id inventory.SupplierID) error {
	return tv.parent.deleteSupplierLocked(id)
}

func (tv *txView) GetCustomer(_ context.Context, id inventory.CustomerID) (*inventory.Customer, error) {
	return tv.parent.getCustomerLocked(id)
}

func (tv *txView) ListCustomers(ctx context.Context) ([]inventory.Customer, error) {
	result := make([]inventory.Customer, 0, len(tv.parent.customers))
	for _, c := range tv.parent.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) SaveCustomer(_ context.Context, c *inventory.Customer) error {
	return tv.parent.saveCustomerLocked(c)
}

func (tv *txView) DeleteCustomer(_ context.Context, id inventory.CustomerID) error {
	return tv.parent.deleteCustomerLocked(id)
}

func (tv *txView) AppendTransaction(_ context.Context, tx *inventory.StockTransaction) error {
	return tv.parent.appendTransactionLocked(tx)
}

func (tv *txView) ListTransactions(_ context.Context, itemID inventory.ItemID) ([]inventory.StockTransaction, error) {
	var result []inventory.StockTransaction
	for _, tx := range tv.parent.transactions {
		if itemID == 0 || tx.ItemID == itemID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (tv *txView) SaveInvoice(_ context.Context, inv *invoicing.Invoice) error {
	return tv.parent.saveInvoiceLocked(inv)
}

func (tv *txView) SaveInvoiceLine(_ context.Context, line *invoicing.InvoiceLine) error {
	return tv.parent.saveInvoiceLineLocked(line)
}

func (tv *txView) GetInvoice(_ context.Context, id invoicing.InvoiceID) (*invoicing.Invoice, error) {
	return tv.parent.getInvoiceLocked(id)
}

func (tv *txView) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	result := make([]invoicing.Invoice, 0, len(tv.parent.invoices))
	for _, inv := range tv.parent.invoices {
		result = append(result, inv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) LinesByInvoice(_ context.Context, id invoicing.InvoiceID) ([]invoicing.InvoiceLine, error) {
	return tv.parent.linesByInvoiceLocked(id), nil
}

func (tv *txView) SetInvoiceStatus(_ context.Context, id invoicing.InvoiceID, status invoicing.Status) error {
	return tv.parent.setInvoiceStatusLocked(id, status)
}

// Interface checks.
var (
	_ invoicing.Store   = (*Memory)(nil)
	_ invoicing.Store   = (*txView)(nil)
	_ invoicing.TxStore = (*Memory)(nil)
)
