package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/invoicing"
	"github.com/warp/inventory-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveItem(t *testing.T, store *sqlite.Store, item *inventory.Item) {
	t.Helper()
	require.NoError(t, store.SaveItem(context.Background(), item))
	require.NotZero(t, item.ID)
}

// =============================================================================
// ITEMS
// =============================================================================

func TestItem_RoundTrip(t *testing.T) {
	// GIVEN: An item with every field populated, including a supplier link
	// WHEN: Saving and reloading it
	// THEN: All fields survive, the price as an exact decimal

	store := newTestStore(t)
	ctx := context.Background()

	supplier := &inventory.Supplier{Name: "Acme Supplies", ContactInfo: "acme@example.com"}
	require.NoError(t, store.SaveSupplier(ctx, supplier))

	expiration := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	item := &inventory.Item{
		Name:        "Espresso Beans",
		Description: "1kg bag",
		Quantity:    40,
		Price:       inventory.MustParseDecimal("19.99"),
		Category:    "coffee",
		MinStock:    5,
		Expiration:  &expiration,
		SupplierID:  &supplier.ID,
		Barcode:     "0012345678905",
	}
	saveItem(t, store, item)

	loaded, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Espresso Beans", loaded.Name)
	assert.Equal(t, "1kg bag", loaded.Description)
	assert.Equal(t, 40, loaded.Quantity)
	assert.Equal(t, "19.99", loaded.Price.String())
	assert.Equal(t, "coffee", loaded.Category)
	assert.Equal(t, 5, loaded.MinStock)
	require.NotNil(t, loaded.Expiration)
	assert.True(t, loaded.Expiration.Equal(expiration))
	require.NotNil(t, loaded.SupplierID)
	assert.Equal(t, supplier.ID, *loaded.SupplierID)
	assert.Equal(t, "0012345678905", loaded.Barcode)
}

func TestItem_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &inventory.Item{Name: "Soda", Quantity: 10, Price: inventory.MustParseDecimal("1.25"), MinStock: 1}
	saveItem(t, store, item)

	item.Quantity = 7
	item.Price = inventory.MustParseDecimal("1.50")
	require.NoError(t, store.SaveItem(ctx, item))

	loaded, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Quantity)
	assert.Equal(t, "1.50", loaded.Price.String())
}

func TestItem_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetItem(ctx, 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, inventory.ErrItemNotFound))

	var notFound *inventory.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "item", notFound.Kind)
	assert.Equal(t, int64(999), notFound.ID)

	// Updates and deletes of missing rows report the same way
	ghost := &inventory.Item{ID: 999, Name: "Ghost", Price: inventory.MustParseDecimal("1"), MinStock: 1}
	assert.True(t, errors.Is(store.SaveItem(ctx, ghost), inventory.ErrItemNotFound))
	assert.True(t, errors.Is(store.DeleteItem(ctx, 999), inventory.ErrItemNotFound))
}

func TestDeleteItem_BlockedByHistory(t *testing.T) {
	// GIVEN: An item with a ledger record
	// WHEN: Deleting it
	// THEN: The delete is refused; history must not dangle

	store := newTestStore(t)
	ctx := context.Background()

	item := &inventory.Item{Name: "Soda", Quantity: 10, Price: inventory.MustParseDecimal("1.25"), MinStock: 1}
	saveItem(t, store, item)

	tx := &inventory.StockTransaction{
		ItemID:         item.ID,
		ChangeQuantity: -2,
		Timestamp:      time.Now().UTC(),
		Reason:         inventory.ReasonSale,
	}
	require.NoError(t, store.AppendTransaction(ctx, tx))

	err := store.DeleteItem(ctx, item.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, inventory.ErrItemReferenced))

	// Still there
	_, err = store.GetItem(ctx, item.ID)
	assert.NoError(t, err)
}

func TestDeleteItem_Unreferenced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &inventory.Item{Name: "Soda", Quantity: 10, Price: inventory.MustParseDecimal("1.25"), MinStock: 1}
	saveItem(t, store, item)

	require.NoError(t, store.DeleteItem(ctx, item.ID))
	_, err := store.GetItem(ctx, item.ID)
	assert.True(t, errors.Is(err, inventory.ErrItemNotFound))
}

// =============================================================================
// FILTERED LISTINGS
// =============================================================================

func TestListItems_CategoryFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveItem(t, store, &inventory.Item{Name: "Beans", Category: "coffee", Price: inventory.MustParseDecimal("10"), MinStock: 1})
	saveItem(t, store, &inventory.Item{Name: "Green Tea", Category: "tea", Price: inventory.MustParseDecimal("5"), MinStock: 1})
	saveItem(t, store, &inventory.Item{Name: "Filters", Category: "coffee", Price: inventory.MustParseDecimal("2"), MinStock: 1})

	all, err := store.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	coffee, err := store.ListItems(ctx, "coffee")
	require.NoError(t, err)
	require.Len(t, coffee, 2)
	assert.Equal(t, "Beans", coffee[0].Name)
	assert.Equal(t, "Filters", coffee[1].Name)
}

func TestListLowStock(t *testing.T) {
	// At or below the threshold counts as low.
	store := newTestStore(t)
	ctx := context.Background()

	saveItem(t, store, &inventory.Item{Name: "Plenty", Quantity: 50, MinStock: 5, Price: inventory.MustParseDecimal("1")})
	saveItem(t, store, &inventory.Item{Name: "At threshold", Quantity: 5, MinStock: 5, Price: inventory.MustParseDecimal("1")})
	saveItem(t, store, &inventory.Item{Name: "Below", Quantity: 2, MinStock: 5, Price: inventory.MustParseDecimal("1")})

	low, err := store.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "At threshold", low[0].Name)
	assert.Equal(t, "Below", low[1].Name)
}

func TestListExpiringSoon(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	soon := time.Now().UTC().AddDate(0, 0, 3)
	far := time.Now().UTC().AddDate(0, 0, 60)

	saveItem(t, store, &inventory.Item{Name: "Milk", Expiration: &soon, Price: inventory.MustParseDecimal("2"), MinStock: 1})
	saveItem(t, store, &inventory.Item{Name: "Canned Soup", Expiration: &far, Price: inventory.MustParseDecimal("3"), MinStock: 1})
	saveItem(t, store, &inventory.Item{Name: "Salt", Price: inventory.MustParseDecimal("1"), MinStock: 1}) // no expiration

	expiring, err := store.ListExpiringSoon(ctx, 7)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "Milk", expiring[0].Name)
}

func TestGetItemsByIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &inventory.Item{Name: "A", Price: inventory.MustParseDecimal("1"), MinStock: 1}
	b := &inventory.Item{Name: "B", Price: inventory.MustParseDecimal("2"), MinStock: 1}
	saveItem(t, store, a)
	saveItem(t, store, b)

	// Missing ids are silently absent from the map
	found, err := store.GetItemsByIDs(ctx, []inventory.ItemID{a.ID, b.ID, 999})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "A", found[a.ID].Name)
	assert.Equal(t, "B", found[b.ID].Name)

	empty, err := store.GetItemsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// =============================================================================
// SUPPLIERS AND CUSTOMERS
// =============================================================================

func TestDeleteSupplier_UnlinksItems(t *testing.T) {
	// GIVEN: An item linked to a supplier
	// WHEN: The supplier is deleted
	// THEN: The item survives with its supplier link cleared

	store := newTestStore(t)
	ctx := context.Background()

	supplier := &inventory.Supplier{Name: "Acme"}
	require.NoError(t, store.SaveSupplier(ctx, supplier))

	item := &inventory.Item{Name: "Beans", SupplierID: &supplier.ID, Price: inventory.MustParseDecimal("10"), MinStock: 1}
	saveItem(t, store, item)

	require.NoError(t, store.DeleteSupplier(ctx, supplier.ID))

	loaded, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.SupplierID)

	_, err = store.GetSupplier(ctx, supplier.ID)
	assert.True(t, errors.Is(err, inventory.ErrSupplierNotFound))
}

func TestCustomer_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &inventory.Customer{Name: "Jo", Phone: "555-0100", Address: "1 Main St", ContactInfo: "jo@example.com"}
	require.NoError(t, store.SaveCustomer(ctx, c))
	require.NotZero(t, c.ID)

	loaded, err := store.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, *c, *loaded)

	_, err = store.GetCustomer(ctx, 999)
	assert.True(t, errors.Is(err, inventory.ErrCustomerNotFound))
}

func TestDeleteCustomer_UnlinksInvoices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &inventory.Customer{Name: "Jo"}
	require.NoError(t, store.SaveCustomer(ctx, c))

	inv := &invoicing.Invoice{
		CustomerID: &c.ID,
		Total:      inventory.MustParseDecimal("9.50"),
		Date:       time.Now().UTC(),
		Status:     invoicing.StatusPending,
	}
	require.NoError(t, store.SaveInvoice(ctx, inv))

	require.NoError(t, store.DeleteCustomer(ctx, c.ID))

	loaded, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.CustomerID)
}

// =============================================================================
// LEDGER
// =============================================================================

func TestTransactions_AppendAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &inventory.Item{Name: "A", Quantity: 10, Price: inventory.MustParseDecimal("1"), MinStock: 1}
	b := &inventory.Item{Name: "B", Quantity: 10, Price: inventory.MustParseDecimal("1"), MinStock: 1}
	saveItem(t, store, a)
	saveItem(t, store, b)

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	for _, tx := range []*inventory.StockTransaction{
		{ItemID: a.ID, ChangeQuantity: -3, Timestamp: at, Reason: inventory.ReasonSale},
		{ItemID: b.ID, ChangeQuantity: 12, Timestamp: at, Reason: inventory.ReasonRestock},
		{ItemID: a.ID, ChangeQuantity: 5, Timestamp: at, Reason: inventory.ReasonAdjustment},
	} {
		require.NoError(t, store.AppendTransaction(ctx, tx))
		assert.NotZero(t, tx.ID)
	}

	all, err := store.ListTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forA, err := store.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, -3, forA[0].ChangeQuantity)
	assert.Equal(t, 5, forA[1].ChangeQuantity)
	assert.True(t, forA[0].Timestamp.Equal(at))
}

// =============================================================================
// INVOICES
// =============================================================================

func TestInvoice_RoundTripWithLinesAndStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &inventory.Item{Name: "Beans", Quantity: 10, Price: inventory.MustParseDecimal("4.50"), MinStock: 1}
	saveItem(t, store, item)

	date := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	inv := &invoicing.Invoice{Total: inventory.MustParseDecimal("9.00"), Date: date, Status: invoicing.StatusPending}
	require.NoError(t, store.SaveInvoice(ctx, inv))
	require.NotZero(t, inv.ID)

	line := &invoicing.InvoiceLine{
		InvoiceID: inv.ID,
		ItemID:    item.ID,
		Quantity:  2,
		UnitPrice: inventory.MustParseDecimal("4.50"),
	}
	require.NoError(t, store.SaveInvoiceLine(ctx, line))

	loaded, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.00", loaded.Total.String())
	assert.True(t, loaded.Date.Equal(date))
	assert.Equal(t, invoicing.StatusPending, loaded.Status)

	lines, err := store.LinesByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, item.ID, lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "4.50", lines[0].UnitPrice.String())

	require.NoError(t, store.SetInvoiceStatus(ctx, inv.ID, invoicing.StatusPaid))
	loaded, err = store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicing.StatusPaid, loaded.Status)

	err = store.SetInvoiceStatus(ctx, 999, invoicing.StatusPaid)
	assert.True(t, errors.Is(err, inventory.ErrInvoiceNotFound))
}

// =============================================================================
// TRANSACTIONAL SESSIONS
// =============================================================================

func TestWithTx_ErrorRollsBackAllWrites(t *testing.T) {
	// GIVEN: A session that saves an item, an invoice, and a ledger record
	// WHEN: The callback returns an error
	// THEN: None of the writes are visible afterwards

	store := newTestStore(t)
	ctx := context.Background()

	item := &inventory.Item{Name: "Beans", Quantity: 10, Price: inventory.MustParseDecimal("4.50"), MinStock: 1}
	saveItem(t, store, item)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s invoicing.Store) error {
		item.Quantity = 2
		if err := s.SaveItem(ctx, item); err != nil {
			return err
		}
		inv := &invoicing.Invoice{Total: inventory.MustParseDecimal("36"), Date: time.Now().UTC(), Status: invoicing.StatusPending}
		if err := s.SaveInvoice(ctx, inv); err != nil {
			return err
		}
		tx := &inventory.StockTransaction{ItemID: item.ID, ChangeQuantity: -8, Timestamp: time.Now().UTC(), Reason: inventory.ReasonSale}
		if err := s.AppendTransaction(ctx, tx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	loaded, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Quantity)

	invoices, err := store.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	txs, err := store.ListTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestWithTx_SessionSeesOwnWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s invoicing.Store) error {
		item := &inventory.Item{Name: "Beans", Quantity: 10, Price: inventory.MustParseDecimal("4.50"), MinStock: 1}
		if err := s.SaveItem(ctx, item); err != nil {
			return err
		}
		// Uncommitted write is visible inside the session
		loaded, err := s.GetItem(ctx, item.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Beans", loaded.Name)
		return nil
	})
	require.NoError(t, err)

	// And committed afterwards
	items, err := store.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_ClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	supplier := &inventory.Supplier{Name: "Acme"}
	require.NoError(t, store.SaveSupplier(ctx, supplier))
	saveItem(t, store, &inventory.Item{Name: "Beans", SupplierID: &supplier.ID, Price: inventory.MustParseDecimal("10"), MinStock: 1})

	require.NoError(t, store.Reset(ctx))

	items, err := store.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)

	suppliers, err := store.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Empty(t, suppliers)
}
