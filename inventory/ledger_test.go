package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testItem(quantity int) *inventory.Item {
	return &inventory.Item{
		ID:       1,
		Name:     "Widget",
		Quantity: quantity,
		Price:    inventory.NewPrice(9.99),
		MinStock: 2,
	}
}

// =============================================================================
// NON-NEGATIVE INVARIANT
// =============================================================================

func TestApplyChange_Sale_DecrementsQuantity(t *testing.T) {
	// GIVEN: An item with 10 units
	// WHEN: Applying a sale of 3
	// THEN: Quantity drops to 7 and a staged transaction records the delta

	ledger := inventory.NewStockLedger()
	item := testItem(10)
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

	tx, err := ledger.ApplyChange(item, -3, inventory.ReasonSale, now)
	require.NoError(t, err)

	assert.Equal(t, 7, item.Quantity)
	assert.Equal(t, item.ID, tx.ItemID)
	assert.Equal(t, -3, tx.ChangeQuantity)
	assert.Equal(t, inventory.ReasonSale, tx.Reason)
	assert.Equal(t, now, tx.Timestamp)
	assert.Zero(t, tx.ID, "staged transaction must not carry a store id")
}

func TestApplyChange_ExactlyToZero_Allowed(t *testing.T) {
	// GIVEN: An item with 5 units
	// WHEN: Selling exactly 5
	// THEN: Quantity reaches zero without error

	ledger := inventory.NewStockLedger()
	item := testItem(5)

	_, err := ledger.ApplyChange(item, -5, inventory.ReasonSale, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
}

func TestApplyChange_InsufficientStock_RejectedUnchanged(t *testing.T) {
	// GIVEN: An item with 2 units
	// WHEN: Selling 3
	// THEN: The change is rejected with the shortfall detail and the item
	//       is untouched

	ledger := inventory.NewStockLedger()
	item := testItem(2)

	_, err := ledger.ApplyChange(item, -3, inventory.ReasonSale, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))

	var stockErr *inventory.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, item.ID, stockErr.ItemID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Shortfall())

	assert.Equal(t, 2, item.Quantity)
}

func TestApplyChange_Restock_IncrementsQuantity(t *testing.T) {
	// GIVEN: An item with 1 unit
	// WHEN: Restocking 10
	// THEN: Quantity becomes 11 with a positive ledger delta

	ledger := inventory.NewStockLedger()
	item := testItem(1)

	tx, err := ledger.ApplyChange(item, 10, inventory.ReasonRestock, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 11, item.Quantity)
	assert.Equal(t, 10, tx.ChangeQuantity)
	assert.Equal(t, inventory.ReasonRestock, tx.Reason)
}

func TestApplyChange_NegativeAdjustmentBelowZero_Rejected(t *testing.T) {
	// GIVEN: An item with 0 units
	// WHEN: Adjusting by -1
	// THEN: Rejected; adjustments obey the same invariant as sales

	ledger := inventory.NewStockLedger()
	item := testItem(0)

	_, err := ledger.ApplyChange(item, -1, inventory.ReasonAdjustment, time.Now())
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
	assert.Equal(t, 0, item.Quantity)
}

// =============================================================================
// ITEM HELPERS
// =============================================================================

func TestItem_LowStock(t *testing.T) {
	item := testItem(3) // MinStock is 2

	assert.False(t, item.LowStock())

	item.Quantity = 2
	assert.True(t, item.LowStock(), "at threshold counts as low")

	item.Quantity = 0
	assert.True(t, item.LowStock())
}
