/*
Package reports derives read-only summaries from the stored inventory and
invoice data.

PURPOSE:
  Inventory valuation (total and per category) and sales revenue (total and
  grouped by month). Everything here is a pure fold over store reads; no
  report ever mutates state.

PRECISION:
  All sums are decimal.Decimal. Values convert to float only at the API
  boundary.

SEE ALSO:
  - invoicing/store.go: The gateway the aggregator reads from
  - api/handlers.go: The /reports endpoints
*/
package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/invoicing"
)

// Uncategorized is the bucket for items without a category.
const Uncategorized = "Uncategorized"

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator computes reports from a store. Stateless; safe for concurrent
// use if the underlying store is.
type Aggregator struct {
	store invoicing.Store
}

func NewAggregator(store invoicing.Store) *Aggregator {
	return &Aggregator{store: store}
}

// =============================================================================
// INVENTORY VALUATION
// =============================================================================

// CategoryValue is the stock valuation of one category bucket.
type CategoryValue struct {
	Category string
	Value    decimal.Decimal
}

// TotalInventoryValue sums price x quantity over all items.
func (a *Aggregator) TotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	items, err := a.store.ListItems(ctx, "")
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// ValueByCategory groups stock valuation by category. Items without a
// category land in the Uncategorized bucket. Results are sorted by category
// name.
func (a *Aggregator) ValueByCategory(ctx context.Context) ([]CategoryValue, error) {
	items, err := a.store.ListItems(ctx, "")
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]decimal.Decimal)
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = Uncategorized
		}
		buckets[category] = buckets[category].Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	result := make([]CategoryValue, 0, len(buckets))
	for category, value := range buckets {
		result = append(result, CategoryValue{Category: category, Value: value})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// =============================================================================
// SALES REVENUE
// =============================================================================

// MonthlyRevenue is the invoiced revenue of one calendar month.
type MonthlyRevenue struct {
	Year    int
	Month   int
	Revenue decimal.Decimal
}

// TotalRevenue sums the totals of all invoices.
func (a *Aggregator) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	invoices, err := a.store.ListInvoices(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Total)
	}
	return total, nil
}

// RevenueByMonth groups invoice totals by calendar year and month, sorted
// chronologically.
func (a *Aggregator) RevenueByMonth(ctx context.Context) ([]MonthlyRevenue, error) {
	invoices, err := a.store.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	type yearMonth struct {
		year  int
		month int
	}
	buckets := make(map[yearMonth]decimal.Decimal)
	for _, inv := range invoices {
		key := yearMonth{year: inv.Date.Year(), month: int(inv.Date.Month())}
		buckets[key] = buckets[key].Add(inv.Total)
	}

	result := make([]MonthlyRevenue, 0, len(buckets))
	for key, revenue := range buckets {
		result = append(result, MonthlyRevenue{Year: key.year, Month: key.month, Revenue: revenue})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}
