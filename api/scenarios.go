/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates suppliers, items, customers,
	and stock movements that demonstrate specific features.

AVAILABLE SCENARIOS:

	corner-store:     Categorized stock with suppliers and a few sales
	quarter-of-sales: Customers and invoices spread over three months
	restock-alerts:   Items at their reorder point and near expiration

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create suppliers and customers
 3. Create items
 4. Run sales and invoice builds through the regular domain paths, so
    ledger records and invoice lines look exactly like production data

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "corner-store"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - server.go: Route registration
  - invoicing/builder.go: The build path scenarios drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/invoicing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "corner-store",
		Name:        "Corner Store",
		Description: "Categorized stock with suppliers and a few direct sales",
	},
	{
		ID:          "quarter-of-sales",
		Name:        "Quarter of Sales",
		Description: "Customers and invoices spread over three months of revenue",
	},
	{
		ID:          "restock-alerts",
		Name:        "Restock Alerts",
		Description: "Items at their reorder point and items expiring within days",
	},
}

// LoadScenarioRequest selects which scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// resettable is satisfied by both store implementations; scenarios wipe
// state before seeding.
type resettable interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the store and seeds the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	store, ok := h.Store.(resettable)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Store does not support reset", nil)
		return
	}
	if err := store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "corner-store":
		err = h.loadCornerStore(r.Context())
	case "quarter-of-sales":
		err = h.loadQuarterOfSales(r.Context())
	case "restock-alerts":
		err = h.loadRestockAlerts(r.Context())
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Scenario loaded: " + req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadCornerStore(ctx context.Context) error {
	roaster := inventory.Supplier{Name: "Harbor Roasters", ContactInfo: "orders@harborroasters.example"}
	dairy := inventory.Supplier{Name: "Meadow Dairy", ContactInfo: "sales@meadowdairy.example"}
	for _, s := range []*inventory.Supplier{&roaster, &dairy} {
		if err := h.Store.SaveSupplier(ctx, s); err != nil {
			return err
		}
	}

	milkExpiry := time.Now().UTC().AddDate(0, 0, 5)
	items := []*inventory.Item{
		{Name: "Espresso Beans", Description: "1kg bag", Quantity: 40, Price: inventory.MustParseDecimal("19.99"), Category: "coffee", MinStock: 10, SupplierID: &roaster.ID, Barcode: "0012345678905"},
		{Name: "Drip Blend", Description: "500g bag", Quantity: 25, Price: inventory.MustParseDecimal("11.50"), Category: "coffee", MinStock: 8, SupplierID: &roaster.ID},
		{Name: "Whole Milk", Description: "1L carton", Quantity: 30, Price: inventory.MustParseDecimal("1.85"), Category: "dairy", MinStock: 12, Expiration: &milkExpiry, SupplierID: &dairy.ID},
		{Name: "Paper Cups", Description: "Sleeve of 50", Quantity: 200, Price: inventory.MustParseDecimal("4.20"), Category: "", MinStock: 40},
	}
	for _, item := range items {
		if err := h.Store.SaveItem(ctx, item); err != nil {
			return err
		}
	}

	// A few direct sales so the ledger isn't empty
	for _, sale := range []struct {
		id  inventory.ItemID
		qty int
	}{
		{items[0].ID, 3},
		{items[2].ID, 6},
		{items[3].ID, 20},
	} {
		if _, err := h.Builder.SellItem(ctx, sale.id, sale.qty); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadQuarterOfSales(ctx context.Context) error {
	cafe := inventory.Customer{Name: "Cafe Lumen", Phone: "555-0142", Address: "12 Dock St", ContactInfo: "buyer@cafelumen.example"}
	deli := inventory.Customer{Name: "Corner Deli", Phone: "555-0188", Address: "3 Elm Ave"}
	for _, c := range []*inventory.Customer{&cafe, &deli} {
		if err := h.Store.SaveCustomer(ctx, c); err != nil {
			return err
		}
	}

	beans := inventory.Item{Name: "Espresso Beans", Quantity: 120, Price: inventory.MustParseDecimal("19.99"), Category: "coffee", MinStock: 10}
	syrup := inventory.Item{Name: "Vanilla Syrup", Quantity: 60, Price: inventory.MustParseDecimal("6.75"), Category: "syrups", MinStock: 6}
	for _, item := range []*inventory.Item{&beans, &syrup} {
		if err := h.Store.SaveItem(ctx, item); err != nil {
			return err
		}
	}

	// Current-month invoices go through the real build path
	if _, _, err := h.Builder.BuildInvoice(ctx, &cafe.ID, []invoicing.LineRequest{
		{ItemID: beans.ID, Quantity: 8},
		{ItemID: syrup.ID, Quantity: 4},
	}); err != nil {
		return err
	}
	if _, _, err := h.Builder.BuildInvoice(ctx, &deli.ID, []invoicing.LineRequest{
		{ItemID: beans.ID, Quantity: 3},
	}); err != nil {
		return err
	}

	// Historical headers back-fill the revenue-by-date report. The stock
	// behind them is long gone, so they skip the build path. Anchored to
	// the first of the month so AddDate never normalizes across a boundary.
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC)
	for _, past := range []struct {
		monthsAgo int
		total     string
		status    invoicing.Status
	}{
		{1, "214.30", invoicing.StatusPaid},
		{1, "88.45", invoicing.StatusPaid},
		{2, "156.00", invoicing.StatusPaid},
	} {
		inv := invoicing.Invoice{
			CustomerID: &cafe.ID,
			Total:      inventory.MustParseDecimal(past.total),
			Date:       monthStart.AddDate(0, -past.monthsAgo, 0),
			Status:     past.status,
		}
		if err := h.Store.SaveInvoice(ctx, &inv); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadRestockAlerts(ctx context.Context) error {
	soon := time.Now().UTC().AddDate(0, 0, 2)
	nextWeek := time.Now().UTC().AddDate(0, 0, 6)
	farOut := time.Now().UTC().AddDate(0, 0, 90)

	items := []*inventory.Item{
		{Name: "Whole Milk", Quantity: 4, Price: inventory.MustParseDecimal("1.85"), Category: "dairy", MinStock: 12, Expiration: &soon},
		{Name: "Yoghurt", Quantity: 15, Price: inventory.MustParseDecimal("0.95"), Category: "dairy", MinStock: 10, Expiration: &nextWeek},
		{Name: "Espresso Beans", Quantity: 2, Price: inventory.MustParseDecimal("19.99"), Category: "coffee", MinStock: 10},
		{Name: "Canned Soup", Quantity: 80, Price: inventory.MustParseDecimal("2.40"), Category: "pantry", MinStock: 15, Expiration: &farOut},
	}
	for _, item := range items {
		if err := h.Store.SaveItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
