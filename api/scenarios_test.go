/*
scenarios_test.go - Tests for the demo scenario loaders

Each scenario is loaded through the router and checked against the state
it promises: seeded entities, ledger records from real sell paths, and
report-ready invoices.
*/
package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", map[string]any{
		"scenario_id": id,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenarios_List(t *testing.T) {
	router := newTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	decode(t, rec, &list)
	require.Len(t, list, 3)
	assert.Equal(t, "corner-store", list[0]["id"])
}

func TestScenarios_Unknown_Returns404(t *testing.T) {
	router := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", map[string]any{
		"scenario_id": "moon-base",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenarios_CornerStore(t *testing.T) {
	router := newTestServer(t)
	loadScenario(t, router, "corner-store")

	rec := doJSON(t, router, http.MethodGet, "/api/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	decode(t, rec, &items)
	assert.Len(t, items, 4)

	rec = doJSON(t, router, http.MethodGet, "/api/suppliers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var suppliers []map[string]any
	decode(t, rec, &suppliers)
	assert.Len(t, suppliers, 2)

	// The seeded sales went through the real sell path
	rec = doJSON(t, router, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []map[string]any
	decode(t, rec, &txs)
	require.Len(t, txs, 3)
	for _, tx := range txs {
		assert.Equal(t, "sale", tx["reason"])
	}
}

func TestScenarios_QuarterOfSales_FeedsReports(t *testing.T) {
	router := newTestServer(t)
	loadScenario(t, router, "quarter-of-sales")

	rec := doJSON(t, router, http.MethodGet, "/api/invoices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var invoices []map[string]any
	decode(t, rec, &invoices)
	assert.Len(t, invoices, 5)

	// Historical headers spread revenue over three calendar months
	rec = doJSON(t, router, http.MethodGet, "/api/reports/sales/revenue-by-date", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var months []map[string]any
	decode(t, rec, &months)
	assert.Len(t, months, 3)
}

func TestScenarios_RestockAlerts(t *testing.T) {
	router := newTestServer(t)
	loadScenario(t, router, "restock-alerts")

	rec := doJSON(t, router, http.MethodGet, "/api/items/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var low []map[string]any
	decode(t, rec, &low)
	assert.Len(t, low, 2) // milk and beans

	rec = doJSON(t, router, http.MethodGet, "/api/items/expiring-soon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var expiring []map[string]any
	decode(t, rec, &expiring)
	assert.Len(t, expiring, 2) // milk and yoghurt
}

func TestScenarios_LoadResetsPreviousData(t *testing.T) {
	router := newTestServer(t)
	loadScenario(t, router, "corner-store")
	loadScenario(t, router, "restock-alerts")

	rec := doJSON(t, router, http.MethodGet, "/api/suppliers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var suppliers []map[string]any
	decode(t, rec, &suppliers)
	assert.Empty(t, suppliers)
}
