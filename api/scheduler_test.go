package api_test

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-engine/api"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/store/memory"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestStockMonitor_ReportsLowStock(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.SaveItem(context.Background(), &inventory.Item{
		Name: "Beans", Quantity: 2, MinStock: 10, Price: inventory.MustParseDecimal("19.99"),
	}))

	buf := captureLog(t)
	api.NewStockMonitor(store).RunNow()

	assert.Contains(t, buf.String(), "LOW STOCK")
	assert.Contains(t, buf.String(), "Beans")
}

func TestStockMonitor_HealthyStockIsQuiet(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.SaveItem(context.Background(), &inventory.Item{
		Name: "Beans", Quantity: 50, MinStock: 10, Price: inventory.MustParseDecimal("19.99"),
	}))

	buf := captureLog(t)
	api.NewStockMonitor(store).RunNow()

	assert.NotContains(t, buf.String(), "LOW STOCK")
	assert.Contains(t, buf.String(), "healthy")
}

func TestStockMonitor_DisabledDoesNotStart(t *testing.T) {
	monitor := api.NewStockMonitor(memory.New())
	monitor.Enabled = false

	buf := captureLog(t)
	monitor.Start()
	monitor.Stop() // No-op; the ticker never started

	assert.Contains(t, buf.String(), "Disabled")
}
