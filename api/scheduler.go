/*
scheduler.go - Background stock alert monitor

PURPOSE:
  Periodically scans for items at or below their reorder threshold and
  items expiring within the alert window, and logs them so operators see
  replenishment needs without polling the report endpoints.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Scans immediately on start, then on every tick
  - Read-only: the monitor never mutates stock

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - ExpiryWindowDays: Expiration lookahead (default: ExpiringSoonDays)
  - Enabled: Whether the monitor is active (default: true)

USAGE:
  monitor := NewStockMonitor(store)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: The low-stock and expiring-soon endpoints this mirrors
  - cmd/server/main.go: Startup wiring
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/inventory-engine/invoicing"
)

// StockMonitor periodically surfaces replenishment alerts in the log.
type StockMonitor struct {
	Store            invoicing.Store
	CheckInterval    time.Duration
	ExpiryWindowDays int
	Enabled          bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStockMonitor creates a monitor with default settings.
func NewStockMonitor(store invoicing.Store) *StockMonitor {
	return &StockMonitor{
		Store:            store,
		CheckInterval:    1 * time.Hour,
		ExpiryWindowDays: ExpiringSoonDays,
		Enabled:          true,
		stop:             make(chan struct{}),
	}
}

// Start begins the background scan loop.
func (sm *StockMonitor) Start() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.Enabled {
		log.Println("[Monitor] Disabled, not starting")
		return
	}

	sm.ticker = time.NewTicker(sm.CheckInterval)
	sm.wg.Add(1)

	go sm.run()

	log.Printf("[Monitor] Started with check interval: %v", sm.CheckInterval)
}

// Stop halts the scan loop and waits for it to exit.
func (sm *StockMonitor) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.ticker != nil {
		sm.ticker.Stop()
		close(sm.stop)
		sm.wg.Wait()
		log.Println("[Monitor] Stopped")
	}
}

func (sm *StockMonitor) run() {
	defer sm.wg.Done()

	// Scan immediately on start
	sm.scan()

	for {
		select {
		case <-sm.ticker.C:
			sm.scan()
		case <-sm.stop:
			return
		}
	}
}

func (sm *StockMonitor) scan() {
	ctx := context.Background()

	low, err := sm.Store.ListLowStock(ctx)
	if err != nil {
		log.Printf("[Monitor] Error listing low-stock items: %v", err)
		return
	}
	for _, item := range low {
		log.Printf("[Monitor] LOW STOCK: %q has %d left (reorder at %d)",
			item.Name, item.Quantity, item.MinStock)
	}

	expiring, err := sm.Store.ListExpiringSoon(ctx, sm.ExpiryWindowDays)
	if err != nil {
		log.Printf("[Monitor] Error listing expiring items: %v", err)
		return
	}
	for _, item := range expiring {
		log.Printf("[Monitor] EXPIRING: %q (%d in stock) expires %s",
			item.Name, item.Quantity, item.Expiration.Format("2006-01-02"))
	}

	if len(low) == 0 && len(expiring) == 0 {
		log.Println("[Monitor] All stock levels healthy")
	}
}

// RunNow triggers an immediate scan (for testing/admin).
func (sm *StockMonitor) RunNow() {
	sm.scan()
}
