package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("stock item not found")

// Alert flags an item that needs attention.
type Alert struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Level  string `json:"level,omitempty"`
	Expiry string `json:"expiry,omitempty"`
}

// Inventory is the local mirror of the stock list.
type Inventory struct {
	mu     sync.RWMutex
	da     *DataAccess
	items  []StockItem
	window time.Duration
	logger aqm.Logger
	now    func() time.Time

	// revs holds the edit that last wrote each item since the last refresh.
	revs map[string]uint64
	seq  uint64
}

func NewInventory(da *DataAccess, expiringWindow time.Duration, logger aqm.Logger) *Inventory {
	if expiringWindow <= 0 {
		expiringWindow = DefaultExpiringWindow
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Inventory{da: da, window: expiringWindow, logger: logger, now: time.Now}
}

func (inv *Inventory) Refresh(ctx context.Context) error {
	items, err := inv.da.List(ctx)
	if err != nil {
		return fmt.Errorf("load stock: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	inv.mu.Lock()
	inv.items = items
	inv.revs = nil
	inv.mu.Unlock()
	return nil
}

func (inv *Inventory) Items() []StockItem {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return append([]StockItem(nil), inv.items...)
}

func (inv *Inventory) Get(id string) (StockItem, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	i := inv.indexLocked(id)
	if i < 0 {
		return StockItem{}, false
	}
	return inv.items[i], true
}

// Apply mirrors the edit locally, then PATCHes it. The previous copy is
// restored when the backend rejects the change, unless a newer edit or a
// refresh has replaced the item meanwhile.
func (inv *Inventory) Apply(ctx context.Context, id string, patch Patch) (StockItem, error) {
	inv.mu.Lock()
	i := inv.indexLocked(id)
	if i < 0 {
		inv.mu.Unlock()
		return StockItem{}, ErrItemNotFound
	}
	previous := inv.items[i]
	updated := patch.Apply(previous)
	inv.items[i] = updated
	if inv.revs == nil {
		inv.revs = make(map[string]uint64)
	}
	inv.seq++
	rev := inv.seq
	inv.revs[id] = rev
	inv.mu.Unlock()

	if err := inv.da.Update(ctx, id, patch); err != nil {
		if inv.restore(previous, rev) {
			inv.logger.Error("stock update reverted", "item_id", id, "error", err)
		} else {
			inv.logger.Error("stock update failed after a newer change", "item_id", id, "error", err)
		}
		return previous, fmt.Errorf("update stock item: %w", err)
	}
	return updated, nil
}

// Delete removes the item on the backend and then locally.
func (inv *Inventory) Delete(ctx context.Context, id string) error {
	if _, ok := inv.Get(id); !ok {
		return ErrItemNotFound
	}
	if err := inv.da.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}

	inv.mu.Lock()
	if i := inv.indexLocked(id); i >= 0 {
		inv.items = append(inv.items[:i], inv.items[i+1:]...)
	}
	inv.mu.Unlock()
	return nil
}

// restore puts previous back if the edit rev is still the last one applied.
func (inv *Inventory) restore(previous StockItem, rev uint64) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.revs[previous.ID] != rev {
		return false
	}
	i := inv.indexLocked(previous.ID)
	if i < 0 {
		return false
	}
	inv.items[i] = previous
	delete(inv.revs, previous.ID)
	return true
}

func (inv *Inventory) indexLocked(id string) int {
	for i := range inv.items {
		if inv.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Alerts lists items below a threshold or near expiry, critical ones first.
func (inv *Inventory) Alerts() []Alert {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	now := inv.now()
	var alerts []Alert
	for _, item := range inv.items {
		level := item.Level()
		expiry := item.Expiry(now, inv.window)
		if level == LevelOK && expiry == ExpiryFresh {
			continue
		}
		a := Alert{ItemID: item.ID, Name: item.Name}
		if level != LevelOK {
			a.Level = level
		}
		if expiry != ExpiryFresh {
			a.Expiry = expiry
		}
		alerts = append(alerts, a)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alertRank(alerts[i]) < alertRank(alerts[j])
	})
	return alerts
}

func alertRank(a Alert) int {
	switch {
	case a.Expiry == ExpiryExpired || a.Level == LevelCritical:
		return 0
	case a.Level == LevelReorder:
		return 1
	default:
		return 2
	}
}

// TotalValue sums the value of every item.
func (inv *Inventory) TotalValue() decimal.Decimal {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	total := decimal.Zero
	for _, item := range inv.items {
		total = total.Add(item.Value())
	}
	return total
}
