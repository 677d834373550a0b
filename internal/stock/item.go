package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LevelOK       = "ok"
	LevelReorder  = "reorder"
	LevelCritical = "critical"

	ExpiryFresh    = "fresh"
	ExpiryExpiring = "expiring"
	ExpiryExpired  = "expired"
)

// DefaultExpiringWindow is how far ahead an expiry date counts as expiring.
const DefaultExpiringWindow = 72 * time.Hour

type StockItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	Supplier      string          `json:"supplier,omitempty"`
	CriticalLevel decimal.Decimal `json:"critical_level"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
}

// Level compares the quantity against the item's thresholds.
func (s StockItem) Level() string {
	switch {
	case s.Quantity.LessThanOrEqual(s.CriticalLevel):
		return LevelCritical
	case s.Quantity.LessThanOrEqual(s.ReorderLevel):
		return LevelReorder
	default:
		return LevelOK
	}
}

// Expiry classifies the expiry date relative to now. Items without a date are fresh.
func (s StockItem) Expiry(now time.Time, window time.Duration) string {
	if s.ExpiryDate == nil {
		return ExpiryFresh
	}
	if !s.ExpiryDate.After(now) {
		return ExpiryExpired
	}
	if s.ExpiryDate.Sub(now) <= window {
		return ExpiryExpiring
	}
	return ExpiryFresh
}

// Value is quantity times price per unit.
func (s StockItem) Value() decimal.Decimal {
	return s.Quantity.Mul(s.PricePerUnit)
}

// Patch carries the fields of a stock edit. Nil fields are left alone.
type Patch struct {
	Name          *string          `json:"name,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	Supplier      *string          `json:"supplier,omitempty"`
	CriticalLevel *decimal.Decimal `json:"critical_level,omitempty"`
	ReorderLevel  *decimal.Decimal `json:"reorder_level,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Unit == nil && p.Quantity == nil && p.PricePerUnit == nil &&
		p.Supplier == nil && p.CriticalLevel == nil && p.ReorderLevel == nil && p.ExpiryDate == nil
}

// Apply returns a copy of item with the patch applied.
func (p Patch) Apply(item StockItem) StockItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.PricePerUnit != nil {
		item.PricePerUnit = *p.PricePerUnit
	}
	if p.Supplier != nil {
		item.Supplier = *p.Supplier
	}
	if p.CriticalLevel != nil {
		item.CriticalLevel = *p.CriticalLevel
	}
	if p.ReorderLevel != nil {
		item.ReorderLevel = *p.ReorderLevel
	}
	if p.ExpiryDate != nil {
		t := *p.ExpiryDate
		item.ExpiryDate = &t
	}
	return item
}
