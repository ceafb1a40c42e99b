package domain

import "time"

type StockEntryKind string

const (
	StockEntryAdjustment StockEntryKind = "adjustment"
	StockEntryUsage      StockEntryKind = "usage"
	StockEntrySale       StockEntryKind = "sale"
)

// StockEntry is one row of the append-only stock ledger. Exactly one
// entry is written per successful mutation, in the same transaction as
// the item's quantity update, and is immutable afterwards.
type StockEntry struct {
	ID        uint           `json:"id"`
	ItemID    uint           `json:"item_id"`
	Kind      StockEntryKind `json:"kind"`
	Delta     float64        `json:"delta"`
	Before    float64        `json:"before"`
	After     float64        `json:"after"`
	Reason    string         `json:"reason"`
	UserID    uint           `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
}

// StockUsage is one (item, quantity) pair of a usage or sale deduction.
type StockUsage struct {
	ItemID   uint    `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

// LowStockReport is the result of a sweep over all tracked items.
type LowStockReport struct {
	Items         []Item `json:"items"`
	AlertsCreated int    `json:"alerts_created"`
}
