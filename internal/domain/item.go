package domain

import "time"

// StockStatus is derived from an item's quantity and threshold on every
// evaluation. It is never persisted.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

type Item struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Unit          string    `json:"unit"`
	Quantity      float64   `json:"quantity"`
	MinStockLevel float64   `json:"min_stock_level"`
	TrackStock    bool      `json:"track_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockStatus reports the item's current stock state. A quantity exactly
// at the threshold counts as low stock.
func (i Item) StockStatus() StockStatus {
	switch {
	case i.Quantity <= 0:
		return StockStatusOutOfStock
	case i.Quantity <= i.MinStockLevel:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// IsLowStock reports whether the item needs a low-stock alert, i.e. its
// status is anything other than in-stock.
func (i Item) IsLowStock() bool {
	return i.StockStatus() != StockStatusInStock
}
