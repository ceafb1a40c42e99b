package domain

import "time"

const (
	NotificationCategoryLowStock = "low_stock"

	NotificationPriorityHigh   = "high"
	NotificationPriorityNormal = "normal"
)

// Notification is a generic notification record. Low-stock alerts are
// notifications with category "low_stock"; for those, ItemID is set and
// Quantity/Threshold/Unit capture the item's state at alert time. The
// read flag is sticky: it only flips when a user acknowledges the
// notification, never automatically on restock.
type Notification struct {
	ID        uint      `json:"id"`
	Category  string    `json:"category"`
	ItemID    *uint     `json:"item_id,omitempty"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Quantity  float64   `json:"quantity"`
	Threshold float64   `json:"threshold"`
	Unit      string    `json:"unit"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
