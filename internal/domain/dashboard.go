package domain

type DashboardSummary struct {
	TotalItems      int   `json:"total_items"`
	TrackedItems    int   `json:"tracked_items"`
	LowStockItems   int   `json:"low_stock_items"`
	OutOfStockItems int   `json:"out_of_stock_items"`
	UnreadAlerts    int64 `json:"unread_alerts"`
}
