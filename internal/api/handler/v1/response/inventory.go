package response

import "github.com/restokit/resto-erp/internal/domain"

type StockEntryResponse struct {
	Entry domain.StockEntry `json:"entry"`
}

type BulkStockEntriesResponse struct {
	Entries []domain.StockEntry `json:"entries"`
}

type LowStockCheckResponse struct {
	ItemID       uint `json:"item_id"`
	AlertCreated bool `json:"alert_created"`
}

type BulkRejectionResponse struct {
	ItemID uint   `json:"item_id"`
	Reason string `json:"reason"`
}

type BulkRejectedResponse struct {
	Error      string                  `json:"error"`
	Rejections []BulkRejectionResponse `json:"rejections"`
}

type InsufficientStockResponse struct {
	Error     string  `json:"error"`
	ItemID    uint    `json:"item_id"`
	Requested float64 `json:"requested"`
	Available float64 `json:"available"`
	Unit      string  `json:"unit"`
}
