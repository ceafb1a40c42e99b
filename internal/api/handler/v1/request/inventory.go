package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateItemRequest struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"`
	Quantity      float64 `json:"quantity"`
	MinStockLevel float64 `json:"min_stock_level"`
	TrackStock    *bool   `json:"track_stock"`
}

func (req *CreateItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Category, validation.Length(0, 50)),
		validation.Field(&req.Unit, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.Quantity, validation.Min(0.0)),
		validation.Field(&req.MinStockLevel, validation.Min(0.0)),
	)
}

type AdjustStockRequest struct {
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason"`
}

func (req *AdjustStockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Quantity, validation.Min(0.0)),
		validation.Field(&req.Reason, validation.Required, validation.Length(1, 200)),
	)
}

type RecordUsageRequest struct {
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason"`
}

func (req *RecordUsageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Quantity, validation.Required, validation.Min(0.0), validation.By(positiveQuantity)),
		validation.Field(&req.Reason, validation.Length(0, 200)),
	)
}

type UsageLine struct {
	ItemID   uint    `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

type BulkUsageRequest struct {
	Usages []UsageLine `json:"usages"`
	Reason string      `json:"reason"`
}

func (req *BulkUsageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Usages, validation.Required, validation.Length(1, 100), validation.Each(validation.By(validateUsageLine))),
		validation.Field(&req.Reason, validation.Length(0, 200)),
	)
}

func validateUsageLine(value interface{}) error {
	line, ok := value.(UsageLine)
	if !ok {
		return errors.New("invalid usage line")
	}

	return validation.ValidateStruct(&line,
		validation.Field(&line.ItemID, validation.Required, validation.Min(uint(1))),
		validation.Field(&line.Quantity, validation.Required, validation.By(positiveQuantity)),
	)
}

func positiveQuantity(value interface{}) error {
	quantity, ok := value.(float64)
	if !ok || quantity <= 0 {
		return errors.New("quantity must be greater than zero")
	}

	return nil
}
