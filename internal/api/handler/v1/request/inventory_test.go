package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restokit/resto-erp/internal/api/handler/v1/request"
)

func TestRecordUsageRequest_Validate(t *testing.T) {
	valid := request.RecordUsageRequest{Quantity: 2.5}
	assert.NoError(t, valid.Validate())

	zero := request.RecordUsageRequest{Quantity: 0}
	assert.Error(t, zero.Validate())

	negative := request.RecordUsageRequest{Quantity: -1}
	assert.Error(t, negative.Validate())
}

func TestBulkUsageRequest_Validate(t *testing.T) {
	valid := request.BulkUsageRequest{
		Usages: []request.UsageLine{
			{ItemID: 1, Quantity: 3},
			{ItemID: 2, Quantity: 0.5},
		},
	}
	assert.NoError(t, valid.Validate())

	empty := request.BulkUsageRequest{}
	assert.Error(t, empty.Validate())

	missingItem := request.BulkUsageRequest{
		Usages: []request.UsageLine{{Quantity: 3}},
	}
	assert.Error(t, missingItem.Validate())

	zeroQuantity := request.BulkUsageRequest{
		Usages: []request.UsageLine{{ItemID: 1, Quantity: 0}},
	}
	assert.Error(t, zeroQuantity.Validate())

	negativeQuantity := request.BulkUsageRequest{
		Usages: []request.UsageLine{{ItemID: 1, Quantity: -1}},
	}
	err := negativeQuantity.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "greater than zero")
}

func TestAdjustStockRequest_Validate(t *testing.T) {
	valid := request.AdjustStockRequest{Quantity: 0, Reason: "stocktake"}
	assert.NoError(t, valid.Validate())

	missingReason := request.AdjustStockRequest{Quantity: 5}
	assert.Error(t, missingReason.Validate())

	negative := request.AdjustStockRequest{Quantity: -1, Reason: "stocktake"}
	assert.Error(t, negative.Validate())
}
