package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restokit/resto-erp/internal/api/handler/v1/request"
	"github.com/restokit/resto-erp/internal/api/handler/v1/response"
	"github.com/restokit/resto-erp/internal/domain"
	"github.com/restokit/resto-erp/internal/service"
)

type InventoryService interface {
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	GetItem(ctx context.Context, id uint) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListItemEntries(ctx context.Context, itemID uint, limit, offset int) ([]domain.StockEntry, error)
	AdjustStock(ctx context.Context, itemID uint, newQuantity float64, reason string, userID uint) (domain.StockEntry, error)
	RecordUsage(ctx context.Context, itemID uint, quantity float64, reason string, userID uint) (domain.StockEntry, error)
	RecordSale(ctx context.Context, itemID uint, quantity float64, reason string, userID uint) (domain.StockEntry, error)
	RecordBulkUsage(ctx context.Context, usages []domain.StockUsage, kind domain.StockEntryKind, reason string, userID uint) ([]domain.StockEntry, error)
	CheckLowStock(ctx context.Context, itemID uint) (bool, error)
	CheckAllLowStock(ctx context.Context) (domain.LowStockReport, error)
	DashboardSummary(ctx context.Context) (domain.DashboardSummary, error)
}

type InventoryHandler struct {
	svc  InventoryService
	uSvc UserService
}

func NewInventoryHandler(svc InventoryService, uSvc UserService) *InventoryHandler {
	return &InventoryHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func parseItemID(ctx *gin.Context) (uint, error) {
	itemID, err := strconv.ParseUint(ctx.Param("itemID"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid item ID")
	}

	return uint(itemID), nil
}

// renderStockErr maps stock mutation errors onto HTTP responses. The
// typed errors keep their payload so clients can render exact messages.
func renderStockErr(ctx *gin.Context, op string, err error) {
	var (
		insufficientErr *service.InsufficientStockError
		bulkErr         *service.BulkRejectedError
	)

	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.RenderErr(ctx, response.ErrNotFound("item", "ID", ctx.Param("itemID")))
	case errors.Is(err, service.ErrTrackingDisabled):
		response.RenderErr(ctx, response.ErrUnprocessableEntity(service.ErrTrackingDisabled))
	case errors.Is(err, service.ErrEmptyBulkUsage):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrEmptyBulkUsage))
	case errors.As(err, &insufficientErr):
		ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, response.InsufficientStockResponse{
			Error:     insufficientErr.Error(),
			ItemID:    insufficientErr.ItemID,
			Requested: insufficientErr.Requested,
			Available: insufficientErr.Available,
			Unit:      insufficientErr.Unit,
		})
	case errors.As(err, &bulkErr):
		rejections := make([]response.BulkRejectionResponse, len(bulkErr.Rejections))
		for i, r := range bulkErr.Rejections {
			rejections[i] = response.BulkRejectionResponse{
				ItemID: r.ItemID,
				Reason: r.Reason,
			}
		}
		ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, response.BulkRejectedResponse{
			Error:      "bulk stock deduction rejected",
			Rejections: rejections,
		})
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}

// HandleCreateItem godoc
// @Summary      Create an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateItemRequest  true  "item details"
// @Success      201    {object}  domain.Item
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /items [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleCreateItem(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role == domain.RoleStaff {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v cannot manage items", user.ID)))
		return
	}

	var req request.CreateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	trackStock := true
	if req.TrackStock != nil {
		trackStock = *req.TrackStock
	}

	item, err := h.svc.CreateItem(ctx.Request.Context(), domain.Item{
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
		TrackStock:    trackStock,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateItem -> h.svc.CreateItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

// HandleListItems godoc
// @Summary      List inventory items
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   domain.Item
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /items [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleListItems(ctx *gin.Context) {
	items, err := h.svc.ListItems(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListItems -> h.svc.ListItems -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// HandleGetItem godoc
// @Summary      Get an inventory item by ID
// @Tags         inventory
// @Produce      json
// @Param        itemID   path      int  true  "item ID"
// @Success      200      {object}  domain.Item
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID} [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleGetItem(ctx *gin.Context) {
	itemID, err := parseItemID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.GetItem(ctx.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))
			return
		}

		err = fmt.Errorf("v1.HandleGetItem -> h.svc.GetItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleListItemEntries godoc
// @Summary      List an item's stock ledger entries
// @Description  Returns the item's ledger entries, newest first.
// @Tags         inventory
// @Produce      json
// @Param        itemID   path      int  true   "item ID"
// @Param        limit    query     int  false  "page size (default 50)"
// @Param        offset   query     int  false  "page offset"
// @Success      200      {array}   domain.StockEntry
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID}/entries [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleListItemEntries(ctx *gin.Context) {
	itemID, err := parseItemID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	limit, offset := parsePagination(ctx)

	entries, err := h.svc.ListItemEntries(ctx.Request.Context(), itemID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))
			return
		}

		err = fmt.Errorf("v1.HandleListItemEntries -> h.svc.ListItemEntries -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

// HandleAdjustStock godoc
// @Summary      Adjust an item's stock to an absolute quantity
// @Description  Sets the quantity and appends a ledger entry atomically. A reason is mandatory.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        itemID   path      int                         true  "item ID"
// @Param        input    body      request.AdjustStockRequest  true  "new quantity and reason"
// @Success      200      {object}  response.StockEntryResponse
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID}/stock/adjust [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleAdjustStock(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role == domain.RoleStaff {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v cannot adjust stock", user.ID)))
		return
	}

	itemID, err := parseItemID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.AdjustStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.AdjustStock(ctx.Request.Context(), itemID, req.Quantity, req.Reason, user.ID)
	if err != nil {
		renderStockErr(ctx, "v1.HandleAdjustStock -> h.svc.AdjustStock", err)
		return
	}

	ctx.JSON(http.StatusOK, response.StockEntryResponse{Entry: entry})
}

// HandleRecordUsage godoc
// @Summary      Record stock usage for an item
// @Description  Deducts the used quantity and appends a ledger entry atomically.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        itemID   path      int                         true  "item ID"
// @Param        input    body      request.RecordUsageRequest  true  "used quantity"
// @Success      200      {object}  response.StockEntryResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.InsufficientStockResponse
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID}/stock/usage [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleRecordUsage(ctx *gin.Context) {
	h.handleDeduction(ctx, "v1.HandleRecordUsage", func(c context.Context, itemID uint, quantity float64, reason string, userID uint) (domain.StockEntry, error) {
		return h.svc.RecordUsage(c, itemID, quantity, reason, userID)
	})
}

// HandleRecordSale godoc
// @Summary      Record a sale-driven stock deduction for an item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        itemID   path      int                         true  "item ID"
// @Param        input    body      request.RecordUsageRequest  true  "sold quantity"
// @Success      200      {object}  response.StockEntryResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.InsufficientStockResponse
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID}/stock/sale [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleRecordSale(ctx *gin.Context) {
	h.handleDeduction(ctx, "v1.HandleRecordSale", func(c context.Context, itemID uint, quantity float64, reason string, userID uint) (domain.StockEntry, error) {
		return h.svc.RecordSale(c, itemID, quantity, reason, userID)
	})
}

func (h *InventoryHandler) handleDeduction(ctx *gin.Context, op string, deduct func(context.Context, uint, float64, string, uint) (domain.StockEntry, error)) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	itemID, err := parseItemID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.RecordUsageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := deduct(ctx.Request.Context(), itemID, req.Quantity, req.Reason, user.ID)
	if err != nil {
		renderStockErr(ctx, op, err)
		return
	}

	ctx.JSON(http.StatusOK, response.StockEntryResponse{Entry: entry})
}

// HandleBulkUsage godoc
// @Summary      Record stock usage for a batch of items
// @Description  Validates every line before mutating any item; the batch commits in full or is rejected with per-item reasons.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        input  body      request.BulkUsageRequest  true  "usage lines"
// @Success      200    {object}  response.BulkStockEntriesResponse
// @Failure      400    {object}  response.Err
// @Failure      422    {object}  response.BulkRejectedResponse
// @Failure      500    {object}  response.Err
// @Router       /stock/usage/bulk [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleBulkUsage(ctx *gin.Context) {
	h.handleBulkDeduction(ctx, "v1.HandleBulkUsage", domain.StockEntryUsage)
}

// HandleBulkSale godoc
// @Summary      Record a sale-driven stock deduction for a batch of items
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        input  body      request.BulkUsageRequest  true  "sale lines"
// @Success      200    {object}  response.BulkStockEntriesResponse
// @Failure      400    {object}  response.Err
// @Failure      422    {object}  response.BulkRejectedResponse
// @Failure      500    {object}  response.Err
// @Router       /stock/sale/bulk [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleBulkSale(ctx *gin.Context) {
	h.handleBulkDeduction(ctx, "v1.HandleBulkSale", domain.StockEntrySale)
}

func (h *InventoryHandler) handleBulkDeduction(ctx *gin.Context, op string, kind domain.StockEntryKind) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.BulkUsageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	usages := make([]domain.StockUsage, len(req.Usages))
	for i, line := range req.Usages {
		usages[i] = domain.StockUsage{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		}
	}

	entries, err := h.svc.RecordBulkUsage(ctx.Request.Context(), usages, kind, req.Reason, user.ID)
	if err != nil {
		renderStockErr(ctx, op, err)
		return
	}

	ctx.JSON(http.StatusOK, response.BulkStockEntriesResponse{Entries: entries})
}

// HandleCheckLowStock godoc
// @Summary      Run the low-stock check for one item
// @Description  Creates an unread low-stock alert if the item is at or below its threshold and no unread alert exists yet.
// @Tags         inventory
// @Produce      json
// @Param        itemID   path      int  true  "item ID"
// @Success      200      {object}  response.LowStockCheckResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID}/stock/check [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleCheckLowStock(ctx *gin.Context) {
	itemID, err := parseItemID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CheckLowStock(ctx.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))
			return
		}

		err = fmt.Errorf("v1.HandleCheckLowStock -> h.svc.CheckLowStock -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LowStockCheckResponse{
		ItemID:       itemID,
		AlertCreated: created,
	})
}

// HandleCheckAllLowStock godoc
// @Summary      Run the low-stock check for all tracked items
// @Produce      json
// @Tags         inventory
// @Success      200  {object}  domain.LowStockReport
// @Failure      500  {object}  response.Err
// @Router       /stock/check [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleCheckAllLowStock(ctx *gin.Context) {
	report, err := h.svc.CheckAllLowStock(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleCheckAllLowStock -> h.svc.CheckAllLowStock -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleDashboardSummary godoc
// @Summary      Read-only inventory dashboard counters
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.DashboardSummary
// @Failure      500  {object}  response.Err
// @Router       /dashboard/summary [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleDashboardSummary(ctx *gin.Context) {
	summary, err := h.svc.DashboardSummary(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleDashboardSummary -> h.svc.DashboardSummary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func parsePagination(ctx *gin.Context) (limit, offset int) {
	limit = 50
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	if raw := ctx.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
