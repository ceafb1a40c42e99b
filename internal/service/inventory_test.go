package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restokit/resto-erp/internal/domain"
	"github.com/restokit/resto-erp/internal/service"
)

type fakeInventoryRepo struct {
	items       map[uint]domain.Item
	entries     []domain.StockEntry
	nextEntryID uint
}

func newFakeInventoryRepo(items ...domain.Item) *fakeInventoryRepo {
	repo := &fakeInventoryRepo{
		items: make(map[uint]domain.Item),
	}
	for _, item := range items {
		repo.items[item.ID] = item
	}

	return repo
}

func (r *fakeInventoryRepo) CreateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	item.ID = uint(len(r.items) + 1)
	r.items[item.ID] = item

	return item, nil
}

func (r *fakeInventoryRepo) GetItem(_ context.Context, id uint) (domain.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return domain.Item{}, service.ErrItemNotFound
	}

	return item, nil
}

func (r *fakeInventoryRepo) ListItems(_ context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}

	return items, nil
}

func (r *fakeInventoryRepo) ListLowStockItems(_ context.Context) ([]domain.Item, error) {
	var items []domain.Item
	for _, item := range r.items {
		if item.TrackStock && item.IsLowStock() {
			items = append(items, item)
		}
	}

	return items, nil
}

func (r *fakeInventoryRepo) ListEntries(_ context.Context, itemID uint, _, _ int) ([]domain.StockEntry, error) {
	var entries []domain.StockEntry
	for _, entry := range r.entries {
		if entry.ItemID == itemID {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (r *fakeInventoryRepo) appendEntry(item domain.Item, kind domain.StockEntryKind, newQuantity float64, reason string, userID uint) domain.StockEntry {
	r.nextEntryID++
	entry := domain.StockEntry{
		ID:     r.nextEntryID,
		ItemID: item.ID,
		Kind:   kind,
		Delta:  newQuantity - item.Quantity,
		Before: item.Quantity,
		After:  newQuantity,
		Reason: reason,
		UserID: userID,
	}
	r.entries = append(r.entries, entry)

	item.Quantity = newQuantity
	r.items[item.ID] = item

	return entry
}

func (r *fakeInventoryRepo) AdjustQuantity(_ context.Context, itemID uint, newQuantity float64, reason string, userID uint) (domain.StockEntry, error) {
	item, ok := r.items[itemID]
	if !ok {
		return domain.StockEntry{}, service.ErrItemNotFound
	}
	if !item.TrackStock {
		return domain.StockEntry{}, service.ErrTrackingDisabled
	}

	return r.appendEntry(item, domain.StockEntryAdjustment, newQuantity, reason, userID), nil
}

func (r *fakeInventoryRepo) DeductQuantity(_ context.Context, itemID uint, quantity float64, kind domain.StockEntryKind, reason string, userID uint) (domain.StockEntry, error) {
	item, ok := r.items[itemID]
	if !ok {
		return domain.StockEntry{}, service.ErrItemNotFound
	}
	if !item.TrackStock {
		return domain.StockEntry{}, service.ErrTrackingDisabled
	}
	if item.Quantity < quantity {
		return domain.StockEntry{}, &service.InsufficientStockError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Requested: quantity,
			Available: item.Quantity,
			Unit:      item.Unit,
		}
	}

	return r.appendEntry(item, kind, item.Quantity-quantity, reason, userID), nil
}

func (r *fakeInventoryRepo) DeductQuantityBulk(_ context.Context, usages []domain.StockUsage, kind domain.StockEntryKind, reason string, userID uint) ([]domain.StockEntry, error) {
	requested := make(map[uint]float64)
	for _, u := range usages {
		requested[u.ItemID] += u.Quantity
	}

	var rejections []service.BulkRejection
	for id, quantity := range requested {
		item, ok := r.items[id]
		switch {
		case !ok:
			rejections = append(rejections, service.BulkRejection{ItemID: id, Reason: service.ErrItemNotFound.Error(), Err: service.ErrItemNotFound})
		case !item.TrackStock:
			rejections = append(rejections, service.BulkRejection{ItemID: id, Reason: service.ErrTrackingDisabled.Error(), Err: service.ErrTrackingDisabled})
		case item.Quantity < quantity:
			insufficient := &service.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: quantity,
				Available: item.Quantity,
				Unit:      item.Unit,
			}
			rejections = append(rejections, service.BulkRejection{ItemID: id, Reason: insufficient.Error(), Err: insufficient})
		}
	}
	if len(rejections) > 0 {
		return nil, &service.BulkRejectedError{Rejections: rejections}
	}

	entries := make([]domain.StockEntry, 0, len(usages))
	for _, u := range usages {
		item := r.items[u.ItemID]
		entries = append(entries, r.appendEntry(item, kind, item.Quantity-u.Quantity, reason, userID))
	}

	return entries, nil
}

type fakeAlertRepo struct {
	notifications []domain.Notification
	nextID        uint
	createErr     error
}

func (r *fakeAlertRepo) Create(_ context.Context, notification domain.Notification) (domain.Notification, error) {
	if r.createErr != nil {
		return domain.Notification{}, r.createErr
	}

	for _, n := range r.notifications {
		if !n.Read && n.Category == notification.Category && n.ItemID != nil && notification.ItemID != nil && *n.ItemID == *notification.ItemID {
			return domain.Notification{}, service.ErrDuplicateUnreadAlert
		}
	}

	r.nextID++
	notification.ID = r.nextID
	r.notifications = append(r.notifications, notification)

	return notification, nil
}

func (r *fakeAlertRepo) HasUnreadForItem(_ context.Context, category string, itemID uint) (bool, error) {
	for _, n := range r.notifications {
		if !n.Read && n.Category == category && n.ItemID != nil && *n.ItemID == itemID {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeAlertRepo) CountUnread(_ context.Context, category string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if !n.Read && n.Category == category {
			count++
		}
	}

	return count, nil
}

func (r *fakeAlertRepo) unreadForItem(itemID uint) []domain.Notification {
	var unread []domain.Notification
	for _, n := range r.notifications {
		if !n.Read && n.ItemID != nil && *n.ItemID == itemID {
			unread = append(unread, n)
		}
	}

	return unread
}

func trackedItem(id uint, name string, quantity, minLevel float64) domain.Item {
	return domain.Item{
		ID:            id,
		Name:          name,
		Unit:          "kg",
		Quantity:      quantity,
		MinStockLevel: minLevel,
		TrackStock:    true,
	}
}

func TestInventoryService_AdjustStock(t *testing.T) {
	repo := newFakeInventoryRepo(trackedItem(1, "flour", 10, 5))
	alerts := &fakeAlertRepo{}
	svc := service.NewInventoryService(repo, alerts)

	entry, err := svc.AdjustStock(context.Background(), 1, 25, "weekly delivery", 7)
	require.NoError(t, err)

	assert.Equal(t, 10.0, entry.Before)
	assert.Equal(t, 25.0, entry.After)
	assert.Equal(t, 15.0, entry.Delta)
	assert.Equal(t, domain.StockEntryAdjustment, entry.Kind)
	assert.Equal(t, "weekly delivery", entry.Reason)
	assert.Equal(t, uint(7), entry.UserID)

	assert.Equal(t, 25.0, repo.items[1].Quantity)
	assert.Len(t, repo.entries, 1)
}

func TestInventoryService_AdjustStock_ItemNotFound(t *testing.T) {
	svc := service.NewInventoryService(newFakeInventoryRepo(), &fakeAlertRepo{})

	_, err := svc.AdjustStock(context.Background(), 99, 5, "count", 1)
	assert.ErrorIs(t, err, service.ErrItemNotFound)
}

func TestInventoryService_AdjustStock_TrackingDisabled(t *testing.T) {
	item := trackedItem(1, "napkins", 100, 10)
	item.TrackStock = false
	repo := newFakeInventoryRepo(item)
	svc := service.NewInventoryService(repo, &fakeAlertRepo{})

	_, err := svc.AdjustStock(context.Background(), 1, 5, "count", 1)
	assert.ErrorIs(t, err, service.ErrTrackingDisabled)
	assert.Empty(t, repo.entries)
	assert.Equal(t, 100.0, repo.items[1].Quantity)
}

func TestInventoryService_RecordUsage_InsufficientStock(t *testing.T) {
	repo := newFakeInventoryRepo(trackedItem(1, "salmon", 5, 2))
	svc := service.NewInventoryService(repo, &fakeAlertRepo{})

	_, err := svc.RecordUsage(context.Background(), 1, 1000, "", 3)
	require.Error(t, err)

	var insufficientErr *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, uint(1), insufficientErr.ItemID)
	assert.Equal(t, 1000.0, insufficientErr.Requested)
	assert.Equal(t, 5.0, insufficientErr.Available)
	assert.Equal(t, "kg", insufficientErr.Unit)

	assert.Equal(t, 5.0, repo.items[1].Quantity)
	assert.Empty(t, repo.entries)
}

func TestInventoryService_RecordSale_WritesSaleEntry(t *testing.T) {
	repo := newFakeInventoryRepo(trackedItem(1, "steak", 20, 5))
	svc := service.NewInventoryService(repo, &fakeAlertRepo{})

	entry, err := svc.RecordSale(context.Background(), 1, 2, "table 12", 4)
	require.NoError(t, err)

	assert.Equal(t, domain.StockEntrySale, entry.Kind)
	assert.Equal(t, -2.0, entry.Delta)
	assert.Equal(t, 18.0, repo.items[1].Quantity)
}

func TestInventoryService_RecordBulkUsage_AtomicRejection(t *testing.T) {
	repo := newFakeInventoryRepo(
		trackedItem(1, "flour", 10, 2),
		trackedItem(2, "butter", 5, 2),
	)
	svc := service.NewInventoryService(repo, &fakeAlertRepo{})

	_, err := svc.RecordBulkUsage(context.Background(), []domain.StockUsage{
		{ItemID: 1, Quantity: 3},
		{ItemID: 2, Quantity: 1000},
	}, domain.StockEntryUsage, "dinner service", 2)
	require.Error(t, err)

	var bulkErr *service.BulkRejectedError
	require.ErrorAs(t, err, &bulkErr)
	require.Len(t, bulkErr.Rejections, 1)
	assert.Equal(t, uint(2), bulkErr.Rejections[0].ItemID)

	var insufficientErr *service.InsufficientStockError
	require.ErrorAs(t, bulkErr.Rejections[0].Err, &insufficientErr)
	assert.Equal(t, 5.0, insufficientErr.Available)
	assert.Equal(t, 1000.0, insufficientErr.Requested)

	// The whole batch is rejected: item 1 is untouched too.
	assert.Equal(t, 10.0, repo.items[1].Quantity)
	assert.Equal(t, 5.0, repo.items[2].Quantity)
	assert.Empty(t, repo.entries)
}

func TestInventoryService_RecordBulkUsage_Success(t *testing.T) {
	repo := newFakeInventoryRepo(
		trackedItem(1, "flour", 10, 2),
		trackedItem(2, "butter", 5, 2),
	)
	svc := service.NewInventoryService(repo, &fakeAlertRepo{})

	entries, err := svc.RecordBulkUsage(context.Background(), []domain.StockUsage{
		{ItemID: 1, Quantity: 3},
		{ItemID: 2, Quantity: 2},
	}, domain.StockEntryUsage, "dinner service", 2)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, 7.0, repo.items[1].Quantity)
	assert.Equal(t, 3.0, repo.items[2].Quantity)
}

func TestInventoryService_CheckLowStock_Idempotent(t *testing.T) {
	repo := newFakeInventoryRepo(trackedItem(1, "flour", 3, 5))
	alerts := &fakeAlertRepo{}
	svc := service.NewInventoryService(repo, alerts)

	created, err := svc.CheckLowStock(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.CheckLowStock(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Len(t, alerts.unreadForItem(1), 1)
}

func TestInventoryService_CheckLowStock_Boundary(t *testing.T) {
	repo := newFakeInventoryRepo(
		trackedItem(1, "at threshold", 5, 5),
		trackedItem(2, "above threshold", 6, 5),
	)
	alerts := &fakeAlertRepo{}
	svc := service.NewInventoryService(repo, alerts)

	created, err := svc.CheckLowStock(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.CheckLowStock(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, alerts.unreadForItem(2))
}

func TestInventoryService_CheckLowStock_UntrackedItemSkipped(t *testing.T) {
	item := trackedItem(1, "napkins", 0, 10)
	item.TrackStock = false
	svc := service.NewInventoryService(newFakeInventoryRepo(item), &fakeAlertRepo{})

	created, err := svc.CheckLowStock(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestInventoryService_AlertFailureDoesNotRevertMutation(t *testing.T) {
	repo := newFakeInventoryRepo(trackedItem(1, "flour", 6, 5))
	alerts := &fakeAlertRepo{createErr: errors.New("alert store unavailable")}
	svc := service.NewInventoryService(repo, alerts)

	entry, err := svc.RecordUsage(context.Background(), 1, 2, "", 3)
	require.NoError(t, err)

	assert.Equal(t, 4.0, entry.After)
	assert.Equal(t, 4.0, repo.items[1].Quantity)
	assert.Len(t, repo.entries, 1)
	assert.Empty(t, alerts.notifications)
}

// Walks the full workflow: usage drops the item below threshold and
// creates one alert, further usage does not duplicate it, and a restock
// neither creates a new alert nor clears the old one.
func TestInventoryService_LowStockWorkflow(t *testing.T) {
	repo := newFakeInventoryRepo(trackedItem(1, "flour", 10, 5))
	alerts := &fakeAlertRepo{}
	svc := service.NewInventoryService(repo, alerts)
	ctx := context.Background()

	entry, err := svc.RecordUsage(ctx, 1, 6, "lunch prep", 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, entry.Before)
	assert.Equal(t, 4.0, entry.After)
	assert.Equal(t, -6.0, entry.Delta)

	// 4 <= 5: the post-commit check created exactly one unread alert.
	require.Len(t, alerts.unreadForItem(1), 1)
	alert := alerts.unreadForItem(1)[0]
	assert.Equal(t, domain.NotificationCategoryLowStock, alert.Category)
	assert.Equal(t, domain.NotificationPriorityHigh, alert.Priority)
	assert.Equal(t, 4.0, alert.Quantity)
	assert.Equal(t, 5.0, alert.Threshold)

	_, err = svc.RecordUsage(ctx, 1, 1, "", 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, repo.items[1].Quantity)
	assert.Len(t, alerts.unreadForItem(1), 1, "existing unread alert suppresses a second one")

	entry, err = svc.AdjustStock(ctx, 1, 20, "restock", 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, entry.Before)
	assert.Equal(t, 20.0, entry.After)

	created, err := svc.CheckLowStock(ctx, 1)
	require.NoError(t, err)
	assert.False(t, created)

	// Restocking does not auto-resolve the old alert.
	assert.Len(t, alerts.unreadForItem(1), 1)
}

func TestInventoryService_CheckAllLowStock(t *testing.T) {
	lowA := trackedItem(1, "flour", 2, 5)
	lowB := trackedItem(2, "butter", 0, 3)
	fine := trackedItem(3, "salt", 50, 5)
	untracked := trackedItem(4, "napkins", 0, 10)
	untracked.TrackStock = false

	repo := newFakeInventoryRepo(lowA, lowB, fine, untracked)
	alerts := &fakeAlertRepo{}
	svc := service.NewInventoryService(repo, alerts)

	// Item 1 already has an unread alert from an earlier trigger.
	_, err := svc.CheckLowStock(context.Background(), 1)
	require.NoError(t, err)

	report, err := svc.CheckAllLowStock(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Items, 2)
	assert.Equal(t, 1, report.AlertsCreated, "only item 2 was missing an alert")
	assert.Len(t, alerts.unreadForItem(1), 1)
	assert.Len(t, alerts.unreadForItem(2), 1)
}

func TestInventoryService_DashboardSummary(t *testing.T) {
	low := trackedItem(1, "flour", 2, 5)
	out := trackedItem(2, "butter", 0, 3)
	fine := trackedItem(3, "salt", 50, 5)
	untracked := trackedItem(4, "napkins", 0, 10)
	untracked.TrackStock = false

	repo := newFakeInventoryRepo(low, out, fine, untracked)
	alerts := &fakeAlertRepo{}
	svc := service.NewInventoryService(repo, alerts)

	_, err := svc.CheckAllLowStock(context.Background())
	require.NoError(t, err)

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 3, summary.TrackedItems)
	assert.Equal(t, 1, summary.LowStockItems)
	assert.Equal(t, 1, summary.OutOfStockItems)
	assert.Equal(t, int64(2), summary.UnreadAlerts)
}
