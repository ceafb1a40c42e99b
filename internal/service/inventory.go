package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/restokit/resto-erp/internal/domain"
	"github.com/restokit/resto-erp/internal/repository"
)

var (
	ErrItemNotFound         = repository.ErrItemNotFound
	ErrTrackingDisabled     = repository.ErrTrackingDisabled
	ErrEmptyBulkUsage       = repository.ErrEmptyBulkUsage
	ErrDuplicateUnreadAlert = repository.ErrDuplicateUnreadAlert
)

type (
	InsufficientStockError = repository.InsufficientStockError
	BulkRejectedError      = repository.BulkRejectedError
	BulkRejection          = repository.BulkRejection
)

type InventoryRepository interface {
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	GetItem(ctx context.Context, id uint) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListLowStockItems(ctx context.Context) ([]domain.Item, error)
	ListEntries(ctx context.Context, itemID uint, limit, offset int) ([]domain.StockEntry, error)
	AdjustQuantity(ctx context.Context, itemID uint, newQuantity float64, reason string, userID uint) (domain.StockEntry, error)
	DeductQuantity(ctx context.Context, itemID uint, quantity float64, kind domain.StockEntryKind, reason string, userID uint) (domain.StockEntry, error)
	DeductQuantityBulk(ctx context.Context, usages []domain.StockUsage, kind domain.StockEntryKind, reason string, userID uint) ([]domain.StockEntry, error)
}

type AlertRepository interface {
	Create(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	HasUnreadForItem(ctx context.Context, category string, itemID uint) (bool, error)
	CountUnread(ctx context.Context, category string) (int64, error)
}

type InventoryService struct {
	repo   InventoryRepository
	alerts AlertRepository
}

func NewInventoryService(repo InventoryRepository, alerts AlertRepository) *InventoryService {
	return &InventoryService{
		repo:   repo,
		alerts: alerts,
	}
}

func (s *InventoryService) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("s.repo.CreateItem -> %w", err)
	}

	return created, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id uint) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("s.repo.GetItem -> %w", err)
	}

	return item, nil
}

func (s *InventoryService) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListItems -> %w", err)
	}

	return items, nil
}

func (s *InventoryService) ListItemEntries(ctx context.Context, itemID uint, limit, offset int) ([]domain.StockEntry, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("s.repo.GetItem -> %w", err)
	}

	entries, err := s.repo.ListEntries(ctx, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListEntries -> %w", err)
	}

	return entries, nil
}

// AdjustStock sets the item's quantity to an absolute value. The quantity
// update and its ledger entry commit atomically; the low-stock check runs
// strictly after the commit and can never unwind it.
func (s *InventoryService) AdjustStock(ctx context.Context, itemID uint, newQuantity float64, reason string, userID uint) (domain.StockEntry, error) {
	entry, err := s.repo.AdjustQuantity(ctx, itemID, newQuantity, reason, userID)
	if err != nil {
		return domain.StockEntry{}, fmt.Errorf("s.repo.AdjustQuantity -> %w", err)
	}

	s.checkAfterMutation(ctx, itemID)

	return entry, nil
}

// RecordUsage deducts a used quantity from the item's stock.
func (s *InventoryService) RecordUsage(ctx context.Context, itemID uint, quantity float64, reason string, userID uint) (domain.StockEntry, error) {
	return s.deduct(ctx, itemID, quantity, domain.StockEntryUsage, reason, userID)
}

// RecordSale deducts a sold quantity from the item's stock.
func (s *InventoryService) RecordSale(ctx context.Context, itemID uint, quantity float64, reason string, userID uint) (domain.StockEntry, error) {
	return s.deduct(ctx, itemID, quantity, domain.StockEntrySale, reason, userID)
}

func (s *InventoryService) deduct(ctx context.Context, itemID uint, quantity float64, kind domain.StockEntryKind, reason string, userID uint) (domain.StockEntry, error) {
	entry, err := s.repo.DeductQuantity(ctx, itemID, quantity, kind, reason, userID)
	if err != nil {
		return domain.StockEntry{}, fmt.Errorf("s.repo.DeductQuantity -> %w", err)
	}

	s.checkAfterMutation(ctx, itemID)

	return entry, nil
}

// RecordBulkUsage deducts stock for a whole batch. Every line is
// validated before any item is mutated; the batch either commits in full
// or is rejected with a per-item reason list.
func (s *InventoryService) RecordBulkUsage(ctx context.Context, usages []domain.StockUsage, kind domain.StockEntryKind, reason string, userID uint) ([]domain.StockEntry, error) {
	entries, err := s.repo.DeductQuantityBulk(ctx, usages, kind, reason, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.DeductQuantityBulk -> %w", err)
	}

	seen := make(map[uint]bool, len(usages))
	for _, u := range usages {
		if seen[u.ItemID] {
			continue
		}
		seen[u.ItemID] = true

		s.checkAfterMutation(ctx, u.ItemID)
	}

	return entries, nil
}

// checkAfterMutation runs the low-stock check for an item whose mutation
// has already committed. A failure here is logged, not returned: stock
// accuracy takes precedence over alerting completeness, and the next
// mutation on the same item re-triggers the check.
func (s *InventoryService) checkAfterMutation(ctx context.Context, itemID uint) {
	if _, err := s.CheckLowStock(ctx, itemID); err != nil {
		zap.L().Warn("low-stock check failed after committed stock change",
			zap.Uint("item_id", itemID),
			zap.Error(err),
		)
	}
}

// CheckLowStock re-fetches the item, evaluates its stock status and
// creates an unread low-stock alert if none exists yet. It returns
// whether an alert was created by this call.
func (s *InventoryService) CheckLowStock(ctx context.Context, itemID uint) (bool, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("s.repo.GetItem -> %w", err)
	}

	if !item.TrackStock || !item.IsLowStock() {
		return false, nil
	}

	return s.ensureAlert(ctx, item)
}

// CheckAllLowStock sweeps every tracked item that is at or below its
// threshold and creates the missing alerts. Existing unread alerts are
// left untouched.
func (s *InventoryService) CheckAllLowStock(ctx context.Context) (domain.LowStockReport, error) {
	items, err := s.repo.ListLowStockItems(ctx)
	if err != nil {
		return domain.LowStockReport{}, fmt.Errorf("s.repo.ListLowStockItems -> %w", err)
	}

	report := domain.LowStockReport{Items: items}
	for _, item := range items {
		created, err := s.ensureAlert(ctx, item)
		if err != nil {
			return domain.LowStockReport{}, err
		}
		if created {
			report.AlertsCreated++
		}
	}

	return report, nil
}

// ensureAlert creates an unread low-stock alert for the item unless one
// already exists. A unique-violation from a concurrent trigger counts as
// "already alerted", keeping the at-most-one-unread-alert invariant.
func (s *InventoryService) ensureAlert(ctx context.Context, item domain.Item) (bool, error) {
	exists, err := s.alerts.HasUnreadForItem(ctx, domain.NotificationCategoryLowStock, item.ID)
	if err != nil {
		return false, fmt.Errorf("s.alerts.HasUnreadForItem -> %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = s.alerts.Create(ctx, buildLowStockAlert(item))
	if err != nil {
		if errors.Is(err, ErrDuplicateUnreadAlert) {
			return false, nil
		}

		return false, fmt.Errorf("s.alerts.Create -> %w", err)
	}

	return true, nil
}

func buildLowStockAlert(item domain.Item) domain.Notification {
	itemID := item.ID

	message := fmt.Sprintf("%s is low on stock: %g %s left (minimum %g %s)",
		item.Name, item.Quantity, item.Unit, item.MinStockLevel, item.Unit)
	if item.StockStatus() == domain.StockStatusOutOfStock {
		message = fmt.Sprintf("%s is out of stock", item.Name)
	}

	return domain.Notification{
		Category:  domain.NotificationCategoryLowStock,
		ItemID:    &itemID,
		Message:   message,
		Priority:  domain.NotificationPriorityHigh,
		Quantity:  item.Quantity,
		Threshold: item.MinStockLevel,
		Unit:      item.Unit,
	}
}

// DashboardSummary aggregates read-only inventory counters.
func (s *InventoryService) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("s.repo.ListItems -> %w", err)
	}

	var summary domain.DashboardSummary
	summary.TotalItems = len(items)
	for _, item := range items {
		if !item.TrackStock {
			continue
		}
		summary.TrackedItems++

		switch item.StockStatus() {
		case domain.StockStatusLowStock:
			summary.LowStockItems++
		case domain.StockStatusOutOfStock:
			summary.OutOfStockItems++
		}
	}

	unread, err := s.alerts.CountUnread(ctx, domain.NotificationCategoryLowStock)
	if err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("s.alerts.CountUnread -> %w", err)
	}
	summary.UnreadAlerts = unread

	return summary, nil
}
