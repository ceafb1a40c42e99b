package repository

import (
	"context"
	"fmt"

	"github.com/restokit/resto-erp/internal/domain"
	"github.com/restokit/resto-erp/internal/repository/dao"
)

var (
	ErrItemNotFound     = dao.ErrItemNotFound
	ErrTrackingDisabled = dao.ErrTrackingDisabled
	ErrEmptyBulkUsage   = dao.ErrEmptyBulkUsage
)

// Typed errors produced inside the mutation transaction; re-exported so
// upper layers never import the dao package for errors.As checks.
type (
	InsufficientStockError = dao.InsufficientStockError
	BulkRejectedError      = dao.BulkRejectedError
	BulkRejection          = dao.BulkRejection
)

type ItemDAO interface {
	Insert(ctx context.Context, item dao.Item) (dao.Item, error)
	FindByID(ctx context.Context, id uint) (dao.Item, error)
	FindAll(ctx context.Context) ([]dao.Item, error)
	FindTrackedBelowThreshold(ctx context.Context) ([]dao.Item, error)
	FindEntriesByItemID(ctx context.Context, itemID uint, limit, offset int) ([]dao.StockEntry, error)
	AdjustQuantity(ctx context.Context, itemID uint, newQuantity float64, reason string, userID uint) (dao.StockEntry, error)
	DeductQuantity(ctx context.Context, itemID uint, quantity float64, kind, reason string, userID uint) (dao.StockEntry, error)
	DeductQuantityBulk(ctx context.Context, usages []dao.UsageLine, kind, reason string, userID uint) ([]dao.StockEntry, error)
}

type InventoryRepository struct {
	dao ItemDAO
}

func NewInventoryRepository(dao ItemDAO) *InventoryRepository {
	return &InventoryRepository{
		dao: dao,
	}
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	created, err := r.dao.Insert(ctx, r.itemDomainToDao(item))
	if err != nil {
		return domain.Item{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.itemDaoToDomain(created), nil
}

func (r *InventoryRepository) GetItem(ctx context.Context, id uint) (domain.Item, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.itemDaoToDomain(found), nil
}

func (r *InventoryRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.itemsDaoToDomain(found), nil
}

func (r *InventoryRepository) ListLowStockItems(ctx context.Context) ([]domain.Item, error) {
	found, err := r.dao.FindTrackedBelowThreshold(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTrackedBelowThreshold -> %w", err)
	}

	return r.itemsDaoToDomain(found), nil
}

func (r *InventoryRepository) ListEntries(ctx context.Context, itemID uint, limit, offset int) ([]domain.StockEntry, error) {
	found, err := r.dao.FindEntriesByItemID(ctx, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindEntriesByItemID -> %w", err)
	}

	entries := make([]domain.StockEntry, len(found))
	for i, e := range found {
		entries[i] = r.entryDaoToDomain(e)
	}

	return entries, nil
}

func (r *InventoryRepository) AdjustQuantity(ctx context.Context, itemID uint, newQuantity float64, reason string, userID uint) (domain.StockEntry, error) {
	entry, err := r.dao.AdjustQuantity(ctx, itemID, newQuantity, reason, userID)
	if err != nil {
		return domain.StockEntry{}, fmt.Errorf("r.dao.AdjustQuantity -> %w", err)
	}

	return r.entryDaoToDomain(entry), nil
}

func (r *InventoryRepository) DeductQuantity(ctx context.Context, itemID uint, quantity float64, kind domain.StockEntryKind, reason string, userID uint) (domain.StockEntry, error) {
	entry, err := r.dao.DeductQuantity(ctx, itemID, quantity, string(kind), reason, userID)
	if err != nil {
		return domain.StockEntry{}, fmt.Errorf("r.dao.DeductQuantity -> %w", err)
	}

	return r.entryDaoToDomain(entry), nil
}

func (r *InventoryRepository) DeductQuantityBulk(ctx context.Context, usages []domain.StockUsage, kind domain.StockEntryKind, reason string, userID uint) ([]domain.StockEntry, error) {
	lines := make([]dao.UsageLine, len(usages))
	for i, u := range usages {
		lines[i] = dao.UsageLine{
			ItemID:   u.ItemID,
			Quantity: u.Quantity,
		}
	}

	created, err := r.dao.DeductQuantityBulk(ctx, lines, string(kind), reason, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.DeductQuantityBulk -> %w", err)
	}

	entries := make([]domain.StockEntry, len(created))
	for i, e := range created {
		entries[i] = r.entryDaoToDomain(e)
	}

	return entries, nil
}

func (r *InventoryRepository) itemDomainToDao(item domain.Item) dao.Item {
	return dao.Item{
		ID:            item.ID,
		Name:          item.Name,
		Category:      item.Category,
		Unit:          item.Unit,
		Quantity:      item.Quantity,
		MinStockLevel: item.MinStockLevel,
		TrackStock:    item.TrackStock,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func (r *InventoryRepository) itemDaoToDomain(item dao.Item) domain.Item {
	return domain.Item{
		ID:            item.ID,
		Name:          item.Name,
		Category:      item.Category,
		Unit:          item.Unit,
		Quantity:      item.Quantity,
		MinStockLevel: item.MinStockLevel,
		TrackStock:    item.TrackStock,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func (r *InventoryRepository) itemsDaoToDomain(items []dao.Item) []domain.Item {
	domainItems := make([]domain.Item, len(items))
	for i, item := range items {
		domainItems[i] = r.itemDaoToDomain(item)
	}

	return domainItems
}

func (r *InventoryRepository) entryDaoToDomain(entry dao.StockEntry) domain.StockEntry {
	return domain.StockEntry{
		ID:        entry.ID,
		ItemID:    entry.ItemID,
		Kind:      domain.StockEntryKind(entry.Kind),
		Delta:     entry.Delta,
		Before:    entry.Before,
		After:     entry.After,
		Reason:    entry.Reason,
		UserID:    entry.UserID,
		CreatedAt: entry.CreatedAt,
	}
}
