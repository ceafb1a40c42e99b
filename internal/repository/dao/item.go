package dao

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrTrackingDisabled = errors.New("stock tracking is disabled for this item")
	ErrEmptyBulkUsage   = errors.New("bulk usage requires at least one item")
)

const (
	StockEntryAdjustment = "adjustment"
	StockEntryUsage      = "usage"
	StockEntrySale       = "sale"
)

// InsufficientStockError is returned when a deduction asks for more than
// the item currently holds. It carries enough detail for the caller to
// render a precise message.
type InsufficientStockError struct {
	ItemID    uint    `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Requested float64 `json:"requested"`
	Available float64 `json:"available"`
	Unit      string  `json:"unit"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %q (id %d): requested %g %s, available %g %s",
		e.ItemName, e.ItemID, e.Requested, e.Unit, e.Available, e.Unit)
}

// BulkRejection is one item's reason for rejecting a whole batch.
type BulkRejection struct {
	ItemID uint   `json:"item_id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// BulkRejectedError is returned when a bulk deduction fails validation.
// The batch is atomic: when this error is returned, no item was mutated
// and no ledger entry was written.
type BulkRejectedError struct {
	Rejections []BulkRejection `json:"rejections"`
}

func (e *BulkRejectedError) Error() string {
	reasons := make([]string, len(e.Rejections))
	for i, r := range e.Rejections {
		reasons[i] = fmt.Sprintf("item %d: %s", r.ItemID, r.Reason)
	}

	return "bulk stock deduction rejected: " + strings.Join(reasons, "; ")
}

type Item struct {
	ID            uint    `gorm:"primaryKey"`
	Name          string  `gorm:"not null"`
	Category      string  `gorm:"not null;default:''"`
	Unit          string  `gorm:"not null"`
	Quantity      float64 `gorm:"not null;default:0"`
	MinStockLevel float64 `gorm:"not null;default:0"`
	TrackStock    bool    `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type StockEntry struct {
	ID        uint    `gorm:"primaryKey"`
	ItemID    uint    `gorm:"not null;index"`
	Item      Item    `gorm:"foreignKey:ItemID"`
	Kind      string  `gorm:"not null"`
	Delta     float64 `gorm:"not null"`
	Before    float64 `gorm:"not null"`
	After     float64 `gorm:"not null"`
	Reason    string
	UserID    uint `gorm:"not null"`
	CreatedAt time.Time
}

// UsageLine is one (item, quantity) pair of a bulk deduction.
type UsageLine struct {
	ItemID   uint
	Quantity float64
}

type ItemDAO struct {
	db *gorm.DB
}

func NewItemDAO(db *gorm.DB) *ItemDAO {
	return &ItemDAO{
		db: db,
	}
}

func (d *ItemDAO) Insert(ctx context.Context, item Item) (Item, error) {
	result := d.db.WithContext(ctx).Create(&item)
	if result.Error != nil {
		return Item{}, result.Error
	}

	return item, nil
}

func (d *ItemDAO) FindByID(ctx context.Context, id uint) (Item, error) {
	var item Item

	result := d.db.WithContext(ctx).First(&item, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Item{}, ErrItemNotFound
		}

		return Item{}, result.Error
	}

	return item, nil
}

func (d *ItemDAO) FindAll(ctx context.Context) ([]Item, error) {
	var items []Item

	result := d.db.WithContext(ctx).Order("name").Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// FindTrackedBelowThreshold returns all tracked items whose quantity is
// at or below their minimum stock level.
func (d *ItemDAO) FindTrackedBelowThreshold(ctx context.Context) ([]Item, error) {
	var items []Item

	result := d.db.WithContext(ctx).
		Where("track_stock AND quantity <= min_stock_level").
		Order("id").
		Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

func (d *ItemDAO) FindEntriesByItemID(ctx context.Context, itemID uint, limit, offset int) ([]StockEntry, error) {
	var entries []StockEntry

	result := d.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// lockItem loads the item under a FOR UPDATE row lock so that concurrent
// mutations of the same item serialize on the storage layer.
func lockItem(tx *gorm.DB, id uint) (Item, error) {
	var item Item

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Item{}, ErrItemNotFound
		}

		return Item{}, result.Error
	}

	return item, nil
}

// writeMutation applies the quantity change and appends the ledger entry.
// Both writes happen inside the caller's transaction.
func writeMutation(tx *gorm.DB, item Item, kind string, newQuantity float64, reason string, userID uint) (StockEntry, error) {
	entry := StockEntry{
		ItemID: item.ID,
		Kind:   kind,
		Delta:  newQuantity - item.Quantity,
		Before: item.Quantity,
		After:  newQuantity,
		Reason: reason,
		UserID: userID,
	}

	if err := tx.Model(&Item{}).Where("id = ?", item.ID).Update("quantity", newQuantity).Error; err != nil {
		return StockEntry{}, err
	}

	if err := tx.Create(&entry).Error; err != nil {
		return StockEntry{}, err
	}

	return entry, nil
}

// AdjustQuantity sets the item's quantity to an absolute value and
// appends a ledger entry, as one atomic unit.
func (d *ItemDAO) AdjustQuantity(ctx context.Context, itemID uint, newQuantity float64, reason string, userID uint) (StockEntry, error) {
	var entry StockEntry

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockItem(tx, itemID)
		if err != nil {
			return err
		}

		if !item.TrackStock {
			return ErrTrackingDisabled
		}

		entry, err = writeMutation(tx, item, StockEntryAdjustment, newQuantity, reason, userID)

		return err
	})
	if err != nil {
		return StockEntry{}, err
	}

	return entry, nil
}

// DeductQuantity subtracts quantity from the item and appends a ledger
// entry of the given kind, as one atomic unit. The deduction fails with
// InsufficientStockError when the item holds less than requested.
func (d *ItemDAO) DeductQuantity(ctx context.Context, itemID uint, quantity float64, kind, reason string, userID uint) (StockEntry, error) {
	var entry StockEntry

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockItem(tx, itemID)
		if err != nil {
			return err
		}

		if !item.TrackStock {
			return ErrTrackingDisabled
		}

		if item.Quantity < quantity {
			return &InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: quantity,
				Available: item.Quantity,
				Unit:      item.Unit,
			}
		}

		entry, err = writeMutation(tx, item, kind, item.Quantity-quantity, reason, userID)

		return err
	})
	if err != nil {
		return StockEntry{}, err
	}

	return entry, nil
}

// DeductQuantityBulk validates every line before mutating any item. All
// items are locked in ascending ID order inside one transaction; either
// every mutation and ledger entry commits, or nothing does.
func (d *ItemDAO) DeductQuantityBulk(ctx context.Context, usages []UsageLine, kind, reason string, userID uint) ([]StockEntry, error) {
	if len(usages) == 0 {
		return nil, ErrEmptyBulkUsage
	}

	// Duplicate lines for the same item count against it together.
	requested := make(map[uint]float64, len(usages))
	for _, u := range usages {
		requested[u.ItemID] += u.Quantity
	}

	ids := make([]uint, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var entries []StockEntry

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []Item
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&items)
		if result.Error != nil {
			return result.Error
		}

		byID := make(map[uint]Item, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}

		var rejections []BulkRejection
		for _, id := range ids {
			item, ok := byID[id]
			switch {
			case !ok:
				rejections = append(rejections, BulkRejection{
					ItemID: id,
					Reason: ErrItemNotFound.Error(),
					Err:    ErrItemNotFound,
				})
			case !item.TrackStock:
				rejections = append(rejections, BulkRejection{
					ItemID: id,
					Reason: ErrTrackingDisabled.Error(),
					Err:    ErrTrackingDisabled,
				})
			case item.Quantity < requested[id]:
				insufficient := &InsufficientStockError{
					ItemID:    item.ID,
					ItemName:  item.Name,
					Requested: requested[id],
					Available: item.Quantity,
					Unit:      item.Unit,
				}
				rejections = append(rejections, BulkRejection{
					ItemID: id,
					Reason: insufficient.Error(),
					Err:    insufficient,
				})
			}
		}
		if len(rejections) > 0 {
			return &BulkRejectedError{Rejections: rejections}
		}

		entries = make([]StockEntry, 0, len(usages))
		for _, u := range usages {
			item := byID[u.ItemID]

			entry, err := writeMutation(tx, item, kind, item.Quantity-u.Quantity, reason, userID)
			if err != nil {
				return err
			}

			item.Quantity -= u.Quantity
			byID[u.ItemID] = item

			entries = append(entries, entry)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
