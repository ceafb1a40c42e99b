package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateUnreadAlert = errors.New("an unread alert already exists for this item")
)

type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	Category  string `gorm:"not null;index"`
	ItemID    *uint  `gorm:"index"`
	Message   string `gorm:"not null"`
	Priority  string `gorm:"not null;default:'normal'"`
	Quantity  float64
	Threshold float64
	Unit      string
	Read      bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}

type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{
		db: db,
	}
}

// Insert creates the notification. A unique-violation on the partial
// unread-alert index means another unread alert already exists for the
// same item and category; that case maps to ErrDuplicateUnreadAlert so
// callers can treat it as "already alerted" rather than a failure.
func (d *NotificationDAO) Insert(ctx context.Context, notification Notification) (Notification, error) {
	result := d.db.WithContext(ctx).Create(&notification)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, "idx_notifications_unread_item") {
			return Notification{}, ErrDuplicateUnreadAlert
		}

		return Notification{}, result.Error
	}

	return notification, nil
}

func (d *NotificationDAO) HasUnreadForItem(ctx context.Context, category string, itemID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Notification{}).
		Where("category = ? AND item_id = ? AND NOT read", category, itemID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// FindAll lists notifications unread-first, newest-first.
func (d *NotificationDAO) FindAll(ctx context.Context, limit, offset int) ([]Notification, error) {
	var notifications []Notification

	result := d.db.WithContext(ctx).
		Order("read ASC, created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

func (d *NotificationDAO) MarkRead(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (d *NotificationDAO) CountUnread(ctx context.Context, category string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Notification{}).
		Where("category = ? AND NOT read", category).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
