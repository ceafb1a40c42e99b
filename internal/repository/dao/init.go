package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Item{},
		&StockEntry{},
		&Notification{},
	)
	if err != nil {
		return err
	}

	// Enforces "at most one unread alert per item and category" in the
	// store itself, so concurrent low-stock checks cannot both insert.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_unread_item
		ON notifications (item_id, category) WHERE NOT read`).Error
}
