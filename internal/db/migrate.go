package db

import (
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Wallet{},
		&models.Order{},
		&models.Position{},
		&models.Settlement{},
		&models.AuditEntry{},
		&models.FeedSnapshot{},
	)
}
