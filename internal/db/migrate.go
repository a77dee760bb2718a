package db

import (
	"github.com/piyawatSritavong/upgrade-order-report/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	// Parents first so foreign keys resolve on a fresh database.
	return db.Gorm.AutoMigrate(
		&models.Category{},
		&models.Subcategory{},
		&models.Order{},
		&models.OrderItem{},
	)
}
