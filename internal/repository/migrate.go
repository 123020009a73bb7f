package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every persisted model,
// including the partial unique indexes the allocation ledger relies on.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&roomModel{},
		&allocationModel{},
	)
}
