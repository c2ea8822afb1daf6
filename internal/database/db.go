package database

import (
	"medstock/internal/logging"
	"medstock/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.Member{},
		&model.Department{},
		&model.DepartmentMember{},
		&model.Product{},
		&model.StockBatch{},
		&model.Transfer{},
		&model.TransferItem{},
		&model.TransferItemBatch{},
		&model.TransferHistory{},
	)
	if err != nil {
		logging.GetLogger().WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}
