package repository

import (
	"context"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository appends immutable transfer transition records. There is no
// update or delete path.
type HistoryRepository interface {
	Append(ctx context.Context, record *model.TransferHistory) error
	ListByTransfer(ctx context.Context, transferID uuid.UUID) ([]model.TransferHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, record *model.TransferHistory) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *historyRepository) ListByTransfer(ctx context.Context, transferID uuid.UUID) ([]model.TransferHistory, error) {
	var records []model.TransferHistory
	err := GetDB(ctx, r.db).
		Where("transfer_id = ?", transferID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
