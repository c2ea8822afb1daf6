package repository

import (
	"context"
	"fmt"
	"time"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransferRepository is the persistence boundary of the transfer workflow.
type TransferRepository interface {
	Create(ctx context.Context, transfer *model.Transfer) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Transfer, error)
	// FindForUpdate locks the transfer row for the duration of the enclosing
	// transaction and loads its items with their batch allocations. Every
	// transition re-reads state through this method so out-of-order or
	// concurrent calls observe current statuses.
	FindForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.Transfer, error)
	Save(ctx context.Context, transfer *model.Transfer) error
	SaveItem(ctx context.Context, item *model.TransferItem) error
	CreateItemBatches(ctx context.Context, batches []model.TransferItemBatch) error
	NextCode(ctx context.Context) (string, error)
}

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *model.Transfer) error {
	return GetDB(ctx, r.db).Create(transfer).Error
}

func (r *transferRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Transfer, error) {
	var transfer model.Transfer
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Batches").
		Preload("Items.Batches.Batch").
		Preload("RequestingDepartment").
		Preload("SupplyingDepartment").
		First(&transfer, "id = ? AND organization_id = ?", id, orgID).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepository) FindForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.Transfer, error) {
	var transfer model.Transfer
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Preload("Items.Batches").
		First(&transfer, "id = ? AND organization_id = ?", id, orgID).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepository) Save(ctx context.Context, transfer *model.Transfer) error {
	return GetDB(ctx, r.db).Omit("Items", "History").Save(transfer).Error
}

func (r *transferRepository) SaveItem(ctx context.Context, item *model.TransferItem) error {
	return GetDB(ctx, r.db).Omit("Batches").Save(item).Error
}

func (r *transferRepository) CreateItemBatches(ctx context.Context, batches []model.TransferItemBatch) error {
	return GetDB(ctx, r.db).Create(&batches).Error
}

// NextCode generates the next sequential transfer code for today, in the form
// TRF-YYYYMMDD-NNNNN. A pg advisory xact lock prevents concurrent duplicates.
func (r *transferRepository) NextCode(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)

	today := time.Now().Format("20060102")
	prefix := "TRF-" + today + "-"

	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	var count int64
	if err := db.Model(&model.Transfer{}).
		Where("code LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
