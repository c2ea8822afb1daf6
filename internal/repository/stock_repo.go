package repository

import (
	"context"
	"errors"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned when a conditional reserve would push a
// batch's available quantity below zero. The service layer wraps it with
// batch-level detail.
var ErrInsufficientStock = errors.New("insufficient available quantity")

// StockLedger is the single write path for batch quantities. "Check then
// decrement" runs as one conditional UPDATE so concurrent reservations can
// never jointly over-allocate a batch.
type StockLedger interface {
	GetAvailableBatches(ctx context.Context, departmentID, productID uuid.UUID) ([]model.StockBatch, error)
	// GetBatchesForUpdate locks the department's batch rows for the enclosing
	// transaction; prepare-time validation reads through this.
	GetBatchesForUpdate(ctx context.Context, departmentID, productID uuid.UUID) ([]model.StockBatch, error)
	// Reserve moves qty from available to reserved on one batch. Returns
	// ErrInsufficientStock if the batch does not hold qty available units.
	Reserve(ctx context.Context, batchID uuid.UUID, qty int) error
	// Release moves qty from reserved back to available (item cancellation).
	Release(ctx context.Context, batchID uuid.UUID, qty int) error
	// Commit finalizes a delivery for one batch: the supplying side's reserved
	// quantity drops by reservedQty, the undelivered remainder
	// (reservedQty - deliveredQty) returns to its available pool, and the
	// delivered units are added to the receiving department under the same lot.
	Commit(ctx context.Context, batchID uuid.UUID, reservedQty, deliveredQty int, toDepartmentID uuid.UUID) error
	CreateBatch(ctx context.Context, batch *model.StockBatch) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockLedger {
	return &stockRepository{db: db}
}

func (r *stockRepository) GetAvailableBatches(ctx context.Context, departmentID, productID uuid.UUID) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	err := GetDB(ctx, r.db).
		Where("department_id = ? AND product_id = ? AND available_quantity > 0", departmentID, productID).
		Order("expiry_date ASC NULLS LAST, created_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *stockRepository) GetBatchesForUpdate(ctx context.Context, departmentID, productID uuid.UUID) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("department_id = ? AND product_id = ?", departmentID, productID).
		Order("expiry_date ASC NULLS LAST, created_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *stockRepository) Reserve(ctx context.Context, batchID uuid.UUID, qty int) error {
	res := GetDB(ctx, r.db).Model(&model.StockBatch{}).
		Where("id = ? AND available_quantity >= ?", batchID, qty).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity - ?", qty),
			"reserved_quantity":  gorm.Expr("reserved_quantity + ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *stockRepository) Release(ctx context.Context, batchID uuid.UUID, qty int) error {
	return GetDB(ctx, r.db).Model(&model.StockBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", qty),
			"reserved_quantity":  gorm.Expr("reserved_quantity - ?", qty),
		}).Error
}

func (r *stockRepository) Commit(ctx context.Context, batchID uuid.UUID, reservedQty, deliveredQty int, toDepartmentID uuid.UUID) error {
	db := GetDB(ctx, r.db)

	var source model.StockBatch
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&source, "id = ?", batchID).Error; err != nil {
		return err
	}

	returned := reservedQty - deliveredQty
	if err := db.Model(&model.StockBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", returned),
			"reserved_quantity":  gorm.Expr("reserved_quantity - ?", reservedQty),
		}).Error; err != nil {
		return err
	}

	if deliveredQty == 0 {
		return nil
	}

	// Land the delivered units in the receiving department under the same lot,
	// creating the destination batch on first receipt.
	var dest model.StockBatch
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("department_id = ? AND product_id = ? AND lot_number = ?",
			toDepartmentID, source.ProductID, source.LotNumber).
		First(&dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dest = model.StockBatch{
			DepartmentID:      toDepartmentID,
			ProductID:         source.ProductID,
			LotNumber:         source.LotNumber,
			ExpiryDate:        source.ExpiryDate,
			AvailableQuantity: deliveredQty,
			UnitCost:          source.UnitCost,
		}
		return db.Create(&dest).Error
	}
	if err != nil {
		return err
	}

	return db.Model(&model.StockBatch{}).
		Where("id = ?", dest.ID).
		Update("available_quantity", gorm.Expr("available_quantity + ?", deliveredQty)).Error
}

func (r *stockRepository) CreateBatch(ctx context.Context, batch *model.StockBatch) error {
	return GetDB(ctx, r.db).Create(batch).Error
}
