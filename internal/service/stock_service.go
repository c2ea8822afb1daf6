package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type ReceiveStockRequest struct {
	ProductID  string `json:"product_id" binding:"required"`
	LotNumber  string `json:"lot_number" binding:"required"`
	ExpiryDate string `json:"expiry_date"` // RFC3339 date, empty for non-expiring lots
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	UnitCost   string `json:"unit_cost"`
}

type StockBatchResponse struct {
	ID                string  `json:"id"`
	ProductID         string  `json:"product_id"`
	LotNumber         string  `json:"lot_number"`
	ExpiryDate        *string `json:"expiry_date"`
	AvailableQuantity int     `json:"available_quantity"`
	ReservedQuantity  int     `json:"reserved_quantity"`
	UnitCost          string  `json:"unit_cost"`
}

// StockService covers the stock-facing CRUD around the ledger: receiving new
// batches and read views. Reservation and commit paths belong to the transfer
// workflow only.
type StockService interface {
	ReceiveStock(ctx context.Context, actor Actor, departmentID string, req ReceiveStockRequest) (StockBatchResponse, error)
	ListBatches(ctx context.Context, actor Actor, departmentID, productID string) ([]StockBatchResponse, error)
	GetDepartmentStock(ctx context.Context, actor Actor, departmentID string) ([]model.DepartmentStock, error)
}

type stockService struct {
	ledger      repository.StockLedger
	deptRepo    repository.DepartmentRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewStockService(ledger repository.StockLedger, deptRepo repository.DepartmentRepository, productRepo repository.ProductRepository, db *gorm.DB) StockService {
	return &stockService{ledger: ledger, deptRepo: deptRepo, productRepo: productRepo, db: db}
}

func (s *stockService) ReceiveStock(ctx context.Context, actor Actor, departmentID string, req ReceiveStockRequest) (StockBatchResponse, error) {
	deptID, err := uuid.Parse(departmentID)
	if err != nil {
		return StockBatchResponse{}, &NotFoundError{Entity: "department", ID: departmentID}
	}
	if !actor.InDepartment(deptID) && !actor.IsElevated() {
		return StockBatchResponse{}, &AuthorizationError{Operation: "receive stock", Reason: "requires membership in the receiving department"}
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return StockBatchResponse{}, &ValidationError{Field: "product_id", Reason: "invalid id"}
	}
	if strings.TrimSpace(req.LotNumber) == "" {
		return StockBatchResponse{}, &ValidationError{Field: "lot_number", Reason: "lot number is required"}
	}
	if req.Quantity <= 0 {
		return StockBatchResponse{}, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}

	if _, err := s.deptRepo.FindByID(ctx, actor.OrganizationID, deptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StockBatchResponse{}, &NotFoundError{Entity: "department", ID: departmentID}
		}
		return StockBatchResponse{}, err
	}
	product, err := s.productRepo.FindByID(ctx, actor.OrganizationID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StockBatchResponse{}, &NotFoundError{Entity: "product", ID: req.ProductID}
		}
		return StockBatchResponse{}, err
	}

	var expiry *time.Time
	if req.ExpiryDate != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ExpiryDate)
		if parseErr != nil {
			parsed, parseErr = time.Parse("2006-01-02", req.ExpiryDate)
		}
		if parseErr != nil {
			return StockBatchResponse{}, &ValidationError{Field: "expiry_date", Reason: "must be RFC3339 or YYYY-MM-DD"}
		}
		expiry = &parsed
	}

	unitCost := product.UnitCost
	if req.UnitCost != "" {
		parsed, parseErr := decimal.NewFromString(req.UnitCost)
		if parseErr != nil {
			return StockBatchResponse{}, &ValidationError{Field: "unit_cost", Reason: "invalid decimal"}
		}
		unitCost = parsed
	}

	batch := &model.StockBatch{
		DepartmentID:      deptID,
		ProductID:         productID,
		LotNumber:         req.LotNumber,
		ExpiryDate:        expiry,
		AvailableQuantity: req.Quantity,
		UnitCost:          unitCost,
	}
	if err := s.ledger.CreateBatch(ctx, batch); err != nil {
		return StockBatchResponse{}, err
	}

	return toStockBatchResponse(batch), nil
}

// ListBatches returns a department's batches for one product in the
// allocator's FIFO-by-expiry order — the order the preparing operator should
// consume them in.
func (s *stockService) ListBatches(ctx context.Context, actor Actor, departmentID, productID string) ([]StockBatchResponse, error) {
	deptID, err := uuid.Parse(departmentID)
	if err != nil {
		return nil, &NotFoundError{Entity: "department", ID: departmentID}
	}
	pID, err := uuid.Parse(productID)
	if err != nil {
		return nil, &ValidationError{Field: "product_id", Reason: "invalid id"}
	}

	if _, err := s.deptRepo.FindByID(ctx, actor.OrganizationID, deptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "department", ID: departmentID}
		}
		return nil, err
	}

	batches, err := s.ledger.GetAvailableBatches(ctx, deptID, pID)
	if err != nil {
		return nil, err
	}

	sorted := SortForAllocation(batches)
	res := make([]StockBatchResponse, 0, len(sorted))
	for i := range sorted {
		res = append(res, toStockBatchResponse(&sorted[i]))
	}
	return res, nil
}

func (s *stockService) GetDepartmentStock(ctx context.Context, actor Actor, departmentID string) ([]model.DepartmentStock, error) {
	deptID, err := uuid.Parse(departmentID)
	if err != nil {
		return nil, &NotFoundError{Entity: "department", ID: departmentID}
	}

	if _, err := s.deptRepo.FindByID(ctx, actor.OrganizationID, deptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "department", ID: departmentID}
		}
		return nil, err
	}

	var stock []model.DepartmentStock
	if err := s.db.WithContext(ctx).Table("stock_batches").
		Select("products.id as product_id, products.sku as product_sku, products.name as product_name, SUM(stock_batches.available_quantity) as available, SUM(stock_batches.reserved_quantity) as reserved, COUNT(*) as batch_count").
		Joins("JOIN products ON products.id = stock_batches.product_id").
		Where("stock_batches.department_id = ?", deptID).
		Group("products.id, products.sku, products.name").
		Order("products.name ASC").
		Scan(&stock).Error; err != nil {
		return nil, err
	}

	return stock, nil
}

func toStockBatchResponse(b *model.StockBatch) StockBatchResponse {
	resp := StockBatchResponse{
		ID:                b.ID.String(),
		ProductID:         b.ProductID.String(),
		LotNumber:         b.LotNumber,
		AvailableQuantity: b.AvailableQuantity,
		ReservedQuantity:  b.ReservedQuantity,
		UnitCost:          b.UnitCost.StringFixed(4),
	}
	if b.ExpiryDate != nil {
		formatted := b.ExpiryDate.Format("2006-01-02")
		resp.ExpiryDate = &formatted
	}
	return resp
}
