package service

import (
	"context"
	"errors"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Unit     string `json:"unit"`
	UnitCost string `json:"unit_cost"`
}

type UpdateProductRequest struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	UnitCost string `json:"unit_cost"`
}

type ProductResponse struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	UnitCost string `json:"unit_cost"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, actor Actor, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, actor Actor, id string, req UpdateProductRequest) (ProductResponse, error)
	ListProducts(ctx context.Context, actor Actor, search string, page, limit int) ([]ProductResponse, int64, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) CreateProduct(ctx context.Context, actor Actor, req CreateProductRequest) (ProductResponse, error) {
	if !actor.IsElevated() {
		return ProductResponse{}, &AuthorizationError{Operation: "create product", Reason: "requires ADMIN or OWNER role"}
	}

	unitCost := decimal.Zero
	if req.UnitCost != "" {
		parsed, err := decimal.NewFromString(req.UnitCost)
		if err != nil {
			return ProductResponse{}, &ValidationError{Field: "unit_cost", Reason: "invalid decimal"}
		}
		unitCost = parsed
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	product := &model.Product{
		OrganizationID: actor.OrganizationID,
		SKU:            req.SKU,
		Name:           req.Name,
		Unit:           unit,
		UnitCost:       unitCost,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor Actor, id string, req UpdateProductRequest) (ProductResponse, error) {
	if !actor.IsElevated() {
		return ProductResponse{}, &AuthorizationError{Operation: "update product", Reason: "requires ADMIN or OWNER role"}
	}

	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, &NotFoundError{Entity: "product", ID: id}
	}

	product, err := s.repo.FindByID(ctx, actor.OrganizationID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, &NotFoundError{Entity: "product", ID: id}
		}
		return ProductResponse{}, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if req.UnitCost != "" {
		parsed, parseErr := decimal.NewFromString(req.UnitCost)
		if parseErr != nil {
			return ProductResponse{}, &ValidationError{Field: "unit_cost", Reason: "invalid decimal"}
		}
		product.UnitCost = parsed
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *productService) ListProducts(ctx context.Context, actor Actor, search string, page, limit int) ([]ProductResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.repo.List(ctx, actor.OrganizationID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res, total, nil
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID.String(),
		SKU:      p.SKU,
		Name:     p.Name,
		Unit:     p.Unit,
		UnitCost: p.UnitCost.StringFixed(4),
	}
}
