package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents an item in the catalog (drug, consumable, device...)
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_org_sku" json:"organization_id"`
	SKU            string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_org_sku" json:"sku"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit           string          `gorm:"type:varchar(50);not null;default:'unit'" json:"unit"` // box, vial, tablet...
	UnitCost       decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_cost"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// StockBatch is a specific lot of a product held by a department. Available
// and reserved quantities only move through the stock ledger repository —
// never through direct handler-level updates.
type StockBatch struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DepartmentID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_dept_product" json:"department_id"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_dept_product" json:"product_id"`
	Product           *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	LotNumber         string          `gorm:"type:varchar(100);not null" json:"lot_number"`
	ExpiryDate        *time.Time      `json:"expiry_date"` // nil means the lot never expires
	AvailableQuantity int             `gorm:"type:int;not null;default:0" json:"available_quantity"`
	ReservedQuantity  int             `gorm:"type:int;not null;default:0" json:"reserved_quantity"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_cost"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DepartmentStock is a read-only aggregation of a department's batches for
// one product.
type DepartmentStock struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductSKU  string    `json:"product_sku"`
	ProductName string    `json:"product_name"`
	Available   int       `json:"available"`
	Reserved    int       `json:"reserved"`
	BatchCount  int       `json:"batch_count"`
}
