package service

import (
	"context"
	"time"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type TransferFilter struct {
	Status       string
	Priority     string
	DepartmentID string // matches either side of the transfer
	Page         int
	Limit        int
}

type TransferListEntry struct {
	ID                     string `json:"id"`
	Code                   string `json:"code"`
	Title                  string `json:"title"`
	Priority               string `json:"priority"`
	Status                 string `json:"status"`
	RequestingDepartmentID string `json:"requesting_department_id"`
	SupplyingDepartmentID  string `json:"supplying_department_id"`
	ItemCount              int    `json:"item_count"`
	RequestedAt            string `json:"requested_at"`
}

type TransferStats struct {
	Pending      int64           `json:"pending"`
	Approved     int64           `json:"approved"`
	Prepared     int64           `json:"prepared"`
	Completed    int64           `json:"completed"`
	Cancelled    int64           `json:"cancelled"`
	TopRequested []ProductDemand `json:"top_requested"`
}

type ProductDemand struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	TotalQuantity int64     `json:"total_quantity"`
}

type HistoryEntry struct {
	ID            string  `json:"id"`
	TransferID    string  `json:"transfer_id"`
	ItemID        *string `json:"item_id"`
	Action        string  `json:"action"`
	FromStatus    string  `json:"from_status"`
	ToStatus      string  `json:"to_status"`
	ChangedByID   string  `json:"changed_by_id"`
	ChangedByName string  `json:"changed_by_name"`
	ChangedByRole string  `json:"changed_by_role"`
	Notes         string  `json:"notes,omitempty"`
	Details       string  `json:"details,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// TransferQueryService computes read-only projections of persisted transfer
// state. No business logic lives here.
type TransferQueryService interface {
	ListTransfers(ctx context.Context, actor Actor, filter TransferFilter) ([]TransferListEntry, int64, error)
	GetStats(ctx context.Context, actor Actor) (TransferStats, error)
	GetHistory(ctx context.Context, actor Actor, transferID string) ([]HistoryEntry, error)
}

type transferQueryService struct {
	db *gorm.DB
}

func NewTransferQueryService(db *gorm.DB) TransferQueryService {
	return &transferQueryService{db: db}
}

func (s *transferQueryService) ListTransfers(ctx context.Context, actor Actor, filter TransferFilter) ([]TransferListEntry, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&model.Transfer{}).
		Where("organization_id = ?", actor.OrganizationID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.DepartmentID != "" {
		if deptID, err := uuid.Parse(filter.DepartmentID); err == nil {
			query = query.Where("requesting_department_id = ? OR supplying_department_id = ?", deptID, deptID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transfers []model.Transfer
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Items").
		Order("requested_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transfers).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]TransferListEntry, 0, len(transfers))
	for _, t := range transfers {
		entries = append(entries, TransferListEntry{
			ID:                     t.ID.String(),
			Code:                   t.Code,
			Title:                  t.Title,
			Priority:               t.Priority,
			Status:                 t.Status,
			RequestingDepartmentID: t.RequestingDepartmentID.String(),
			SupplyingDepartmentID:  t.SupplyingDepartmentID.String(),
			ItemCount:              len(t.Items),
			RequestedAt:            t.RequestedAt.Format(time.RFC3339),
		})
	}

	return entries, total, nil
}

func (s *transferQueryService) GetStats(ctx context.Context, actor Actor) (TransferStats, error) {
	var stats TransferStats

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := s.db.WithContext(ctx).Model(&model.Transfer{}).
		Select("status, COUNT(*) as count").
		Where("organization_id = ?", actor.OrganizationID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return stats, err
	}

	for _, c := range counts {
		switch c.Status {
		case model.TransferStatusPending:
			stats.Pending = c.Count
		case model.TransferStatusApproved:
			stats.Approved = c.Count
		case model.TransferStatusPrepared:
			stats.Prepared = c.Count
		case model.TransferStatusCompleted:
			stats.Completed = c.Count
		case model.TransferStatusCancelled:
			stats.Cancelled = c.Count
		}
	}

	var demand []ProductDemand
	if err := s.db.WithContext(ctx).Table("transfer_items").
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, SUM(transfer_items.requested_quantity) as total_quantity").
		Joins("JOIN products ON products.id = transfer_items.product_id").
		Joins("JOIN transfers ON transfers.id = transfer_items.transfer_id").
		Where("transfers.organization_id = ?", actor.OrganizationID).
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&demand).Error; err != nil {
		return stats, err
	}
	stats.TopRequested = demand

	return stats, nil
}

func (s *transferQueryService) GetHistory(ctx context.Context, actor Actor, transferID string) ([]HistoryEntry, error) {
	id, err := uuid.Parse(transferID)
	if err != nil {
		return nil, &NotFoundError{Entity: "transfer", ID: transferID}
	}

	// Visibility check before exposing history.
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Transfer{}).
		Where("id = ? AND organization_id = ?", id, actor.OrganizationID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &NotFoundError{Entity: "transfer", ID: transferID}
	}

	var records []model.TransferHistory
	if err := s.db.WithContext(ctx).
		Where("transfer_id = ?", id).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entry := HistoryEntry{
			ID:            r.ID.String(),
			TransferID:    r.TransferID.String(),
			Action:        r.Action,
			FromStatus:    r.FromStatus,
			ToStatus:      r.ToStatus,
			ChangedByID:   r.ChangedByID.String(),
			ChangedByName: r.ChangedByName,
			ChangedByRole: r.ChangedByRole,
			Notes:         r.Notes,
			Details:       r.Details,
			CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		}
		if r.ItemID != nil {
			itemID := r.ItemID.String()
			entry.ItemID = &itemID
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
