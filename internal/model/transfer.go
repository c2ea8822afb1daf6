package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferItem status constants. The item is the true unit of progression;
// the parent transfer's status is derived from its items.
const (
	ItemStatusPending   = "PENDING"
	ItemStatusApproved  = "APPROVED"
	ItemStatusPrepared  = "PREPARED"
	ItemStatusDelivered = "DELIVERED"
	ItemStatusCancelled = "CANCELLED"
)

// Transfer status constants (denormalized from item statuses).
const (
	TransferStatusPending   = "PENDING"
	TransferStatusApproved  = "APPROVED"
	TransferStatusPrepared  = "PREPARED"
	TransferStatusCompleted = "COMPLETED"
	TransferStatusCancelled = "CANCELLED"
)

// Transfer priority constants.
const (
	PriorityNormal   = "NORMAL"
	PriorityUrgent   = "URGENT"
	PriorityCritical = "CRITICAL"
)

// ValidPriority reports whether p is a known transfer priority.
func ValidPriority(p string) bool {
	return p == PriorityNormal || p == PriorityUrgent || p == PriorityCritical
}

// Transfer is one inter-department stock request. It is never physically
// deleted — cancellation is a terminal status, not a deletion.
type Transfer struct {
	ID                     uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code                   string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	OrganizationID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"organization_id"`
	RequestingDepartmentID uuid.UUID         `gorm:"type:uuid;not null;index" json:"requesting_department_id"`
	RequestingDepartment   *Department       `gorm:"foreignKey:RequestingDepartmentID" json:"requesting_department,omitempty"`
	SupplyingDepartmentID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"supplying_department_id"`
	SupplyingDepartment    *Department       `gorm:"foreignKey:SupplyingDepartmentID" json:"supplying_department,omitempty"`
	Title                  string            `gorm:"type:varchar(255);not null" json:"title"`
	RequestReason          string            `gorm:"type:text;not null" json:"request_reason"`
	Priority               string            `gorm:"type:varchar(20);not null;default:'NORMAL'" json:"priority"`
	Notes                  string            `gorm:"type:text" json:"notes"`
	Status                 string            `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedAt            time.Time         `gorm:"not null" json:"requested_at"`
	ApprovedAt             *time.Time        `json:"approved_at"`
	PreparedAt             *time.Time        `json:"prepared_at"`
	DeliveredAt            *time.Time        `json:"delivered_at"`
	CancelledAt            *time.Time        `json:"cancelled_at"`
	Items                  []TransferItem    `gorm:"foreignKey:TransferID" json:"items"`
	History                []TransferHistory `gorm:"foreignKey:TransferID" json:"-"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// TransferItem is one product line within a transfer. Quantity fields, once
// set, are monotonically non-increasing relative to the previous stage:
// received <= prepared <= approved <= requested.
type TransferItem struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransferID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"transfer_id"`
	ProductID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Product           *Product            `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	RequestedQuantity int                 `gorm:"type:int;not null" json:"requested_quantity"`
	ApprovedQuantity  *int                `gorm:"type:int" json:"approved_quantity"`
	PreparedQuantity  *int                `gorm:"type:int" json:"prepared_quantity"`
	ReceivedQuantity  *int                `gorm:"type:int" json:"received_quantity"`
	Status            string              `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CancelReason      string              `gorm:"type:text" json:"cancel_reason,omitempty"`
	Notes             string              `gorm:"type:text" json:"notes,omitempty"`
	Batches           []TransferItemBatch `gorm:"foreignKey:TransferItemID" json:"batches,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TransferItemBatch records the allocation of a stock batch to a transfer
// item, created as a set at preparation time and immutable afterwards.
type TransferItemBatch struct {
	ID             uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransferItemID uuid.UUID   `gorm:"type:uuid;not null;index" json:"transfer_item_id"`
	BatchID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"batch_id"`
	Batch          *StockBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	Quantity       int         `gorm:"type:int;not null" json:"quantity"`
	CreatedAt      time.Time   `json:"created_at"`
}

// itemStageRank orders the live (non-cancelled) item stages from least to
// most advanced.
var itemStageRank = map[string]int{
	ItemStatusPending:   0,
	ItemStatusApproved:  1,
	ItemStatusPrepared:  2,
	ItemStatusDelivered: 3,
}

// DeriveTransferStatus computes the transfer's aggregate status as a pure
// function of its item statuses:
//   - all items cancelled            -> CANCELLED
//   - all live items delivered (>=1) -> COMPLETED
//   - otherwise the least-advanced live item's stage (PENDING/APPROVED/PREPARED)
func DeriveTransferStatus(items []TransferItem) string {
	lowest := -1
	live := 0
	for _, item := range items {
		if item.Status == ItemStatusCancelled {
			continue
		}
		live++
		rank := itemStageRank[item.Status]
		if lowest == -1 || rank < lowest {
			lowest = rank
		}
	}

	if live == 0 {
		return TransferStatusCancelled
	}

	switch lowest {
	case itemStageRank[ItemStatusDelivered]:
		return TransferStatusCompleted
	case itemStageRank[ItemStatusPrepared]:
		return TransferStatusPrepared
	case itemStageRank[ItemStatusApproved]:
		return TransferStatusApproved
	default:
		return TransferStatusPending
	}
}
