package model

import (
	"time"

	"github.com/google/uuid"
)

// Transfer history actions.
const (
	HistoryActionCreated   = "CREATED"
	HistoryActionApproved  = "APPROVED"
	HistoryActionPrepared  = "PREPARED"
	HistoryActionDelivered = "DELIVERED"
	HistoryActionCancelled = "CANCELLED"
)

// TransferHistory is an append-only audit record of a transfer or item
// transition. The acting user's identity is snapshotted into columns so the
// record stays accurate even if the user's role changes later.
type TransferHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransferID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"transfer_id"`
	ItemID        *uuid.UUID `gorm:"type:uuid;index" json:"item_id"` // nil for transfer-level events
	Action        string     `gorm:"type:varchar(20);not null;index" json:"action"`
	FromStatus    string     `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus      string     `gorm:"type:varchar(20)" json:"to_status"`
	ChangedByID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"changed_by_id"`
	ChangedByName string     `gorm:"type:varchar(255);not null" json:"changed_by_name"`
	ChangedByRole string     `gorm:"type:varchar(20);not null" json:"changed_by_role"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	Details       string     `gorm:"type:jsonb" json:"details,omitempty"` // per-batch detail, quantities
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}
