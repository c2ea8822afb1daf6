package service

import (
	"errors"
	"testing"
	"time"

	"medstock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeTransferOp(t *testing.T) {
	requestingDept := uuid.New()
	supplyingDept := uuid.New()
	orgID := uuid.New()

	transfer := &model.Transfer{
		OrganizationID:         orgID,
		RequestingDepartmentID: requestingDept,
		SupplyingDepartmentID:  supplyingDept,
		Status:                 model.TransferStatusPending,
	}

	requester := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleMember, DepartmentIDs: []uuid.UUID{requestingDept}}
	supplier := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleMember, DepartmentIDs: []uuid.UUID{supplyingDept}}
	admin := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleAdmin}
	outsider := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleMember}

	tests := []struct {
		name    string
		actor   Actor
		op      string
		allowed bool
	}{
		{"requester creates", requester, OpCreateTransfer, true},
		{"supplier cannot create", supplier, OpCreateTransfer, false},
		{"supplier approves", supplier, OpApproveItem, true},
		{"requester cannot approve", requester, OpApproveItem, false},
		{"outsider cannot approve", outsider, OpApproveItem, false},
		{"supplier prepares", supplier, OpPrepareItem, true},
		{"requester cannot prepare", requester, OpPrepareItem, false},
		{"requester delivers", requester, OpDeliverItem, true},
		{"supplier cannot deliver", supplier, OpDeliverItem, false},
		{"admin cancels item", admin, OpCancelItem, true},
		{"supplier cannot cancel item", supplier, OpCancelItem, false},
		{"requester cannot cancel item", requester, OpCancelItem, false},
		{"admin cancels transfer", admin, OpCancelTransfer, true},
		{"requester cannot cancel transfer", requester, OpCancelTransfer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorizeTransferOp(tt.actor, tt.op, transfer)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				var authErr *AuthorizationError
				assert.True(t, errors.As(err, &authErr), "expected AuthorizationError, got %v", err)
			}
		})
	}

	t.Run("whole-transfer cancel blocked once approved", func(t *testing.T) {
		now := time.Now()
		approved := &model.Transfer{
			OrganizationID:         orgID,
			RequestingDepartmentID: requestingDept,
			SupplyingDepartmentID:  supplyingDept,
			Status:                 model.TransferStatusApproved,
			ApprovedAt:             &now,
		}

		err := authorizeTransferOp(admin, OpCancelTransfer, approved)
		var transitionErr *InvalidTransitionError
		assert.True(t, errors.As(err, &transitionErr))
	})

	t.Run("owner is elevated like admin", func(t *testing.T) {
		owner := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleOwner}
		assert.NoError(t, authorizeTransferOp(owner, OpCancelItem, transfer))
		assert.NoError(t, authorizeTransferOp(owner, OpCancelTransfer, transfer))
	})
}
