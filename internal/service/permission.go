package service

import (
	"medstock/internal/model"

	"github.com/google/uuid"
)

// Actor is the caller's resolved identity, supplied per request by the auth
// middleware. DepartmentIDs lists every department the user operates in.
type Actor struct {
	UserID         uuid.UUID
	Name           string
	OrganizationID uuid.UUID
	Role           string // MEMBER, ADMIN, OWNER
	DepartmentIDs  []uuid.UUID
}

// InDepartment reports whether the actor belongs to the given department.
func (a Actor) InDepartment(deptID uuid.UUID) bool {
	for _, id := range a.DepartmentIDs {
		if id == deptID {
			return true
		}
	}
	return false
}

// IsElevated reports whether the actor holds an ADMIN or OWNER role.
func (a Actor) IsElevated() bool {
	return a.Role == model.RoleAdmin || a.Role == model.RoleOwner
}

// Workflow operations gated per actor and per transfer.
const (
	OpCreateTransfer = "create transfer"
	OpApproveItem    = "approve item"
	OpPrepareItem    = "prepare item"
	OpDeliverItem    = "deliver item"
	OpCancelItem     = "cancel item"
	OpCancelTransfer = "cancel transfer"
)

// authorizeTransferOp resolves whether the actor may perform op on the
// transfer. Rules, first match wins:
//   - approve/prepare: any member of the supplying department
//   - deliver:         any member of the requesting department
//   - cancel item:     ADMIN or OWNER, any department
//   - cancel transfer: ADMIN or OWNER, and only before any approval
//   - create:          any member of the requesting department
//
// Everything else is denied with an AuthorizationError.
func authorizeTransferOp(actor Actor, op string, t *model.Transfer) error {
	switch op {
	case OpApproveItem, OpPrepareItem:
		if actor.InDepartment(t.SupplyingDepartmentID) {
			return nil
		}
		return &AuthorizationError{Operation: op, Reason: "requires membership in the supplying department"}

	case OpDeliverItem:
		if actor.InDepartment(t.RequestingDepartmentID) {
			return nil
		}
		return &AuthorizationError{Operation: op, Reason: "requires membership in the requesting department"}

	case OpCancelItem:
		if actor.IsElevated() {
			return nil
		}
		return &AuthorizationError{Operation: op, Reason: "requires ADMIN or OWNER role"}

	case OpCancelTransfer:
		if !actor.IsElevated() {
			return &AuthorizationError{Operation: op, Reason: "requires ADMIN or OWNER role"}
		}
		if t.ApprovedAt != nil {
			return &InvalidTransitionError{Entity: "transfer", From: t.Status, Attempted: op}
		}
		return nil

	case OpCreateTransfer:
		if actor.InDepartment(t.RequestingDepartmentID) {
			return nil
		}
		return &AuthorizationError{Operation: op, Reason: "requires membership in the requesting department"}
	}

	return &AuthorizationError{Operation: op, Reason: "unknown operation"}
}
