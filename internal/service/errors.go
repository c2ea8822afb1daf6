package service

import (
	"fmt"

	"github.com/google/uuid"
)

// Typed errors returned by the workflow core. Handlers match them with
// errors.As to pick the HTTP status; everything else is treated as an
// infrastructure failure.

// ValidationError reports malformed or out-of-range input. Recoverable by the
// caller correcting the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports an operation attempted against an item or
// transfer that is not in the required source state.
type InvalidTransitionError struct {
	Entity    string // "transfer item" or "transfer"
	From      string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %s", e.Attempted, e.Entity, e.From)
}

// InsufficientStockError reports a reservation that exceeds a batch's live
// available quantity at prepare time. Distinct from ValidationError because it
// depends on concurrently-mutating state, not input shape.
type InsufficientStockError struct {
	BatchID   uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in batch %s: requested %d, available %d",
		e.BatchID, e.Requested, e.Available)
}

// AuthorizationError reports that the actor lacks the required role or
// department relationship for the operation. Never a silent no-op.
type AuthorizationError struct {
	Operation string
	Reason    string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s: %s", e.Operation, e.Reason)
}

// NotFoundError reports that a referenced entity does not exist or is not
// visible to the actor's organization.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}
