package service

import (
	"fmt"
	"sort"

	"medstock/internal/model"

	"github.com/google/uuid"
)

// BatchSelection is an operator-chosen allocation of quantity from one batch.
type BatchSelection struct {
	BatchID  uuid.UUID `json:"batch_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required"`
}

// SortForAllocation orders batches for FIFO-by-expiry consumption: ascending
// expiry date, batches without an expiry date last (they never expire, so they
// have the lowest consumption priority). The sort is stable — ties keep input
// order. The input slice is not mutated.
func SortForAllocation(batches []model.StockBatch) []model.StockBatch {
	sorted := make([]model.StockBatch, len(batches))
	copy(sorted, batches)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ExpiryDate, sorted[j].ExpiryDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})

	return sorted
}

// AllocationViolation describes one constraint broken by a proposed batch
// selection.
type AllocationViolation struct {
	BatchID   uuid.UUID
	Reason    string
	Requested int
	Available int
}

func (v AllocationViolation) String() string {
	return fmt.Sprintf("batch %s: %s", v.BatchID, v.Reason)
}

// Violation reason constants, used to decide the error kind surfaced to the
// caller: exceeding live availability is an InsufficientStock condition, the
// rest are input-shape problems.
const (
	ViolationUnknownBatch     = "batch does not belong to this department/product"
	ViolationNonPositiveQty   = "quantity must be greater than zero"
	ViolationExceedsAvailable = "quantity exceeds available batch quantity"
	ViolationExceedsTarget    = "selected total exceeds the allowed maximum"
	ViolationEmptySelection   = "at least one batch selection is required"
	ViolationDuplicateBatch   = "batch selected more than once"
)

// ValidateAllocation checks a set of operator-chosen selections against the
// supplying department's batches. Pure — it mutates nothing and reports every
// violated constraint. targetMax is the hard ceiling on the selected total
// (the item's approved quantity at prepare time).
func ValidateAllocation(batches []model.StockBatch, selections []BatchSelection, targetMax int) []AllocationViolation {
	var violations []AllocationViolation

	if len(selections) == 0 {
		violations = append(violations, AllocationViolation{Reason: ViolationEmptySelection})
		return violations
	}

	byID := make(map[uuid.UUID]model.StockBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	seen := make(map[uuid.UUID]bool, len(selections))
	total := 0
	for _, sel := range selections {
		if seen[sel.BatchID] {
			violations = append(violations, AllocationViolation{
				BatchID: sel.BatchID,
				Reason:  ViolationDuplicateBatch,
			})
			continue
		}
		seen[sel.BatchID] = true

		batch, ok := byID[sel.BatchID]
		if !ok {
			violations = append(violations, AllocationViolation{
				BatchID: sel.BatchID,
				Reason:  ViolationUnknownBatch,
			})
			continue
		}

		if sel.Quantity <= 0 {
			violations = append(violations, AllocationViolation{
				BatchID:   sel.BatchID,
				Reason:    ViolationNonPositiveQty,
				Requested: sel.Quantity,
			})
			continue
		}

		if sel.Quantity > batch.AvailableQuantity {
			violations = append(violations, AllocationViolation{
				BatchID:   sel.BatchID,
				Reason:    ViolationExceedsAvailable,
				Requested: sel.Quantity,
				Available: batch.AvailableQuantity,
			})
		}

		total += sel.Quantity
	}

	if total > targetMax {
		violations = append(violations, AllocationViolation{
			Reason:    ViolationExceedsTarget,
			Requested: total,
			Available: targetMax,
		})
	}

	return violations
}
