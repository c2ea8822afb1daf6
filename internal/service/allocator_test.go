package service

import (
	"testing"
	"time"

	"medstock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchWithExpiry(expiry *time.Time, available int) model.StockBatch {
	return model.StockBatch{
		ID:                uuid.New(),
		ExpiryDate:        expiry,
		AvailableQuantity: available,
	}
}

func TestSortForAllocation(t *testing.T) {
	soon := time.Now().AddDate(0, 1, 0)
	later := time.Now().AddDate(0, 6, 0)
	latest := time.Now().AddDate(2, 0, 0)

	t.Run("orders ascending by expiry with nil last", func(t *testing.T) {
		never := batchWithExpiry(nil, 10)
		b1 := batchWithExpiry(&later, 10)
		b2 := batchWithExpiry(&soon, 10)
		b3 := batchWithExpiry(&latest, 10)

		sorted := SortForAllocation([]model.StockBatch{never, b1, b2, b3})

		require.Len(t, sorted, 4)
		assert.Equal(t, b2.ID, sorted[0].ID)
		assert.Equal(t, b1.ID, sorted[1].ID)
		assert.Equal(t, b3.ID, sorted[2].ID)
		assert.Equal(t, never.ID, sorted[3].ID)
	})

	t.Run("is stable for equal expiries", func(t *testing.T) {
		a := batchWithExpiry(&soon, 1)
		b := batchWithExpiry(&soon, 2)
		c := batchWithExpiry(nil, 3)
		d := batchWithExpiry(nil, 4)

		sorted := SortForAllocation([]model.StockBatch{a, b, c, d})

		assert.Equal(t, a.ID, sorted[0].ID)
		assert.Equal(t, b.ID, sorted[1].ID)
		assert.Equal(t, c.ID, sorted[2].ID)
		assert.Equal(t, d.ID, sorted[3].ID)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		input := []model.StockBatch{batchWithExpiry(nil, 1), batchWithExpiry(&soon, 2)}
		first := input[0].ID

		SortForAllocation(input)

		assert.Equal(t, first, input[0].ID)
	})
}

func TestValidateAllocation(t *testing.T) {
	b1 := batchWithExpiry(nil, 50)
	b2 := batchWithExpiry(nil, 30)
	batches := []model.StockBatch{b1, b2}

	reasons := func(violations []AllocationViolation) []string {
		out := make([]string, 0, len(violations))
		for _, v := range violations {
			out = append(out, v.Reason)
		}
		return out
	}

	t.Run("accepts a valid selection", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: b1.ID, Quantity: 50},
			{BatchID: b2.ID, Quantity: 10},
		}, 60)
		assert.Empty(t, violations)
	})

	t.Run("rejects empty selection", func(t *testing.T) {
		violations := ValidateAllocation(batches, nil, 10)
		require.Len(t, violations, 1)
		assert.Equal(t, ViolationEmptySelection, violations[0].Reason)
	})

	t.Run("rejects unknown batch", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: uuid.New(), Quantity: 10},
		}, 10)
		assert.Contains(t, reasons(violations), ViolationUnknownBatch)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: b1.ID, Quantity: 0},
		}, 10)
		assert.Contains(t, reasons(violations), ViolationNonPositiveQty)
	})

	t.Run("rejects duplicate batch selection", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: b1.ID, Quantity: 10},
			{BatchID: b1.ID, Quantity: 10},
		}, 60)
		assert.Contains(t, reasons(violations), ViolationDuplicateBatch)
	})

	t.Run("reports over-available with quantities", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: b2.ID, Quantity: 31},
		}, 60)
		require.Len(t, violations, 1)
		assert.Equal(t, ViolationExceedsAvailable, violations[0].Reason)
		assert.Equal(t, 31, violations[0].Requested)
		assert.Equal(t, 30, violations[0].Available)
	})

	t.Run("rejects total above target", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: b1.ID, Quantity: 40},
			{BatchID: b2.ID, Quantity: 21},
		}, 60)
		assert.Contains(t, reasons(violations), ViolationExceedsTarget)
	})

	t.Run("collects every violation in one pass", func(t *testing.T) {
		violations := ValidateAllocation(batches, []BatchSelection{
			{BatchID: b1.ID, Quantity: -1},
			{BatchID: uuid.New(), Quantity: 5},
			{BatchID: b2.ID, Quantity: 31},
		}, 5)
		got := reasons(violations)
		assert.Contains(t, got, ViolationNonPositiveQty)
		assert.Contains(t, got, ViolationUnknownBatch)
		assert.Contains(t, got, ViolationExceedsAvailable)
		assert.Contains(t, got, ViolationExceedsTarget)
	})
}
