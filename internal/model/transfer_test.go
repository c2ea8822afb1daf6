package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(statuses ...string) []TransferItem {
	out := make([]TransferItem, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, TransferItem{Status: s})
	}
	return out
}

func TestDeriveTransferStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"single pending", []string{ItemStatusPending}, TransferStatusPending},
		{"all approved", []string{ItemStatusApproved, ItemStatusApproved}, TransferStatusApproved},
		{"all prepared", []string{ItemStatusPrepared, ItemStatusPrepared}, TransferStatusPrepared},
		{"all delivered", []string{ItemStatusDelivered}, TransferStatusCompleted},
		{"all cancelled", []string{ItemStatusCancelled, ItemStatusCancelled}, TransferStatusCancelled},
		{"no items", nil, TransferStatusCancelled},

		// The least advanced live item dominates.
		{"pending beats approved", []string{ItemStatusApproved, ItemStatusPending}, TransferStatusPending},
		{"approved beats prepared", []string{ItemStatusPrepared, ItemStatusApproved}, TransferStatusApproved},
		{"prepared beats delivered", []string{ItemStatusDelivered, ItemStatusPrepared}, TransferStatusPrepared},

		// Cancelled items are invisible to the aggregate.
		{"cancelled ignored next to delivered", []string{ItemStatusCancelled, ItemStatusDelivered}, TransferStatusCompleted},
		{"cancelled ignored next to pending", []string{ItemStatusCancelled, ItemStatusPending}, TransferStatusPending},
		{"cancelled ignored next to approved", []string{ItemStatusCancelled, ItemStatusApproved, ItemStatusDelivered}, TransferStatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTransferStatus(items(tt.statuses...)))
		})
	}
}

func TestValidPriority(t *testing.T) {
	assert.True(t, ValidPriority(PriorityNormal))
	assert.True(t, ValidPriority(PriorityUrgent))
	assert.True(t, ValidPriority(PriorityCritical))
	assert.False(t, ValidPriority("LOW"))
	assert.False(t, ValidPriority(""))
}
