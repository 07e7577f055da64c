package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    SubscriptionStatus
		to      SubscriptionStatus
		allowed bool
	}{
		{"pending to active", SubscriptionStatusPending, SubscriptionStatusActive, true},
		{"pending to cancelled", SubscriptionStatusPending, SubscriptionStatusCancelled, true},
		{"active to cancelled", SubscriptionStatusActive, SubscriptionStatusCancelled, true},
		{"active to active", SubscriptionStatusActive, SubscriptionStatusActive, false},
		{"active to pending", SubscriptionStatusActive, SubscriptionStatusPending, false},
		{"cancelled to active", SubscriptionStatusCancelled, SubscriptionStatusActive, false},
		{"cancelled to pending", SubscriptionStatusCancelled, SubscriptionStatusPending, false},
		{"cancelled to cancelled", SubscriptionStatusCancelled, SubscriptionStatusCancelled, false},
		{"pending to pending", SubscriptionStatusPending, SubscriptionStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1", "Once / Week"},
		{"2", "Twice / Week"},
		{"3", "Thrice / Week"},
		{"", "Once / Week"},
		{"7", "Once / Week"},
		{"0", "Once / Week"},
		{"Twice / Week", "Twice / Week"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFrequency(tt.raw), "raw=%q", tt.raw)
	}
}
