package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusShipped},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransitionOrder(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusConfirmed},
		{OrderStatusShipped, OrderStatusPending},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, "unknown"},
	}
	for _, tc := range denied {
		assert.False(t, CanTransitionOrder(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}
