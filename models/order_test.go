package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		assert.True(t, s.Valid(), "%s should be a known status", s)
	}
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("Pending").Valid(), "status values are lowercase")
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderCancelled.Terminal())

	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderProcessing.Terminal())
	assert.False(t, OrderShipped.Terminal())
	assert.False(t, OrderStatus("refunded").Terminal(), "unknown statuses are not terminal")
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPending, OrderDelivered, false},

		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderPending, false},
		{OrderProcessing, OrderDelivered, false},

		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, true},
		{OrderShipped, OrderPending, false},
		{OrderShipped, OrderProcessing, false},

		{OrderDelivered, OrderPending, false},
		{OrderDelivered, OrderProcessing, false},
		{OrderDelivered, OrderShipped, false},
		{OrderDelivered, OrderCancelled, false},

		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderProcessing, false},
		{OrderCancelled, OrderCancelled, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusNoSelfTransitions(t *testing.T) {
	for s := range orderTransitions {
		assert.False(t, s.CanTransitionTo(s), "%s -> %s must not be legal", s, s)
	}
}
