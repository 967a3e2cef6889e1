// orders_test.go

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepIndex(StatusPendingPayment))
	assert.Equal(t, 1, StepIndex(StatusProcessing))
	assert.Equal(t, 2, StepIndex(StatusShipped))
	assert.Equal(t, 3, StepIndex(StatusDelivered))
	assert.Equal(t, -1, StepIndex(StatusCancelled))
	assert.Equal(t, -1, StepIndex(StatusFailed))
	assert.Equal(t, -1, StepIndex(OrderStatus("bogus")))
}

func TestIsForwardTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusProcessing, StatusDelivered, true},
		{StatusDelivered, StatusProcessing, false},
		{StatusProcessing, StatusCancelled, true},
		{StatusPendingPayment, StatusProcessing, true},
		{StatusShipped, StatusFailed, true},
		{StatusShipped, StatusShipped, false},
		{StatusShipped, StatusPendingPayment, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsForwardTransition(tt.from, tt.to),
			"from=%s to=%s", tt.from, tt.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPendingPayment.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func orderItems() []CartItem {
	return []CartItem{
		{ID: "a", ProductID: "flex001", ProductName: "Standard Flex Banner", Quantity: 2, UnitPrice: 25, TotalPrice: 50},
		{ID: "b", ProductID: "neon001", ProductName: "Custom Neon Light Text", Quantity: 1, UnitPrice: 195, TotalPrice: 195},
	}
}

func testAddress() ShippingAddress {
	return ShippingAddress{
		FullName:     "Asha Rao",
		AddressLine1: "14 Market Street",
		City:         "Pune",
		State:        "MH",
		PostalCode:   "411001",
		Country:      "IN",
		PhoneNumber:  "+91-9999999999",
	}
}

func TestBuildOrder(t *testing.T) {
	now := time.Now().UTC()

	t.Run("snapshots items and sums totals", func(t *testing.T) {
		items := orderItems()
		order, err := BuildOrder("user1", items, testAddress(), "stripe", "pi_123", now)
		require.NoError(t, err)
		assert.InDelta(t, 245, order.TotalAmount, 1e-9)
		assert.Equal(t, StatusProcessing, order.Status)
		assert.Equal(t, now, order.CreatedAt)

		// Mutating the source slice must not reach into the placed order.
		items[0].Quantity = 99
		items[0].TotalPrice = 9999
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.InDelta(t, 50, order.Items[0].TotalPrice, 1e-9)
	})

	t.Run("no payment ref waits for payment", func(t *testing.T) {
		order, err := BuildOrder("user1", orderItems(), testAddress(), "razorpay_upi", "", now)
		require.NoError(t, err)
		assert.Equal(t, StatusPendingPayment, order.Status)
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := BuildOrder("user1", nil, testAddress(), "stripe", "", now)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("no user", func(t *testing.T) {
		_, err := BuildOrder("", orderItems(), testAddress(), "stripe", "", now)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("tampered line total", func(t *testing.T) {
		items := orderItems()
		items[1].TotalPrice = 5
		_, err := BuildOrder("user1", items, testAddress(), "stripe", "", now)
		assert.ErrorIs(t, err, ErrTotalMismatch)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		items := orderItems()
		items[0].Quantity = 0
		items[0].TotalPrice = 0
		_, err := BuildOrder("user1", items, testAddress(), "stripe", "", now)
		assert.Error(t, err)
	})
}
