package production

import (
	"testing"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("WO-2026-001", uuid.New(), uuid.New(),
		decimal.NewFromInt(100), time.Now().Add(14*24*time.Hour))
	require.NoError(t, err)
	return order
}

func TestNewOrder(t *testing.T) {
	t.Run("creates order in entered status", func(t *testing.T) {
		order := newTestOrder(t)

		assert.Equal(t, OrderStatusEntered, order.Status)
		assert.True(t, order.IsOpen())
		assert.True(t, order.RemainingQuantity().Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewOrder("", uuid.New(), uuid.New(), decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)

		_, err = NewOrder("WO-1", uuid.Nil, uuid.New(), decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)

		_, err = NewOrder("WO-1", uuid.New(), uuid.Nil, decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)

		_, err = NewOrder("WO-1", uuid.New(), uuid.New(), decimal.Zero, time.Now())
		assert.Error(t, err)
	})
}

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"entered to kitting", OrderStatusEntered, OrderStatusKitting, true},
		{"entered skips to smt", OrderStatusEntered, OrderStatusSMT, false},
		{"kitting to smt", OrderStatusKitting, OrderStatusSMT, true},
		{"smt to th", OrderStatusSMT, OrderStatusTH, true},
		{"smt ships directly", OrderStatusSMT, OrderStatusShipped, true},
		{"th to shipped", OrderStatusTH, OrderStatusShipped, true},
		{"th back to smt", OrderStatusTH, OrderStatusSMT, false},
		{"shipped is terminal", OrderStatusShipped, OrderStatusCancelled, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusKitting, false},
		{"any stage can hold", OrderStatusTH, OrderStatusOnHold, true},
		{"hold resumes to stage", OrderStatusOnHold, OrderStatusSMT, true},
		{"hold can cancel", OrderStatusOnHold, OrderStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderAdvanceTo(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.AdvanceTo(OrderStatusKitting))
	require.NoError(t, order.AdvanceTo(OrderStatusSMT))
	require.NoError(t, order.AdvanceTo(OrderStatusTH))
	require.NoError(t, order.AdvanceTo(OrderStatusShipped))

	err := order.AdvanceTo(OrderStatusKitting)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidStateTransition, domainErr.Code)
}

func TestOrderHoldResume(t *testing.T) {
	t.Run("resume returns to the held stage", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.AdvanceTo(OrderStatusKitting))
		require.NoError(t, order.AdvanceTo(OrderStatusSMT))

		require.NoError(t, order.Hold())
		assert.Equal(t, OrderStatusOnHold, order.Status)
		require.NotNil(t, order.PreviousStatus)
		assert.Equal(t, OrderStatusSMT, *order.PreviousStatus)

		require.NoError(t, order.Resume())
		assert.Equal(t, OrderStatusSMT, order.Status)
		assert.Nil(t, order.PreviousStatus)
	})

	t.Run("double hold fails", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Hold())
		assert.Error(t, order.Hold())
	})

	t.Run("resume without hold fails", func(t *testing.T) {
		order := newTestOrder(t)
		assert.Error(t, order.Resume())
	})
}

func TestOrderCancel(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.Cancel())
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.False(t, order.IsOpen())
}

func TestOrderWipTracking(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.RecordStageEntry(OrderStatusKitting, decimal.NewFromInt(100)))
	require.NoError(t, order.RecordStageEntry(OrderStatusSMT, decimal.NewFromInt(60)))
	assert.True(t, order.WipKitting.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.WipSMT.Equal(decimal.NewFromInt(60)))

	assert.Error(t, order.RecordStageEntry(OrderStatusShipped, decimal.NewFromInt(1)))
	assert.Error(t, order.RecordStageEntry(OrderStatusKitting, decimal.Zero))
}

func TestOrderRecordCompletion(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.RecordCompletion(decimal.NewFromInt(60)))
	assert.True(t, order.RemainingQuantity().Equal(decimal.NewFromInt(40)))

	assert.Error(t, order.RecordCompletion(decimal.NewFromInt(41)),
		"completion may not exceed the order quantity")
}
