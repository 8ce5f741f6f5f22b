package inventory

import (
	"testing"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocation(t *testing.T, quantity int64) *Allocation {
	t.Helper()
	a, err := NewAllocation(uuid.New(), uuid.New(), valueobject.CompanyOwner(), decimal.NewFromInt(quantity))
	require.NoError(t, err)
	return a
}

func TestNewAllocation(t *testing.T) {
	t.Run("creates active allocation", func(t *testing.T) {
		a := newTestAllocation(t, 20)

		assert.Equal(t, AllocationStatusActive, a.Status)
		assert.True(t, a.IsActive())
		assert.True(t, a.ConsumedQuantity.IsZero())
		assert.Len(t, a.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewAllocation(uuid.New(), uuid.New(), valueobject.CompanyOwner(), decimal.Zero)
		assert.Error(t, err)

		_, err = NewAllocation(uuid.New(), uuid.New(), valueobject.CompanyOwner(), decimal.NewFromInt(-5))
		assert.Error(t, err)
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		_, err := NewAllocation(uuid.Nil, uuid.New(), valueobject.CompanyOwner(), decimal.NewFromInt(1))
		assert.Error(t, err)

		_, err = NewAllocation(uuid.New(), uuid.Nil, valueobject.CompanyOwner(), decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestAllocationStatusTransitions(t *testing.T) {
	terminal := []AllocationStatus{
		AllocationStatusConsumed, AllocationStatusCancelled,
		AllocationStatusFloorStock, AllocationStatusReturned,
	}

	t.Run("active can reach every terminal state", func(t *testing.T) {
		for _, target := range terminal {
			assert.True(t, AllocationStatusActive.CanTransitionTo(target), "to %s", target)
		}
	})

	t.Run("terminal states allow nothing", func(t *testing.T) {
		for _, from := range terminal {
			assert.True(t, from.IsTerminal())
			assert.False(t, from.CanTransitionTo(AllocationStatusActive))
			assert.False(t, from.CanTransitionTo(AllocationStatusConsumed))
		}
	})
}

func TestAllocationConsume(t *testing.T) {
	t.Run("records consumed and waste", func(t *testing.T) {
		a := newTestAllocation(t, 20)

		require.NoError(t, a.Consume(decimal.NewFromInt(18), decimal.NewFromInt(2)))
		assert.Equal(t, AllocationStatusConsumed, a.Status)
		assert.True(t, a.ConsumedQuantity.Equal(decimal.NewFromInt(18)))
		assert.True(t, a.WasteQuantity.Equal(decimal.NewFromInt(2)))
		assert.NotNil(t, a.ClosedAt)
	})

	t.Run("rejects consumed above reservation", func(t *testing.T) {
		a := newTestAllocation(t, 10)
		assert.Error(t, a.Consume(decimal.NewFromInt(11), decimal.Zero))
	})

	t.Run("rejects second close", func(t *testing.T) {
		a := newTestAllocation(t, 10)
		require.NoError(t, a.Consume(decimal.NewFromInt(10), decimal.Zero))

		err := a.Consume(decimal.NewFromInt(1), decimal.Zero)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidStateTransition, domainErr.Code)
	})
}

func TestAllocationCancel(t *testing.T) {
	a := newTestAllocation(t, 10)
	require.NoError(t, a.Cancel())
	assert.Equal(t, AllocationStatusCancelled, a.Status)

	assert.Error(t, a.Cancel())
}

func TestAllocationMarkIssued(t *testing.T) {
	a := newTestAllocation(t, 10)

	require.NoError(t, a.MarkIssued())
	assert.NotNil(t, a.IssuedAt)
	assert.True(t, a.IsActive(), "issue keeps the reservation active")

	require.NoError(t, a.Consume(decimal.NewFromInt(10), decimal.Zero))
	assert.Error(t, a.MarkIssued())
}

func TestAllocationReconcile(t *testing.T) {
	t.Run("returns remainder to stock", func(t *testing.T) {
		a := newTestAllocation(t, 20)

		remainder, err := a.Reconcile(
			decimal.NewFromInt(20), decimal.NewFromInt(15), decimal.NewFromInt(2),
			ReconcileActionReturn)

		require.NoError(t, err)
		assert.True(t, remainder.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, AllocationStatusReturned, a.Status)
		assert.True(t, a.ConsumedQuantity.Equal(decimal.NewFromInt(15)))
		assert.True(t, a.WasteQuantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, a.ReturnedQuantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("keeps remainder on the floor", func(t *testing.T) {
		a := newTestAllocation(t, 20)

		remainder, err := a.Reconcile(
			decimal.NewFromInt(20), decimal.NewFromInt(15), decimal.NewFromInt(2),
			ReconcileActionFloorStock)

		require.NoError(t, err)
		assert.True(t, remainder.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, AllocationStatusFloorStock, a.Status)
	})

	t.Run("zero remainder closes as consumed regardless of action", func(t *testing.T) {
		a := newTestAllocation(t, 20)

		remainder, err := a.Reconcile(
			decimal.NewFromInt(20), decimal.NewFromInt(18), decimal.NewFromInt(2),
			ReconcileActionReturn)

		require.NoError(t, err)
		assert.True(t, remainder.IsZero())
		assert.Equal(t, AllocationStatusConsumed, a.Status)
	})

	t.Run("rejects consumed plus waste above counted", func(t *testing.T) {
		a := newTestAllocation(t, 20)

		_, err := a.Reconcile(
			decimal.NewFromInt(20), decimal.NewFromInt(19), decimal.NewFromInt(2),
			ReconcileActionReturn)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeQuantityMismatch, domainErr.Code)
		assert.True(t, a.IsActive(), "failed reconcile leaves the allocation untouched")
	})

	t.Run("rejects invalid action", func(t *testing.T) {
		a := newTestAllocation(t, 20)
		_, err := a.Reconcile(decimal.NewFromInt(20), decimal.NewFromInt(10), decimal.Zero,
			ReconcileAction("DISCARD"))
		assert.Error(t, err)
	})

	t.Run("rejects closed allocation", func(t *testing.T) {
		a := newTestAllocation(t, 20)
		require.NoError(t, a.Cancel())

		_, err := a.Reconcile(decimal.NewFromInt(20), decimal.NewFromInt(10), decimal.Zero,
			ReconcileActionReturn)
		assert.Error(t, err)
	})
}

func TestAllocationReturnAndFloorStock(t *testing.T) {
	t.Run("return to stock", func(t *testing.T) {
		a := newTestAllocation(t, 10)
		require.NoError(t, a.ReturnToStock(decimal.NewFromInt(10)))
		assert.Equal(t, AllocationStatusReturned, a.Status)
		assert.True(t, a.ReturnedQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("return above reservation fails", func(t *testing.T) {
		a := newTestAllocation(t, 10)
		assert.Error(t, a.ReturnToStock(decimal.NewFromInt(11)))
	})

	t.Run("floor stock", func(t *testing.T) {
		a := newTestAllocation(t, 10)
		require.NoError(t, a.FloorStock(decimal.NewFromInt(4)))
		assert.Equal(t, AllocationStatusFloorStock, a.Status)
	})
}
