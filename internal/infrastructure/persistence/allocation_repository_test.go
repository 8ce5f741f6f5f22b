package persistence

import (
	"context"
	"testing"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAllocation(t *testing.T, materialID, orderID uuid.UUID, qty int64) *inventory.Allocation {
	t.Helper()
	a, err := inventory.NewAllocation(materialID, orderID, valueobject.CompanyOwner(), decimal.NewFromInt(qty))
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func TestGormAllocationRepository_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("a second active allocation for the same key conflicts", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		materialID := uuid.New()
		orderID := uuid.New()

		require.NoError(t, repo.Insert(ctx, newAllocation(t, materialID, orderID, 10)))

		err := repo.Insert(ctx, newAllocation(t, materialID, orderID, 5))
		assert.ErrorIs(t, err, shared.ErrAllocationConflict)
	})

	t.Run("different lots under the same key do not conflict", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		materialID := uuid.New()
		orderID := uuid.New()

		first := newAllocation(t, materialID, orderID, 10).WithLot(uuid.New())
		second := newAllocation(t, materialID, orderID, 5).WithLot(uuid.New())

		require.NoError(t, repo.Insert(ctx, first))
		assert.NoError(t, repo.Insert(ctx, second))
	})

	t.Run("a released key can be allocated again", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		materialID := uuid.New()
		orderID := uuid.New()

		first := newAllocation(t, materialID, orderID, 10)
		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, first.Cancel())
		require.NoError(t, repo.SaveWithLock(ctx, first))

		assert.NoError(t, repo.Insert(ctx, newAllocation(t, materialID, orderID, 10)))
	})
}

func TestGormAllocationRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a closing transition", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormAllocationRepository(db)
		alloc := newAllocation(t, uuid.New(), uuid.New(), 10)
		require.NoError(t, repo.Insert(ctx, alloc))

		require.NoError(t, alloc.Consume(decimal.NewFromInt(8), decimal.NewFromInt(1)))
		require.NoError(t, repo.SaveWithLock(ctx, alloc))

		found, err := repo.FindByID(ctx, alloc.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.AllocationStatusConsumed, found.Status)
		assert.True(t, found.ConsumedQuantity.Equal(decimal.NewFromInt(8)))
		assert.True(t, found.WasteQuantity.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, 2, found.Version)
		assert.NotNil(t, found.ClosedAt)
	})

	t.Run("a stale version loses the write", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		alloc := newAllocation(t, uuid.New(), uuid.New(), 10)
		require.NoError(t, repo.Insert(ctx, alloc))

		fresh, err := repo.FindByID(ctx, alloc.ID)
		require.NoError(t, err)
		stale, err := repo.FindByID(ctx, alloc.ID)
		require.NoError(t, err)

		require.NoError(t, fresh.Cancel())
		require.NoError(t, repo.SaveWithLock(ctx, fresh))

		require.NoError(t, stale.Cancel())
		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	})
}

func TestGormAllocationRepository_Queries(t *testing.T) {
	ctx := context.Background()
	company := valueobject.CompanyOwner()

	t.Run("sums only active reservations", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		materialID := uuid.New()

		first := newAllocation(t, materialID, uuid.New(), 10)
		second := newAllocation(t, materialID, uuid.New(), 15)
		closed := newAllocation(t, materialID, uuid.New(), 99)
		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, repo.Insert(ctx, second))
		require.NoError(t, repo.Insert(ctx, closed))
		require.NoError(t, closed.Cancel())
		require.NoError(t, repo.SaveWithLock(ctx, closed))

		total, err := repo.SumActiveByMaterial(ctx, materialID, company)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(25)))

		excluded, err := repo.SumActiveByMaterial(ctx, materialID, company, first.ID)
		require.NoError(t, err)
		assert.True(t, excluded.Equal(decimal.NewFromInt(15)))
	})

	t.Run("sums per material in one query", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		materialA := uuid.New()
		materialB := uuid.New()
		require.NoError(t, repo.Insert(ctx, newAllocation(t, materialA, uuid.New(), 3)))
		require.NoError(t, repo.Insert(ctx, newAllocation(t, materialB, uuid.New(), 4)))

		sums, err := repo.SumActiveForMaterials(ctx, []uuid.UUID{materialA, materialB}, company)
		require.NoError(t, err)
		assert.True(t, sums[materialA].Equal(decimal.NewFromInt(3)))
		assert.True(t, sums[materialB].Equal(decimal.NewFromInt(4)))
	})

	t.Run("finds the active allocation for a key", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		materialID := uuid.New()
		orderID := uuid.New()
		alloc := newAllocation(t, materialID, orderID, 10)
		require.NoError(t, repo.Insert(ctx, alloc))

		found, err := repo.FindActive(ctx, materialID, orderID, company, nil)
		require.NoError(t, err)
		assert.Equal(t, alloc.ID, found.ID)

		require.NoError(t, found.Cancel())
		require.NoError(t, repo.SaveWithLock(ctx, found))

		_, err = repo.FindActive(ctx, materialID, orderID, company, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists an order's allocations oldest first", func(t *testing.T) {
		repo := NewGormAllocationRepository(newTestDB(t))
		orderID := uuid.New()
		first := newAllocation(t, uuid.New(), orderID, 1)
		second := newAllocation(t, uuid.New(), orderID, 2)
		second.CreatedAt = second.CreatedAt.Add(1)
		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, repo.Insert(ctx, second))

		all, err := repo.FindByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, first.ID, all[0].ID)
	})
}
