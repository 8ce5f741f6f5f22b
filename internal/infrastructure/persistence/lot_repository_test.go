package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLot(t *testing.T, materialID uuid.UUID, lotNumber string, qty int64, received time.Time) *inventory.Lot {
	t.Helper()
	lot, err := inventory.NewLot(materialID, lotNumber, decimal.NewFromInt(qty), decimal.NewFromFloat(0.5), received)
	require.NoError(t, err)
	lot.ClearDomainEvents()
	return lot
}

func TestGormLotRepository_FindAvailableByMaterial(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("walks lots oldest receipt first", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		materialID := uuid.New()

		newer := newLot(t, materialID, "LOT-B", 10, base.AddDate(0, 0, 5))
		older := newLot(t, materialID, "LOT-A", 10, base)
		require.NoError(t, repo.Save(ctx, newer))
		require.NoError(t, repo.Save(ctx, older))

		lots, err := repo.FindAvailableByMaterial(ctx, materialID)
		require.NoError(t, err)
		require.Len(t, lots, 2)
		assert.Equal(t, "LOT-A", lots[0].LotNumber)
		assert.Equal(t, "LOT-B", lots[1].LotNumber)
	})

	t.Run("skips exhausted and held lots", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		materialID := uuid.New()

		open := newLot(t, materialID, "LOT-OPEN", 10, base)
		exhausted := newLot(t, materialID, "LOT-GONE", 5, base)
		require.NoError(t, exhausted.Consume(decimal.NewFromInt(5)))
		held := newLot(t, materialID, "LOT-HOLD", 5, base)
		require.NoError(t, held.Hold())

		require.NoError(t, repo.Save(ctx, open))
		require.NoError(t, repo.Save(ctx, exhausted))
		require.NoError(t, repo.Save(ctx, held))

		lots, err := repo.FindAvailableByMaterial(ctx, materialID)
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.Equal(t, "LOT-OPEN", lots[0].LotNumber)
	})
}

func TestGormLotRepository_FindExpiringBefore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns only dated lots past the cutoff", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		materialID := uuid.New()

		expiring := newLot(t, materialID, "LOT-EXP", 10, base).
			WithExpiration(base.AddDate(0, 1, 0))
		later := newLot(t, materialID, "LOT-LATER", 10, base).
			WithExpiration(base.AddDate(1, 0, 0))
		undated := newLot(t, materialID, "LOT-NODATE", 10, base)

		require.NoError(t, repo.Save(ctx, expiring))
		require.NoError(t, repo.Save(ctx, later))
		require.NoError(t, repo.Save(ctx, undated))

		lots, err := repo.FindExpiringBefore(ctx, base.AddDate(0, 2, 0))
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.Equal(t, "LOT-EXP", lots[0].LotNumber)
	})
}

func TestGormLotRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("persists a draw", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		lot := newLot(t, uuid.New(), "LOT-001", 20, base)
		require.NoError(t, repo.Save(ctx, lot))

		require.NoError(t, lot.Consume(decimal.NewFromInt(8)))
		require.NoError(t, repo.SaveWithLock(ctx, lot))

		found, err := repo.FindByID(ctx, lot.ID)
		require.NoError(t, err)
		assert.True(t, found.RemainingQuantity.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, inventory.LotStatusActive, found.Status)
	})

	t.Run("a stale version loses the write", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		lot := newLot(t, uuid.New(), "LOT-002", 20, base)
		require.NoError(t, repo.Save(ctx, lot))

		fresh, err := repo.FindByID(ctx, lot.ID)
		require.NoError(t, err)
		stale, err := repo.FindByID(ctx, lot.ID)
		require.NoError(t, err)

		require.NoError(t, fresh.Consume(decimal.NewFromInt(5)))
		require.NoError(t, repo.SaveWithLock(ctx, fresh))

		require.NoError(t, stale.Consume(decimal.NewFromInt(5)))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrentModification)
	})
}

func TestGormLotRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("finds by material and lot number", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		materialID := uuid.New()
		lot := newLot(t, materialID, "LOT-XYZ", 10, base)
		require.NoError(t, repo.Save(ctx, lot))

		found, err := repo.FindByLotNumber(ctx, materialID, "LOT-XYZ")
		require.NoError(t, err)
		assert.Equal(t, lot.ID, found.ID)

		_, err = repo.FindByLotNumber(ctx, uuid.New(), "LOT-XYZ")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("counts a material's lots", func(t *testing.T) {
		repo := NewGormLotRepository(newTestDB(t))
		materialID := uuid.New()
		require.NoError(t, repo.Save(ctx, newLot(t, materialID, "LOT-1", 10, base)))
		require.NoError(t, repo.Save(ctx, newLot(t, materialID, "LOT-2", 10, base)))

		count, err := repo.Count(ctx, materialID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
