package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectionLot(t *testing.T, lotNumber string, quantity int64, received time.Time) Lot {
	t.Helper()
	lot, err := NewLot(uuid.New(), lotNumber, decimal.NewFromInt(quantity),
		decimal.NewFromFloat(0.1), received)
	require.NoError(t, err)
	return *lot
}

func TestSelectLotsFIFO(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("draws oldest lot first", func(t *testing.T) {
		newer := selectionLot(t, "LOT-B", 50, base.Add(48*time.Hour))
		older := selectionLot(t, "LOT-A", 50, base)

		sel, err := SelectLotsFIFO(decimal.NewFromInt(30), []Lot{newer, older})

		require.NoError(t, err)
		require.Len(t, sel.Draws, 1)
		assert.Equal(t, "LOT-A", sel.Draws[0].LotNumber)
		assert.True(t, sel.FullyCovered)
	})

	t.Run("splits across lots and reports shortfall", func(t *testing.T) {
		first := selectionLot(t, "LOT-A", 10, base)
		second := selectionLot(t, "LOT-B", 15, base.Add(24*time.Hour))

		sel, err := SelectLotsFIFO(decimal.NewFromInt(30), []Lot{first, second})

		require.NoError(t, err)
		require.Len(t, sel.Draws, 2)
		assert.True(t, sel.Draws[0].Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, sel.Draws[1].Quantity.Equal(decimal.NewFromInt(15)))
		assert.True(t, sel.TotalSelected.Equal(decimal.NewFromInt(25)))
		assert.True(t, sel.Shortfall.Equal(decimal.NewFromInt(5)))
		assert.False(t, sel.FullyCovered)
		assert.Len(t, sel.LotsExhausted, 2)
	})

	t.Run("partial draw leaves the last lot open", func(t *testing.T) {
		first := selectionLot(t, "LOT-A", 10, base)
		second := selectionLot(t, "LOT-B", 15, base.Add(24*time.Hour))

		sel, err := SelectLotsFIFO(decimal.NewFromInt(12), []Lot{first, second})

		require.NoError(t, err)
		require.Len(t, sel.Draws, 2)
		assert.True(t, sel.Draws[1].Quantity.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, []uuid.UUID{first.ID}, sel.LotsExhausted)
		assert.Equal(t, []uuid.UUID{second.ID}, sel.LotsPartial)
	})

	t.Run("skips held and expired lots", func(t *testing.T) {
		held := selectionLot(t, "LOT-HELD", 100, base)
		require.NoError(t, held.Hold())

		expired := selectionLot(t, "LOT-EXP", 100, base)
		expired.WithExpiration(base.Add(-time.Hour))

		open := selectionLot(t, "LOT-OK", 20, base.Add(72*time.Hour))

		sel, err := SelectLotsFIFO(decimal.NewFromInt(50), []Lot{held, expired, open})

		require.NoError(t, err)
		require.Len(t, sel.Draws, 1)
		assert.Equal(t, "LOT-OK", sel.Draws[0].LotNumber)
		assert.True(t, sel.Shortfall.Equal(decimal.NewFromInt(30)))
	})

	t.Run("rejects non-positive request", func(t *testing.T) {
		_, err := SelectLotsFIFO(decimal.Zero, nil)
		assert.Error(t, err)
	})

	t.Run("computes weighted average cost", func(t *testing.T) {
		cheap, err := NewLot(uuid.New(), "LOT-A", decimal.NewFromInt(10), decimal.NewFromInt(1), base)
		require.NoError(t, err)
		dear, err := NewLot(uuid.New(), "LOT-B", decimal.NewFromInt(10), decimal.NewFromInt(3), base.Add(time.Hour))
		require.NoError(t, err)

		sel, err := SelectLotsFIFO(decimal.NewFromInt(20), []Lot{*cheap, *dear})

		require.NoError(t, err)
		assert.True(t, sel.TotalCost.Equal(decimal.NewFromInt(40)))
		assert.True(t, sel.WeightedAverageCost().Equal(decimal.NewFromInt(2)))
	})
}
