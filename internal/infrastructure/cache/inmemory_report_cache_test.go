package cache

import (
	"context"
	"testing"
	"time"

	"github.com/emstack/backend/internal/domain/mrp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReportCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		c := NewInMemoryReportCache()

		report, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("serves a stored report until the ttl passes", func(t *testing.T) {
		c := NewInMemoryReportCache()
		stored := &mrp.Report{TakenAt: time.Now()}
		require.NoError(t, c.Set(ctx, stored, time.Minute))

		report, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Same(t, stored, report)
	})

	t.Run("an expired report reads as a miss", func(t *testing.T) {
		c := NewInMemoryReportCache()
		require.NoError(t, c.Set(ctx, &mrp.Report{TakenAt: time.Now()}, -time.Second))

		report, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("invalidate drops the report", func(t *testing.T) {
		c := NewInMemoryReportCache()
		require.NoError(t, c.Set(ctx, &mrp.Report{TakenAt: time.Now()}, time.Minute))
		require.NoError(t, c.Invalidate(ctx))

		report, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("set replaces the previous report", func(t *testing.T) {
		c := NewInMemoryReportCache()
		first := &mrp.Report{TakenAt: time.Now().Add(-time.Hour)}
		second := &mrp.Report{TakenAt: time.Now()}
		require.NoError(t, c.Set(ctx, first, time.Minute))
		require.NoError(t, c.Set(ctx, second, time.Minute))

		report, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Same(t, second, report)
	})
}
