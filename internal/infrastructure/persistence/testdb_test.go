package persistence

import (
	"testing"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/production"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the inventory and
// production schemas. The ACTIVE-scoped unique index from the postgres
// migrations is recreated by hand because AutoMigrate does not know about
// partial indexes.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&inventory.LedgerEntry{},
		&inventory.Lot{},
		&inventory.Allocation{},
		&inventory.CycleCount{},
		&inventory.CycleCountItem{},
		&production.Order{},
		&production.ProductionLog{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX uq_allocations_active_key
		ON allocations (material_id, order_id, owner, COALESCE(lot_id, '00000000-0000-0000-0000-000000000000'))
		WHERE status = 'ACTIVE'`).Error)

	return db
}
