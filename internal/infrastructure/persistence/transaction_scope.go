package persistence

import (
	"context"

	appinventory "github.com/emstack/backend/internal/application/inventory"
	appproduction "github.com/emstack/backend/internal/application/production"
	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/production"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTransactionalRepositories wraps a transaction handle and hands out
// repositories bound to it. It satisfies both the inventory and the
// production application scope interfaces; their method sets overlap and the
// overlapping methods have identical signatures.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LedgerRepo() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormTransactionalRepositories) LotRepo() inventory.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) AllocationRepo() inventory.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) CycleCountRepo() inventory.CycleCountRepository {
	return NewGormCycleCountRepository(r.tx)
}

func (r *gormTransactionalRepositories) POLineRepo() production.PurchaseOrderLineRepository {
	return NewGormPurchaseOrderLineRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() production.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductionLogRepo() production.ProductionLogRepository {
	return NewGormProductionLogRepository(r.tx)
}

// LockMaterial takes a row-level lock on the material for the duration of the
// transaction. Concurrent allocates for the same material serialize here, so
// the balance read that follows cannot race the winning insert. The sqlite
// test driver has no row locks; its single-writer transactions give the same
// guarantee.
func (r *gormTransactionalRepositories) LockMaterial(ctx context.Context, materialID uuid.UUID) error {
	if r.tx.Dialector.Name() == "sqlite" {
		return nil
	}
	var id uuid.UUID
	result := r.tx.WithContext(ctx).
		Raw("SELECT id FROM materials WHERE id = ? FOR UPDATE", materialID).
		Scan(&id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
var _ appproduction.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormInventoryTransactionScope implements the inventory application
// transaction scope on a GORM transaction
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var _ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)

// GormProductionTransactionScope implements the production application
// transaction scope on a GORM transaction
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appproduction.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var _ appproduction.TransactionScope = (*GormProductionTransactionScope)(nil)
