package inventory

import (
	"context"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/production"
	"github.com/google/uuid"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// within one transaction. All repositories returned share the same underlying
// database transaction.
//
// LockMaterial is the serialization point for the allocate path: it takes a
// row-level lock on the material so that the available-stock check and the
// allocation insert cannot interleave with a concurrent allocate for the same
// material. Balance reads made after LockMaterial and before commit are
// authoritative for that material.
type TransactionalRepositories interface {
	// LedgerRepo returns the ledger repository scoped to the current transaction
	LedgerRepo() inventory.LedgerRepository
	// LotRepo returns the lot repository scoped to the current transaction
	LotRepo() inventory.LotRepository
	// AllocationRepo returns the allocation repository scoped to the current transaction
	AllocationRepo() inventory.AllocationRepository
	// CycleCountRepo returns the cycle count repository scoped to the current transaction
	CycleCountRepo() inventory.CycleCountRepository
	// POLineRepo returns the purchase order line repository scoped to the
	// current transaction
	POLineRepo() production.PurchaseOrderLineRepository
	// LockMaterial takes a row-level lock on the material for the duration of
	// the transaction
	LockMaterial(ctx context.Context, materialID uuid.UUID) error
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	ledgerRepo     inventory.LedgerRepository
	lotRepo        inventory.LotRepository
	allocationRepo inventory.AllocationRepository
	cycleCountRepo inventory.CycleCountRepository
	poLineRepo     production.PurchaseOrderLineRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	ledgerRepo inventory.LedgerRepository,
	lotRepo inventory.LotRepository,
	allocationRepo inventory.AllocationRepository,
	cycleCountRepo inventory.CycleCountRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo:     ledgerRepo,
		lotRepo:        lotRepo,
		allocationRepo: allocationRepo,
		cycleCountRepo: cycleCountRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LedgerRepo returns the ledger repository
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerRepository {
	return s.ledgerRepo
}

// LotRepo returns the lot repository
func (s *NoOpTransactionScope) LotRepo() inventory.LotRepository {
	return s.lotRepo
}

// AllocationRepo returns the allocation repository
func (s *NoOpTransactionScope) AllocationRepo() inventory.AllocationRepository {
	return s.allocationRepo
}

// CycleCountRepo returns the cycle count repository
func (s *NoOpTransactionScope) CycleCountRepo() inventory.CycleCountRepository {
	return s.cycleCountRepo
}

// POLineRepo returns the purchase order line repository
func (s *NoOpTransactionScope) POLineRepo() production.PurchaseOrderLineRepository {
	return s.poLineRepo
}

// SetPOLineRepo attaches the purchase order line repository
func (s *NoOpTransactionScope) SetPOLineRepo(repo production.PurchaseOrderLineRepository) {
	s.poLineRepo = repo
}

// LockMaterial is a no-op without a real transaction
func (s *NoOpTransactionScope) LockMaterial(_ context.Context, _ uuid.UUID) error {
	return nil
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
