package production

import (
	"context"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/production"
	"github.com/google/uuid"
)

// TransactionScope provides transactional access to the repositories the
// fulfillment workflow touches. All repository operations inside Execute are
// part of the same database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the order, allocation, ledger,
// lot and production log repositories within one transaction
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() production.OrderRepository
	// ProductionLogRepo returns the production log repository scoped to the
	// current transaction
	ProductionLogRepo() production.ProductionLogRepository
	// AllocationRepo returns the allocation repository scoped to the current transaction
	AllocationRepo() inventory.AllocationRepository
	// LedgerRepo returns the ledger repository scoped to the current transaction
	LedgerRepo() inventory.LedgerRepository
	// LotRepo returns the lot repository scoped to the current transaction
	LotRepo() inventory.LotRepository
	// LockMaterial takes a row-level lock on the material for the duration of
	// the transaction
	LockMaterial(ctx context.Context, materialID uuid.UUID) error
}

// NoOpTransactionScope runs functions without a real transaction. Useful for
// tests.
type NoOpTransactionScope struct {
	orderRepo      production.OrderRepository
	logRepo        production.ProductionLogRepository
	allocationRepo inventory.AllocationRepository
	ledgerRepo     inventory.LedgerRepository
	lotRepo        inventory.LotRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orderRepo production.OrderRepository,
	logRepo production.ProductionLogRepository,
	allocationRepo inventory.AllocationRepository,
	ledgerRepo inventory.LedgerRepository,
	lotRepo inventory.LotRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:      orderRepo,
		logRepo:        logRepo,
		allocationRepo: allocationRepo,
		ledgerRepo:     ledgerRepo,
		lotRepo:        lotRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() production.OrderRepository {
	return s.orderRepo
}

// ProductionLogRepo returns the production log repository
func (s *NoOpTransactionScope) ProductionLogRepo() production.ProductionLogRepository {
	return s.logRepo
}

// AllocationRepo returns the allocation repository
func (s *NoOpTransactionScope) AllocationRepo() inventory.AllocationRepository {
	return s.allocationRepo
}

// LedgerRepo returns the ledger repository
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerRepository {
	return s.ledgerRepo
}

// LotRepo returns the lot repository
func (s *NoOpTransactionScope) LotRepo() inventory.LotRepository {
	return s.lotRepo
}

// LockMaterial is a no-op without a real transaction
func (s *NoOpTransactionScope) LockMaterial(_ context.Context, _ uuid.UUID) error {
	return nil
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
