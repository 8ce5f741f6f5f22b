package inventory

import (
	"context"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerFilter narrows ledger queries. Zero values mean "no constraint".
type LedgerFilter struct {
	MaterialID    *uuid.UUID
	Owner         *valueobject.Owner
	LotID         *uuid.UUID
	Kind          *TransactionKind
	ReferenceKind *ReferenceKind
	ReferenceID   *string
	From          *time.Time
	To            *time.Time
}

// MaterialBalance is one row of the grouped balance projection
type MaterialBalance struct {
	MaterialID uuid.UUID
	Owner      valueobject.Owner
	Quantity   decimal.Decimal
}

// LedgerRepository defines the interface for ledger entry persistence.
//
// The ledger is append-only: entries are never updated or deleted, and this
// interface deliberately exposes no mutation beyond Append. All stock
// corrections go through new ADJUSTMENT entries.
type LedgerRepository interface {
	// Append inserts new ledger entries
	Append(ctx context.Context, entries ...*LedgerEntry) error

	// FindByID finds a ledger entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindAll finds ledger entries matching the filter, newest first
	FindAll(ctx context.Context, filter LedgerFilter, page shared.Filter) ([]LedgerEntry, error)

	// Count counts ledger entries matching the filter
	Count(ctx context.Context, filter LedgerFilter) (int64, error)

	// Balance computes the signed sum of quantities for one balance key
	Balance(ctx context.Context, key BalanceKey) (decimal.Decimal, error)

	// BalanceByMaterial computes the signed sum across all lots of a material
	// for one owner
	BalanceByMaterial(ctx context.Context, materialID uuid.UUID, owner valueobject.Owner) (decimal.Decimal, error)

	// BalancesByOwner computes per-material balances for one owner
	BalancesByOwner(ctx context.Context, owner valueobject.Owner) ([]MaterialBalance, error)

	// BalancesForMaterials computes per-material, per-owner balances for the
	// given materials in one query
	BalancesForMaterials(ctx context.Context, materialIDs []uuid.UUID) ([]MaterialBalance, error)
}

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByLotNumber finds a lot by material and lot number
	FindByLotNumber(ctx context.Context, materialID uuid.UUID, lotNumber string) (*Lot, error)

	// FindByMaterial finds all lots for a material
	FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]Lot, error)

	// FindAvailableByMaterial finds ACTIVE lots with remaining quantity for a
	// material, ordered by received date then creation time
	FindAvailableByMaterial(ctx context.Context, materialID uuid.UUID) ([]Lot, error)

	// FindExpiringBefore finds ACTIVE lots whose expiration date falls before t
	FindExpiringBefore(ctx context.Context, t time.Time) ([]Lot, error)

	// Save creates or updates a lot
	Save(ctx context.Context, lot *Lot) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, lot *Lot) error

	// Count counts lots for a material
	Count(ctx context.Context, materialID uuid.UUID) (int64, error)
}

// AllocationRepository defines the interface for allocation persistence
type AllocationRepository interface {
	// FindByID finds an allocation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)

	// FindActive finds the ACTIVE allocation for an allocation key, or
	// shared.ErrNotFound
	FindActive(ctx context.Context, materialID, orderID uuid.UUID, owner valueobject.Owner, lotID *uuid.UUID) (*Allocation, error)

	// FindByOrder finds all allocations for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Allocation, error)

	// FindActiveByOrder finds ACTIVE allocations for an order
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]Allocation, error)

	// FindByMaterial finds allocations for a material
	FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]Allocation, error)

	// SumActiveByMaterial sums ACTIVE allocation quantity for a material and
	// owner, excluding the given allocation IDs
	SumActiveByMaterial(ctx context.Context, materialID uuid.UUID, owner valueobject.Owner, exclude ...uuid.UUID) (decimal.Decimal, error)

	// SumActiveForMaterials sums ACTIVE allocation quantity per material
	SumActiveForMaterials(ctx context.Context, materialIDs []uuid.UUID, owner valueobject.Owner) (map[uuid.UUID]decimal.Decimal, error)

	// Insert creates a new allocation. Returns shared.ErrAllocationConflict
	// when an ACTIVE allocation already exists for the same key.
	Insert(ctx context.Context, allocation *Allocation) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, allocation *Allocation) error
}

// CycleCountRepository defines the interface for cycle count persistence
type CycleCountRepository interface {
	// FindByID finds a cycle count with its items
	FindByID(ctx context.Context, id uuid.UUID) (*CycleCount, error)

	// FindByNumber finds a cycle count by its count number
	FindByNumber(ctx context.Context, countNumber string) (*CycleCount, error)

	// FindAll finds cycle counts, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]CycleCount, error)

	// Count counts cycle counts
	Count(ctx context.Context) (int64, error)

	// Save creates or updates a cycle count and its items
	Save(ctx context.Context, count *CycleCount) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, count *CycleCount) error
}
