package inventory

import (
	"context"
	"time"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository is a mock implementation of inventory.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entries ...*inventory.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindAll(ctx context.Context, filter inventory.LedgerFilter, page shared.Filter) ([]inventory.LedgerEntry, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]inventory.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context, filter inventory.LedgerFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) Balance(ctx context.Context, key inventory.BalanceKey) (decimal.Decimal, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) BalanceByMaterial(ctx context.Context, materialID uuid.UUID, owner valueobject.Owner) (decimal.Decimal, error) {
	args := m.Called(ctx, materialID, owner)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) BalancesByOwner(ctx context.Context, owner valueobject.Owner) ([]inventory.MaterialBalance, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]inventory.MaterialBalance), args.Error(1)
}

func (m *MockLedgerRepository) BalancesForMaterials(ctx context.Context, materialIDs []uuid.UUID) ([]inventory.MaterialBalance, error) {
	args := m.Called(ctx, materialIDs)
	return args.Get(0).([]inventory.MaterialBalance), args.Error(1)
}

// MockLotRepository is a mock implementation of inventory.LotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByLotNumber(ctx context.Context, materialID uuid.UUID, lotNumber string) (*inventory.Lot, error) {
	args := m.Called(ctx, materialID, lotNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]inventory.Lot, error) {
	args := m.Called(ctx, materialID, filter)
	return args.Get(0).([]inventory.Lot), args.Error(1)
}

func (m *MockLotRepository) FindAvailableByMaterial(ctx context.Context, materialID uuid.UUID) ([]inventory.Lot, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).([]inventory.Lot), args.Error(1)
}

func (m *MockLotRepository) FindExpiringBefore(ctx context.Context, t time.Time) ([]inventory.Lot, error) {
	args := m.Called(ctx, t)
	return args.Get(0).([]inventory.Lot), args.Error(1)
}

func (m *MockLotRepository) Save(ctx context.Context, lot *inventory.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) SaveWithLock(ctx context.Context, lot *inventory.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) Count(ctx context.Context, materialID uuid.UUID) (int64, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAllocationRepository is a mock implementation of inventory.AllocationRepository
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindActive(ctx context.Context, materialID, orderID uuid.UUID, owner valueobject.Owner, lotID *uuid.UUID) (*inventory.Allocation, error) {
	args := m.Called(ctx, materialID, orderID, owner, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.Allocation, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.Allocation, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]inventory.Allocation, error) {
	args := m.Called(ctx, materialID, filter)
	return args.Get(0).([]inventory.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) SumActiveByMaterial(ctx context.Context, materialID uuid.UUID, owner valueobject.Owner, exclude ...uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, materialID, owner, exclude)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) SumActiveForMaterials(ctx context.Context, materialIDs []uuid.UUID, owner valueobject.Owner) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, materialIDs, owner)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) Insert(ctx context.Context, allocation *inventory.Allocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockAllocationRepository) SaveWithLock(ctx context.Context, allocation *inventory.Allocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

// MockCycleCountRepository is a mock implementation of inventory.CycleCountRepository
type MockCycleCountRepository struct {
	mock.Mock
}

func (m *MockCycleCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.CycleCount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.CycleCount), args.Error(1)
}

func (m *MockCycleCountRepository) FindByNumber(ctx context.Context, countNumber string) (*inventory.CycleCount, error) {
	args := m.Called(ctx, countNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.CycleCount), args.Error(1)
}

func (m *MockCycleCountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.CycleCount, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.CycleCount), args.Error(1)
}

func (m *MockCycleCountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCycleCountRepository) Save(ctx context.Context, count *inventory.CycleCount) error {
	args := m.Called(ctx, count)
	return args.Error(0)
}

func (m *MockCycleCountRepository) SaveWithLock(ctx context.Context, count *inventory.CycleCount) error {
	args := m.Called(ctx, count)
	return args.Error(0)
}
