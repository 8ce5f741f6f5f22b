package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type allocationFixture struct {
	ledgerRepo *MockLedgerRepository
	lotRepo    *MockLotRepository
	allocRepo  *MockAllocationRepository
	service    *AllocationService
}

func newAllocationFixture() *allocationFixture {
	ledgerRepo := new(MockLedgerRepository)
	lotRepo := new(MockLotRepository)
	allocRepo := new(MockAllocationRepository)
	scope := NewNoOpTransactionScope(ledgerRepo, lotRepo, allocRepo, nil)
	return &allocationFixture{
		ledgerRepo: ledgerRepo,
		lotRepo:    lotRepo,
		allocRepo:  allocRepo,
		service:    NewAllocationService(scope, allocRepo),
	}
}

func activeAllocation(t *testing.T, quantity int64) *inventory.Allocation {
	t.Helper()
	a, err := inventory.NewAllocation(uuid.New(), uuid.New(), valueobject.CompanyOwner(), decimal.NewFromInt(quantity))
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func TestAllocationServiceAllocate(t *testing.T) {
	ctx := context.Background()
	materialID := uuid.New()
	orderID := uuid.New()

	t.Run("reserves when enough stock is available", func(t *testing.T) {
		f := newAllocationFixture()
		f.ledgerRepo.On("BalanceByMaterial", mock.Anything, materialID, valueobject.CompanyOwner()).
			Return(decimal.NewFromInt(100), nil)
		f.allocRepo.On("SumActiveByMaterial", mock.Anything, materialID, valueobject.CompanyOwner(), mock.Anything).
			Return(decimal.NewFromInt(30), nil)
		f.allocRepo.On("Insert", mock.Anything, mock.AnythingOfType("*inventory.Allocation")).Return(nil)

		resp, err := f.service.Allocate(ctx, AllocateRequest{
			MaterialID: materialID,
			OrderID:    orderID,
			Quantity:   decimal.NewFromInt(50),
			OwnerType:  "COMPANY",
		})
		require.NoError(t, err)
		assert.Equal(t, "ACTIVE", resp.Status)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, "COMPANY", resp.Owner)
		f.allocRepo.AssertExpectations(t)
	})

	t.Run("rejects when reservations exhaust the balance", func(t *testing.T) {
		f := newAllocationFixture()
		f.ledgerRepo.On("BalanceByMaterial", mock.Anything, materialID, valueobject.CompanyOwner()).
			Return(decimal.NewFromInt(10), nil)
		f.allocRepo.On("SumActiveByMaterial", mock.Anything, materialID, valueobject.CompanyOwner(), mock.Anything).
			Return(decimal.NewFromInt(5), nil)

		_, err := f.service.Allocate(ctx, AllocateRequest{
			MaterialID: materialID,
			OrderID:    orderID,
			Quantity:   decimal.NewFromInt(10),
			OwnerType:  "COMPANY",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInsufficientStock, domainErr.Code)
		f.allocRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("surfaces a conflict from the unique active reservation", func(t *testing.T) {
		f := newAllocationFixture()
		f.ledgerRepo.On("BalanceByMaterial", mock.Anything, materialID, valueobject.CompanyOwner()).
			Return(decimal.NewFromInt(100), nil)
		f.allocRepo.On("SumActiveByMaterial", mock.Anything, materialID, valueobject.CompanyOwner(), mock.Anything).
			Return(decimal.Zero, nil)
		f.allocRepo.On("Insert", mock.Anything, mock.Anything).Return(shared.ErrAllocationConflict)

		_, err := f.service.Allocate(ctx, AllocateRequest{
			MaterialID: materialID,
			OrderID:    orderID,
			Quantity:   decimal.NewFromInt(1),
			OwnerType:  "COMPANY",
		})
		assert.ErrorIs(t, err, shared.ErrAllocationConflict)
	})

	t.Run("rejects a customer owner without an owner id", func(t *testing.T) {
		f := newAllocationFixture()
		_, err := f.service.Allocate(ctx, AllocateRequest{
			MaterialID: materialID,
			OrderID:    orderID,
			Quantity:   decimal.NewFromInt(1),
			OwnerType:  "CUSTOMER",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
	})
}

func TestAllocationServiceConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("writes consumption and scrap entries and decrements the lot", func(t *testing.T) {
		f := newAllocationFixture()
		lot, err := inventory.NewLot(uuid.New(), "LOT-001", decimal.NewFromInt(50), decimal.NewFromFloat(0.1), time.Now())
		require.NoError(t, err)
		alloc := activeAllocation(t, 10).WithLot(lot.ID)

		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)
		f.allocRepo.On("SaveWithLock", mock.Anything, alloc).Return(nil)
		f.lotRepo.On("FindByID", mock.Anything, lot.ID).Return(lot, nil)
		f.lotRepo.On("SaveWithLock", mock.Anything, lot).Return(nil)
		f.ledgerRepo.On("Append", mock.Anything, mock.MatchedBy(func(entries []*inventory.LedgerEntry) bool {
			return len(entries) == 2 &&
				entries[0].Kind == inventory.TransactionKindConsumption &&
				entries[0].Quantity.Equal(decimal.NewFromInt(-8)) &&
				entries[1].Kind == inventory.TransactionKindScrap &&
				entries[1].Quantity.Equal(decimal.NewFromInt(-2))
		})).Return(nil)

		resp, err := f.service.Consume(ctx, alloc.ID, ConsumeRequest{
			ConsumedQuantity: decimal.NewFromInt(8),
			WasteQuantity:    decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		assert.Equal(t, "CONSUMED", resp.Status)
		assert.True(t, resp.ConsumedQuantity.Equal(decimal.NewFromInt(8)))
		assert.True(t, resp.WasteQuantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, lot.RemainingQuantity.Equal(decimal.NewFromInt(40)))
		f.ledgerRepo.AssertExpectations(t)
		f.lotRepo.AssertExpectations(t)
	})

	t.Run("writes a single entry when there is no waste and no lot", func(t *testing.T) {
		f := newAllocationFixture()
		alloc := activeAllocation(t, 10)

		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)
		f.allocRepo.On("SaveWithLock", mock.Anything, alloc).Return(nil)
		f.ledgerRepo.On("Append", mock.Anything, mock.MatchedBy(func(entries []*inventory.LedgerEntry) bool {
			return len(entries) == 1 && entries[0].Kind == inventory.TransactionKindConsumption
		})).Return(nil)

		_, err := f.service.Consume(ctx, alloc.ID, ConsumeRequest{
			ConsumedQuantity: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		f.lotRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("propagates a missing allocation", func(t *testing.T) {
		f := newAllocationFixture()
		id := uuid.New()
		f.allocRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Consume(ctx, id, ConsumeRequest{ConsumedQuantity: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAllocationServiceCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("releases without touching the ledger", func(t *testing.T) {
		f := newAllocationFixture()
		alloc := activeAllocation(t, 5)
		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)
		f.allocRepo.On("SaveWithLock", mock.Anything, alloc).Return(nil)

		resp, err := f.service.Cancel(ctx, alloc.ID)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects cancelling a closed reservation", func(t *testing.T) {
		f := newAllocationFixture()
		alloc := activeAllocation(t, 5)
		require.NoError(t, alloc.Cancel())
		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)

		_, err := f.service.Cancel(ctx, alloc.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidStateTransition, domainErr.Code)
		f.allocRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestAllocationServiceReturnToStock(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the lot and writes a return entry", func(t *testing.T) {
		f := newAllocationFixture()
		lot, err := inventory.NewLot(uuid.New(), "LOT-002", decimal.NewFromInt(20), decimal.Zero, time.Now())
		require.NoError(t, err)
		require.NoError(t, lot.Consume(decimal.NewFromInt(10)))
		alloc := activeAllocation(t, 10).WithLot(lot.ID)

		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)
		f.allocRepo.On("SaveWithLock", mock.Anything, alloc).Return(nil)
		f.lotRepo.On("FindByID", mock.Anything, lot.ID).Return(lot, nil)
		f.lotRepo.On("SaveWithLock", mock.Anything, lot).Return(nil)
		f.ledgerRepo.On("Append", mock.Anything, mock.MatchedBy(func(entries []*inventory.LedgerEntry) bool {
			return len(entries) == 1 &&
				entries[0].Kind == inventory.TransactionKindReturn &&
				entries[0].Quantity.Equal(decimal.NewFromInt(6))
		})).Return(nil)

		resp, err := f.service.ReturnToStock(ctx, alloc.ID, ReleaseRequest{Quantity: decimal.NewFromInt(6)})
		require.NoError(t, err)
		assert.Equal(t, "RETURNED", resp.Status)
		assert.True(t, resp.ReturnedQuantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, lot.RemainingQuantity.Equal(decimal.NewFromInt(16)))
		f.ledgerRepo.AssertExpectations(t)
	})

	t.Run("rejects returning more than was reserved", func(t *testing.T) {
		f := newAllocationFixture()
		alloc := activeAllocation(t, 5)
		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)

		_, err := f.service.ReturnToStock(ctx, alloc.ID, ReleaseRequest{Quantity: decimal.NewFromInt(6)})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
	})
}

func TestAllocationServiceFloorStock(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the remainder on the floor with no ledger entry", func(t *testing.T) {
		f := newAllocationFixture()
		alloc := activeAllocation(t, 5)
		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)
		f.allocRepo.On("SaveWithLock", mock.Anything, alloc).Return(nil)

		resp, err := f.service.FloorStock(ctx, alloc.ID, ReleaseRequest{Quantity: decimal.NewFromInt(5)})
		require.NoError(t, err)
		assert.Equal(t, "FLOOR_STOCK", resp.Status)
		f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestAllocationServiceQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("returns an allocation by id", func(t *testing.T) {
		f := newAllocationFixture()
		alloc := activeAllocation(t, 3)
		f.allocRepo.On("FindByID", mock.Anything, alloc.ID).Return(alloc, nil)

		resp, err := f.service.GetAllocation(ctx, alloc.ID)
		require.NoError(t, err)
		assert.Equal(t, alloc.ID, resp.ID)
	})

	t.Run("lists allocations for an order", func(t *testing.T) {
		f := newAllocationFixture()
		orderID := uuid.New()
		a1 := activeAllocation(t, 3)
		a2 := activeAllocation(t, 4)
		f.allocRepo.On("FindByOrder", mock.Anything, orderID).
			Return([]inventory.Allocation{*a1, *a2}, nil)

		items, err := f.service.ListByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, a1.ID, items[0].ID)
	})
}
