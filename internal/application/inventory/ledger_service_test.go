package inventory

import (
	"context"
	"testing"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	ledgerRepo *MockLedgerRepository
	service    *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		ledgerRepo: new(MockLedgerRepository),
	}
	scope := NewNoOpTransactionScope(f.ledgerRepo, nil, nil, nil)
	f.service = NewLedgerService(scope, f.ledgerRepo)
	return f
}

func TestLedgerService_AppendManualEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("stores outbound kinds with a negative quantity", func(t *testing.T) {
		f := newLedgerFixture()
		matID := uuid.New()

		f.ledgerRepo.On("Append", ctx, mock.MatchedBy(func(entries []*inventory.LedgerEntry) bool {
			return len(entries) == 1 &&
				entries[0].Kind == inventory.TransactionKindConsumption &&
				entries[0].Quantity.Equal(decimal.NewFromInt(-5))
		})).Return(nil)

		resp, err := f.service.AppendManualEntry(ctx, AppendEntryRequest{
			MaterialID: matID,
			Kind:       "CONSUMPTION",
			Quantity:   decimal.NewFromInt(5),
			OwnerType:  "COMPANY",
			Reason:     "Rework scrap from line 2",
		})

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(-5)))
		assert.Equal(t, "MANUAL", resp.ReferenceKind)
		f.ledgerRepo.AssertExpectations(t)
	})

	t.Run("keeps the sign of an adjustment as given", func(t *testing.T) {
		f := newLedgerFixture()
		matID := uuid.New()

		f.ledgerRepo.On("Append", ctx, mock.MatchedBy(func(entries []*inventory.LedgerEntry) bool {
			return len(entries) == 1 &&
				entries[0].Kind == inventory.TransactionKindAdjustment &&
				entries[0].Quantity.Equal(decimal.NewFromInt(-3))
		})).Return(nil)

		resp, err := f.service.AppendManualEntry(ctx, AppendEntryRequest{
			MaterialID: matID,
			Kind:       "ADJUSTMENT",
			Quantity:   decimal.NewFromInt(-3),
			OwnerType:  "COMPANY",
		})

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(-3)))
		f.ledgerRepo.AssertExpectations(t)
	})

	t.Run("rejects an unknown transaction kind", func(t *testing.T) {
		f := newLedgerFixture()

		_, err := f.service.AppendManualEntry(ctx, AppendEntryRequest{
			MaterialID: uuid.New(),
			Kind:       "TRANSFER",
			Quantity:   decimal.NewFromInt(1),
			OwnerType:  "COMPANY",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects a customer owner without an owner ID", func(t *testing.T) {
		f := newLedgerFixture()

		_, err := f.service.AppendManualEntry(ctx, AppendEntryRequest{
			MaterialID: uuid.New(),
			Kind:       "RECEIPT",
			Quantity:   decimal.NewFromInt(1),
			OwnerType:  "CUSTOMER",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("sums all lots when no lot is given", func(t *testing.T) {
		f := newLedgerFixture()
		matID := uuid.New()

		f.ledgerRepo.On("BalanceByMaterial", ctx, matID, valueobject.CompanyOwner()).
			Return(decimal.NewFromInt(120), nil)

		resp, err := f.service.GetBalance(ctx, matID, "COMPANY", nil, nil)

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(120)))
		assert.Nil(t, resp.LotID)
	})

	t.Run("scopes the balance to a lot when given", func(t *testing.T) {
		f := newLedgerFixture()
		matID := uuid.New()
		lotID := uuid.New()

		f.ledgerRepo.On("Balance", ctx, inventory.BalanceKey{
			MaterialID: matID,
			Owner:      valueobject.CompanyOwner(),
			LotID:      &lotID,
		}).Return(decimal.NewFromInt(40), nil)

		resp, err := f.service.GetBalance(ctx, matID, "COMPANY", nil, &lotID)

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(40)))
		require.NotNil(t, resp.LotID)
		assert.Equal(t, lotID, *resp.LotID)
	})
}

func TestLedgerService_ListEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("returns entries with the total count", func(t *testing.T) {
		f := newLedgerFixture()
		matID := uuid.New()

		entry, err := inventory.NewLedgerEntry(matID, inventory.TransactionKindReceipt,
			decimal.NewFromInt(10), valueobject.CompanyOwner(), inventory.ReferenceKindManual, "")
		require.NoError(t, err)

		filter := inventory.LedgerFilter{MaterialID: &matID}
		page := shared.DefaultFilter()

		f.ledgerRepo.On("FindAll", ctx, filter, page).Return([]inventory.LedgerEntry{*entry}, nil)
		f.ledgerRepo.On("Count", ctx, filter).Return(int64(25), nil)

		result, err := f.service.ListEntries(ctx, filter, page)

		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "RECEIPT", result.Items[0].Kind)
		assert.Equal(t, int64(25), result.Total)
	})
}
