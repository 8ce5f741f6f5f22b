package inventory

import (
	"context"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService handles ledger queries and manual entries. Entries caused by
// business operations (receipts, consumption, adjustments) are written by the
// services that own those operations, inside the same transaction.
type LedgerService struct {
	txScope        TransactionScope
	ledgerRepo     inventory.LedgerRepository
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txScope TransactionScope, ledgerRepo inventory.LedgerRepository) *LedgerService {
	return &LedgerService{
		txScope:    txScope,
		ledgerRepo: ledgerRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// resolveOwner builds the owner dimension from its transport representation
func resolveOwner(ownerType string, ownerID *uuid.UUID) (valueobject.Owner, error) {
	switch valueobject.OwnerType(ownerType) {
	case valueobject.OwnerTypeCompany:
		return valueobject.CompanyOwner(), nil
	case valueobject.OwnerTypeCustomer:
		if ownerID == nil {
			return valueobject.Owner{}, shared.NewDomainError(shared.CodeValidation,
				"Customer owner requires an owner ID")
		}
		return valueobject.CustomerOwner(*ownerID)
	default:
		return valueobject.Owner{}, shared.NewDomainError(shared.CodeValidation,
			"Owner type must be COMPANY or CUSTOMER")
	}
}

// AppendManualEntry writes a single operator-initiated ledger entry
func (s *LedgerService) AppendManualEntry(ctx context.Context, req AppendEntryRequest) (*LedgerEntryResponse, error) {
	owner, err := resolveOwner(req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}

	kind := inventory.TransactionKind(req.Kind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invalid transaction kind")
	}

	refKind := inventory.ReferenceKindManual
	if req.ReferenceKind != "" {
		refKind = inventory.ReferenceKind(req.ReferenceKind)
		if !refKind.IsValid() {
			return nil, shared.NewDomainError(shared.CodeValidation, "Invalid reference kind")
		}
	}

	entry, err := inventory.NewLedgerEntry(req.MaterialID, kind, req.Quantity, owner, refKind, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if req.LotID != nil {
		entry = entry.WithLot(*req.LotID)
	}
	if req.UnitCost != nil {
		entry = entry.WithUnitCost(*req.UnitCost)
	}
	if req.Reason != "" {
		entry = entry.WithReason(req.Reason)
	}
	if req.CreatedBy != nil {
		entry = entry.WithActor(*req.CreatedBy)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.LedgerRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// GetBalance computes the on-hand balance for a balance key
func (s *LedgerService) GetBalance(ctx context.Context, materialID uuid.UUID, ownerType string, ownerID, lotID *uuid.UUID) (*BalanceResponse, error) {
	owner, err := resolveOwner(ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	var balance decimal.Decimal
	if lotID != nil {
		balance, err = s.ledgerRepo.Balance(ctx, inventory.BalanceKey{
			MaterialID: materialID,
			Owner:      owner,
			LotID:      lotID,
		})
	} else {
		balance, err = s.ledgerRepo.BalanceByMaterial(ctx, materialID, owner)
	}
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{
		MaterialID: materialID,
		Owner:      owner.String(),
		LotID:      lotID,
		Quantity:   balance,
	}, nil
}

// ListEntries returns ledger entries matching the filter, newest first
func (s *LedgerService) ListEntries(ctx context.Context, filter inventory.LedgerFilter, page shared.Filter) (*shared.Paginated[LedgerEntryResponse], error) {
	entries, err := s.ledgerRepo.FindAll(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	total, err := s.ledgerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToLedgerEntryResponse(&entries[i])
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}
