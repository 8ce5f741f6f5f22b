package inventory

import (
	"context"
	"fmt"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationService reserves stock against orders and walks reservations
// through their lifecycle.
//
// The allocate path is the contended one: the material row lock taken inside
// the transaction is the serialization point, so the available-stock check
// and the insert cannot race another allocate for the same material. The
// ACTIVE-scoped uniqueness constraint backstops the one-active-per-key rule;
// a violation surfaces as ALLOCATION_CONFLICT and the caller decides whether
// to retry against the now-current balance.
type AllocationService struct {
	txScope        TransactionScope
	allocationRepo inventory.AllocationRepository
	eventPublisher shared.EventPublisher
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(txScope TransactionScope, allocationRepo inventory.AllocationRepository) *AllocationService {
	return &AllocationService{
		txScope:        txScope,
		allocationRepo: allocationRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AllocationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Allocate reserves quantity for an order. No quantity moves; the reservation
// only narrows what later allocations can claim.
func (s *AllocationService) Allocate(ctx context.Context, req AllocateRequest) (*AllocationResponse, error) {
	owner, err := resolveOwner(req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}

	allocation, err := inventory.NewAllocation(req.MaterialID, req.OrderID, owner, req.Quantity)
	if err != nil {
		return nil, err
	}
	if req.LotID != nil {
		allocation = allocation.WithLot(*req.LotID)
	}
	if req.CreatedBy != nil {
		allocation = allocation.WithCreator(*req.CreatedBy)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LockMaterial(ctx, req.MaterialID); err != nil {
			return err
		}

		balance, err := repos.LedgerRepo().BalanceByMaterial(ctx, req.MaterialID, owner)
		if err != nil {
			return err
		}
		reserved, err := repos.AllocationRepo().SumActiveByMaterial(ctx, req.MaterialID, owner)
		if err != nil {
			return err
		}
		available := balance.Sub(reserved)
		if req.Quantity.GreaterThan(available) {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Insufficient stock for material %s: requested %s, available %s",
					req.MaterialID, req.Quantity, available))
		}

		return repos.AllocationRepo().Insert(ctx, allocation)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation.GetDomainEvents()...)
	allocation.ClearDomainEvents()

	resp := ToAllocationResponse(allocation)
	return &resp, nil
}

// Consume records production usage of an active allocation: a CONSUMPTION
// ledger entry for the consumed portion, a SCRAP entry for waste, a lot
// decrement when the reservation is lot-pinned, and the terminal transition.
func (s *AllocationService) Consume(ctx context.Context, allocationID uuid.UUID, req ConsumeRequest) (*AllocationResponse, error) {
	var allocation *inventory.Allocation
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.AllocationRepo().FindByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if err := found.Consume(req.ConsumedQuantity, req.WasteQuantity); err != nil {
			return err
		}
		if err := repos.AllocationRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}

		drawn := req.ConsumedQuantity.Add(req.WasteQuantity)
		if found.LotID != nil && drawn.IsPositive() {
			lot, err := repos.LotRepo().FindByID(ctx, *found.LotID)
			if err != nil {
				return err
			}
			if err := lot.Consume(drawn); err != nil {
				return err
			}
			if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
				return err
			}
		}

		entries, err := consumptionEntries(found, req)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			if err := repos.LedgerRepo().Append(ctx, entries...); err != nil {
				return err
			}
		}
		allocation = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation.GetDomainEvents()...)
	allocation.ClearDomainEvents()

	resp := ToAllocationResponse(allocation)
	return &resp, nil
}

// consumptionEntries builds the ledger entries for a consume operation
func consumptionEntries(a *inventory.Allocation, req ConsumeRequest) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	build := func(kind inventory.TransactionKind, qty decimal.Decimal) error {
		if !qty.IsPositive() {
			return nil
		}
		entry, err := inventory.NewLedgerEntry(a.MaterialID, kind, qty, a.Owner,
			inventory.ReferenceKindAllocation, a.ID.String())
		if err != nil {
			return err
		}
		if a.LotID != nil {
			entry = entry.WithLot(*a.LotID)
		}
		if req.CreatedBy != nil {
			entry = entry.WithActor(*req.CreatedBy)
		}
		entries = append(entries, entry)
		return nil
	}
	if err := build(inventory.TransactionKindConsumption, req.ConsumedQuantity); err != nil {
		return nil, err
	}
	if err := build(inventory.TransactionKindScrap, req.WasteQuantity); err != nil {
		return nil, err
	}
	return entries, nil
}

// Cancel releases an active reservation. Nothing was ever committed, so no
// ledger entry is written.
func (s *AllocationService) Cancel(ctx context.Context, allocationID uuid.UUID) (*AllocationResponse, error) {
	return s.mutate(ctx, allocationID, func(_ TransactionalRepositories, a *inventory.Allocation) error {
		return a.Cancel()
	})
}

// ReturnToStock closes an active allocation by returning quantity to on-hand:
// a RETURN ledger entry and, for lot-pinned reservations, a lot restore.
func (s *AllocationService) ReturnToStock(ctx context.Context, allocationID uuid.UUID, req ReleaseRequest) (*AllocationResponse, error) {
	return s.mutate(ctx, allocationID, func(repos TransactionalRepositories, a *inventory.Allocation) error {
		if err := a.ReturnToStock(req.Quantity); err != nil {
			return err
		}
		entry, err := inventory.NewLedgerEntry(a.MaterialID, inventory.TransactionKindReturn,
			req.Quantity, a.Owner, inventory.ReferenceKindAllocation, a.ID.String())
		if err != nil {
			return err
		}
		if a.LotID != nil {
			entry = entry.WithLot(*a.LotID)
			lot, err := repos.LotRepo().FindByID(ctx, *a.LotID)
			if err != nil {
				return err
			}
			if err := lot.Restore(req.Quantity); err != nil {
				return err
			}
			if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
				return err
			}
		}
		if req.CreatedBy != nil {
			entry = entry.WithActor(*req.CreatedBy)
		}
		return repos.LedgerRepo().Append(ctx, entry)
	})
}

// FloorStock closes an active allocation as issued-but-unconsumed. The
// material stays on the shop floor as WIP; no ledger entry is written.
func (s *AllocationService) FloorStock(ctx context.Context, allocationID uuid.UUID, req ReleaseRequest) (*AllocationResponse, error) {
	return s.mutate(ctx, allocationID, func(_ TransactionalRepositories, a *inventory.Allocation) error {
		return a.FloorStock(req.Quantity)
	})
}

// GetAllocation returns an allocation by ID
func (s *AllocationService) GetAllocation(ctx context.Context, id uuid.UUID) (*AllocationResponse, error) {
	allocation, err := s.allocationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAllocationResponse(allocation)
	return &resp, nil
}

// ListByOrder returns all allocations for an order
func (s *AllocationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]AllocationResponse, error) {
	allocations, err := s.allocationRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]AllocationResponse, len(allocations))
	for i := range allocations {
		items[i] = ToAllocationResponse(&allocations[i])
	}
	return items, nil
}

func (s *AllocationService) mutate(ctx context.Context, id uuid.UUID, fn func(TransactionalRepositories, *inventory.Allocation) error) (*AllocationResponse, error) {
	var allocation *inventory.Allocation
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.AllocationRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, found); err != nil {
			return err
		}
		if err := repos.AllocationRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}
		allocation = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation.GetDomainEvents()...)
	allocation.ClearDomainEvents()

	resp := ToAllocationResponse(allocation)
	return &resp, nil
}

func (s *AllocationService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
