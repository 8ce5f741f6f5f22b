package production

import (
	"context"
	"fmt"

	"github.com/emstack/backend/internal/domain/catalog"
	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/production"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FulfillmentService orchestrates picking, issuing and returning materials
// for an order at production stage boundaries. Materials for company builds
// are reserved from company-owned stock.
type FulfillmentService struct {
	txScope        TransactionScope
	bomRepo        catalog.BomRepository
	eventPublisher shared.EventPublisher
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(txScope TransactionScope, bomRepo catalog.BomRepository) *FulfillmentService {
	return &FulfillmentService{
		txScope: txScope,
		bomRepo: bomRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *FulfillmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Pick reserves stock for every BOM line of the order that has no active
// reservation yet, or re-validates the specified allocations. An order
// entering pick moves from ENTERED to KITTING.
func (s *FulfillmentService) Pick(ctx context.Context, orderID uuid.UUID, req PickRequest) (*PickResultResponse, error) {
	var result PickResultResponse
	var events []shared.DomainEvent

	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsOpen() || order.Status == production.OrderStatusOnHold {
			return shared.NewDomainError(shared.CodeInvalidStateTransition,
				fmt.Sprintf("Cannot pick for order in status %s", order.Status))
		}

		owner := valueobject.CompanyOwner()

		if len(req.AllocationIDs) > 0 {
			// Re-validate the caller's picked set instead of creating new ones.
			for _, id := range req.AllocationIDs {
				allocation, err := repos.AllocationRepo().FindByID(ctx, id)
				if err != nil {
					return err
				}
				if allocation.OrderID != order.ID {
					return shared.NewDomainError(shared.CodeValidation,
						"Allocation does not belong to this order")
				}
				if !allocation.IsActive() {
					return shared.NewDomainError(shared.CodeInvalidStateTransition,
						fmt.Sprintf("Allocation %s is not active", id))
				}
				result.Allocations = append(result.Allocations, id)
			}
		} else {
			lines, err := s.bomRepo.FindByProduct(ctx, order.ProductID)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return shared.NewDomainError(shared.CodeValidation,
					"Product has no BOM lines to pick")
			}

			for _, line := range lines {
				existing, err := repos.AllocationRepo().FindActive(ctx, line.MaterialID, order.ID, owner, nil)
				if err == nil && existing != nil {
					result.Allocations = append(result.Allocations, existing.ID)
					continue
				}

				required := line.RequiredFor(order.RemainingQuantity())
				if !required.IsPositive() {
					continue
				}

				if err := repos.LockMaterial(ctx, line.MaterialID); err != nil {
					return err
				}
				balance, err := repos.LedgerRepo().BalanceByMaterial(ctx, line.MaterialID, owner)
				if err != nil {
					return err
				}
				reserved, err := repos.AllocationRepo().SumActiveByMaterial(ctx, line.MaterialID, owner)
				if err != nil {
					return err
				}
				available := balance.Sub(reserved)
				if required.GreaterThan(available) {
					return shared.NewDomainError(shared.CodeInsufficientStock,
						fmt.Sprintf("Insufficient stock for material %s: required %s, available %s",
							line.MaterialID, required, available))
				}

				allocation, err := inventory.NewAllocation(line.MaterialID, order.ID, owner, required)
				if err != nil {
					return err
				}
				if req.CreatedBy != nil {
					allocation = allocation.WithCreator(*req.CreatedBy)
				}
				if err := repos.AllocationRepo().Insert(ctx, allocation); err != nil {
					return err
				}
				events = append(events, allocation.GetDomainEvents()...)
				allocation.ClearDomainEvents()
				result.Allocations = append(result.Allocations, allocation.ID)
			}
		}

		if order.Status == production.OrderStatusEntered {
			if err := order.AdvanceTo(production.OrderStatusKitting); err != nil {
				return err
			}
			if err := order.RecordStageEntry(production.OrderStatusKitting, order.RemainingQuantity()); err != nil {
				return err
			}
		}
		order.IncrementVersion()
		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}

		log := production.NewProductionLog(order.ID, order.Status, production.LogActionPick,
			decimal.NewFromInt(int64(len(result.Allocations))))
		if req.CreatedBy != nil {
			log = log.WithActor(*req.CreatedBy)
		}
		if err := repos.ProductionLogRepo().Append(ctx, log); err != nil {
			return err
		}

		result.Order = ToOrderResponse(order)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishEvents(ctx, events...)
	return &result, nil
}

// Issue hands picked material to production. The allocations stay ACTIVE;
// the order advances from KITTING to SMT.
func (s *FulfillmentService) Issue(ctx context.Context, orderID uuid.UUID, req IssueRequest) (*OrderResponse, error) {
	var order *production.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		allocations, err := s.resolveAllocations(ctx, repos, found, req.AllocationIDs)
		if err != nil {
			return err
		}
		if len(allocations) == 0 {
			return shared.NewDomainError(shared.CodeValidation, "Order has no active allocations to issue")
		}
		for i := range allocations {
			if err := allocations[i].MarkIssued(); err != nil {
				return err
			}
			if err := repos.AllocationRepo().SaveWithLock(ctx, &allocations[i]); err != nil {
				return err
			}
		}

		if found.Status == production.OrderStatusKitting {
			if err := found.AdvanceTo(production.OrderStatusSMT); err != nil {
				return err
			}
			if err := found.RecordStageEntry(production.OrderStatusSMT, found.RemainingQuantity()); err != nil {
				return err
			}
		}
		found.IncrementVersion()
		if err := repos.OrderRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}

		log := production.NewProductionLog(found.ID, found.Status, production.LogActionIssue,
			decimal.NewFromInt(int64(len(allocations))))
		if req.CreatedBy != nil {
			log = log.WithActor(*req.CreatedBy)
		}
		if err := repos.ProductionLogRepo().Append(ctx, log); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ReturnMaterials reconciles actual usage at stage completion. Every line
// must balance: consumed + waste + returned == counted, otherwise the whole
// operation is rejected with QUANTITY_MISMATCH and nothing is written.
func (s *FulfillmentService) ReturnMaterials(ctx context.Context, orderID uuid.UUID, req ReturnMaterialsRequest) (*OrderResponse, error) {
	var order *production.Order
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		for _, line := range req.Returns {
			action := inventory.ReconcileAction(line.Action)
			allocation, err := repos.AllocationRepo().FindByID(ctx, line.AllocationID)
			if err != nil {
				return err
			}
			if allocation.OrderID != found.ID {
				return shared.NewDomainError(shared.CodeValidation,
					"Allocation does not belong to this order")
			}

			remainder, err := allocation.Reconcile(line.CountedQuantity, line.ConsumedQuantity, line.WasteQuantity, action)
			if err != nil {
				return err
			}
			if err := repos.AllocationRepo().SaveWithLock(ctx, allocation); err != nil {
				return err
			}

			if err := s.writeReconcileEntries(ctx, repos, allocation, line, remainder, action, req.CreatedBy); err != nil {
				return err
			}

			drawn := line.ConsumedQuantity.Add(line.WasteQuantity)
			if allocation.LotID != nil && drawn.IsPositive() {
				lot, err := repos.LotRepo().FindByID(ctx, *allocation.LotID)
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

			logAction := production.LogActionReturn
			if action == inventory.ReconcileActionFloorStock {
				logAction = production.LogActionFloorStock
			}
			log := production.NewProductionLog(found.ID, found.Status, logAction, line.CountedQuantity)
			if req.CreatedBy != nil {
				log = log.WithActor(*req.CreatedBy)
			}
			if err := repos.ProductionLogRepo().Append(ctx, log); err != nil {
				return err
			}

			events = append(events, allocation.GetDomainEvents()...)
			allocation.ClearDomainEvents()
		}

		// Stage completion: boards move from SMT to through-hole work.
		if found.Status == production.OrderStatusSMT {
			if err := found.AdvanceTo(production.OrderStatusTH); err != nil {
				return err
			}
			if err := found.RecordStageEntry(production.OrderStatusTH, found.RemainingQuantity()); err != nil {
				return err
			}
		}
		found.IncrementVersion()
		if err := repos.OrderRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// writeReconcileEntries appends the ledger entries for one reconciled line:
// CONSUMPTION for the consumed portion, SCRAP for waste, RETURN for a
// remainder going back to stock. Floor-stocked remainders stay off the
// ledger as WIP.
func (s *FulfillmentService) writeReconcileEntries(
	ctx context.Context,
	repos TransactionalRepositories,
	allocation *inventory.Allocation,
	line ReturnLine,
	remainder decimal.Decimal,
	action inventory.ReconcileAction,
	createdBy *uuid.UUID,
) error {
	var entries []*inventory.LedgerEntry
	build := func(kind inventory.TransactionKind, qty decimal.Decimal) error {
		if !qty.IsPositive() {
			return nil
		}
		entry, err := inventory.NewLedgerEntry(allocation.MaterialID, kind, qty, allocation.Owner,
			inventory.ReferenceKindProductionOrder, allocation.OrderID.String())
		if err != nil {
			return err
		}
		if allocation.LotID != nil {
			entry = entry.WithLot(*allocation.LotID)
		}
		if createdBy != nil {
			entry = entry.WithActor(*createdBy)
		}
		entries = append(entries, entry)
		return nil
	}

	if err := build(inventory.TransactionKindConsumption, line.ConsumedQuantity); err != nil {
		return err
	}
	if err := build(inventory.TransactionKindScrap, line.WasteQuantity); err != nil {
		return err
	}
	if action == inventory.ReconcileActionReturn {
		if err := build(inventory.TransactionKindReturn, remainder); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return repos.LedgerRepo().Append(ctx, entries...)
}

// resolveAllocations returns the specified allocations, or all ACTIVE ones
// for the order when none are specified
func (s *FulfillmentService) resolveAllocations(ctx context.Context, repos TransactionalRepositories, order *production.Order, ids []uuid.UUID) ([]inventory.Allocation, error) {
	if len(ids) == 0 {
		return repos.AllocationRepo().FindActiveByOrder(ctx, order.ID)
	}
	allocations := make([]inventory.Allocation, 0, len(ids))
	for _, id := range ids {
		allocation, err := repos.AllocationRepo().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if allocation.OrderID != order.ID {
			return nil, shared.NewDomainError(shared.CodeValidation,
				"Allocation does not belong to this order")
		}
		allocations = append(allocations, *allocation)
	}
	return allocations, nil
}

func (s *FulfillmentService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
