package inventory

import (
	"context"
	"time"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CycleCountService reconciles counted stock against the ledger fold.
// Approval is the only path in the system that writes ADJUSTMENT entries.
type CycleCountService struct {
	txScope        TransactionScope
	cycleCountRepo inventory.CycleCountRepository
	eventPublisher shared.EventPublisher
}

// NewCycleCountService creates a new CycleCountService
func NewCycleCountService(txScope TransactionScope, cycleCountRepo inventory.CycleCountRepository) *CycleCountService {
	return &CycleCountService{
		txScope:        txScope,
		cycleCountRepo: cycleCountRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CycleCountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// StartCount opens a cycle count, snapshotting the system quantity of every
// selected item from the ledger at plan time.
func (s *CycleCountService) StartCount(ctx context.Context, req StartCountRequest) (*CycleCountResponse, error) {
	countDate := time.Now()
	if req.CountDate != nil {
		countDate = *req.CountDate
	}
	count, err := inventory.NewCycleCount(req.CountNumber, countDate)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		count.CreatedBy = req.CreatedBy
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if existing, err := repos.CycleCountRepo().FindByNumber(ctx, req.CountNumber); err == nil && existing != nil {
			return shared.NewDomainError(shared.CodeValidation, "Count number already exists")
		}

		for _, item := range req.Items {
			owner, err := resolveOwner(item.OwnerType, item.OwnerID)
			if err != nil {
				return err
			}

			var systemQty decimal.Decimal
			unitCost := decimal.Zero
			if item.LotID != nil {
				systemQty, err = repos.LedgerRepo().Balance(ctx, inventory.BalanceKey{
					MaterialID: item.MaterialID,
					Owner:      owner,
					LotID:      item.LotID,
				})
				if err != nil {
					return err
				}
				lot, err := repos.LotRepo().FindByID(ctx, *item.LotID)
				if err != nil {
					return err
				}
				unitCost = lot.UnitCost
			} else {
				systemQty, err = repos.LedgerRepo().BalanceByMaterial(ctx, item.MaterialID, owner)
				if err != nil {
					return err
				}
				lots, err := repos.LotRepo().FindAvailableByMaterial(ctx, item.MaterialID)
				if err != nil {
					return err
				}
				unitCost = weightedUnitCost(lots)
			}

			if err := count.AddItem(item.MaterialID, owner, item.LotID, systemQty, unitCost); err != nil {
				return err
			}
		}

		return repos.CycleCountRepo().Save(ctx, count)
	})
	if err != nil {
		return nil, err
	}

	resp := ToCycleCountResponse(count, true)
	return &resp, nil
}

// weightedUnitCost averages available lot costs by remaining quantity
func weightedUnitCost(lots []inventory.Lot) decimal.Decimal {
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for i := range lots {
		totalQty = totalQty.Add(lots[i].RemainingQuantity)
		totalValue = totalValue.Add(lots[i].TotalValue())
	}
	if totalQty.IsZero() {
		return decimal.Zero
	}
	return totalValue.Div(totalQty)
}

// RecordCount records a physical count for one item
func (s *CycleCountService) RecordCount(ctx context.Context, countID, itemID uuid.UUID, req RecordCountRequest) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, countID, func(_ TransactionalRepositories, count *inventory.CycleCount) error {
		item := count.FindItem(itemID)
		if item == nil {
			return shared.ErrNotFound
		}
		return item.RecordCount(req.CountedQuantity, req.Remark)
	})
}

// ApproveItem closes one item. A non-zero variance writes exactly one
// ADJUSTMENT ledger entry sized to counted minus system and, for lot-pinned
// items, corrects the lot's remaining quantity; zero variance writes nothing.
func (s *CycleCountService) ApproveItem(ctx context.Context, countID, itemID uuid.UUID, createdBy *uuid.UUID) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, countID, func(repos TransactionalRepositories, count *inventory.CycleCount) error {
		item := count.FindItem(itemID)
		if item == nil {
			return shared.ErrNotFound
		}
		needsAdjustment, err := item.Approve()
		if err != nil {
			return err
		}
		if !needsAdjustment {
			return nil
		}

		entry, err := inventory.NewLedgerEntry(item.MaterialID, inventory.TransactionKindAdjustment,
			item.Variance, item.Owner, inventory.ReferenceKindCycleCount, count.ID.String())
		if err != nil {
			return err
		}
		if item.LotID != nil {
			entry = entry.WithLot(*item.LotID)
		}
		if createdBy != nil {
			entry = entry.WithActor(*createdBy)
		}
		entry = entry.WithReason("Cycle count " + count.CountNumber)
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}

		if item.LotID != nil {
			lot, err := repos.LotRepo().FindByID(ctx, *item.LotID)
			if err != nil {
				return err
			}
			if err := lot.Adjust(item.Variance); err != nil {
				return err
			}
			return repos.LotRepo().SaveWithLock(ctx, lot)
		}
		return nil
	})
}

// SkipItem excludes one item from the count
func (s *CycleCountService) SkipItem(ctx context.Context, countID, itemID uuid.UUID, remark string) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, countID, func(_ TransactionalRepositories, count *inventory.CycleCount) error {
		item := count.FindItem(itemID)
		if item == nil {
			return shared.ErrNotFound
		}
		return item.Skip(remark)
	})
}

// Complete closes the count once every item is resolved
func (s *CycleCountService) Complete(ctx context.Context, countID uuid.UUID) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, countID, func(_ TransactionalRepositories, count *inventory.CycleCount) error {
		return count.Complete()
	})
}

// CancelCount abandons an open count
func (s *CycleCountService) CancelCount(ctx context.Context, countID uuid.UUID) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, countID, func(_ TransactionalRepositories, count *inventory.CycleCount) error {
		return count.Cancel()
	})
}

// GetCount returns a cycle count with its items
func (s *CycleCountService) GetCount(ctx context.Context, id uuid.UUID) (*CycleCountResponse, error) {
	count, err := s.cycleCountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCycleCountResponse(count, true)
	return &resp, nil
}

// ListCounts returns cycle counts, newest first
func (s *CycleCountService) ListCounts(ctx context.Context, page shared.Filter) (*shared.Paginated[CycleCountResponse], error) {
	counts, err := s.cycleCountRepo.FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.cycleCountRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]CycleCountResponse, len(counts))
	for i := range counts {
		items[i] = ToCycleCountResponse(&counts[i], false)
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *CycleCountService) mutateCount(ctx context.Context, id uuid.UUID, fn func(TransactionalRepositories, *inventory.CycleCount) error) (*CycleCountResponse, error) {
	var count *inventory.CycleCount
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.CycleCountRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, found); err != nil {
			return err
		}
		found.RecalculateTotals()
		found.IncrementVersion()
		if err := repos.CycleCountRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}
		count = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, count.GetDomainEvents()...)
	count.ClearDomainEvents()

	resp := ToCycleCountResponse(count, true)
	return &resp, nil
}

func (s *CycleCountService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
