package inventory

import (
	"context"
	"time"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotService handles lot receipt, hold/release and FIFO consumption planning
type LotService struct {
	txScope        TransactionScope
	lotRepo        inventory.LotRepository
	eventPublisher shared.EventPublisher
}

// NewLotService creates a new LotService
func NewLotService(txScope TransactionScope, lotRepo inventory.LotRepository) *LotService {
	return &LotService{
		txScope: txScope,
		lotRepo: lotRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LotService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Receive creates a lot and its RECEIPT ledger entry in one transaction.
// When the receipt fulfills a purchase order line, the line's received
// quantity advances in the same transaction.
func (s *LotService) Receive(ctx context.Context, req ReceiveLotRequest) (*LotResponse, error) {
	owner, err := resolveOwner(req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}

	lot, err := inventory.NewLot(req.MaterialID, req.LotNumber, req.Quantity, req.UnitCost, time.Now())
	if err != nil {
		return nil, err
	}
	if req.SupplierID != nil {
		lot = lot.WithSupplier(*req.SupplierID)
	}
	if req.PackageType != "" {
		lot = lot.WithPackageType(req.PackageType)
	}
	if req.ExpirationDate != nil {
		lot = lot.WithExpiration(*req.ExpirationDate)
	}

	refKind := inventory.ReferenceKindManual
	refID := ""
	if req.POLineID != nil {
		refKind = inventory.ReferenceKindPurchaseOrder
		refID = req.POLineID.String()
	}
	entry, err := inventory.NewLedgerEntry(req.MaterialID, inventory.TransactionKindReceipt,
		req.Quantity, owner, refKind, refID)
	if err != nil {
		return nil, err
	}
	entry = entry.WithLot(lot.ID).WithUnitCost(req.UnitCost)
	if req.CreatedBy != nil {
		entry = entry.WithActor(*req.CreatedBy)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if existing, err := repos.LotRepo().FindByLotNumber(ctx, req.MaterialID, req.LotNumber); err == nil && existing != nil {
			return shared.NewDomainError(shared.CodeValidation,
				"Lot number already exists for this material")
		}
		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
		if req.POLineID != nil {
			line, err := repos.POLineRepo().FindByID(ctx, *req.POLineID)
			if err != nil {
				return err
			}
			if err := line.RecordReceipt(req.Quantity); err != nil {
				return err
			}
			return repos.POLineRepo().Save(ctx, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inventory.NewLotReceivedEvent(lot))

	resp := ToLotResponse(lot)
	return &resp, nil
}

// GetLot returns a lot by ID
func (s *LotService) GetLot(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// ListLots returns lots for a material
func (s *LotService) ListLots(ctx context.Context, materialID uuid.UUID, page shared.Filter) (*shared.Paginated[LotResponse], error) {
	lots, err := s.lotRepo.FindByMaterial(ctx, materialID, page)
	if err != nil {
		return nil, err
	}
	total, err := s.lotRepo.Count(ctx, materialID)
	if err != nil {
		return nil, err
	}
	items := make([]LotResponse, len(lots))
	for i := range lots {
		items[i] = ToLotResponse(&lots[i])
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}

// PlanConsumption walks ACTIVE lots oldest-first and plans draws covering the
// requested quantity. Partial cover is a valid, reported outcome; nothing is
// consumed by planning.
func (s *LotService) PlanConsumption(ctx context.Context, materialID uuid.UUID, quantity decimal.Decimal) (*LotSelectionResponse, error) {
	lots, err := s.lotRepo.FindAvailableByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	selection, err := inventory.SelectLotsFIFO(quantity, lots)
	if err != nil {
		return nil, err
	}
	resp := ToLotSelectionResponse(selection)
	return &resp, nil
}

// Hold places a lot ON_HOLD
func (s *LotService) Hold(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	return s.mutateLot(ctx, id, func(lot *inventory.Lot) error { return lot.Hold() })
}

// Release returns an ON_HOLD lot to ACTIVE
func (s *LotService) Release(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	return s.mutateLot(ctx, id, func(lot *inventory.Lot) error { return lot.Release() })
}

// MarkExpired expires a lot, removing it from FIFO selection
func (s *LotService) MarkExpired(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	return s.mutateLot(ctx, id, func(lot *inventory.Lot) error { return lot.MarkExpired() })
}

// ExpireOverdueLots expires every ACTIVE lot whose expiration date has passed.
// Intended for a scheduled run; returns the number of lots expired.
func (s *LotService) ExpireOverdueLots(ctx context.Context) (int, error) {
	expired := 0
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lots, err := repos.LotRepo().FindExpiringBefore(ctx, time.Now())
		if err != nil {
			return err
		}
		for i := range lots {
			if err := lots[i].MarkExpired(); err != nil {
				continue
			}
			if err := repos.LotRepo().SaveWithLock(ctx, &lots[i]); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func (s *LotService) mutateLot(ctx context.Context, id uuid.UUID, mutate func(*inventory.Lot) error) (*LotResponse, error) {
	var lot *inventory.Lot
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.LotRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(found); err != nil {
			return err
		}
		if err := repos.LotRepo().SaveWithLock(ctx, found); err != nil {
			return err
		}
		lot = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

func (s *LotService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Event delivery is best-effort; failures must not fail the operation.
	_ = s.eventPublisher.Publish(ctx, events...)
}
