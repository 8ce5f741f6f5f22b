package mrp

import (
	"context"
	"time"

	"github.com/emstack/backend/internal/domain/catalog"
	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/mrp"
	"github.com/emstack/backend/internal/domain/production"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportCache stores shortage report snapshots. A miss returns (nil, nil).
type ReportCache interface {
	// Get returns the cached report, or nil when absent or expired
	Get(ctx context.Context) (*mrp.Report, error)
	// Set stores a report for the given duration
	Set(ctx context.Context, report *mrp.Report, ttl time.Duration) error
	// Invalidate drops the cached report
	Invalidate(ctx context.Context) error
}

// ShortageService runs the shortage analysis over a consistent read snapshot.
// Results are stale-by-seconds reporting views; a short cache keeps repeated
// dashboard loads from re-exploding every BOM.
type ShortageService struct {
	orderRepo  production.OrderRepository
	bomRepo    catalog.BomRepository
	ledgerRepo inventory.LedgerRepository
	poLineRepo production.PurchaseOrderLineRepository
	cache      ReportCache
	cacheTTL   time.Duration
}

// NewShortageService creates a new ShortageService
func NewShortageService(
	orderRepo production.OrderRepository,
	bomRepo catalog.BomRepository,
	ledgerRepo inventory.LedgerRepository,
	poLineRepo production.PurchaseOrderLineRepository,
) *ShortageService {
	return &ShortageService{
		orderRepo:  orderRepo,
		bomRepo:    bomRepo,
		ledgerRepo: ledgerRepo,
		poLineRepo: poLineRepo,
		cacheTTL:   30 * time.Second,
	}
}

// SetCache attaches a report cache
func (s *ShortageService) SetCache(cache ReportCache, ttl time.Duration) {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// GetReport returns the current shortage report, serving a cached snapshot
// when one is fresh
func (s *ShortageService) GetReport(ctx context.Context) (*mrp.Report, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	report, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, report, s.cacheTTL)
	}
	return report, nil
}

// Run executes a fresh shortage analysis, bypassing the cache
func (s *ShortageService) Run(ctx context.Context) (*mrp.Report, error) {
	orders, err := s.orderRepo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}

	demands := make([]mrp.OrderDemand, 0, len(orders))
	productIDs := make([]uuid.UUID, 0, len(orders))
	seenProducts := make(map[uuid.UUID]bool)
	for i := range orders {
		order := &orders[i]
		demands = append(demands, mrp.OrderDemand{
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			CustomerID:        order.CustomerID,
			ProductID:         order.ProductID,
			RemainingQuantity: order.RemainingQuantity(),
			DueDate:           order.DueDate,
		})
		if !seenProducts[order.ProductID] {
			seenProducts[order.ProductID] = true
			productIDs = append(productIDs, order.ProductID)
		}
	}

	boms, err := s.bomRepo.FindByProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	materialIDs := collectMaterialIDs(boms)

	balanceRows, err := s.ledgerRepo.BalancesForMaterials(ctx, materialIDs)
	if err != nil {
		return nil, err
	}
	balances := make(map[uuid.UUID]decimal.Decimal, len(balanceRows))
	companyOwner := valueobject.CompanyOwner()
	for _, row := range balanceRows {
		// Consignment-owned stock is excluded from company builds.
		if row.Owner.Equal(companyOwner) {
			balances[row.MaterialID] = balances[row.MaterialID].Add(row.Quantity)
		}
	}

	onOrder, err := s.poLineRepo.SumOutstandingForMaterials(ctx, materialIDs)
	if err != nil {
		return nil, err
	}

	return mrp.Calculate(mrp.Snapshot{
		Orders:   demands,
		Boms:     boms,
		Balances: balances,
		OnOrder:  onOrder,
		TakenAt:  time.Now(),
	}), nil
}

// Invalidate drops the cached report, forcing the next read to recompute
func (s *ShortageService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

func collectMaterialIDs(boms map[uuid.UUID][]catalog.BomItem) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, lines := range boms {
		for _, line := range lines {
			if !seen[line.MaterialID] {
				seen[line.MaterialID] = true
				ids = append(ids, line.MaterialID)
			}
		}
	}
	return ids
}
