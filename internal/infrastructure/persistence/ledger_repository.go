package persistence

import (
	"context"
	"errors"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements LedgerRepository using GORM. The ledger is
// append-only: this type deliberately has no update or delete methods, and
// the migrations add a database rule rejecting UPDATE/DELETE on the table.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts new ledger entries
func (r *GormLedgerRepository) Append(ctx context.Context, entries ...*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll finds ledger entries matching the filter, newest first
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter inventory.LedgerFilter, page shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyLedgerFilter(r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}), filter).
		Order("created_at DESC")
	if page.PageSize > 0 {
		query = query.Offset((page.Page - 1) * page.PageSize).Limit(page.PageSize)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts ledger entries matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter inventory.LedgerFilter) (int64, error) {
	var count int64
	query := r.applyLedgerFilter(r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Balance computes the signed sum of quantities for one balance key. Entries
// store signed quantities, so the fold is a plain SUM.
func (r *GormLedgerRepository) Balance(ctx context.Context, key inventory.BalanceKey) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("material_id = ? AND owner = ?", key.MaterialID, key.Owner.String())
	if key.LotID != nil {
		query = query.Where("lot_id = ?", *key.LotID)
	} else {
		query = query.Where("lot_id IS NULL")
	}
	return r.sumQuantity(query)
}

// BalanceByMaterial computes the signed sum across all lots of a material for
// one owner
func (r *GormLedgerRepository) BalanceByMaterial(ctx context.Context, materialID uuid.UUID, owner valueobject.Owner) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("material_id = ? AND owner = ?", materialID, owner.String())
	return r.sumQuantity(query)
}

// BalancesByOwner computes per-material balances for one owner
func (r *GormLedgerRepository) BalancesByOwner(ctx context.Context, owner valueobject.Owner) ([]inventory.MaterialBalance, error) {
	return r.groupedBalances(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).Where("owner = ?", owner.String()),
	)
}

// BalancesForMaterials computes per-material, per-owner balances for the
// given materials in one query
func (r *GormLedgerRepository) BalancesForMaterials(ctx context.Context, materialIDs []uuid.UUID) ([]inventory.MaterialBalance, error) {
	if len(materialIDs) == 0 {
		return nil, nil
	}
	return r.groupedBalances(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).Where("material_id IN ?", materialIDs),
	)
}

type balanceRow struct {
	MaterialID uuid.UUID
	Owner      string
	Quantity   decimal.Decimal
}

func (r *GormLedgerRepository) groupedBalances(query *gorm.DB) ([]inventory.MaterialBalance, error) {
	var rows []balanceRow
	if err := query.
		Select("material_id, owner, COALESCE(SUM(quantity), 0) AS quantity").
		Group("material_id, owner").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]inventory.MaterialBalance, 0, len(rows))
	for _, row := range rows {
		owner, err := valueobject.ParseOwner(row.Owner)
		if err != nil {
			return nil, err
		}
		balances = append(balances, inventory.MaterialBalance{
			MaterialID: row.MaterialID,
			Owner:      owner,
			Quantity:   row.Quantity,
		})
	}
	return balances, nil
}

func (r *GormLedgerRepository) sumQuantity(query *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(quantity), 0) AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *GormLedgerRepository) applyLedgerFilter(query *gorm.DB, filter inventory.LedgerFilter) *gorm.DB {
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.Owner != nil {
		query = query.Where("owner = ?", filter.Owner.String())
	}
	if filter.LotID != nil {
		query = query.Where("lot_id = ?", *filter.LotID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.ReferenceKind != nil {
		query = query.Where("reference_kind = ?", *filter.ReferenceKind)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	return query
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
