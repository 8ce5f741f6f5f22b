package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM.
// The one-ACTIVE-per-key invariant lives in the database as a partial unique
// index; Insert translates the violation into ErrAllocationConflict so
// callers can treat a lost race as an expected, retryable outcome.
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Allocation, error) {
	var allocation inventory.Allocation
	if err := r.db.WithContext(ctx).First(&allocation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &allocation, nil
}

// FindActive finds the ACTIVE allocation for an allocation key
func (r *GormAllocationRepository) FindActive(ctx context.Context, materialID, orderID uuid.UUID, owner valueobject.Owner, lotID *uuid.UUID) (*inventory.Allocation, error) {
	query := r.db.WithContext(ctx).
		Where("material_id = ? AND order_id = ? AND owner = ? AND status = ?",
			materialID, orderID, owner.String(), inventory.AllocationStatusActive)
	if lotID != nil {
		query = query.Where("lot_id = ?", *lotID)
	} else {
		query = query.Where("lot_id IS NULL")
	}

	var allocation inventory.Allocation
	if err := query.First(&allocation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &allocation, nil
}

// FindByOrder finds all allocations for an order
func (r *GormAllocationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.Allocation, error) {
	var allocations []inventory.Allocation
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// FindActiveByOrder finds ACTIVE allocations for an order
func (r *GormAllocationRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.Allocation, error) {
	var allocations []inventory.Allocation
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, inventory.AllocationStatusActive).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// FindByMaterial finds allocations for a material
func (r *GormAllocationRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]inventory.Allocation, error) {
	var allocations []inventory.Allocation
	query := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Where("material_id = ?", materialID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// SumActiveByMaterial sums ACTIVE allocation quantity for a material and
// owner, excluding the given allocation IDs
func (r *GormAllocationRepository) SumActiveByMaterial(ctx context.Context, materialID uuid.UUID, owner valueobject.Owner, exclude ...uuid.UUID) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Where("material_id = ? AND owner = ? AND status = ?",
			materialID, owner.String(), inventory.AllocationStatusActive)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(quantity), 0) AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumActiveForMaterials sums ACTIVE allocation quantity per material
func (r *GormAllocationRepository) SumActiveForMaterials(ctx context.Context, materialIDs []uuid.UUID, owner valueobject.Owner) (map[uuid.UUID]decimal.Decimal, error) {
	result := make(map[uuid.UUID]decimal.Decimal)
	if len(materialIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		MaterialID uuid.UUID
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Select("material_id, COALESCE(SUM(quantity), 0) AS total").
		Where("material_id IN ? AND owner = ? AND status = ?",
			materialIDs, owner.String(), inventory.AllocationStatusActive).
		Group("material_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.MaterialID] = row.Total
	}
	return result, nil
}

// Insert creates a new allocation, mapping the ACTIVE-scoped unique index
// violation to ErrAllocationConflict
func (r *GormAllocationRepository) Insert(ctx context.Context, allocation *inventory.Allocation) error {
	if err := r.db.WithContext(ctx).Create(allocation).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAllocationConflict
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormAllocationRepository) SaveWithLock(ctx context.Context, allocation *inventory.Allocation) error {
	result := r.db.WithContext(ctx).
		Model(allocation).
		Where("id = ? AND version = ?", allocation.ID, allocation.Version-1).
		Updates(map[string]interface{}{
			"status":            allocation.Status,
			"consumed_quantity": allocation.ConsumedQuantity,
			"waste_quantity":    allocation.WasteQuantity,
			"returned_quantity": allocation.ReturnedQuantity,
			"issued_at":         allocation.IssuedAt,
			"closed_at":         allocation.ClosedAt,
			"version":           allocation.Version,
			"updated_at":        allocation.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// isUniqueViolation reports whether the error is a unique constraint
// violation, for postgres and for the sqlite driver used in tests
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

var _ inventory.AllocationRepository = (*GormAllocationRepository)(nil)
