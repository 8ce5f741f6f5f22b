package persistence

import (
	"context"
	"errors"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCycleCountRepository implements CycleCountRepository using GORM
type GormCycleCountRepository struct {
	db *gorm.DB
}

// NewGormCycleCountRepository creates a new GormCycleCountRepository
func NewGormCycleCountRepository(db *gorm.DB) *GormCycleCountRepository {
	return &GormCycleCountRepository{db: db}
}

// FindByID finds a cycle count with its items
func (r *GormCycleCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.CycleCount, error) {
	var count inventory.CycleCount
	if err := r.db.WithContext(ctx).Preload("Items").First(&count, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindByNumber finds a cycle count by its count number
func (r *GormCycleCountRepository) FindByNumber(ctx context.Context, countNumber string) (*inventory.CycleCount, error) {
	var count inventory.CycleCount
	if err := r.db.WithContext(ctx).Preload("Items").First(&count, "count_number = ?", countNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindAll finds cycle counts, newest first
func (r *GormCycleCountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.CycleCount, error) {
	var counts []inventory.CycleCount
	query := r.db.WithContext(ctx).Model(&inventory.CycleCount{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("count_date DESC, created_at DESC").Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// Count counts cycle counts
func (r *GormCycleCountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.CycleCount{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a cycle count and its items
func (r *GormCycleCountRepository) Save(ctx context.Context, count *inventory.CycleCount) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Save(count).Error
}

// SaveWithLock saves the header with optimistic locking, then upserts items.
// Item rows are only mutated through the aggregate, so the header version
// guards the whole count.
func (r *GormCycleCountRepository) SaveWithLock(ctx context.Context, count *inventory.CycleCount) error {
	result := r.db.WithContext(ctx).
		Model(count).
		Where("id = ? AND version = ?", count.ID, count.Version-1).
		Updates(map[string]interface{}{
			"status":               count.Status,
			"total_items":          count.TotalItems,
			"items_counted":        count.ItemsCounted,
			"items_with_variance":  count.ItemsWithVariance,
			"total_variance_value": count.TotalVarianceValue,
			"version":              count.Version,
			"updated_at":           count.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	if len(count.Items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&count.Items).Error
}

var _ inventory.CycleCountRepository = (*GormCycleCountRepository)(nil)
