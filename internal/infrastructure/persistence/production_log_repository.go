package persistence

import (
	"context"

	"github.com/emstack/backend/internal/domain/production"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductionLogRepository implements ProductionLogRepository using GORM
type GormProductionLogRepository struct {
	db *gorm.DB
}

// NewGormProductionLogRepository creates a new GormProductionLogRepository
func NewGormProductionLogRepository(db *gorm.DB) *GormProductionLogRepository {
	return &GormProductionLogRepository{db: db}
}

// Append inserts log entries
func (r *GormProductionLogRepository) Append(ctx context.Context, logs ...*production.ProductionLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(logs).Error
}

// FindByOrder finds log entries for an order, newest first
func (r *GormProductionLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]production.ProductionLog, error) {
	var logs []production.ProductionLog
	query := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

var _ production.ProductionLogRepository = (*GormProductionLogRepository)(nil)
