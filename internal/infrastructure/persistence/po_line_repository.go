package persistence

import (
	"context"
	"errors"

	"github.com/emstack/backend/internal/domain/production"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPurchaseOrderLineRepository implements PurchaseOrderLineRepository using GORM
type GormPurchaseOrderLineRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderLineRepository creates a new GormPurchaseOrderLineRepository
func NewGormPurchaseOrderLineRepository(db *gorm.DB) *GormPurchaseOrderLineRepository {
	return &GormPurchaseOrderLineRepository{db: db}
}

// FindByID finds a purchase order line by its ID
func (r *GormPurchaseOrderLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.PurchaseOrderLine, error) {
	var line production.PurchaseOrderLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindOpenByMaterial finds OPEN lines for a material, earliest expected first
func (r *GormPurchaseOrderLineRepository) FindOpenByMaterial(ctx context.Context, materialID uuid.UUID) ([]production.PurchaseOrderLine, error) {
	var lines []production.PurchaseOrderLine
	if err := r.db.WithContext(ctx).
		Where("material_id = ? AND status = ?", materialID, production.PurchaseOrderLineStatusOpen).
		Order("expected_date ASC NULLS LAST, po_number ASC, line_number ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// SumOutstandingForMaterials sums ordered minus received over OPEN lines, per material
func (r *GormPurchaseOrderLineRepository) SumOutstandingForMaterials(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	result := make(map[uuid.UUID]decimal.Decimal)
	if len(materialIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		MaterialID uuid.UUID
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&production.PurchaseOrderLine{}).
		Select("material_id, COALESCE(SUM(quantity_ordered - quantity_received), 0) AS total").
		Where("material_id IN ? AND status = ?", materialIDs, production.PurchaseOrderLineStatusOpen).
		Group("material_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.MaterialID] = row.Total
	}
	return result, nil
}

// Save creates or updates a purchase order line
func (r *GormPurchaseOrderLineRepository) Save(ctx context.Context, line *production.PurchaseOrderLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

var _ production.PurchaseOrderLineRepository = (*GormPurchaseOrderLineRepository)(nil)
