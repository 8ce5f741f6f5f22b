package persistence

import (
	"context"

	"github.com/emstack/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBomRepository implements BomRepository using GORM
type GormBomRepository struct {
	db *gorm.DB
}

// NewGormBomRepository creates a new GormBomRepository
func NewGormBomRepository(db *gorm.DB) *GormBomRepository {
	return &GormBomRepository{db: db}
}

// FindByProduct finds the BOM lines for a product
func (r *GormBomRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.BomItem, error) {
	var items []catalog.BomItem
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("resource_type ASC, material_id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByProducts finds BOM lines for multiple products keyed by product ID
func (r *GormBomRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]catalog.BomItem, error) {
	result := make(map[uuid.UUID][]catalog.BomItem)
	if len(productIDs) == 0 {
		return result, nil
	}

	var items []catalog.BomItem
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, resource_type ASC, material_id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.ProductID] = append(result[item.ProductID], item)
	}
	return result, nil
}

var _ catalog.BomRepository = (*GormBomRepository)(nil)
