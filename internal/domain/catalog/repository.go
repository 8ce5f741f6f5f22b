package catalog

import (
	"context"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaterialRepository provides access to the material registry.
// Delete is a tombstone: the row survives for historical ledger references
// and default queries exclude it.
type MaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	FindByPartNumber(ctx context.Context, partNumber string) (*Material, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, material *Material) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BomRepository reads the active BOM revision for a product.
// BOM authoring lives outside this system.
type BomRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]BomItem, error)
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]BomItem, error)
}
