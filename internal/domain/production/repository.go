package production

import (
	"context"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for production order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber finds an order by its order number
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindOpen finds all orders not in a terminal status, ordered by due date
	// then order number
	FindOpen(ctx context.Context) ([]Order, error)

	// FindAll finds orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts all orders
	Count(ctx context.Context) (int64, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, order *Order) error
}

// PurchaseOrderLineRepository defines the interface for PO line persistence
type PurchaseOrderLineRepository interface {
	// FindByID finds a purchase order line by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderLine, error)

	// FindOpenByMaterial finds OPEN lines for a material
	FindOpenByMaterial(ctx context.Context, materialID uuid.UUID) ([]PurchaseOrderLine, error)

	// SumOutstandingForMaterials sums ordered minus received over OPEN lines,
	// per material, in one query
	SumOutstandingForMaterials(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// Save creates or updates a purchase order line
	Save(ctx context.Context, line *PurchaseOrderLine) error
}

// ProductionLogRepository defines the interface for the production log trail
type ProductionLogRepository interface {
	// Append inserts log entries
	Append(ctx context.Context, logs ...*ProductionLog) error

	// FindByOrder finds log entries for an order, newest first
	FindByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]ProductionLog, error)
}
