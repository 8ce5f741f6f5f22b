package production

import (
	"time"

	"github.com/emstack/backend/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to enter a production order
type CreateOrderRequest struct {
	OrderNumber string          `json:"order_number" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Remark      string          `json:"remark"`
}

// OrderResponse represents a production order in API responses
type OrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"order_number"`
	ProductID         uuid.UUID       `json:"product_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityCompleted decimal.Decimal `json:"quantity_completed"`
	DueDate           time.Time       `json:"due_date"`
	Status            string          `json:"status"`
	PreviousStatus    *string         `json:"previous_status,omitempty"`
	WipKitting        decimal.Decimal `json:"wip_kitting"`
	WipSMT            decimal.Decimal `json:"wip_smt"`
	WipTH             decimal.Decimal `json:"wip_th"`
	Remark            string          `json:"remark,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	Version           int             `json:"version"`
}

// ToOrderResponse converts an order to its API representation
func ToOrderResponse(o *production.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		ProductID:         o.ProductID,
		CustomerID:        o.CustomerID,
		Quantity:          o.Quantity,
		QuantityCompleted: o.QuantityCompleted,
		DueDate:           o.DueDate,
		Status:            string(o.Status),
		WipKitting:        o.WipKitting,
		WipSMT:            o.WipSMT,
		WipTH:             o.WipTH,
		Remark:            o.Remark,
		CreatedAt:         o.CreatedAt,
		Version:           o.GetVersion(),
	}
	if o.PreviousStatus != nil {
		prev := string(*o.PreviousStatus)
		resp.PreviousStatus = &prev
	}
	return resp
}

// PickRequest represents a request to reserve materials for an order
type PickRequest struct {
	AllocationIDs []uuid.UUID `json:"allocation_ids"`
	CreatedBy     *uuid.UUID  `json:"created_by"`
}

// IssueRequest represents a request to hand picked materials to production
type IssueRequest struct {
	AllocationIDs []uuid.UUID `json:"allocation_ids"`
	CreatedBy     *uuid.UUID  `json:"created_by"`
}

// ReturnLine reconciles one allocation at stage completion
type ReturnLine struct {
	AllocationID     uuid.UUID       `json:"allocation_id" binding:"required"`
	CountedQuantity  decimal.Decimal `json:"counted_quantity" binding:"required"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity" binding:"required"`
	WasteQuantity    decimal.Decimal `json:"waste_quantity"`
	Action           string          `json:"action" binding:"required,oneof=RETURN FLOOR_STOCK"`
}

// ReturnMaterialsRequest reconciles actual usage for an order's stage
type ReturnMaterialsRequest struct {
	Returns   []ReturnLine `json:"returns" binding:"required,min=1"`
	CreatedBy *uuid.UUID   `json:"created_by"`
}

// PickResultResponse reports the allocations created or validated by a pick
type PickResultResponse struct {
	Order       OrderResponse `json:"order"`
	Allocations []uuid.UUID   `json:"allocation_ids"`
}
