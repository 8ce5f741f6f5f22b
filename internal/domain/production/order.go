package production

import (
	"fmt"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the production pipeline stage of an order
type OrderStatus string

const (
	OrderStatusEntered   OrderStatus = "ENTERED"
	OrderStatusKitting   OrderStatus = "KITTING"
	OrderStatusSMT       OrderStatus = "SMT"
	OrderStatusTH        OrderStatus = "TH"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusOnHold    OrderStatus = "ON_HOLD"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusEntered, OrderStatusKitting, OrderStatusSMT, OrderStatusTH,
		OrderStatusShipped, OrderStatusOnHold, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that end the pipeline
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

// IsStage returns true for statuses that are actual pipeline stages
func (s OrderStatus) IsStage() bool {
	switch s {
	case OrderStatusEntered, OrderStatusKitting, OrderStatusSMT, OrderStatusTH, OrderStatusShipped:
		return true
	}
	return false
}

// CanTransitionTo checks whether the pipeline permits a direct move.
// ON_HOLD is entered from any non-terminal stage and resumes to the stage it
// left; boards without through-hole work ship straight from SMT.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusEntered:
		return target == OrderStatusKitting || target == OrderStatusOnHold || target == OrderStatusCancelled
	case OrderStatusKitting:
		return target == OrderStatusSMT || target == OrderStatusOnHold || target == OrderStatusCancelled
	case OrderStatusSMT:
		return target == OrderStatusTH || target == OrderStatusShipped ||
			target == OrderStatusOnHold || target == OrderStatusCancelled
	case OrderStatusTH:
		return target == OrderStatusShipped || target == OrderStatusOnHold || target == OrderStatusCancelled
	case OrderStatusOnHold:
		return target.IsStage() || target == OrderStatusCancelled
	case OrderStatusShipped, OrderStatusCancelled:
		return false
	}
	return false
}

// Order is a production demand line moving through the factory pipeline.
// WIP counters record how many units have entered each stage; they are
// advanced by the fulfillment workflow, never set directly.
//
// A workflow may combine several mutations before persisting, so the
// transition methods do not touch the version; the saving workflow bumps it
// exactly once per SaveWithLock.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityCompleted decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DueDate           time.Time       `gorm:"not null;index"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;index"`
	PreviousStatus    *OrderStatus    `gorm:"type:varchar(20)"`
	WipKitting        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WipSMT            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WipTH             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Remark            string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "production_orders"
}

// NewOrder creates a new production order in ENTERED status
func NewOrder(orderNumber string, productID, customerID uuid.UUID, quantity decimal.Decimal, dueDate time.Time) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order quantity must be positive")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ProductID:         productID,
		CustomerID:        customerID,
		Quantity:          quantity,
		QuantityCompleted: decimal.Zero,
		DueDate:           dueDate,
		Status:            OrderStatusEntered,
		WipKitting:        decimal.Zero,
		WipSMT:            decimal.Zero,
		WipTH:             decimal.Zero,
	}, nil
}

// RemainingQuantity returns the still-unbuilt portion of the order
func (o *Order) RemainingQuantity() decimal.Decimal {
	remaining := o.Quantity.Sub(o.QuantityCompleted)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsOpen returns true while the order still represents demand
func (o *Order) IsOpen() bool {
	return !o.Status.IsTerminal()
}

// AdvanceTo moves the order to the next pipeline stage
func (o *Order) AdvanceTo(target OrderStatus) error {
	if !target.IsValid() || !target.IsStage() {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Invalid target stage %s", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.PreviousStatus = nil
	o.UpdatedAt = time.Now()
	return nil
}

// Hold parks the order, remembering the stage it left
func (o *Order) Hold() error {
	if !o.Status.CanTransitionTo(OrderStatusOnHold) {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot hold order in status %s", o.Status))
	}
	prior := o.Status
	o.PreviousStatus = &prior
	o.Status = OrderStatusOnHold
	o.UpdatedAt = time.Now()
	return nil
}

// Resume returns a held order to the stage it was holding at
func (o *Order) Resume() error {
	if o.Status != OrderStatusOnHold {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot resume order in status %s", o.Status))
	}
	if o.PreviousStatus == nil {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			"Held order has no stage to resume to")
	}
	o.Status = *o.PreviousStatus
	o.PreviousStatus = nil
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel terminates the order
func (o *Order) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot cancel order in status %s", o.Status))
	}
	o.Status = OrderStatusCancelled
	o.PreviousStatus = nil
	o.UpdatedAt = time.Now()
	return nil
}

// RecordStageEntry advances the WIP counter for a stage by the given quantity
func (o *Order) RecordStageEntry(stage OrderStatus, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Stage quantity must be positive")
	}
	switch stage {
	case OrderStatusKitting:
		o.WipKitting = o.WipKitting.Add(quantity)
	case OrderStatusSMT:
		o.WipSMT = o.WipSMT.Add(quantity)
	case OrderStatusTH:
		o.WipTH = o.WipTH.Add(quantity)
	default:
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Stage %s does not track WIP", stage))
	}
	o.UpdatedAt = time.Now()
	return nil
}

// RecordCompletion adds finished units, capped at the order quantity
func (o *Order) RecordCompletion(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Completed quantity must be positive")
	}
	if o.QuantityCompleted.Add(quantity).GreaterThan(o.Quantity) {
		return shared.NewDomainError(shared.CodeValidation,
			"Completed quantity would exceed order quantity")
	}
	o.QuantityCompleted = o.QuantityCompleted.Add(quantity)
	o.UpdatedAt = time.Now()
	return nil
}
