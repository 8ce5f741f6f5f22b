package inventory

import (
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants for events
const (
	AggregateTypeAllocation = "Allocation"
	AggregateTypeLot        = "Lot"
	AggregateTypeCycleCount = "CycleCount"
)

// Event type constants
const (
	// EventTypeAllocationCreated is raised when stock is soft-reserved for an order.
	EventTypeAllocationCreated = "AllocationCreated"

	// EventTypeAllocationConsumed is raised when an issued allocation is
	// reported as used in production.
	EventTypeAllocationConsumed = "AllocationConsumed"

	// EventTypeAllocationReleased is raised when an allocation stops holding
	// stock without consuming it (cancel, return, floor stock).
	EventTypeAllocationReleased = "AllocationReleased"

	// EventTypeLotReceived is raised when a new lot enters stock.
	EventTypeLotReceived = "LotReceived"

	// EventTypeCycleCountCompleted is raised when every item of a cycle count
	// is resolved.
	EventTypeCycleCountCompleted = "CycleCountCompleted"
)

// AllocationCreatedEvent is raised when stock is reserved for an order
type AllocationCreatedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID       `json:"allocation_id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	Owner        string          `json:"owner"`
	LotID        *uuid.UUID      `json:"lot_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// NewAllocationCreatedEvent creates a new AllocationCreatedEvent
func NewAllocationCreatedEvent(a *Allocation) *AllocationCreatedEvent {
	return &AllocationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeAllocationCreated,
			AggregateTypeAllocation,
			a.ID,
		),
		AllocationID: a.ID,
		MaterialID:   a.MaterialID,
		OrderID:      a.OrderID,
		Owner:        a.Owner.String(),
		LotID:        a.LotID,
		Quantity:     a.Quantity,
	}
}

// EventType returns the event type name
func (e *AllocationCreatedEvent) EventType() string {
	return EventTypeAllocationCreated
}

// AllocationConsumedEvent is raised when an allocation is consumed in production
type AllocationConsumedEvent struct {
	shared.BaseDomainEvent
	AllocationID     uuid.UUID       `json:"allocation_id"`
	MaterialID       uuid.UUID       `json:"material_id"`
	OrderID          uuid.UUID       `json:"order_id"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity"`
	WasteQuantity    decimal.Decimal `json:"waste_quantity"`
}

// NewAllocationConsumedEvent creates a new AllocationConsumedEvent
func NewAllocationConsumedEvent(a *Allocation) *AllocationConsumedEvent {
	return &AllocationConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeAllocationConsumed,
			AggregateTypeAllocation,
			a.ID,
		),
		AllocationID:     a.ID,
		MaterialID:       a.MaterialID,
		OrderID:          a.OrderID,
		ConsumedQuantity: a.ConsumedQuantity,
		WasteQuantity:    a.WasteQuantity,
	}
}

// EventType returns the event type name
func (e *AllocationConsumedEvent) EventType() string {
	return EventTypeAllocationConsumed
}

// AllocationReleasedEvent is raised when an allocation releases its hold on
// stock without being consumed
type AllocationReleasedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID        `json:"allocation_id"`
	MaterialID   uuid.UUID        `json:"material_id"`
	OrderID      uuid.UUID        `json:"order_id"`
	Quantity     decimal.Decimal  `json:"quantity"`
	FinalStatus  AllocationStatus `json:"final_status"`
}

// NewAllocationReleasedEvent creates a new AllocationReleasedEvent
func NewAllocationReleasedEvent(a *Allocation) *AllocationReleasedEvent {
	return &AllocationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeAllocationReleased,
			AggregateTypeAllocation,
			a.ID,
		),
		AllocationID: a.ID,
		MaterialID:   a.MaterialID,
		OrderID:      a.OrderID,
		Quantity:     a.Quantity,
		FinalStatus:  a.Status,
	}
}

// EventType returns the event type name
func (e *AllocationReleasedEvent) EventType() string {
	return EventTypeAllocationReleased
}

// LotReceivedEvent is raised when a new lot enters stock
type LotReceivedEvent struct {
	shared.BaseDomainEvent
	LotID      uuid.UUID       `json:"lot_id"`
	MaterialID uuid.UUID       `json:"material_id"`
	LotNumber  string          `json:"lot_number"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// NewLotReceivedEvent creates a new LotReceivedEvent
func NewLotReceivedEvent(l *Lot) *LotReceivedEvent {
	return &LotReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeLotReceived,
			AggregateTypeLot,
			l.ID,
		),
		LotID:      l.ID,
		MaterialID: l.MaterialID,
		LotNumber:  l.LotNumber,
		Quantity:   l.InitialQuantity,
	}
}

// EventType returns the event type name
func (e *LotReceivedEvent) EventType() string {
	return EventTypeLotReceived
}

// CycleCountCompletedEvent is raised when a cycle count closes
type CycleCountCompletedEvent struct {
	shared.BaseDomainEvent
	CycleCountID       uuid.UUID       `json:"cycle_count_id"`
	CountNumber        string          `json:"count_number"`
	TotalItems         int             `json:"total_items"`
	ItemsWithVariance  int             `json:"items_with_variance"`
	TotalVarianceValue decimal.Decimal `json:"total_variance_value"`
}

// NewCycleCountCompletedEvent creates a new CycleCountCompletedEvent
func NewCycleCountCompletedEvent(c *CycleCount) *CycleCountCompletedEvent {
	return &CycleCountCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeCycleCountCompleted,
			AggregateTypeCycleCount,
			c.ID,
		),
		CycleCountID:       c.ID,
		CountNumber:        c.CountNumber,
		TotalItems:         c.TotalItems,
		ItemsWithVariance:  c.ItemsWithVariance,
		TotalVarianceValue: c.TotalVarianceValue,
	}
}

// EventType returns the event type name
func (e *CycleCountCompletedEvent) EventType() string {
	return EventTypeCycleCountCompleted
}
