package inventory

import (
	"fmt"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationStatus represents the lifecycle state of a reservation
type AllocationStatus string

const (
	AllocationStatusActive     AllocationStatus = "ACTIVE"
	AllocationStatusConsumed   AllocationStatus = "CONSUMED"
	AllocationStatusCancelled  AllocationStatus = "CANCELLED"
	AllocationStatusFloorStock AllocationStatus = "FLOOR_STOCK"
	AllocationStatusReturned   AllocationStatus = "RETURNED"
)

// IsValid checks if the status is a valid AllocationStatus
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationStatusActive, AllocationStatusConsumed, AllocationStatusCancelled,
		AllocationStatusFloorStock, AllocationStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of AllocationStatus
func (s AllocationStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states no transition leaves
func (s AllocationStatus) IsTerminal() bool {
	return s != AllocationStatusActive
}

// CanTransitionTo checks if the status can transition to the target status.
// Every transition leaves ACTIVE and nothing re-enters it.
func (s AllocationStatus) CanTransitionTo(target AllocationStatus) bool {
	if s != AllocationStatusActive {
		return false
	}
	switch target {
	case AllocationStatusConsumed, AllocationStatusCancelled,
		AllocationStatusFloorStock, AllocationStatusReturned:
		return true
	}
	return false
}

// Allocation is a soft reservation of material quantity against an order.
// Creating one moves no stock - the ledger is only written when the
// allocation is consumed or returned. At most one ACTIVE allocation may
// exist per (material, order, owner, lot) key; the repository enforces this
// with a uniqueness constraint scoped to the ACTIVE status.
type Allocation struct {
	shared.BaseAggregateRoot
	MaterialID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_alloc_material"`
	OrderID          uuid.UUID         `gorm:"type:uuid;not null;index:idx_alloc_order"`
	Owner            valueobject.Owner `gorm:"type:varchar(50);not null;index:idx_alloc_material"`
	LotID            *uuid.UUID        `gorm:"type:uuid"`
	Quantity         decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Status           AllocationStatus  `gorm:"type:varchar(20);not null;index"`
	ConsumedQuantity decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	WasteQuantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnedQuantity decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	IssuedAt         *time.Time
	ClosedAt         *time.Time
	CreatedBy        *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// NewAllocation creates a new ACTIVE allocation
func NewAllocation(
	materialID, orderID uuid.UUID,
	owner valueobject.Owner,
	quantity decimal.Decimal,
) (*Allocation, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Material ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Allocation quantity must be positive")
	}

	a := &Allocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MaterialID:        materialID,
		OrderID:           orderID,
		Owner:             owner,
		Quantity:          quantity,
		Status:            AllocationStatusActive,
		ConsumedQuantity:  decimal.Zero,
		WasteQuantity:     decimal.Zero,
		ReturnedQuantity:  decimal.Zero,
	}
	a.AddDomainEvent(NewAllocationCreatedEvent(a))
	return a, nil
}

// WithLot pins the reservation to a specific lot
func (a *Allocation) WithLot(lotID uuid.UUID) *Allocation {
	a.LotID = &lotID
	return a
}

// WithCreator records the reserving user
func (a *Allocation) WithCreator(userID uuid.UUID) *Allocation {
	a.CreatedBy = &userID
	return a
}

// IsActive returns true while the reservation holds
func (a *Allocation) IsActive() bool {
	return a.Status == AllocationStatusActive
}

// MarkIssued records that the reserved material was handed to production.
// Issue does not change the status - the reservation stays ACTIVE until the
// stage closes it out via consume/return/floor-stock.
func (a *Allocation) MarkIssued() error {
	if a.Status != AllocationStatusActive {
		return a.invalidTransition("issue")
	}
	now := time.Now()
	a.IssuedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// Consume closes the allocation as CONSUMED, recording how much was used
// and how much was wasted. consumed must not exceed the reserved quantity.
func (a *Allocation) Consume(consumed, waste decimal.Decimal) error {
	if !a.Status.CanTransitionTo(AllocationStatusConsumed) {
		return a.invalidTransition("consume")
	}
	if consumed.IsNegative() || waste.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Consumed and waste quantities cannot be negative")
	}
	if consumed.GreaterThan(a.Quantity) {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Consumed %s exceeds reserved %s", consumed.String(), a.Quantity.String()))
	}

	a.Status = AllocationStatusConsumed
	a.ConsumedQuantity = consumed
	a.WasteQuantity = waste
	a.close()
	a.AddDomainEvent(NewAllocationConsumedEvent(a))
	return nil
}

// Cancel releases the reservation with no ledger effect: nothing was
// ever committed.
func (a *Allocation) Cancel() error {
	if !a.Status.CanTransitionTo(AllocationStatusCancelled) {
		return a.invalidTransition("cancel")
	}
	a.Status = AllocationStatusCancelled
	a.close()
	a.AddDomainEvent(NewAllocationReleasedEvent(a))
	return nil
}

// ReturnToStock closes the allocation as RETURNED, putting quantity back
// on-hand via a RETURN ledger entry written by the caller.
func (a *Allocation) ReturnToStock(quantity decimal.Decimal) error {
	if !a.Status.CanTransitionTo(AllocationStatusReturned) {
		return a.invalidTransition("return")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Return quantity must be positive")
	}
	if quantity.GreaterThan(a.Quantity) {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Return %s exceeds reserved %s", quantity.String(), a.Quantity.String()))
	}
	a.Status = AllocationStatusReturned
	a.ReturnedQuantity = quantity
	a.close()
	a.AddDomainEvent(NewAllocationReleasedEvent(a))
	return nil
}

// FloorStock closes the allocation as FLOOR_STOCK: the material stays on the
// production floor, issued but unconsumed. No ledger entry is written - the
// quantity is tracked as WIP, not on-hand.
func (a *Allocation) FloorStock(quantity decimal.Decimal) error {
	if !a.Status.CanTransitionTo(AllocationStatusFloorStock) {
		return a.invalidTransition("floor-stock")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Floor-stock quantity must be positive")
	}
	a.Status = AllocationStatusFloorStock
	a.ReturnedQuantity = quantity
	a.close()
	a.AddDomainEvent(NewAllocationReleasedEvent(a))
	return nil
}

// ReconcileAction selects what happens to the unconsumed remainder at stage
// completion
type ReconcileAction string

const (
	ReconcileActionReturn     ReconcileAction = "RETURN"
	ReconcileActionFloorStock ReconcileAction = "FLOOR_STOCK"
)

// IsValid checks if the action is a valid ReconcileAction
func (r ReconcileAction) IsValid() bool {
	return r == ReconcileActionReturn || r == ReconcileActionFloorStock
}

// Reconcile closes the allocation at stage completion in a single transition:
// the consumed and waste portions are recorded, and the remainder
// (counted - consumed - waste) either returns to stock or stays on the floor
// per the action. consumed + waste must not exceed counted; the remainder
// must be covered by the reservation. A zero remainder closes the allocation
// as CONSUMED regardless of action.
func (a *Allocation) Reconcile(counted, consumed, waste decimal.Decimal, action ReconcileAction) (remainder decimal.Decimal, err error) {
	if a.Status != AllocationStatusActive {
		return decimal.Zero, a.invalidTransition("reconcile")
	}
	if !action.IsValid() {
		return decimal.Zero, shared.NewDomainError(shared.CodeValidation, "Invalid reconcile action")
	}
	if counted.IsNegative() || consumed.IsNegative() || waste.IsNegative() {
		return decimal.Zero, shared.NewDomainError(shared.CodeValidation, "Reconcile quantities cannot be negative")
	}
	if consumed.Add(waste).GreaterThan(counted) {
		return decimal.Zero, shared.NewDomainError(shared.CodeQuantityMismatch,
			fmt.Sprintf("Consumed %s plus waste %s exceeds counted %s",
				consumed.String(), waste.String(), counted.String()))
	}
	if consumed.GreaterThan(a.Quantity) {
		return decimal.Zero, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Consumed %s exceeds reserved %s", consumed.String(), a.Quantity.String()))
	}

	remainder = counted.Sub(consumed).Sub(waste)
	a.ConsumedQuantity = consumed
	a.WasteQuantity = waste
	a.ReturnedQuantity = remainder

	switch {
	case remainder.IsZero():
		a.Status = AllocationStatusConsumed
	case action == ReconcileActionReturn:
		a.Status = AllocationStatusReturned
	default:
		a.Status = AllocationStatusFloorStock
	}
	a.close()
	if a.Status == AllocationStatusConsumed {
		a.AddDomainEvent(NewAllocationConsumedEvent(a))
	} else {
		a.AddDomainEvent(NewAllocationReleasedEvent(a))
	}
	return remainder, nil
}

func (a *Allocation) close() {
	now := time.Now()
	a.ClosedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
}

func (a *Allocation) invalidTransition(op string) error {
	return shared.NewDomainError(shared.CodeInvalidStateTransition,
		fmt.Sprintf("Cannot %s allocation in status %s", op, a.Status))
}
