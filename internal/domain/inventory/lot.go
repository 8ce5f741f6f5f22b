package inventory

import (
	"fmt"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle state of a receipt lot
type LotStatus string

const (
	LotStatusActive   LotStatus = "ACTIVE"
	LotStatusConsumed LotStatus = "CONSUMED"
	LotStatusExpired  LotStatus = "EXPIRED"
	LotStatusOnHold   LotStatus = "ON_HOLD"
)

// IsValid checks if the status is a valid LotStatus
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusConsumed, LotStatusExpired, LotStatusOnHold:
		return true
	}
	return false
}

// String returns the string representation of LotStatus
func (s LotStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s LotStatus) CanTransitionTo(target LotStatus) bool {
	switch s {
	case LotStatusActive:
		return target == LotStatusConsumed || target == LotStatusExpired || target == LotStatusOnHold
	case LotStatusOnHold:
		return target == LotStatusActive || target == LotStatusExpired
	case LotStatusConsumed, LotStatusExpired:
		return false // Terminal states
	}
	return false
}

// Lot is a physical receipt batch of a material. It is the unit a
// consumption is drawn from when lot-level traceability is required.
// RemainingQuantity is derived state: the lot-scoped ledger fold is the
// authority, and the cycle-count reconciler checks the two against each other.
type Lot struct {
	shared.BaseAggregateRoot
	MaterialID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_lot_material;uniqueIndex:uq_lot_number,priority:1"`
	LotNumber         string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_lot_number,priority:2"`
	InitialQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PackageType       string          `gorm:"type:varchar(32)"` // reel, tray, tube, bulk
	SupplierID        *uuid.UUID      `gorm:"type:uuid"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedDate      time.Time       `gorm:"not null;index:idx_lot_material"`
	ExpirationDate    *time.Time
	Status            LotStatus       `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}

// NewLot creates a new lot in ACTIVE status
func NewLot(
	materialID uuid.UUID,
	lotNumber string,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	receivedDate time.Time,
) (*Lot, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Material ID cannot be empty")
	}
	if lotNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Lot number cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Lot quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Unit cost cannot be negative")
	}

	return &Lot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MaterialID:        materialID,
		LotNumber:         lotNumber,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		UnitCost:          unitCost,
		ReceivedDate:      receivedDate,
		Status:            LotStatusActive,
	}, nil
}

// WithSupplier records the supplying party
func (l *Lot) WithSupplier(supplierID uuid.UUID) *Lot {
	l.SupplierID = &supplierID
	return l
}

// WithPackageType records the physical packaging
func (l *Lot) WithPackageType(packageType string) *Lot {
	l.PackageType = packageType
	return l
}

// WithExpiration records the expiration date
func (l *Lot) WithExpiration(date time.Time) *Lot {
	l.ExpirationDate = &date
	return l
}

// IsAvailable returns true if the lot can be drawn from
func (l *Lot) IsAvailable() bool {
	return l.Status == LotStatusActive && l.RemainingQuantity.GreaterThan(decimal.Zero)
}

// IsExpired returns true if the lot's expiration date has passed
func (l *Lot) IsExpired() bool {
	if l.ExpirationDate == nil {
		return false
	}
	return l.ExpirationDate.Before(time.Now())
}

// Consume decrements the remaining quantity. Consuming requires the full
// requested amount to be present; partial draws are split across lots by the
// FIFO selection, never forced into a single lot.
func (l *Lot) Consume(quantity decimal.Decimal) error {
	if l.Status != LotStatusActive {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot consume from lot %s in status %s", l.LotNumber, l.Status))
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Consumption quantity must be positive")
	}
	if quantity.GreaterThan(l.RemainingQuantity) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Lot %s has %s remaining, requested %s",
				l.LotNumber, l.RemainingQuantity.String(), quantity.String()))
	}

	l.RemainingQuantity = l.RemainingQuantity.Sub(quantity)
	if l.RemainingQuantity.IsZero() {
		l.Status = LotStatusConsumed
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Restore adds quantity back to the lot (production return)
func (l *Lot) Restore(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Restore quantity must be positive")
	}
	l.RemainingQuantity = l.RemainingQuantity.Add(quantity)
	if l.Status == LotStatusConsumed {
		l.Status = LotStatusActive
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Adjust corrects the remaining quantity by a signed delta (cycle count).
// The corrected quantity may not go negative.
func (l *Lot) Adjust(delta decimal.Decimal) error {
	corrected := l.RemainingQuantity.Add(delta)
	if corrected.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Adjustment would drive lot %s negative", l.LotNumber))
	}
	l.RemainingQuantity = corrected
	switch {
	case corrected.IsZero() && l.Status == LotStatusActive:
		l.Status = LotStatusConsumed
	case corrected.IsPositive() && l.Status == LotStatusConsumed:
		l.Status = LotStatusActive
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Hold places the lot on manual hold
func (l *Lot) Hold() error {
	if !l.Status.CanTransitionTo(LotStatusOnHold) {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot hold lot in status %s", l.Status))
	}
	l.Status = LotStatusOnHold
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Release lifts a manual hold
func (l *Lot) Release() error {
	if l.Status != LotStatusOnHold {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot release lot in status %s", l.Status))
	}
	l.Status = LotStatusActive
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// MarkExpired transitions the lot to EXPIRED by schedule
func (l *Lot) MarkExpired() error {
	if !l.Status.CanTransitionTo(LotStatusExpired) {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot expire lot in status %s", l.Status))
	}
	l.Status = LotStatusExpired
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// TotalValue returns the value of the remaining quantity
func (l *Lot) TotalValue() decimal.Decimal {
	return l.RemainingQuantity.Mul(l.UnitCost)
}
