package production

import (
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderLineStatus represents the state of a purchase order line
type PurchaseOrderLineStatus string

const (
	PurchaseOrderLineStatusOpen      PurchaseOrderLineStatus = "OPEN"
	PurchaseOrderLineStatusClosed    PurchaseOrderLineStatus = "CLOSED"
	PurchaseOrderLineStatusCancelled PurchaseOrderLineStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderLineStatus
func (s PurchaseOrderLineStatus) IsValid() bool {
	switch s {
	case PurchaseOrderLineStatusOpen, PurchaseOrderLineStatusClosed, PurchaseOrderLineStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrderLine is incoming supply for a material. Purchasing itself is
// managed elsewhere; this side only reads outstanding quantities and records
// receipts against the line.
type PurchaseOrderLine struct {
	shared.BaseEntity
	PONumber         string                  `gorm:"type:varchar(64);not null;index"`
	LineNumber       int                     `gorm:"not null"`
	MaterialID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	SupplierID       *uuid.UUID              `gorm:"type:uuid"`
	QuantityOrdered  decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	ExpectedDate     *time.Time
	Status           PurchaseOrderLineStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// OutstandingQuantity returns ordered minus received, floored at zero
func (l *PurchaseOrderLine) OutstandingQuantity() decimal.Decimal {
	outstanding := l.QuantityOrdered.Sub(l.QuantityReceived)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// IsOpen returns true while the line still has incoming supply
func (l *PurchaseOrderLine) IsOpen() bool {
	return l.Status == PurchaseOrderLineStatusOpen
}

// RecordReceipt adds a received quantity; the line closes when fully received
func (l *PurchaseOrderLine) RecordReceipt(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Received quantity must be positive")
	}
	if l.Status != PurchaseOrderLineStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			"Cannot receive against a closed purchase order line")
	}
	l.QuantityReceived = l.QuantityReceived.Add(quantity)
	if l.QuantityReceived.GreaterThanOrEqual(l.QuantityOrdered) {
		l.Status = PurchaseOrderLineStatusClosed
	}
	l.UpdatedAt = time.Now()
	return nil
}
