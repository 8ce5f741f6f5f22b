package inventory

import (
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the kind of ledger movement
type TransactionKind string

const (
	// TransactionKindReceipt represents stock received into inventory (lot receipt)
	TransactionKindReceipt TransactionKind = "RECEIPT"
	// TransactionKindConsumption represents stock consumed by production
	TransactionKindConsumption TransactionKind = "CONSUMPTION"
	// TransactionKindReturn represents stock returned from production to on-hand
	TransactionKindReturn TransactionKind = "RETURN"
	// TransactionKindScrap represents stock wasted during production
	TransactionKindScrap TransactionKind = "SCRAP"
	// TransactionKindAdjustment represents a signed correction (cycle count variance)
	TransactionKindAdjustment TransactionKind = "ADJUSTMENT"
)

// String returns the string representation of TransactionKind
func (k TransactionKind) String() string {
	return string(k)
}

// IsValid returns true if the transaction kind is valid
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindReceipt, TransactionKindConsumption,
		TransactionKindReturn, TransactionKindScrap, TransactionKindAdjustment:
		return true
	}
	return false
}

// Sign returns +1 for kinds that add stock, -1 for kinds that remove it,
// and 0 for ADJUSTMENT, whose quantity carries its own sign.
func (k TransactionKind) Sign() int {
	switch k {
	case TransactionKindReceipt, TransactionKindReturn:
		return 1
	case TransactionKindConsumption, TransactionKindScrap:
		return -1
	}
	return 0
}

// ReferenceKind identifies the kind of operation that caused a ledger entry
type ReferenceKind string

const (
	ReferenceKindProductionOrder ReferenceKind = "PRODUCTION_ORDER"
	ReferenceKindPurchaseOrder   ReferenceKind = "PURCHASE_ORDER"
	ReferenceKindCycleCount      ReferenceKind = "CYCLE_COUNT"
	ReferenceKindAllocation      ReferenceKind = "ALLOCATION"
	ReferenceKindManual          ReferenceKind = "MANUAL"
)

// IsValid returns true if the reference kind is valid
func (r ReferenceKind) IsValid() bool {
	switch r {
	case ReferenceKindProductionOrder, ReferenceKindPurchaseOrder,
		ReferenceKindCycleCount, ReferenceKindAllocation, ReferenceKindManual:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one quantity movement for a material.
// Once created, entries are never updated or deleted - corrections are new
// offsetting entries. The on-hand balance for any (material, owner, lot) key
// is defined as the signed sum of matching entries; no mutable running total
// exists anywhere.
type LedgerEntry struct {
	shared.BaseEntity
	MaterialID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_ledger_material"`
	Kind          TransactionKind   `gorm:"type:varchar(20);not null;index"`
	Quantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // signed: receipts/returns positive, consumption/scrap negative
	Owner         valueobject.Owner `gorm:"type:varchar(50);not null;index:idx_ledger_material"`
	LotID         *uuid.UUID        `gorm:"type:uuid;index"`
	ReferenceKind ReferenceKind     `gorm:"type:varchar(30);not null;index:idx_ledger_ref"`
	ReferenceID   string            `gorm:"type:varchar(64);index:idx_ledger_ref"`
	UnitCost      *decimal.Decimal  `gorm:"type:decimal(18,4)"`
	Reason        string            `gorm:"type:varchar(255)"`
	CreatedBy     *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a new ledger entry. The quantity argument is a
// positive magnitude for all kinds except ADJUSTMENT, where it is signed as
// given. The stored Quantity is always signed per the kind's convention.
func NewLedgerEntry(
	materialID uuid.UUID,
	kind TransactionKind,
	quantity decimal.Decimal,
	owner valueobject.Owner,
	refKind ReferenceKind,
	refID string,
) (*LedgerEntry, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Material ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invalid transaction kind")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quantity cannot be zero")
	}
	if !refKind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invalid reference kind")
	}

	signed := quantity
	switch kind.Sign() {
	case 1:
		if quantity.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeValidation,
				"Quantity must be positive for "+kind.String())
		}
	case -1:
		if quantity.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeValidation,
				"Quantity must be positive for "+kind.String())
		}
		signed = quantity.Neg()
	}

	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		MaterialID:    materialID,
		Kind:          kind,
		Quantity:      signed,
		Owner:         owner,
		ReferenceKind: refKind,
		ReferenceID:   refID,
	}, nil
}

// WithLot attaches the lot the movement was drawn from or received into
func (e *LedgerEntry) WithLot(lotID uuid.UUID) *LedgerEntry {
	e.LotID = &lotID
	return e
}

// WithUnitCost records the per-unit cost at movement time
func (e *LedgerEntry) WithUnitCost(cost decimal.Decimal) *LedgerEntry {
	e.UnitCost = &cost
	return e
}

// WithReason records a free-form reason
func (e *LedgerEntry) WithReason(reason string) *LedgerEntry {
	e.Reason = reason
	return e
}

// WithActor records the user who caused the movement
func (e *LedgerEntry) WithActor(userID uuid.UUID) *LedgerEntry {
	e.CreatedBy = &userID
	return e
}

// Magnitude returns the absolute quantity moved
func (e *LedgerEntry) Magnitude() decimal.Decimal {
	return e.Quantity.Abs()
}

// IsIncrease returns true if the entry adds stock
func (e *LedgerEntry) IsIncrease() bool {
	return e.Quantity.IsPositive()
}

// TotalCost returns quantity magnitude times unit cost, zero when cost is unknown
func (e *LedgerEntry) TotalCost() decimal.Decimal {
	if e.UnitCost == nil {
		return decimal.Zero
	}
	return e.Magnitude().Mul(*e.UnitCost)
}

// Occurred returns when the movement was recorded
func (e *LedgerEntry) Occurred() time.Time {
	return e.CreatedAt
}
