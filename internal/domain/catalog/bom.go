package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResourceType tags a BOM line with the production resource that places it
type ResourceType string

const (
	ResourceTypeSMT  ResourceType = "SMT"
	ResourceTypeTH   ResourceType = "TH"
	ResourceTypeMech ResourceType = "MECH"
	ResourceTypePCB  ResourceType = "PCB"
)

// IsValid returns true if the resource type is valid
func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceTypeSMT, ResourceTypeTH, ResourceTypeMech, ResourceTypePCB:
		return true
	}
	return false
}

// String returns the string representation of ResourceType
func (r ResourceType) String() string {
	return string(r)
}

// BomItem is one line of a product's active BOM revision: the quantity of a
// material needed per unit built, plus an expected scrap factor and the
// resource type that consumes it. BOM data is authored elsewhere and is
// read-only to this system.
type BomItem struct {
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_bom_product"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	ScrapFactor     decimal.Decimal `gorm:"type:decimal(8,6);not null;default:0"` // 0.02 = 2% expected scrap
	ResourceType    ResourceType    `gorm:"type:varchar(10);not null"`
	ReferenceDes    string          `gorm:"type:varchar(255)"` // reference designators, e.g. "R1,R2,R14"
}

// TableName returns the table name for GORM
func (BomItem) TableName() string {
	return "bom_items"
}

// RequiredFor returns the material quantity needed to build the given number
// of units, inflated by the scrap factor.
func (b *BomItem) RequiredFor(units decimal.Decimal) decimal.Decimal {
	return b.QuantityPerUnit.Mul(units).Mul(decimal.NewFromInt(1).Add(b.ScrapFactor))
}
