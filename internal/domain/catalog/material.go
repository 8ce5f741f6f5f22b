package catalog

import (
	"strings"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// CostingMethod is the default costing method applied to a material's receipts
type CostingMethod string

const (
	CostingMethodFIFO          CostingMethod = "FIFO"
	CostingMethodMovingAverage CostingMethod = "MOVING_AVERAGE"
	CostingMethodStandard      CostingMethod = "STANDARD"
)

// IsValid returns true if the costing method is valid
func (m CostingMethod) IsValid() bool {
	switch m {
	case CostingMethodFIFO, CostingMethodMovingAverage, CostingMethodStandard:
		return true
	}
	return false
}

// Material is a stock-keeping unit identified by an internal part number.
// The part number is immutable after creation; descriptive fields may change.
// Materials referenced by ledger rows are never removed - deletion is a
// tombstone (soft delete), and historical ledger entries keep resolving.
type Material struct {
	shared.BaseAggregateRoot
	PartNumber    string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Description   string         `gorm:"type:varchar(255)"`
	UnitOfMeasure string         `gorm:"type:varchar(16);not null"`
	CostingMethod CostingMethod  `gorm:"type:varchar(20)"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new material
func NewMaterial(partNumber, description, unitOfMeasure string) (*Material, error) {
	partNumber = strings.TrimSpace(partNumber)
	if partNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Part number cannot be empty")
	}
	if strings.TrimSpace(unitOfMeasure) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Unit of measure cannot be empty")
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartNumber:        partNumber,
		Description:       description,
		UnitOfMeasure:     strings.TrimSpace(unitOfMeasure),
	}, nil
}

// UpdateDescription updates the mutable descriptive fields
func (m *Material) UpdateDescription(description string) {
	m.Description = description
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// SetCostingMethod sets the default costing method
func (m *Material) SetCostingMethod(method CostingMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, "Invalid costing method")
	}
	m.CostingMethod = method
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// IsDeleted returns true if the material has been tombstoned
func (m *Material) IsDeleted() bool {
	return m.DeletedAt.Valid
}
