package inventory

import (
	"fmt"
	"time"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CycleCountItemStatus represents the state of one counted line
type CycleCountItemStatus string

const (
	CycleCountItemStatusPending   CycleCountItemStatus = "PENDING"
	CycleCountItemStatusCounted   CycleCountItemStatus = "COUNTED"
	CycleCountItemStatusRecounted CycleCountItemStatus = "RECOUNTED"
	CycleCountItemStatusApproved  CycleCountItemStatus = "APPROVED"
	CycleCountItemStatusAdjusted  CycleCountItemStatus = "ADJUSTED"
	CycleCountItemStatusSkipped   CycleCountItemStatus = "SKIPPED"
)

// IsValid checks if the status is a valid CycleCountItemStatus
func (s CycleCountItemStatus) IsValid() bool {
	switch s {
	case CycleCountItemStatusPending, CycleCountItemStatusCounted, CycleCountItemStatusRecounted,
		CycleCountItemStatusApproved, CycleCountItemStatusAdjusted, CycleCountItemStatusSkipped:
		return true
	}
	return false
}

// String returns the string representation of CycleCountItemStatus
func (s CycleCountItemStatus) String() string {
	return string(s)
}

// IsClosed returns true for states that need no further action
func (s CycleCountItemStatus) IsClosed() bool {
	return s == CycleCountItemStatusApproved || s == CycleCountItemStatusAdjusted ||
		s == CycleCountItemStatusSkipped
}

// CycleCountItem is one material (optionally one lot) within a cycle count.
// SystemQuantity is snapshotted from the ledger fold when the count starts;
// the variance is always counted minus that snapshot, not the live balance.
type CycleCountItem struct {
	shared.BaseEntity
	CycleCountID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	MaterialID      uuid.UUID            `gorm:"type:uuid;not null"`
	Owner           valueobject.Owner    `gorm:"type:varchar(50);not null"`
	LotID           *uuid.UUID           `gorm:"type:uuid"`
	SystemQuantity  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	CountedQuantity decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Variance        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	VarianceValue   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status          CycleCountItemStatus `gorm:"type:varchar(20);not null"`
	Remark          string               `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CycleCountItem) TableName() string {
	return "cycle_count_items"
}

// RecordCount records a physical count. The first count moves the item to
// COUNTED; counting again records a RECOUNT.
func (i *CycleCountItem) RecordCount(counted decimal.Decimal, remark string) error {
	if counted.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Counted quantity cannot be negative")
	}
	switch i.Status {
	case CycleCountItemStatusPending:
		i.Status = CycleCountItemStatusCounted
	case CycleCountItemStatusCounted, CycleCountItemStatusRecounted:
		i.Status = CycleCountItemStatusRecounted
	default:
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot record count for item in status %s", i.Status))
	}

	i.CountedQuantity = counted
	i.Variance = counted.Sub(i.SystemQuantity)
	i.VarianceValue = i.Variance.Mul(i.UnitCost)
	i.Remark = remark
	i.UpdatedAt = time.Now()
	return nil
}

// RequiresRecount reports whether the variance magnitude exceeds the policy
// threshold. The threshold itself is external configuration.
func (i *CycleCountItem) RequiresRecount(threshold decimal.Decimal) bool {
	if i.Status != CycleCountItemStatusCounted {
		return false
	}
	return threshold.IsPositive() && i.Variance.Abs().GreaterThan(threshold)
}

// Approve closes the item. Returns true when an ADJUSTMENT ledger entry
// sized to the variance must be written by the caller; zero variance closes
// the item with no ledger write.
func (i *CycleCountItem) Approve() (needsAdjustment bool, err error) {
	if i.Status != CycleCountItemStatusCounted && i.Status != CycleCountItemStatusRecounted {
		return false, shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot approve item in status %s", i.Status))
	}
	if i.Variance.IsZero() {
		i.Status = CycleCountItemStatusApproved
		i.UpdatedAt = time.Now()
		return false, nil
	}
	i.Status = CycleCountItemStatusAdjusted
	i.UpdatedAt = time.Now()
	return true, nil
}

// Skip excludes the item from the count without affecting stock
func (i *CycleCountItem) Skip(remark string) error {
	if i.Status.IsClosed() {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot skip item in status %s", i.Status))
	}
	i.Status = CycleCountItemStatusSkipped
	i.Remark = remark
	i.UpdatedAt = time.Now()
	return nil
}

// HasVariance returns true if the counted quantity differs from the snapshot
func (i *CycleCountItem) HasVariance() bool {
	return i.Status != CycleCountItemStatusPending && !i.Variance.IsZero()
}

// CycleCountStatus represents the state of a cycle count document
type CycleCountStatus string

const (
	CycleCountStatusOpen      CycleCountStatus = "OPEN"
	CycleCountStatusCompleted CycleCountStatus = "COMPLETED"
	CycleCountStatusCancelled CycleCountStatus = "CANCELLED"
)

// IsValid checks if the status is a valid CycleCountStatus
func (s CycleCountStatus) IsValid() bool {
	switch s {
	case CycleCountStatusOpen, CycleCountStatusCompleted, CycleCountStatusCancelled:
		return true
	}
	return false
}

// CycleCount is the aggregate root for one counting exercise. The summary
// fields (TotalItems, ItemsCounted, ItemsWithVariance, TotalVarianceValue)
// are projections recomputed from item state, never authoritative on their own.
// Item mutations go through the aggregate and do not touch the version; the
// saving workflow bumps it exactly once per SaveWithLock.
type CycleCount struct {
	shared.BaseAggregateRoot
	CountNumber        string           `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status             CycleCountStatus `gorm:"type:varchar(20);not null"`
	CountDate          time.Time        `gorm:"not null"`
	CreatedBy          *uuid.UUID       `gorm:"type:uuid"`
	TotalItems         int              `gorm:"not null;default:0"`
	ItemsCounted       int              `gorm:"not null;default:0"`
	ItemsWithVariance  int              `gorm:"not null;default:0"`
	TotalVarianceValue decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Items              []CycleCountItem `gorm:"foreignKey:CycleCountID"`
}

// TableName returns the table name for GORM
func (CycleCount) TableName() string {
	return "cycle_counts"
}

// NewCycleCount creates a new cycle count document
func NewCycleCount(countNumber string, countDate time.Time) (*CycleCount, error) {
	if countNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Count number cannot be empty")
	}
	return &CycleCount{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		CountNumber:        countNumber,
		Status:             CycleCountStatusOpen,
		CountDate:          countDate,
		TotalVarianceValue: decimal.Zero,
		Items:              make([]CycleCountItem, 0),
	}, nil
}

// AddItem snapshots one material/lot into the count. systemQty must be the
// ledger fold read at plan time.
func (c *CycleCount) AddItem(materialID uuid.UUID, owner valueobject.Owner, lotID *uuid.UUID, systemQty, unitCost decimal.Decimal) error {
	if c.Status != CycleCountStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			"Can only add items to an open cycle count")
	}
	if materialID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Material ID cannot be empty")
	}
	for i := range c.Items {
		if c.Items[i].MaterialID == materialID && c.Items[i].Owner.Equal(owner) &&
			uuidPtrEqual(c.Items[i].LotID, lotID) {
			return shared.NewDomainError(shared.CodeValidation,
				"Material/lot already present in cycle count")
		}
	}

	c.Items = append(c.Items, CycleCountItem{
		BaseEntity:     shared.NewBaseEntity(),
		CycleCountID:   c.ID,
		MaterialID:     materialID,
		Owner:          owner,
		LotID:          lotID,
		SystemQuantity: systemQty,
		UnitCost:       unitCost,
		Status:         CycleCountItemStatusPending,
	})
	c.TotalItems++
	c.UpdatedAt = time.Now()
	return nil
}

// FindItem returns the item with the given ID, or nil
func (c *CycleCount) FindItem(itemID uuid.UUID) *CycleCountItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// RecalculateTotals refreshes the summary projections from item state
func (c *CycleCount) RecalculateTotals() {
	c.ItemsCounted = 0
	c.ItemsWithVariance = 0
	c.TotalVarianceValue = decimal.Zero
	for i := range c.Items {
		if c.Items[i].Status == CycleCountItemStatusPending {
			continue
		}
		if c.Items[i].Status != CycleCountItemStatusSkipped {
			c.ItemsCounted++
		}
		if c.Items[i].HasVariance() {
			c.ItemsWithVariance++
			c.TotalVarianceValue = c.TotalVarianceValue.Add(c.Items[i].VarianceValue)
		}
	}
}

// IsComplete returns true once every item is closed
func (c *CycleCount) IsComplete() bool {
	if len(c.Items) == 0 {
		return false
	}
	for i := range c.Items {
		if !c.Items[i].Status.IsClosed() {
			return false
		}
	}
	return true
}

// Complete closes the count once all items are resolved
func (c *CycleCount) Complete() error {
	if c.Status != CycleCountStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot complete cycle count in status %s", c.Status))
	}
	if !c.IsComplete() {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			"Cannot complete cycle count with unresolved items")
	}
	c.Status = CycleCountStatusCompleted
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewCycleCountCompletedEvent(c))
	return nil
}

// Cancel abandons the count; no adjustments are written
func (c *CycleCount) Cancel() error {
	if c.Status != CycleCountStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot cancel cycle count in status %s", c.Status))
	}
	c.Status = CycleCountStatusCancelled
	c.UpdatedAt = time.Now()
	return nil
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
