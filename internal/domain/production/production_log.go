package production

import (
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Production log actions
const (
	LogActionPick       = "PICK"
	LogActionIssue      = "ISSUE"
	LogActionReturn     = "RETURN"
	LogActionFloorStock = "FLOOR_STOCK"
	LogActionStageMove  = "STAGE_MOVE"
	LogActionHold       = "HOLD"
	LogActionResume     = "RESUME"
)

// ProductionLog is a write-only trail of fulfillment activity on an order
type ProductionLog struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stage     OrderStatus     `gorm:"type:varchar(20);not null"`
	Action    string          `gorm:"type:varchar(20);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Remark    string          `gorm:"type:varchar(255)"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductionLog) TableName() string {
	return "production_logs"
}

// NewProductionLog creates a new log entry
func NewProductionLog(orderID uuid.UUID, stage OrderStatus, action string, quantity decimal.Decimal) *ProductionLog {
	return &ProductionLog{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Stage:      stage,
		Action:     action,
		Quantity:   quantity,
	}
}

// WithRemark attaches a free-text remark
func (p *ProductionLog) WithRemark(remark string) *ProductionLog {
	p.Remark = remark
	return p
}

// WithActor records who performed the action
func (p *ProductionLog) WithActor(userID uuid.UUID) *ProductionLog {
	p.CreatedBy = &userID
	return p
}
