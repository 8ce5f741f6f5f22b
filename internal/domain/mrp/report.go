package mrp

import (
	"time"

	"github.com/emstack/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialShortage is one row of the flat by-material projection.
// Shortage = max(0, Required - Available - OnOrder).
type MaterialShortage struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Required   decimal.Decimal `json:"required"`
	Available  decimal.Decimal `json:"available"`
	OnOrder    decimal.Decimal `json:"on_order"`
	Shortage   decimal.Decimal `json:"shortage"`
}

// ShortageLine is one order's uncovered requirement for one material
type ShortageLine struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Required   decimal.Decimal `json:"required"`
	Covered    decimal.Decimal `json:"covered"`
	Short      decimal.Decimal `json:"short"`
}

// OrderShortage groups the short lines of one order
type OrderShortage struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	DueDate     time.Time      `json:"due_date"`
	Lines       []ShortageLine `json:"lines"`
}

// CustomerShortage nests the affected orders of one customer
type CustomerShortage struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Orders     []OrderShortage `json:"orders"`
}

// ResourceTypeShortage groups shortage materials by BOM resource type
type ResourceTypeShortage struct {
	ResourceType catalog.ResourceType `json:"resource_type"`
	Materials    []MaterialShortage   `json:"materials"`
}

// OrderBuildability answers "can this order ship" per the due-date claim walk
type OrderBuildability struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	DueDate     time.Time      `json:"due_date"`
	Buildable   bool           `json:"buildable"`
	ShortLines  []ShortageLine `json:"short_lines,omitempty"`
}

// Report holds the four projections of one shortage run
type Report struct {
	TakenAt        time.Time              `json:"taken_at"`
	ByMaterial     []MaterialShortage     `json:"by_material"`
	ByCustomer     []CustomerShortage     `json:"by_customer"`
	ByResourceType []ResourceTypeShortage `json:"by_resource_type"`
	Buildability   []OrderBuildability    `json:"buildability"`
}

// HasShortages returns true if any material came up short
func (r *Report) HasShortages() bool {
	return len(r.ByMaterial) > 0
}
