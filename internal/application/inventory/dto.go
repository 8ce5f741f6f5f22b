package inventory

import (
	"time"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppendEntryRequest represents a request to append a manual ledger entry
type AppendEntryRequest struct {
	MaterialID    uuid.UUID       `json:"material_id" binding:"required"`
	Kind          string          `json:"transaction_kind" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	OwnerType     string          `json:"owner_type" binding:"required,oneof=COMPANY CUSTOMER"`
	OwnerID       *uuid.UUID      `json:"owner_id"`
	LotID         *uuid.UUID      `json:"lot_id"`
	ReferenceKind string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	Reason        string          `json:"reason"`
	CreatedBy     *uuid.UUID      `json:"created_by"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID        `json:"id"`
	MaterialID    uuid.UUID        `json:"material_id"`
	Kind          string           `json:"transaction_kind"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Owner         string           `json:"owner"`
	LotID         *uuid.UUID       `json:"lot_id,omitempty"`
	ReferenceKind string           `json:"reference_type"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToLedgerEntryResponse converts a ledger entry to its API representation
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		MaterialID:    e.MaterialID,
		Kind:          string(e.Kind),
		Quantity:      e.Quantity,
		Owner:         e.Owner.String(),
		LotID:         e.LotID,
		ReferenceKind: string(e.ReferenceKind),
		ReferenceID:   e.ReferenceID,
		UnitCost:      e.UnitCost,
		Reason:        e.Reason,
		CreatedAt:     e.CreatedAt,
	}
}

// BalanceResponse represents a computed balance in API responses
type BalanceResponse struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Owner      string          `json:"owner"`
	LotID      *uuid.UUID      `json:"lot_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ReceiveLotRequest represents a request to receive a new lot into stock
type ReceiveLotRequest struct {
	MaterialID     uuid.UUID       `json:"material_id" binding:"required"`
	LotNumber      string          `json:"lot_number" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	OwnerType      string          `json:"owner_type" binding:"required,oneof=COMPANY CUSTOMER"`
	OwnerID        *uuid.UUID      `json:"owner_id"`
	SupplierID     *uuid.UUID      `json:"supplier_id"`
	PackageType    string          `json:"package_type"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	POLineID       *uuid.UUID      `json:"po_line_id"`
	CreatedBy      *uuid.UUID      `json:"created_by"`
}

// LotResponse represents a lot in API responses
type LotResponse struct {
	ID                uuid.UUID       `json:"id"`
	MaterialID        uuid.UUID       `json:"material_id"`
	LotNumber         string          `json:"lot_number"`
	InitialQuantity   decimal.Decimal `json:"initial_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	PackageType       string          `json:"package_type,omitempty"`
	SupplierID        *uuid.UUID      `json:"supplier_id,omitempty"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ReceivedDate      time.Time       `json:"received_date"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	Status            string          `json:"status"`
	Version           int             `json:"version"`
}

// ToLotResponse converts a lot to its API representation
func ToLotResponse(l *inventory.Lot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		MaterialID:        l.MaterialID,
		LotNumber:         l.LotNumber,
		InitialQuantity:   l.InitialQuantity,
		RemainingQuantity: l.RemainingQuantity,
		PackageType:       l.PackageType,
		SupplierID:        l.SupplierID,
		UnitCost:          l.UnitCost,
		ReceivedDate:      l.ReceivedDate,
		ExpirationDate:    l.ExpirationDate,
		Status:            string(l.Status),
		Version:           l.GetVersion(),
	}
}

// LotSelectionResponse represents a planned FIFO draw in API responses
type LotSelectionResponse struct {
	Draws         []LotDrawResponse `json:"draws"`
	TotalSelected decimal.Decimal   `json:"total_selected"`
	Shortfall     decimal.Decimal   `json:"shortfall"`
	FullyCovered  bool              `json:"fully_covered"`
}

// LotDrawResponse is one planned draw against a lot
type LotDrawResponse struct {
	LotID     uuid.UUID       `json:"lot_id"`
	LotNumber string          `json:"lot_number"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ToLotSelectionResponse converts a lot selection plan to its API representation
func ToLotSelectionResponse(sel *inventory.LotSelection) LotSelectionResponse {
	draws := make([]LotDrawResponse, len(sel.Draws))
	for i, d := range sel.Draws {
		draws[i] = LotDrawResponse{
			LotID:     d.LotID,
			LotNumber: d.LotNumber,
			Quantity:  d.Quantity,
			UnitCost:  d.UnitCost,
		}
	}
	return LotSelectionResponse{
		Draws:         draws,
		TotalSelected: sel.TotalSelected,
		Shortfall:     sel.Shortfall,
		FullyCovered:  sel.FullyCovered,
	}
}

// AllocateRequest represents a request to reserve stock for an order
type AllocateRequest struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	OrderID    uuid.UUID       `json:"order_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	OwnerType  string          `json:"owner_type" binding:"required,oneof=COMPANY CUSTOMER"`
	OwnerID    *uuid.UUID      `json:"owner_id"`
	LotID      *uuid.UUID      `json:"lot_id"`
	CreatedBy  *uuid.UUID      `json:"created_by"`
}

// ConsumeRequest represents a request to consume an active allocation
type ConsumeRequest struct {
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity" binding:"required"`
	WasteQuantity    decimal.Decimal `json:"waste_quantity"`
	CreatedBy        *uuid.UUID      `json:"created_by"`
}

// ReleaseRequest represents a return-to-stock or floor-stock request
type ReleaseRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	CreatedBy *uuid.UUID      `json:"created_by"`
}

// AllocationResponse represents an allocation in API responses
type AllocationResponse struct {
	ID               uuid.UUID       `json:"id"`
	MaterialID       uuid.UUID       `json:"material_id"`
	OrderID          uuid.UUID       `json:"order_id"`
	Owner            string          `json:"owner"`
	LotID            *uuid.UUID      `json:"lot_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	Status           string          `json:"status"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity"`
	WasteQuantity    decimal.Decimal `json:"waste_quantity"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	IssuedAt         *time.Time      `json:"issued_at,omitempty"`
	ClosedAt         *time.Time      `json:"closed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Version          int             `json:"version"`
}

// ToAllocationResponse converts an allocation to its API representation
func ToAllocationResponse(a *inventory.Allocation) AllocationResponse {
	return AllocationResponse{
		ID:               a.ID,
		MaterialID:       a.MaterialID,
		OrderID:          a.OrderID,
		Owner:            a.Owner.String(),
		LotID:            a.LotID,
		Quantity:         a.Quantity,
		Status:           string(a.Status),
		ConsumedQuantity: a.ConsumedQuantity,
		WasteQuantity:    a.WasteQuantity,
		ReturnedQuantity: a.ReturnedQuantity,
		IssuedAt:         a.IssuedAt,
		ClosedAt:         a.ClosedAt,
		CreatedAt:        a.CreatedAt,
		Version:          a.GetVersion(),
	}
}

// StartCountRequest represents a request to open a cycle count
type StartCountRequest struct {
	CountNumber string                  `json:"count_number" binding:"required"`
	CountDate   *time.Time              `json:"count_date"`
	Items       []StartCountItemRequest `json:"items" binding:"required,min=1"`
	CreatedBy   *uuid.UUID              `json:"created_by"`
}

// StartCountItemRequest selects one material/lot for counting
type StartCountItemRequest struct {
	MaterialID uuid.UUID  `json:"material_id" binding:"required"`
	LotID      *uuid.UUID `json:"lot_id"`
	OwnerType  string     `json:"owner_type" binding:"required,oneof=COMPANY CUSTOMER"`
	OwnerID    *uuid.UUID `json:"owner_id"`
}

// RecordCountRequest represents a physical count of one item
type RecordCountRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity" binding:"required"`
	Remark          string          `json:"remark"`
}

// CycleCountResponse represents a cycle count in API responses
type CycleCountResponse struct {
	ID                 uuid.UUID                `json:"id"`
	CountNumber        string                   `json:"count_number"`
	Status             string                   `json:"status"`
	CountDate          time.Time                `json:"count_date"`
	TotalItems         int                      `json:"total_items"`
	ItemsCounted       int                      `json:"items_counted"`
	ItemsWithVariance  int                      `json:"items_with_variance"`
	TotalVarianceValue decimal.Decimal          `json:"total_variance_value"`
	Items              []CycleCountItemResponse `json:"items,omitempty"`
}

// CycleCountItemResponse represents a cycle count item in API responses
type CycleCountItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	MaterialID      uuid.UUID       `json:"material_id"`
	Owner           string          `json:"owner"`
	LotID           *uuid.UUID      `json:"lot_id,omitempty"`
	SystemQuantity  decimal.Decimal `json:"system_quantity"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Variance        decimal.Decimal `json:"variance"`
	VarianceValue   decimal.Decimal `json:"variance_value"`
	Status          string          `json:"status"`
	Remark          string          `json:"remark,omitempty"`
}

// ToCycleCountResponse converts a cycle count to its API representation
func ToCycleCountResponse(c *inventory.CycleCount, includeItems bool) CycleCountResponse {
	resp := CycleCountResponse{
		ID:                 c.ID,
		CountNumber:        c.CountNumber,
		Status:             string(c.Status),
		CountDate:          c.CountDate,
		TotalItems:         c.TotalItems,
		ItemsCounted:       c.ItemsCounted,
		ItemsWithVariance:  c.ItemsWithVariance,
		TotalVarianceValue: c.TotalVarianceValue,
	}
	if includeItems {
		resp.Items = make([]CycleCountItemResponse, len(c.Items))
		for i := range c.Items {
			item := &c.Items[i]
			resp.Items[i] = CycleCountItemResponse{
				ID:              item.ID,
				MaterialID:      item.MaterialID,
				Owner:           item.Owner.String(),
				LotID:           item.LotID,
				SystemQuantity:  item.SystemQuantity,
				CountedQuantity: item.CountedQuantity,
				Variance:        item.Variance,
				VarianceValue:   item.VarianceValue,
				Status:          string(item.Status),
				Remark:          item.Remark,
			}
		}
	}
	return resp
}
