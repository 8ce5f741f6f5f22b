package inventory

import (
	"sort"

	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotDraw is one planned draw against a single lot
type LotDraw struct {
	LotID     uuid.UUID       `json:"lot_id"`
	LotNumber string          `json:"lot_number"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// LotSelection is the outcome of walking lots to cover a requested quantity.
// Partial cover is a valid, reported outcome: the caller decides whether to
// proceed with the partial draw or fail the operation.
type LotSelection struct {
	Draws          []LotDraw       `json:"draws"`
	TotalSelected  decimal.Decimal `json:"total_selected"`
	Shortfall      decimal.Decimal `json:"shortfall"`
	FullyCovered   bool            `json:"fully_covered"`
	LotsExhausted  []uuid.UUID     `json:"lots_exhausted"`  // lots the plan would fully consume
	LotsPartial    []uuid.UUID     `json:"lots_partial"`    // lots the plan would partially consume
	TotalCost      decimal.Decimal `json:"total_cost"`
}

// SelectLotsFIFO walks ACTIVE lots oldest-first by received date (ties broken
// by creation order) until the requested quantity is covered or lots are
// exhausted. Held, expired, and consumed lots are skipped. The walk plans
// draws only - nothing is mutated.
func SelectLotsFIFO(requested decimal.Decimal, lots []Lot) (*LotSelection, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Requested quantity must be positive")
	}

	available := make([]Lot, 0, len(lots))
	for _, lot := range lots {
		if lot.IsAvailable() && !lot.IsExpired() {
			available = append(available, lot)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		if !available[i].ReceivedDate.Equal(available[j].ReceivedDate) {
			return available[i].ReceivedDate.Before(available[j].ReceivedDate)
		}
		return available[i].CreatedAt.Before(available[j].CreatedAt)
	})

	sel := &LotSelection{
		Draws:         make([]LotDraw, 0, len(available)),
		TotalSelected: decimal.Zero,
		TotalCost:     decimal.Zero,
		LotsExhausted: make([]uuid.UUID, 0),
		LotsPartial:   make([]uuid.UUID, 0),
	}

	remaining := requested
	for _, lot := range available {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		draw := decimal.Min(remaining, lot.RemainingQuantity)
		sel.Draws = append(sel.Draws, LotDraw{
			LotID:     lot.ID,
			LotNumber: lot.LotNumber,
			Quantity:  draw,
			UnitCost:  lot.UnitCost,
		})
		sel.TotalSelected = sel.TotalSelected.Add(draw)
		sel.TotalCost = sel.TotalCost.Add(draw.Mul(lot.UnitCost))

		if draw.Equal(lot.RemainingQuantity) {
			sel.LotsExhausted = append(sel.LotsExhausted, lot.ID)
		} else {
			sel.LotsPartial = append(sel.LotsPartial, lot.ID)
		}

		remaining = remaining.Sub(draw)
	}

	sel.Shortfall = requested.Sub(sel.TotalSelected)
	sel.FullyCovered = sel.Shortfall.IsZero()
	return sel, nil
}

// WeightedAverageCost returns the per-unit cost of the selection, zero when
// nothing was selected.
func (s *LotSelection) WeightedAverageCost() decimal.Decimal {
	if s.TotalSelected.IsZero() {
		return decimal.Zero
	}
	return s.TotalCost.Div(s.TotalSelected)
}
