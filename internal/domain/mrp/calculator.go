package mrp

import (
	"sort"
	"time"

	"github.com/emstack/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDemand is one open order's unfulfilled demand, as seen at snapshot time
type OrderDemand struct {
	OrderID           uuid.UUID
	OrderNumber       string
	CustomerID        uuid.UUID
	ProductID         uuid.UUID
	RemainingQuantity decimal.Decimal
	DueDate           time.Time
}

// Snapshot is the point-in-time input of a shortage run. Balances cover
// company-owned stock only; consignment stock never feeds company builds.
type Snapshot struct {
	Orders   []OrderDemand
	Boms     map[uuid.UUID][]catalog.BomItem
	Balances map[uuid.UUID]decimal.Decimal
	OnOrder  map[uuid.UUID]decimal.Decimal
	TakenAt  time.Time
}

// requirement is one order's exploded need for one material
type requirement struct {
	order        OrderDemand
	bomLine      catalog.BomItem
	quantity     decimal.Decimal
	coveredQty   decimal.Decimal
	shortQty     decimal.Decimal
}

// Calculate runs the shortage analysis over a snapshot and produces all four
// projections in a single pass over the exploded requirements.
func Calculate(snap Snapshot) *Report {
	// Explode open orders through their BOMs, one requirement per
	// (order, bom line).
	requirementsByMaterial := make(map[uuid.UUID][]*requirement)
	requirementsByOrder := make(map[uuid.UUID][]*requirement)
	for _, order := range snap.Orders {
		for _, line := range snap.Boms[order.ProductID] {
			req := &requirement{
				order:    order,
				bomLine:  line,
				quantity: line.RequiredFor(order.RemainingQuantity),
			}
			if !req.quantity.IsPositive() {
				continue
			}
			requirementsByMaterial[line.MaterialID] = append(requirementsByMaterial[line.MaterialID], req)
			requirementsByOrder[order.OrderID] = append(requirementsByOrder[order.OrderID], req)
		}
	}

	materialIDs := make([]uuid.UUID, 0, len(requirementsByMaterial))
	for id := range requirementsByMaterial {
		materialIDs = append(materialIDs, id)
	}
	sort.Slice(materialIDs, func(i, j int) bool {
		return materialIDs[i].String() < materialIDs[j].String()
	})

	report := &Report{TakenAt: snap.TakenAt}

	for _, materialID := range materialIDs {
		reqs := requirementsByMaterial[materialID]

		required := decimal.Zero
		for _, req := range reqs {
			required = required.Add(req.quantity)
		}
		available := snap.Balances[materialID]
		onOrder := snap.OnOrder[materialID]
		shortage := required.Sub(available).Sub(onOrder)
		if shortage.IsNegative() {
			shortage = decimal.Zero
		}

		// Claim walk: earliest due date claims the pooled supply first,
		// ties broken by order number. Later orders inherit the remainder.
		sort.SliceStable(reqs, func(i, j int) bool {
			if !reqs[i].order.DueDate.Equal(reqs[j].order.DueDate) {
				return reqs[i].order.DueDate.Before(reqs[j].order.DueDate)
			}
			return reqs[i].order.OrderNumber < reqs[j].order.OrderNumber
		})
		supply := available.Add(onOrder)
		for _, req := range reqs {
			claim := decimal.Min(req.quantity, supply)
			if claim.IsNegative() {
				claim = decimal.Zero
			}
			req.coveredQty = claim
			req.shortQty = req.quantity.Sub(claim)
			supply = supply.Sub(claim)
		}

		if shortage.IsPositive() {
			report.ByMaterial = append(report.ByMaterial, MaterialShortage{
				MaterialID: materialID,
				Required:   required,
				Available:  available,
				OnOrder:    onOrder,
				Shortage:   shortage,
			})
		}
	}

	report.ByCustomer = groupByCustomer(requirementsByMaterial)
	report.ByResourceType = groupByResourceType(report.ByMaterial, requirementsByMaterial)
	report.Buildability = assessBuildability(snap.Orders, requirementsByOrder)

	return report
}

// groupByCustomer nests customer → order → short requirement lines, carrying
// only requirements that came up short in the claim walk.
func groupByCustomer(byMaterial map[uuid.UUID][]*requirement) []CustomerShortage {
	type orderKey struct {
		customerID uuid.UUID
		orderID    uuid.UUID
	}
	orderGroups := make(map[orderKey]*OrderShortage)
	for materialID, reqs := range byMaterial {
		for _, req := range reqs {
			if !req.shortQty.IsPositive() {
				continue
			}
			key := orderKey{req.order.CustomerID, req.order.OrderID}
			group, ok := orderGroups[key]
			if !ok {
				group = &OrderShortage{
					OrderID:     req.order.OrderID,
					OrderNumber: req.order.OrderNumber,
					DueDate:     req.order.DueDate,
				}
				orderGroups[key] = group
			}
			group.Lines = append(group.Lines, ShortageLine{
				MaterialID: materialID,
				Required:   req.quantity,
				Covered:    req.coveredQty,
				Short:      req.shortQty,
			})
		}
	}

	customers := make(map[uuid.UUID]*CustomerShortage)
	for key, group := range orderGroups {
		sort.Slice(group.Lines, func(i, j int) bool {
			return group.Lines[i].MaterialID.String() < group.Lines[j].MaterialID.String()
		})
		customer, ok := customers[key.customerID]
		if !ok {
			customer = &CustomerShortage{CustomerID: key.customerID}
			customers[key.customerID] = customer
		}
		customer.Orders = append(customer.Orders, *group)
	}

	result := make([]CustomerShortage, 0, len(customers))
	for _, customer := range customers {
		sort.Slice(customer.Orders, func(i, j int) bool {
			if !customer.Orders[i].DueDate.Equal(customer.Orders[j].DueDate) {
				return customer.Orders[i].DueDate.Before(customer.Orders[j].DueDate)
			}
			return customer.Orders[i].OrderNumber < customer.Orders[j].OrderNumber
		})
		result = append(result, *customer)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID.String() < result[j].CustomerID.String()
	})
	return result
}

// groupByResourceType regroups shortage materials by the BOM line's resource
// type tag. A material used as both SMT and TH appears in both groups.
func groupByResourceType(shortages []MaterialShortage, byMaterial map[uuid.UUID][]*requirement) []ResourceTypeShortage {
	shortageByID := make(map[uuid.UUID]MaterialShortage, len(shortages))
	for _, s := range shortages {
		shortageByID[s.MaterialID] = s
	}

	groups := make(map[catalog.ResourceType]map[uuid.UUID]MaterialShortage)
	for materialID, reqs := range byMaterial {
		shortage, ok := shortageByID[materialID]
		if !ok {
			continue
		}
		for _, req := range reqs {
			if groups[req.bomLine.ResourceType] == nil {
				groups[req.bomLine.ResourceType] = make(map[uuid.UUID]MaterialShortage)
			}
			groups[req.bomLine.ResourceType][materialID] = shortage
		}
	}

	result := make([]ResourceTypeShortage, 0, len(groups))
	for resourceType, materials := range groups {
		group := ResourceTypeShortage{ResourceType: resourceType}
		for _, s := range materials {
			group.Materials = append(group.Materials, s)
		}
		sort.Slice(group.Materials, func(i, j int) bool {
			return group.Materials[i].MaterialID.String() < group.Materials[j].MaterialID.String()
		})
		result = append(result, group)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ResourceType < result[j].ResourceType
	})
	return result
}

// assessBuildability reports per order whether every material requirement was
// fully covered by its claim. Orders are listed in due date order.
func assessBuildability(orders []OrderDemand, byOrder map[uuid.UUID][]*requirement) []OrderBuildability {
	sorted := make([]OrderDemand, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].DueDate.Equal(sorted[j].DueDate) {
			return sorted[i].DueDate.Before(sorted[j].DueDate)
		}
		return sorted[i].OrderNumber < sorted[j].OrderNumber
	})

	result := make([]OrderBuildability, 0, len(sorted))
	for _, order := range sorted {
		entry := OrderBuildability{
			OrderID:     order.OrderID,
			OrderNumber: order.OrderNumber,
			DueDate:     order.DueDate,
			Buildable:   true,
		}
		reqs := byOrder[order.OrderID]
		sort.Slice(reqs, func(i, j int) bool {
			return reqs[i].bomLine.MaterialID.String() < reqs[j].bomLine.MaterialID.String()
		})
		for _, req := range reqs {
			if req.shortQty.IsPositive() {
				entry.Buildable = false
				entry.ShortLines = append(entry.ShortLines, ShortageLine{
					MaterialID: req.bomLine.MaterialID,
					Required:   req.quantity,
					Covered:    req.coveredQty,
					Short:      req.shortQty,
				})
			}
		}
		result = append(result, entry)
	}
	return result
}
