package catalog

import (
	"context"
	"time"

	"github.com/emstack/backend/internal/domain/catalog"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateMaterialRequest represents a request to register a material
type CreateMaterialRequest struct {
	PartNumber    string `json:"part_number" binding:"required"`
	Description   string `json:"description"`
	UnitOfMeasure string `json:"unit_of_measure" binding:"required"`
	CostingMethod string `json:"costing_method"`
}

// UpdateMaterialRequest updates a material's descriptive fields
type UpdateMaterialRequest struct {
	Description   *string `json:"description"`
	CostingMethod *string `json:"costing_method"`
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID            uuid.UUID `json:"id"`
	PartNumber    string    `json:"part_number"`
	Description   string    `json:"description"`
	UnitOfMeasure string    `json:"unit_of_measure"`
	CostingMethod string    `json:"costing_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToMaterialResponse converts a material to its API representation
func ToMaterialResponse(m *catalog.Material) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		PartNumber:    m.PartNumber,
		Description:   m.Description,
		UnitOfMeasure: m.UnitOfMeasure,
		CostingMethod: string(m.CostingMethod),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// MaterialService manages the stock-keeping unit registry
type MaterialService struct {
	materialRepo catalog.MaterialRepository
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(materialRepo catalog.MaterialRepository) *MaterialService {
	return &MaterialService{materialRepo: materialRepo}
}

// CreateMaterial registers a new material
func (s *MaterialService) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	if existing, err := s.materialRepo.FindByPartNumber(ctx, req.PartNumber); err == nil && existing != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Part number already exists")
	}

	material, err := catalog.NewMaterial(req.PartNumber, req.Description, req.UnitOfMeasure)
	if err != nil {
		return nil, err
	}
	if req.CostingMethod != "" {
		if err := material.SetCostingMethod(catalog.CostingMethod(req.CostingMethod)); err != nil {
			return nil, err
		}
	}
	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// GetMaterial returns a material by ID
func (s *MaterialService) GetMaterial(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// ListMaterials returns materials matching the filter
func (s *MaterialService) ListMaterials(ctx context.Context, page shared.Filter) (*shared.Paginated[MaterialResponse], error) {
	materials, err := s.materialRepo.FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.materialRepo.Count(ctx, page)
	if err != nil {
		return nil, err
	}
	items := make([]MaterialResponse, len(materials))
	for i := range materials {
		items[i] = ToMaterialResponse(&materials[i])
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}

// UpdateMaterial changes descriptive fields; identity is immutable
func (s *MaterialService) UpdateMaterial(ctx context.Context, id uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Description != nil {
		material.UpdateDescription(*req.Description)
	}
	if req.CostingMethod != nil {
		if err := material.SetCostingMethod(catalog.CostingMethod(*req.CostingMethod)); err != nil {
			return nil, err
		}
	}
	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// DeleteMaterial tombstones a material. Historical ledger references remain
// valid.
func (s *MaterialService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	if _, err := s.materialRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.materialRepo.Delete(ctx, id)
}
