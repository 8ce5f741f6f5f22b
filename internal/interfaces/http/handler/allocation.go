package handler

import (
	"context"

	inventoryapp "github.com/emstack/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AllocationHandler handles allocation API endpoints
type AllocationHandler struct {
	BaseHandler
	allocationService *inventoryapp.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *inventoryapp.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// Allocate reserves stock for an order
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req inventoryapp.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.allocationService.Allocate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns an allocation by id
func (h *AllocationHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	resp, err := h.allocationService.GetAllocation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByOrder returns all allocations for an order
func (h *AllocationHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing order_id")
		return
	}

	resp, err := h.allocationService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Consume books actual usage against an active allocation
func (h *AllocationHandler) Consume(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	var req inventoryapp.ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.allocationService.Consume(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel voids an allocation that was never issued
func (h *AllocationHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	resp, err := h.allocationService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReturnToStock sends unused allocated quantity back to on-hand
func (h *AllocationHandler) ReturnToStock(c *gin.Context) {
	h.release(c, h.allocationService.ReturnToStock)
}

// FloorStock leaves unused allocated quantity at the production floor
func (h *AllocationHandler) FloorStock(c *gin.Context) {
	h.release(c, h.allocationService.FloorStock)
}

func (h *AllocationHandler) release(
	c *gin.Context,
	fn func(ctx context.Context, id uuid.UUID, req inventoryapp.ReleaseRequest) (*inventoryapp.AllocationResponse, error),
) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	var req inventoryapp.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := fn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all allocation routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	allocations := rg.Group("/inventory/allocations")
	{
		allocations.POST("", h.Allocate)
		allocations.GET("", h.ListByOrder)
		allocations.GET("/:id", h.Get)
		allocations.POST("/:id/consume", h.Consume)
		allocations.POST("/:id/cancel", h.Cancel)
		allocations.POST("/:id/return", h.ReturnToStock)
		allocations.POST("/:id/floor-stock", h.FloorStock)
	}
}
