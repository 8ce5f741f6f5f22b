package handler

import (
	"context"

	inventoryapp "github.com/emstack/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CycleCountHandler handles cycle count API endpoints
type CycleCountHandler struct {
	BaseHandler
	cycleCountService *inventoryapp.CycleCountService
}

// NewCycleCountHandler creates a new CycleCountHandler
func NewCycleCountHandler(cycleCountService *inventoryapp.CycleCountService) *CycleCountHandler {
	return &CycleCountHandler{cycleCountService: cycleCountService}
}

// SkipItemRequest marks one item as skipped with an optional remark
type SkipItemRequest struct {
	Remark string `json:"remark"`
}

// Start opens a cycle count and snapshots system quantities
func (h *CycleCountHandler) Start(c *gin.Context) {
	var req inventoryapp.StartCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.cycleCountService.StartCount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a cycle count with its items
func (h *CycleCountHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid cycle count ID format")
		return
	}

	resp, err := h.cycleCountService.GetCount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns cycle counts with pagination
func (h *CycleCountHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	result, err := h.cycleCountService.ListCounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RecordCount records the physical count of one item
func (h *CycleCountHandler) RecordCount(c *gin.Context) {
	countID, itemID, ok := h.parseItemIDs(c)
	if !ok {
		return
	}

	var req inventoryapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.cycleCountService.RecordCount(c.Request.Context(), countID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApproveItem approves a counted item and books its adjustment entry
func (h *CycleCountHandler) ApproveItem(c *gin.Context) {
	countID, itemID, ok := h.parseItemIDs(c)
	if !ok {
		return
	}

	resp, err := h.cycleCountService.ApproveItem(c.Request.Context(), countID, itemID, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SkipItem excludes an item from the count without adjustment
func (h *CycleCountHandler) SkipItem(c *gin.Context) {
	countID, itemID, ok := h.parseItemIDs(c)
	if !ok {
		return
	}

	var req SkipItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.cycleCountService.SkipItem(c.Request.Context(), countID, itemID, req.Remark)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete closes a count once every item is resolved
func (h *CycleCountHandler) Complete(c *gin.Context) {
	h.transition(c, h.cycleCountService.Complete)
}

// Cancel abandons an in-progress count
func (h *CycleCountHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cycleCountService.CancelCount)
}

func (h *CycleCountHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*inventoryapp.CycleCountResponse, error)) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid cycle count ID format")
		return
	}

	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *CycleCountHandler) parseItemIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	countID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid cycle count ID format")
		return uuid.Nil, uuid.Nil, false
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid cycle count item ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return countID, itemID, true
}

// RegisterRoutes registers all cycle count routes
func (h *CycleCountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	counts := rg.Group("/inventory/cycle-counts")
	{
		counts.POST("", h.Start)
		counts.GET("", h.List)
		counts.GET("/:id", h.Get)
		counts.POST("/:id/complete", h.Complete)
		counts.POST("/:id/cancel", h.Cancel)
		counts.POST("/:id/items/:itemId/count", h.RecordCount)
		counts.POST("/:id/items/:itemId/approve", h.ApproveItem)
		counts.POST("/:id/items/:itemId/skip", h.SkipItem)
	}
}
