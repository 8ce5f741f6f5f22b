package handler

import (
	"context"

	inventoryapp "github.com/emstack/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotHandler handles lot tracking API endpoints
type LotHandler struct {
	BaseHandler
	lotService *inventoryapp.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(lotService *inventoryapp.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// PlanConsumptionRequest asks for a FIFO draw plan against available lots
type PlanConsumptionRequest struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
}

// Receive books a new lot into stock with its opening receipt entry
func (h *LotHandler) Receive(c *gin.Context) {
	var req inventoryapp.ReceiveLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.lotService.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a lot by id
func (h *LotHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	resp, err := h.lotService.GetLot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a material's lots with pagination
func (h *LotHandler) List(c *gin.Context) {
	materialID, err := uuid.Parse(c.Query("material_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing material_id")
		return
	}

	page, err := parseListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.lotService.ListLots(c.Request.Context(), materialID, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// PlanConsumption returns the FIFO draw plan for a requested quantity
func (h *LotHandler) PlanConsumption(c *gin.Context) {
	var req PlanConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.lotService.PlanConsumption(c.Request.Context(), req.MaterialID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Hold places a lot on quality hold
func (h *LotHandler) Hold(c *gin.Context) {
	h.transition(c, h.lotService.Hold)
}

// Release returns a held lot to available stock
func (h *LotHandler) Release(c *gin.Context) {
	h.transition(c, h.lotService.Release)
}

// MarkExpired marks a lot as expired
func (h *LotHandler) MarkExpired(c *gin.Context) {
	h.transition(c, h.lotService.MarkExpired)
}

// ExpireOverdue sweeps all lots whose expiration date has passed
func (h *LotHandler) ExpireOverdue(c *gin.Context) {
	expired, err := h.lotService.ExpireOverdueLots(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"expired": expired})
}

func (h *LotHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*inventoryapp.LotResponse, error)) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all lot routes
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lots := rg.Group("/inventory/lots")
	{
		lots.POST("", h.Receive)
		lots.GET("", h.List)
		lots.GET("/:id", h.Get)
		lots.POST("/plan-consumption", h.PlanConsumption)
		lots.POST("/expire-overdue", h.ExpireOverdue)
		lots.POST("/:id/hold", h.Hold)
		lots.POST("/:id/release", h.Release)
		lots.POST("/:id/expire", h.MarkExpired)
	}
}
