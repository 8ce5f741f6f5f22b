package handler

import (
	"context"

	productionapp "github.com/emstack/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles production order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService       *productionapp.OrderService
	fulfillmentService *productionapp.FulfillmentService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *productionapp.OrderService, fulfillmentService *productionapp.FulfillmentService) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		fulfillmentService: fulfillmentService,
	}
}

// Create enters a new production order
func (h *OrderHandler) Create(c *gin.Context) {
	var req productionapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a production order by id
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns production orders with pagination and filters
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if customerID, err := parseUUIDQuery(c, "customer_id"); err != nil {
		h.BadRequest(c, "Invalid customer_id format")
		return
	} else if customerID != nil {
		filter.Filters["customer_id"] = *customerID
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Hold pauses an order
func (h *OrderHandler) Hold(c *gin.Context) {
	h.transition(c, h.orderService.Hold)
}

// Resume returns a held order to its previous status
func (h *OrderHandler) Resume(c *gin.Context) {
	h.transition(c, h.orderService.Resume)
}

// Cancel cancels an order and releases its active allocations
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orderService.Cancel)
}

// Ship marks a completed order as shipped
func (h *OrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.orderService.Ship)
}

// Pick reserves the order's BOM materials and moves it to KITTING
func (h *OrderHandler) Pick(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req productionapp.PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.fulfillmentService.Pick(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Issue hands picked materials to the production floor
func (h *OrderHandler) Issue(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req productionapp.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.fulfillmentService.Issue(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReturnMaterials reconciles actual usage when a stage finishes
func (h *OrderHandler) ReturnMaterials(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req productionapp.ReturnMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.fulfillmentService.ReturnMaterials(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*productionapp.OrderResponse, error)) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all production order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/production/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/hold", h.Hold)
		orders.POST("/:id/resume", h.Resume)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/ship", h.Ship)
		orders.POST("/:id/pick", h.Pick)
		orders.POST("/:id/issue", h.Issue)
		orders.POST("/:id/return-materials", h.ReturnMaterials)
	}
}
