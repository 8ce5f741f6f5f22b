package handler

import (
	mrpapp "github.com/emstack/backend/internal/application/mrp"
	"github.com/gin-gonic/gin"
)

// ShortageHandler handles shortage report API endpoints
type ShortageHandler struct {
	BaseHandler
	shortageService *mrpapp.ShortageService
}

// NewShortageHandler creates a new ShortageHandler
func NewShortageHandler(shortageService *mrpapp.ShortageService) *ShortageHandler {
	return &ShortageHandler{shortageService: shortageService}
}

// GetReport returns the shortage report, served from cache when fresh
func (h *ShortageHandler) GetReport(c *gin.Context) {
	report, err := h.shortageService.GetReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Refresh recomputes the shortage report, bypassing the cache
func (h *ShortageHandler) Refresh(c *gin.Context) {
	report, err := h.shortageService.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Invalidate drops the cached report so the next read recomputes
func (h *ShortageHandler) Invalidate(c *gin.Context) {
	if err := h.shortageService.Invalidate(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all shortage report routes
func (h *ShortageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mrp := rg.Group("/mrp")
	{
		mrp.GET("/shortage-report", h.GetReport)
		mrp.POST("/shortage-report/refresh", h.Refresh)
		mrp.DELETE("/shortage-report/cache", h.Invalidate)
	}
}
