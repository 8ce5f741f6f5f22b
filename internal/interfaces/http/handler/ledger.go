package handler

import (
	"time"

	inventoryapp "github.com/emstack/backend/internal/application/inventory"
	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles inventory ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *inventoryapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// AppendEntry records a manual ledger movement
func (h *LedgerHandler) AppendEntry(c *gin.Context) {
	var req inventoryapp.AppendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = getActorID(c)
	}

	resp, err := h.ledgerService.AppendManualEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetBalance computes the on-hand balance for a (material, owner, lot) key
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	materialID, err := uuid.Parse(c.Query("material_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing material_id")
		return
	}

	ownerType := c.DefaultQuery("owner_type", "COMPANY")
	ownerID, err := parseUUIDQuery(c, "owner_id")
	if err != nil {
		h.BadRequest(c, "Invalid owner_id format")
		return
	}
	lotID, err := parseUUIDQuery(c, "lot_id")
	if err != nil {
		h.BadRequest(c, "Invalid lot_id format")
		return
	}

	resp, err := h.ledgerService.GetBalance(c.Request.Context(), materialID, ownerType, ownerID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListEntries returns ledger entries matching the query filters
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	page, err := parseListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := h.parseLedgerFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ListEntries(c.Request.Context(), filter, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *LedgerHandler) parseLedgerFilter(c *gin.Context) (inventory.LedgerFilter, error) {
	var filter inventory.LedgerFilter

	materialID, err := parseUUIDQuery(c, "material_id")
	if err != nil {
		return filter, err
	}
	filter.MaterialID = materialID

	lotID, err := parseUUIDQuery(c, "lot_id")
	if err != nil {
		return filter, err
	}
	filter.LotID = lotID

	if raw := c.Query("owner"); raw != "" {
		owner, err := valueobject.ParseOwner(raw)
		if err != nil {
			return filter, err
		}
		filter.Owner = &owner
	}
	if raw := c.Query("transaction_kind"); raw != "" {
		kind := inventory.TransactionKind(raw)
		filter.Kind = &kind
	}
	if raw := c.Query("reference_type"); raw != "" {
		refKind := inventory.ReferenceKind(raw)
		filter.ReferenceKind = &refKind
	}
	if raw := c.Query("reference_id"); raw != "" {
		filter.ReferenceID = &raw
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	return filter, nil
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/inventory/ledger")
	{
		ledger.POST("/entries", h.AppendEntry)
		ledger.GET("/entries", h.ListEntries)
		ledger.GET("/balance", h.GetBalance)
	}
}
