package mrp

import (
	"context"

	"github.com/emstack/backend/internal/domain/inventory"
	"github.com/emstack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ShortageInvalidationHandler drops the cached shortage report whenever an
// inventory event changes the numbers the report is built from. The next
// report read recomputes against fresh balances.
type ShortageInvalidationHandler struct {
	service *ShortageService
	logger  *zap.Logger
}

// NewShortageInvalidationHandler creates a new ShortageInvalidationHandler
func NewShortageInvalidationHandler(service *ShortageService, logger *zap.Logger) *ShortageInvalidationHandler {
	return &ShortageInvalidationHandler{service: service, logger: logger}
}

// EventTypes returns the inventory events that affect the shortage report
func (h *ShortageInvalidationHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeAllocationCreated,
		inventory.EventTypeAllocationConsumed,
		inventory.EventTypeAllocationReleased,
		inventory.EventTypeLotReceived,
		inventory.EventTypeCycleCountCompleted,
	}
}

// Handle invalidates the cached report
func (h *ShortageInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.service.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate shortage report cache",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*ShortageInvalidationHandler)(nil)
