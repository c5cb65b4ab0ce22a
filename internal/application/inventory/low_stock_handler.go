package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LowStockNotifier receives replenishment alerts for stock that fell below
// its configured minimum.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, event *inventory.StockBelowThresholdEvent) error
}

// LowStockHandler reacts to below-threshold events by logging and, when a
// notifier is configured, forwarding a replenishment alert.
type LowStockHandler struct {
	notifier LowStockNotifier
	logger   *zap.Logger
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// SetNotifier sets the notifier for forwarding alerts
func (h *LowStockHandler) SetNotifier(notifier LowStockNotifier) {
	h.notifier = notifier
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a domain event
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return nil
	}

	h.logger.Warn("Stock below minimum threshold",
		zap.String("tenant_id", thresholdEvent.TenantID().String()),
		zap.String("product_id", thresholdEvent.ProductID.String()),
		zap.String("warehouse_id", thresholdEvent.WarehouseID.String()),
		zap.String("quantity", thresholdEvent.Quantity.String()),
		zap.String("min_quantity", thresholdEvent.MinQuantity.String()),
	)

	if h.notifier != nil {
		return h.notifier.NotifyLowStock(ctx, thresholdEvent)
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
