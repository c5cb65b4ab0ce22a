package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
)

type captureNotifier struct {
	events []*inventory.StockBelowThresholdEvent
}

func (n *captureNotifier) NotifyLowStock(ctx context.Context, event *inventory.StockBelowThresholdEvent) error {
	n.events = append(n.events, event)
	return nil
}

func TestLowStockHandler_Handle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newThresholdEvent := func(t *testing.T) *inventory.StockBelowThresholdEvent {
		t.Helper()
		stock, err := inventory.NewStock(tenantID, inventory.StockKey{
			ProductID:   uuid.New(),
			WarehouseID: uuid.New(),
		})
		require.NoError(t, err)
		require.NoError(t, stock.Increase(decimal.NewFromInt(10)))
		require.NoError(t, stock.SetMinQuantity(decimal.NewFromInt(8)))
		require.NoError(t, stock.Decrease(decimal.NewFromInt(5)))

		for _, e := range stock.GetDomainEvents() {
			if thresholdEvent, ok := e.(*inventory.StockBelowThresholdEvent); ok {
				return thresholdEvent
			}
		}
		t.Fatal("expected a below-threshold event")
		return nil
	}

	t.Run("forwards alert to notifier", func(t *testing.T) {
		handler := NewLowStockHandler(zap.NewNop())
		notifier := &captureNotifier{}
		handler.SetNotifier(notifier)

		event := newThresholdEvent(t)
		require.NoError(t, handler.Handle(ctx, event))

		require.Len(t, notifier.events, 1)
		assert.True(t, notifier.events[0].Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, notifier.events[0].MinQuantity.Equal(decimal.NewFromInt(8)))
	})

	t.Run("works without a notifier", func(t *testing.T) {
		handler := NewLowStockHandler(zap.NewNop())
		require.NoError(t, handler.Handle(ctx, newThresholdEvent(t)))
	})

	t.Run("ignores other event types", func(t *testing.T) {
		handler := NewLowStockHandler(zap.NewNop())
		notifier := &captureNotifier{}
		handler.SetNotifier(notifier)

		stock, err := inventory.NewStock(tenantID, inventory.StockKey{
			ProductID:   uuid.New(),
			WarehouseID: uuid.New(),
		})
		require.NoError(t, err)
		require.NoError(t, stock.Increase(decimal.NewFromInt(1)))

		for _, e := range stock.GetDomainEvents() {
			require.NoError(t, handler.Handle(ctx, e))
		}
		assert.Empty(t, notifier.events)
	})

	t.Run("subscribes to the threshold event only", func(t *testing.T) {
		handler := NewLowStockHandler(zap.NewNop())
		assert.Equal(t, []string{inventory.EventTypeStockBelowThreshold}, handler.EventTypes())
	})
}
