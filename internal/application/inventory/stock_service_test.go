package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

func TestStockService_GetStockByKey(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}

	t.Run("returns the record with derived availability", func(t *testing.T) {
		scope := newTestScope()
		service := NewStockService(scope, zap.NewNop())
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(4)))

		scope.stockRepo.On("FindByKey", mock.Anything, tenantID, key).Return(stock, nil).Once()

		response, err := service.GetStockByKey(ctx, tenantID, key)
		require.NoError(t, err)

		assert.True(t, response.Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, response.ReservedQuantity.Equal(decimal.NewFromInt(4)))
		assert.True(t, response.AvailableQuantity.Equal(decimal.NewFromInt(6)))
		scope.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		scope := newTestScope()
		service := NewStockService(scope, zap.NewNop())

		scope.stockRepo.On("FindByKey", mock.Anything, tenantID, key).Return(nil, shared.ErrNotFound).Once()

		_, err := service.GetStockByKey(ctx, tenantID, key)
		require.ErrorIs(t, err, shared.ErrNotFound)
		scope.AssertExpectations(t)
	})
}

func TestStockService_ListBelowMinimum(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}

	scope := newTestScope()
	service := NewStockService(scope, zap.NewNop())
	stock := seedStock(t, tenantID, key, decimal.NewFromInt(2))
	require.NoError(t, stock.SetMinQuantity(decimal.NewFromInt(5)))

	scope.stockRepo.On("FindBelowMinimum", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20
	})).Return([]inventory.Stock{*stock}, nil).Once()

	responses, err := service.ListBelowMinimum(ctx, tenantID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].IsBelowMinimum)
	scope.AssertExpectations(t)
}

func TestStockService_SetMinimumQuantity(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}

	t.Run("updates the threshold", func(t *testing.T) {
		scope := newTestScope()
		service := NewStockService(scope, zap.NewNop())
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))

		scope.stockRepo.On("FindByIDForTenant", mock.Anything, tenantID, stock.ID).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, stock).Return(nil).Once()

		response, err := service.SetMinimumQuantity(ctx, tenantID, stock.ID, decimal.NewFromInt(3))
		require.NoError(t, err)
		assert.True(t, response.MinQuantity.Equal(decimal.NewFromInt(3)))
		scope.AssertExpectations(t)
	})

	t.Run("rejects negative threshold", func(t *testing.T) {
		scope := newTestScope()
		service := NewStockService(scope, zap.NewNop())
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))

		scope.stockRepo.On("FindByIDForTenant", mock.Anything, tenantID, stock.ID).Return(stock, nil).Once()

		_, err := service.SetMinimumQuantity(ctx, tenantID, stock.ID, decimal.NewFromInt(-1))
		require.Error(t, err)
		scope.AssertExpectations(t)
	})
}

func TestStockService_PlanLotConsumption(t *testing.T) {
	ctx := context.Background()
	service := NewStockService(newTestScope(), zap.NewNop())

	lots := []LotBatchInput{
		{ID: uuid.New(), LotNumber: "LOT-A", Status: "approved", RemainingQuantity: decimal.NewFromInt(4), UnitCost: decimal.NewFromInt(2), CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), LotNumber: "LOT-B", Status: "approved", RemainingQuantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(3), CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), LotNumber: "LOT-C", Status: "quarantined", RemainingQuantity: decimal.NewFromInt(50), UnitCost: decimal.NewFromInt(1), CreatedAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	t.Run("consumes oldest approved lots first", func(t *testing.T) {
		plan, err := service.PlanLotConsumption(ctx, PlanLotConsumptionRequest{
			Strategy:          "fifo",
			RequestedQuantity: decimal.NewFromInt(6),
			Lots:              lots,
		})
		require.NoError(t, err)
		require.Len(t, plan.Consumptions, 2)
		assert.Equal(t, "LOT-A", plan.Consumptions[0].LotNumber)
		assert.Equal(t, "LOT-B", plan.Consumptions[1].LotNumber)
		assert.True(t, plan.FullySatisfied())
		// 4 * 2 + 2 * 3
		assert.True(t, plan.TotalCost.Equal(decimal.NewFromInt(14)))
	})

	t.Run("reports shortfall without error", func(t *testing.T) {
		plan, err := service.PlanLotConsumption(ctx, PlanLotConsumptionRequest{
			Strategy:          "FIFO",
			RequestedQuantity: decimal.NewFromInt(100),
			Lots:              lots,
		})
		require.NoError(t, err)
		assert.True(t, plan.ShortfallQuantity.Equal(decimal.NewFromInt(86)))
		assert.NotEmpty(t, plan.Notes)
	})
}
