package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

func newMovementService() (*MovementService, *testScope, *MockEventPublisher) {
	scope := newTestScope()
	service := NewMovementService(scope, newStubSequencer(), zap.NewNop())
	publisher := NewMockEventPublisher()
	service.SetEventPublisher(publisher)
	return service, scope, publisher
}

func seedStock(t *testing.T, tenantID uuid.UUID, key inventory.StockKey, quantity decimal.Decimal) *inventory.Stock {
	t.Helper()
	stock, err := inventory.NewStock(tenantID, key)
	require.NoError(t, err)
	if quantity.IsPositive() {
		require.NoError(t, stock.Increase(quantity))
	}
	stock.ClearDomainEvents()
	return stock
}

func TestMovementService_CreateIncoming(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	req := CreateMovementRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		MovementType: inventory.MovementTypePurchase,
		Quantity:     decimal.NewFromInt(10),
		UnitCost:     decimal.NewFromInt(5),
	}

	t.Run("records purchase and increases stock", func(t *testing.T) {
		service, scope, publisher := newMovementService()
		key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
		stock := seedStock(t, tenantID, key, decimal.Zero)

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()
		scope.movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil).Once()

		response, err := service.CreateIncoming(ctx, tenantID, req)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(response.DocumentNumber, "PUR"))
		assert.Len(t, response.DocumentNumber, 17)
		assert.True(t, strings.HasSuffix(response.DocumentNumber, "000001"))
		assert.True(t, response.Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, response.TotalCost.Equal(decimal.NewFromInt(50)))
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(10)))

		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockIncreased), 1)
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeMovementRecorded), 1)
		scope.AssertExpectations(t)
	})

	t.Run("document numbers increment per prefix", func(t *testing.T) {
		service, scope, _ := newMovementService()
		key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
		stock := seedStock(t, tenantID, key, decimal.Zero)

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Twice()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Twice()
		scope.movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil).Twice()

		first, err := service.CreateIncoming(ctx, tenantID, req)
		require.NoError(t, err)
		second, err := service.CreateIncoming(ctx, tenantID, req)
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(first.DocumentNumber, "000001"))
		assert.True(t, strings.HasSuffix(second.DocumentNumber, "000002"))
	})

	t.Run("rejects outgoing type", func(t *testing.T) {
		service, _, _ := newMovementService()
		bad := req
		bad.MovementType = inventory.MovementTypeSales

		_, err := service.CreateIncoming(ctx, tenantID, bad)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_MOVEMENT_TYPE", domainErr.Code)
	})
}

func TestMovementService_CreateOutgoing(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}

	req := CreateMovementRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		MovementType: inventory.MovementTypeSales,
		Quantity:     decimal.NewFromInt(4),
		UnitCost:     decimal.NewFromInt(9),
	}

	t.Run("records sale and decreases stock", func(t *testing.T) {
		service, scope, publisher := newMovementService()
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()
		scope.movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil).Once()

		response, err := service.CreateOutgoing(ctx, tenantID, req)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(response.DocumentNumber, "SAL"))
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(6)))
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockDecreased), 1)
		scope.AssertExpectations(t)
	})

	t.Run("fails when stock does not cover", func(t *testing.T) {
		service, scope, publisher := newMovementService()
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(2))

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()

		_, err := service.CreateOutgoing(ctx, tenantID, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrInsufficientStock.Code, domainErr.Code)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(2)))
		assert.Empty(t, publisher.GetEvents())
		scope.AssertExpectations(t)
	})

	t.Run("rejects incoming type", func(t *testing.T) {
		service, _, _ := newMovementService()
		bad := req
		bad.MovementType = inventory.MovementTypePurchase

		_, err := service.CreateOutgoing(ctx, tenantID, bad)
		require.Error(t, err)
	})
}

func TestMovementService_CreateTransfer(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	fromLocation := uuid.New()
	toLocation := uuid.New()

	req := CreateTransferRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		FromLocationID: fromLocation,
		ToLocationID:   toLocation,
		Quantity:       decimal.NewFromInt(3),
	}

	t.Run("moves quantity between locations", func(t *testing.T) {
		service, scope, publisher := newMovementService()
		fromKey := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID, LocationID: &fromLocation}
		toKey := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID, LocationID: &toLocation}
		source := seedStock(t, tenantID, fromKey, decimal.NewFromInt(5))
		destination := seedStock(t, tenantID, toKey, decimal.Zero)

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, fromKey).Return(source, nil).Once()
		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, toKey).Return(destination, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Twice()
		scope.movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil).Once()

		response, err := service.CreateTransfer(ctx, tenantID, req)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(response.DocumentNumber, "TRF"))
		require.NotNil(t, response.FromLocationID)
		require.NotNil(t, response.ToLocationID)
		assert.Equal(t, fromLocation, *response.FromLocationID)
		assert.Equal(t, toLocation, *response.ToLocationID)
		assert.True(t, source.Quantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, destination.Quantity.Equal(decimal.NewFromInt(3)))
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeMovementRecorded), 1)
		scope.AssertExpectations(t)
	})

	t.Run("fails when source does not cover", func(t *testing.T) {
		service, scope, _ := newMovementService()
		fromKey := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID, LocationID: &fromLocation}
		source := seedStock(t, tenantID, fromKey, decimal.NewFromInt(1))

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, fromKey).Return(source, nil).Once()

		_, err := service.CreateTransfer(ctx, tenantID, req)
		require.Error(t, err)
		scope.AssertExpectations(t)
	})

	t.Run("rejects identical locations", func(t *testing.T) {
		service, _, _ := newMovementService()
		bad := req
		bad.ToLocationID = fromLocation

		_, err := service.CreateTransfer(ctx, tenantID, bad)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSFER", domainErr.Code)
	})
}

func TestMovementService_ReverseMovement(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}

	newPurchase := func(t *testing.T) *inventory.StockMovement {
		t.Helper()
		movement, err := inventory.NewStockMovement(
			tenantID,
			"PUR20250314000001",
			inventory.MovementTypePurchase,
			productID,
			warehouseID,
			decimal.NewFromInt(10),
			decimal.NewFromInt(5),
		)
		require.NoError(t, err)
		return movement
	}

	t.Run("reverses a purchase", func(t *testing.T) {
		service, scope, publisher := newMovementService()
		original := newPurchase(t)
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))

		scope.movementRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil).Once()
		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()
		scope.movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.MovementType == inventory.MovementTypePurchaseReturn && m.IsReversal()
		})).Return(nil).Once()
		scope.movementRepo.On("UpdateReversal", mock.Anything, original).Return(nil).Once()

		response, err := service.ReverseMovement(ctx, tenantID, ReverseMovementRequest{
			MovementID: original.ID,
			Reason:     "wrong receipt",
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(response.DocumentNumber, "PRT"))
		require.NotNil(t, response.ReversalOfMovementID)
		assert.Equal(t, original.ID, *response.ReversalOfMovementID)
		assert.True(t, original.IsReversed)
		assert.True(t, stock.Quantity.IsZero())
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeMovementReversed), 1)
		scope.AssertExpectations(t)
	})

	t.Run("reverses a sale by restoring stock", func(t *testing.T) {
		service, scope, _ := newMovementService()
		original, err := inventory.NewStockMovement(
			tenantID,
			"SAL20250314000001",
			inventory.MovementTypeSales,
			productID,
			warehouseID,
			decimal.NewFromInt(4),
			decimal.NewFromInt(9),
		)
		require.NoError(t, err)
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(6))

		scope.movementRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil).Once()
		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()
		scope.movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.MovementType == inventory.MovementTypeSalesReturn
		})).Return(nil).Once()
		scope.movementRepo.On("UpdateReversal", mock.Anything, original).Return(nil).Once()

		_, err = service.ReverseMovement(ctx, tenantID, ReverseMovementRequest{
			MovementID: original.ID,
			Reason:     "customer return",
		})
		require.NoError(t, err)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(10)))
		scope.AssertExpectations(t)
	})

	t.Run("fails when already reversed", func(t *testing.T) {
		service, scope, _ := newMovementService()
		original := newPurchase(t)
		require.NoError(t, original.MarkReversed(uuid.New()))

		scope.movementRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil).Once()

		_, err := service.ReverseMovement(ctx, tenantID, ReverseMovementRequest{
			MovementID: original.ID,
			Reason:     "again",
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrAlreadyReversed.Code, domainErr.Code)
		scope.AssertExpectations(t)
	})

	t.Run("fails when movement not found", func(t *testing.T) {
		service, scope, _ := newMovementService()
		missingID := uuid.New()

		scope.movementRepo.On("FindByIDForTenant", mock.Anything, tenantID, missingID).Return(nil, shared.ErrNotFound).Once()

		_, err := service.ReverseMovement(ctx, tenantID, ReverseMovementRequest{
			MovementID: missingID,
			Reason:     "missing",
		})
		require.ErrorIs(t, err, shared.ErrNotFound)
		scope.AssertExpectations(t)
	})
}

func TestMovementService_RecordCount(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}

	t.Run("records surplus as counting movement", func(t *testing.T) {
		service, scope, publisher := newMovementService()
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(8))

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()
		scope.movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.MovementType == inventory.MovementTypeCounting && m.Quantity.Equal(decimal.NewFromInt(3))
		})).Return(nil).Once()

		response, err := service.RecordCount(ctx, tenantID, RecordCountRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			CountedQuantity: decimal.NewFromInt(11),
			Reason:          "cycle count",
		})
		require.NoError(t, err)

		assert.True(t, response.Delta.Equal(decimal.NewFromInt(3)))
		require.NotNil(t, response.Movement)
		assert.True(t, strings.HasPrefix(response.Movement.DocumentNumber, "CNT"))
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(11)))
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockCounted), 1)
		scope.AssertExpectations(t)
	})

	t.Run("records shrinkage with negative delta", func(t *testing.T) {
		service, scope, _ := newMovementService()
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(8))

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()
		scope.movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.Quantity.Equal(decimal.NewFromInt(2))
		})).Return(nil).Once()

		response, err := service.RecordCount(ctx, tenantID, RecordCountRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			CountedQuantity: decimal.NewFromInt(6),
			Reason:          "cycle count",
		})
		require.NoError(t, err)
		assert.True(t, response.Delta.Equal(decimal.NewFromInt(-2)))
		scope.AssertExpectations(t)
	})

	t.Run("matching count records no movement", func(t *testing.T) {
		service, scope, _ := newMovementService()
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(8))

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Stock")).Return(nil).Once()

		response, err := service.RecordCount(ctx, tenantID, RecordCountRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			CountedQuantity: decimal.NewFromInt(8),
			Reason:          "cycle count",
		})
		require.NoError(t, err)
		assert.True(t, response.Delta.IsZero())
		assert.Nil(t, response.Movement)
		scope.AssertExpectations(t)
	})

	t.Run("rejects count below reserved quantity", func(t *testing.T) {
		service, scope, _ := newMovementService()
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(8))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(5)))
		stock.ClearDomainEvents()

		scope.stockRepo.On("GetOrCreate", mock.Anything, tenantID, key).Return(stock, nil).Once()

		_, err := service.RecordCount(ctx, tenantID, RecordCountRequest{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			CountedQuantity: decimal.NewFromInt(3),
			Reason:          "cycle count",
		})
		require.Error(t, err)
		scope.AssertExpectations(t)
	})
}
