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

func expiredReservation(t *testing.T, tenantID, productID, warehouseID uuid.UUID, quantity decimal.Decimal, expiredAgo time.Duration) *inventory.StockReservation {
	t.Helper()
	reservation, err := inventory.NewStockReservation(
		tenantID,
		"RSV-20250314-0001",
		productID,
		warehouseID,
		quantity,
		"sales_order",
	)
	require.NoError(t, err)
	reservation.WithExpiration(time.Now().Add(-expiredAgo))
	reservation.ClearDomainEvents()
	return reservation
}

func TestReservationExpirationService_ExpireSweep(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
	now := time.Now()

	t.Run("expires due reservations and releases holds", func(t *testing.T) {
		scope := newTestScope()
		service := NewReservationExpirationService(scope, zap.NewNop())
		publisher := NewMockEventPublisher()
		service.SetEventPublisher(publisher)

		reservation := expiredReservation(t, tenantID, productID, warehouseID, decimal.NewFromInt(5), time.Hour)
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(5)))
		stock.ClearDomainEvents()

		scope.reservationRepo.On("FindExpired", mock.Anything, now).Return([]inventory.StockReservation{*reservation}, nil).Once()
		scope.reservationRepo.On("FindByIDForTenant", mock.Anything, tenantID, reservation.ID).Return(reservation, nil).Once()
		scope.reservationRepo.On("SaveWithLock", mock.Anything, reservation).Return(nil).Once()
		scope.stockRepo.On("FindByKey", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, stock).Return(nil).Once()

		stats, err := service.ExpireSweep(ctx, now)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.TotalExpired)
		assert.Equal(t, 1, stats.SuccessReleased)
		assert.Equal(t, 0, stats.FailedReleases)
		assert.Equal(t, inventory.ReservationStatusExpired, reservation.Status)
		assert.True(t, stock.ReservedQuantity.IsZero())
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeReservationExpired), 1)
		scope.AssertExpectations(t)
	})

	t.Run("no due reservations is a no-op", func(t *testing.T) {
		scope := newTestScope()
		service := NewReservationExpirationService(scope, zap.NewNop())

		scope.reservationRepo.On("FindExpired", mock.Anything, now).Return([]inventory.StockReservation{}, nil).Once()

		stats, err := service.ExpireSweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalExpired)
		scope.AssertExpectations(t)
	})

	t.Run("reservation expired by a concurrent sweep is skipped", func(t *testing.T) {
		scope := newTestScope()
		service := NewReservationExpirationService(scope, zap.NewNop())

		reservation := expiredReservation(t, tenantID, productID, warehouseID, decimal.NewFromInt(5), time.Hour)
		// Simulate another sweep winning between FindExpired and the reload
		alreadyExpired := *reservation
		_, err := alreadyExpired.Expire(now)
		require.NoError(t, err)
		alreadyExpired.ClearDomainEvents()

		scope.reservationRepo.On("FindExpired", mock.Anything, now).Return([]inventory.StockReservation{*reservation}, nil).Once()
		scope.reservationRepo.On("FindByIDForTenant", mock.Anything, tenantID, reservation.ID).Return(&alreadyExpired, nil).Once()

		stats, err := service.ExpireSweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalExpired)
		assert.Equal(t, 1, stats.SuccessReleased)
		scope.AssertExpectations(t)
	})

	t.Run("one failure does not block the rest", func(t *testing.T) {
		scope := newTestScope()
		service := NewReservationExpirationService(scope, zap.NewNop())

		first := expiredReservation(t, tenantID, productID, warehouseID, decimal.NewFromInt(5), time.Hour)
		second := expiredReservation(t, tenantID, productID, warehouseID, decimal.NewFromInt(3), 2*time.Hour)
		stock := seedStock(t, tenantID, key, decimal.NewFromInt(10))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(8)))
		stock.ClearDomainEvents()

		scope.reservationRepo.On("FindExpired", mock.Anything, now).Return([]inventory.StockReservation{*first, *second}, nil).Once()
		scope.reservationRepo.On("FindByIDForTenant", mock.Anything, tenantID, first.ID).Return(nil, shared.ErrConcurrencyConflict).Once()
		scope.reservationRepo.On("FindByIDForTenant", mock.Anything, tenantID, second.ID).Return(second, nil).Once()
		scope.reservationRepo.On("SaveWithLock", mock.Anything, second).Return(nil).Once()
		scope.stockRepo.On("FindByKey", mock.Anything, tenantID, key).Return(stock, nil).Once()
		scope.stockRepo.On("SaveWithLock", mock.Anything, stock).Return(nil).Once()

		stats, err := service.ExpireSweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalExpired)
		assert.Equal(t, 1, stats.SuccessReleased)
		assert.Equal(t, 1, stats.FailedReleases)
		assert.True(t, stock.ReservedQuantity.Equal(decimal.NewFromInt(5)))
		scope.AssertExpectations(t)
	})
}
