package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

func mustReservation(t *testing.T, tenantID uuid.UUID, number, quantity string) *inventory.StockReservation {
	t.Helper()
	reservation, err := inventory.NewStockReservation(
		tenantID, number, uuid.New(), uuid.New(),
		decimal.RequireFromString(quantity), "sales_order",
	)
	require.NoError(t, err)
	return reservation
}

func TestGormReservationRepository_FindByNumber(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := NewGormReservationRepository(newTestDB(t))

	reservation := mustReservation(t, tenantID, "RSV-20260315-0001", "10")
	require.NoError(t, repo.Save(ctx, reservation))

	t.Run("finds within the tenant", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, tenantID, "RSV-20260315-0001")
		require.NoError(t, err)
		assert.Equal(t, reservation.ID, found.ID)
	})

	t.Run("does not leak across tenants", func(t *testing.T) {
		_, err := repo.FindByNumber(ctx, uuid.New(), "RSV-20260315-0001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormReservationRepository_FindExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	repo := NewGormReservationRepository(newTestDB(t))

	tenantA := uuid.New()
	tenantB := uuid.New()

	activeOverdue := mustReservation(t, tenantA, "RSV-20260314-0001", "10").WithExpiration(past)
	require.NoError(t, repo.Save(ctx, activeOverdue))

	partialOverdue := mustReservation(t, tenantB, "RSV-20260314-0002", "10").WithExpiration(past)
	_, err := partialOverdue.PartialFulfill(decimal.NewFromInt(4))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, partialOverdue))

	fulfilledOverdue := mustReservation(t, tenantA, "RSV-20260314-0003", "10").WithExpiration(past)
	_, err = fulfilledOverdue.Fulfill()
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fulfilledOverdue))

	activeFuture := mustReservation(t, tenantA, "RSV-20260315-0001", "10").WithExpiration(future)
	require.NoError(t, repo.Save(ctx, activeFuture))

	activeNoExpiry := mustReservation(t, tenantA, "RSV-20260315-0002", "10")
	require.NoError(t, repo.Save(ctx, activeNoExpiry))

	expired, err := repo.FindExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)

	ids := []uuid.UUID{expired[0].ID, expired[1].ID}
	assert.Contains(t, ids, activeOverdue.ID)
	assert.Contains(t, ids, partialOverdue.ID)
}

func TestGormReservationRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("persists lifecycle transitions with a version bump", func(t *testing.T) {
		repo := NewGormReservationRepository(newTestDB(t))

		reservation := mustReservation(t, tenantID, "RSV-20260315-0001", "10")
		require.NoError(t, repo.Save(ctx, reservation))

		_, err := reservation.PartialFulfill(decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, reservation))

		reloaded, err := repo.FindByID(ctx, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.ReservationStatusPartiallyFulfilled, reloaded.Status)
		assert.True(t, reloaded.RemainingQuantity.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, 2, reloaded.Version)
	})

	t.Run("detects a concurrent writer via the version check", func(t *testing.T) {
		repo := NewGormReservationRepository(newTestDB(t))

		seeded := mustReservation(t, tenantID, "RSV-20260315-0002", "10")
		require.NoError(t, repo.Save(ctx, seeded))

		winner, err := repo.FindByID(ctx, seeded.ID)
		require.NoError(t, err)
		loser, err := repo.FindByID(ctx, seeded.ID)
		require.NoError(t, err)

		_, err = winner.PartialFulfill(decimal.NewFromInt(2))
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, winner))

		_, err = loser.Cancel("tester", "changed my mind")
		require.NoError(t, err)
		err = repo.SaveWithLock(ctx, loser)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}
