package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	key := inventory.StockKey{ProductID: uuid.New(), WarehouseID: uuid.New()}

	t.Run("commits when the function succeeds", func(t *testing.T) {
		db := newTestDB(t)
		scope := NewGormTransactionScope(db)

		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			stock, err := repos.StockRepo().GetOrCreate(ctx, tenantID, key)
			if err != nil {
				return err
			}
			if err := stock.Increase(decimal.NewFromInt(10)); err != nil {
				return err
			}
			return repos.StockRepo().SaveWithLock(ctx, stock)
		})
		require.NoError(t, err)

		stock, err := NewGormStockRepository(db).FindByKey(ctx, tenantID, key)
		require.NoError(t, err)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		db := newTestDB(t)
		scope := NewGormTransactionScope(db)
		boom := errors.New("insufficient funds for this adventure")

		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if _, err := repos.StockRepo().GetOrCreate(ctx, tenantID, key); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormStockRepository(db).FindByKey(ctx, tenantID, key)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
