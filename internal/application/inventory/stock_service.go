package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockService exposes read access to the stock ledger plus threshold
// maintenance. All quantity changes go through MovementService.
type StockService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(scope TransactionScope, logger *zap.Logger) *StockService {
	return &StockService{
		scope:  scope,
		logger: logger,
	}
}

// GetStock retrieves a stock record by ID
func (s *StockService) GetStock(ctx context.Context, tenantID, stockID uuid.UUID) (*StockResponse, error) {
	var response StockResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stock, err := repos.StockRepo().FindByIDForTenant(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		response = ToStockResponse(stock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetStockByKey retrieves the stock record for a ledger key
func (s *StockService) GetStockByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*StockResponse, error) {
	var response StockResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stock, err := repos.StockRepo().FindByKey(ctx, tenantID, key)
		if err != nil {
			return err
		}
		response = ToStockResponse(stock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByWarehouse retrieves stock records in a warehouse
func (s *StockService) ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]StockResponse, error) {
	return s.list(ctx, filter, func(repos TransactionalRepositories, f shared.Filter) ([]inventory.Stock, error) {
		return repos.StockRepo().FindByWarehouse(ctx, tenantID, warehouseID, f)
	})
}

// ListByProduct retrieves stock records for a product across warehouses
func (s *StockService) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]StockResponse, error) {
	return s.list(ctx, filter, func(repos TransactionalRepositories, f shared.Filter) ([]inventory.Stock, error) {
		return repos.StockRepo().FindByProduct(ctx, tenantID, productID, f)
	})
}

// ListBelowMinimum retrieves stock records below their alert threshold
func (s *StockService) ListBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockResponse, error) {
	return s.list(ctx, filter, func(repos TransactionalRepositories, f shared.Filter) ([]inventory.Stock, error) {
		return repos.StockRepo().FindBelowMinimum(ctx, tenantID, f)
	})
}

func (s *StockService) list(ctx context.Context, filter shared.Filter, find func(TransactionalRepositories, shared.Filter) ([]inventory.Stock, error)) ([]StockResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var responses []StockResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stocks, err := find(repos, filter)
		if err != nil {
			return err
		}
		responses = ToStockResponses(stocks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// SetMinimumQuantity updates the low-stock alert threshold of a stock record
func (s *StockService) SetMinimumQuantity(ctx context.Context, tenantID, stockID uuid.UUID, minQuantity decimal.Decimal) (*StockResponse, error) {
	var response StockResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stock, err := repos.StockRepo().FindByIDForTenant(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		if err := stock.SetMinQuantity(minQuantity); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
			return err
		}
		response = ToStockResponse(stock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// PlanLotConsumption orders the supplied candidate lots per the requested
// strategy and plans sequential depletion of the requested quantity. Shortfall
// is reported in the plan, not returned as an error.
func (s *StockService) PlanLotConsumption(ctx context.Context, req PlanLotConsumptionRequest) (*inventory.LotConsumptionPlan, error) {
	lots := make([]inventory.LotBatch, 0, len(req.Lots))
	for _, l := range req.Lots {
		lots = append(lots, inventory.LotBatch{
			ID:                l.ID,
			LotNumber:         l.LotNumber,
			Status:            inventory.LotStatus(l.Status),
			RemainingQuantity: l.RemainingQuantity,
			UnitCost:          l.UnitCost,
			ExpiryDate:        l.ExpiryDate,
			CreatedAt:         l.CreatedAt,
		})
	}

	strategy := inventory.LotConsumptionStrategy(strings.ToUpper(req.Strategy))
	return inventory.PlanLotConsumption(strategy, req.RequestedQuantity, lots)
}
