package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ValuationService answers costing questions by replaying the movement log.
// Cost layers are rebuilt on every request from non-reversed source
// movements, depleted oldest-first down to the current on-hand quantity.
type ValuationService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewValuationService creates a new ValuationService
func NewValuationService(scope TransactionScope, logger *zap.Logger) *ValuationService {
	return &ValuationService{
		scope:  scope,
		logger: logger,
	}
}

// currentLayers rebuilds the live cost layers for a product, optionally
// scoped to one warehouse
func (s *ValuationService) currentLayers(ctx context.Context, repos TransactionalRepositories, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) ([]inventory.CostLayer, error) {
	sources, err := repos.MovementRepo().FindCostLayerSources(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	layers := inventory.BuildCostLayers(sources)

	onHand, err := repos.StockRepo().SumQuantityByProduct(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	consumed := inventory.TotalLayerQuantity(layers).Sub(onHand)
	if consumed.IsPositive() {
		layers = inventory.DepleteLayers(layers, consumed)
	}
	return layers, nil
}

// GetCostLayers returns the live cost layers for a product
func (s *ValuationService) GetCostLayers(ctx context.Context, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) ([]inventory.CostLayer, error) {
	var layers []inventory.CostLayer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		layers, err = s.currentLayers(ctx, repos, tenantID, productID, warehouseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return layers, nil
}

// CalculateCOGS computes the cost of goods for a hypothetical outbound of
// the requested quantity under the given cost method. Insufficient layer
// coverage is reported as a shortfall on the result, not as an error.
func (s *ValuationService) CalculateCOGS(ctx context.Context, tenantID uuid.UUID, req COGSRequest) (*inventory.COGSResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var result *inventory.COGSResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		layers, err := s.currentLayers(ctx, repos, tenantID, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		result, err = inventory.Calculate(req.Method, req.Quantity, layers, req.StandardCost)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompareCostMethods computes the cost of the same hypothetical outbound
// under every cost method and reports the spread between the highest and
// lowest total.
func (s *ValuationService) CompareCostMethods(ctx context.Context, tenantID uuid.UUID, req CompareCostMethodsRequest) (*inventory.CostComparison, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var comparison *inventory.CostComparison
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		layers, err := s.currentLayers(ctx, repos, tenantID, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		comparison, err = inventory.CompareCostMethods(req.Quantity, layers, req.StandardCost)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comparison, nil
}

// StandardCostVariance compares the actual weighted average cost of the
// live layers against a standard cost.
func (s *ValuationService) StandardCostVariance(ctx context.Context, tenantID uuid.UUID, req CostVarianceRequest) (*inventory.CostVariance, error) {
	var variance *inventory.CostVariance
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		layers, err := s.currentLayers(ctx, repos, tenantID, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		variance, err = inventory.StandardCostVariance(layers, req.StandardCost)
		return err
	})
	if err != nil {
		return nil, err
	}
	return variance, nil
}

// WarehouseValuation values every product held in a warehouse under one
// cost method. FIFO and LIFO value remaining layers at their own unit
// costs and therefore agree on the total; the weighted average method
// agrees as well, so the method mainly selects the reported unit cost.
func (s *ValuationService) WarehouseValuation(ctx context.Context, tenantID, warehouseID uuid.UUID, method inventory.CostMethod) (*WarehouseValuationResponse, error) {
	switch method {
	case inventory.CostMethodFIFO, inventory.CostMethodLIFO, inventory.CostMethodWAC:
	default:
		return nil, shared.NewDomainError("INVALID_COST_METHOD", "Valuation supports fifo, lifo and wac")
	}

	response := &WarehouseValuationResponse{
		WarehouseID:   warehouseID,
		Method:        method,
		TotalQuantity: decimal.Zero,
		TotalValue:    decimal.Zero,
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		filter := shared.DefaultFilter()
		filter.PageSize = 1000
		stocks, err := repos.StockRepo().FindByWarehouse(ctx, tenantID, warehouseID, filter)
		if err != nil {
			return err
		}

		// One stock key per product/location/lot; fold to product level
		seen := make(map[uuid.UUID]bool)
		for i := range stocks {
			productID := stocks[i].ProductID
			if seen[productID] {
				continue
			}
			seen[productID] = true

			layers, err := s.currentLayers(ctx, repos, tenantID, productID, &warehouseID)
			if err != nil {
				return err
			}
			quantity := inventory.TotalLayerQuantity(layers)
			if !quantity.IsPositive() {
				continue
			}
			value := inventory.TotalLayerValue(layers).Round(4)

			line := ProductValuationResponse{
				ProductID:     productID,
				TotalQuantity: quantity,
				UnitCost:      value.Div(quantity).Round(4),
				TotalValue:    value,
			}
			response.Lines = append(response.Lines, line)
			response.TotalQuantity = response.TotalQuantity.Add(quantity)
			response.TotalValue = response.TotalValue.Add(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
