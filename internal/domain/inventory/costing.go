package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// CostMethod identifies a cost-of-goods valuation method
type CostMethod string

const (
	CostMethodFIFO     CostMethod = "FIFO"
	CostMethodLIFO     CostMethod = "LIFO"
	CostMethodWAC      CostMethod = "WAC"
	CostMethodStandard CostMethod = "STANDARD"
)

// String returns the string representation of CostMethod
func (m CostMethod) String() string {
	return string(m)
}

// IsValid returns true for a defined cost method
func (m CostMethod) IsValid() bool {
	switch m {
	case CostMethodFIFO, CostMethodLIFO, CostMethodWAC, CostMethodStandard:
		return true
	}
	return false
}

// LayerConsumption records how much was taken from one cost layer
type LayerConsumption struct {
	Layer            CostLayer       `json:"layer"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity"`
	Cost             decimal.Decimal `json:"cost"`
}

// COGSResult is the outcome of one cost-of-goods calculation. When the layers
// cannot cover the requested quantity the calculation does not fail: it
// returns the cost of what was consumable together with a shortfall note.
// Callers rely on receiving a partial valuation rather than an error.
type COGSResult struct {
	Method            CostMethod         `json:"method"`
	RequestedQuantity decimal.Decimal    `json:"requested_quantity"`
	ConsumedQuantity  decimal.Decimal    `json:"consumed_quantity"`
	ShortfallQuantity decimal.Decimal    `json:"shortfall_quantity"`
	TotalCost         decimal.Decimal    `json:"total_cost"`
	UnitCost          decimal.Decimal    `json:"unit_cost"`
	Consumptions      []LayerConsumption `json:"consumptions,omitempty"`
	Notes             []string           `json:"notes,omitempty"`
}

// FullySatisfied returns true if the requested quantity was fully covered
func (r *COGSResult) FullySatisfied() bool {
	return r.ShortfallQuantity.IsZero()
}

// consumeOrdered depletes layers in the order given by less until the
// requested quantity is satisfied or the layers are exhausted. FIFO and LIFO
// differ only in the comparator.
func consumeOrdered(method CostMethod, requestedQuantity decimal.Decimal, layers []CostLayer, less func(a, b *CostLayer) bool) *COGSResult {
	ordered := make([]CostLayer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(&ordered[i], &ordered[j])
	})

	result := &COGSResult{
		Method:            method,
		RequestedQuantity: requestedQuantity,
		ConsumedQuantity:  decimal.Zero,
		TotalCost:         decimal.Zero,
		Consumptions:      make([]LayerConsumption, 0),
	}

	remaining := requestedQuantity
	for i := range ordered {
		if remaining.IsZero() {
			break
		}
		layer := &ordered[i]
		if layer.RemainingQuantity.LessThanOrEqual(decimal.Zero) {
			continue
		}

		consumed := decimal.Min(remaining, layer.RemainingQuantity)
		cost := consumed.Mul(layer.UnitCost)

		result.Consumptions = append(result.Consumptions, LayerConsumption{
			Layer:            *layer,
			ConsumedQuantity: consumed,
			Cost:             cost,
		})
		result.ConsumedQuantity = result.ConsumedQuantity.Add(consumed)
		result.TotalCost = result.TotalCost.Add(cost)
		remaining = remaining.Sub(consumed)
	}

	result.ShortfallQuantity = remaining
	if result.ConsumedQuantity.GreaterThan(decimal.Zero) {
		result.UnitCost = result.TotalCost.Div(result.ConsumedQuantity).Round(4)
	}
	if remaining.GreaterThan(decimal.Zero) {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"insufficient cost layers: requested %s, consumed %s, shortfall %s",
			requestedQuantity.String(), result.ConsumedQuantity.String(), remaining.String()))
	}

	return result
}

// CalculateFIFO computes cost of goods consuming the oldest layers first
func CalculateFIFO(requestedQuantity decimal.Decimal, layers []CostLayer) (*COGSResult, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	return consumeOrdered(CostMethodFIFO, requestedQuantity, layers, func(a, b *CostLayer) bool {
		return a.LayerDate.Before(b.LayerDate)
	}), nil
}

// CalculateLIFO computes cost of goods consuming the newest layers first
func CalculateLIFO(requestedQuantity decimal.Decimal, layers []CostLayer) (*COGSResult, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	return consumeOrdered(CostMethodLIFO, requestedQuantity, layers, func(a, b *CostLayer) bool {
		return b.LayerDate.Before(a.LayerDate)
	}), nil
}

// CalculateWAC computes cost of goods at the weighted average unit cost over
// all layers with remaining quantity. WAC has no layer ordering: the unit
// cost applies to the full requested quantity, capped by what the layers can
// physically cover.
func CalculateWAC(requestedQuantity decimal.Decimal, layers []CostLayer) (*COGSResult, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	result := &COGSResult{
		Method:            CostMethodWAC,
		RequestedQuantity: requestedQuantity,
		ConsumedQuantity:  decimal.Zero,
		TotalCost:         decimal.Zero,
	}

	totalQuantity := decimal.Zero
	totalValue := decimal.Zero
	for i := range layers {
		if layers[i].RemainingQuantity.GreaterThan(decimal.Zero) {
			totalQuantity = totalQuantity.Add(layers[i].RemainingQuantity)
			totalValue = totalValue.Add(layers[i].LayerValue())
		}
	}

	if totalQuantity.IsZero() {
		result.ShortfallQuantity = requestedQuantity
		result.Notes = append(result.Notes, fmt.Sprintf(
			"insufficient cost layers: requested %s, consumed 0, shortfall %s",
			requestedQuantity.String(), requestedQuantity.String()))
		return result, nil
	}

	result.UnitCost = totalValue.Div(totalQuantity).Round(4)
	result.ConsumedQuantity = decimal.Min(requestedQuantity, totalQuantity)
	result.TotalCost = result.ConsumedQuantity.Mul(result.UnitCost).Round(4)
	result.ShortfallQuantity = requestedQuantity.Sub(result.ConsumedQuantity)
	if result.ShortfallQuantity.GreaterThan(decimal.Zero) {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"insufficient cost layers: requested %s, consumed %s, shortfall %s",
			requestedQuantity.String(), result.ConsumedQuantity.String(), result.ShortfallQuantity.String()))
	}

	return result, nil
}

// CalculateStandard computes cost of goods at a fixed standard unit cost
func CalculateStandard(requestedQuantity, standardCost decimal.Decimal) (*COGSResult, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if standardCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Standard cost cannot be negative")
	}

	return &COGSResult{
		Method:            CostMethodStandard,
		RequestedQuantity: requestedQuantity,
		ConsumedQuantity:  requestedQuantity,
		ShortfallQuantity: decimal.Zero,
		UnitCost:          standardCost,
		TotalCost:         requestedQuantity.Mul(standardCost),
	}, nil
}

// Calculate dispatches to the calculation for the given method. The standard
// method requires a non-nil standard cost.
func Calculate(method CostMethod, requestedQuantity decimal.Decimal, layers []CostLayer, standardCost *decimal.Decimal) (*COGSResult, error) {
	switch method {
	case CostMethodFIFO:
		return CalculateFIFO(requestedQuantity, layers)
	case CostMethodLIFO:
		return CalculateLIFO(requestedQuantity, layers)
	case CostMethodWAC:
		return CalculateWAC(requestedQuantity, layers)
	case CostMethodStandard:
		if standardCost == nil {
			return nil, shared.NewDomainError("MISSING_STANDARD_COST", "Standard cost is required for standard costing")
		}
		return CalculateStandard(requestedQuantity, *standardCost)
	}
	return nil, shared.NewDomainError("INVALID_COST_METHOD", "Unknown cost method")
}

// CostComparison reports cost of goods under every applicable method for the
// same requested quantity
type CostComparison struct {
	RequestedQuantity decimal.Decimal            `json:"requested_quantity"`
	Results           map[CostMethod]*COGSResult `json:"results"`
	HighestMethod     CostMethod                 `json:"highest_method"`
	LowestMethod      CostMethod                 `json:"lowest_method"`
	Spread            decimal.Decimal            `json:"spread"`
}

// CompareCostMethods runs FIFO, LIFO and WAC over the same layers, plus
// standard costing when a standard cost is provided, and reports the spread
// between the highest and lowest cost of goods.
func CompareCostMethods(requestedQuantity decimal.Decimal, layers []CostLayer, standardCost *decimal.Decimal) (*CostComparison, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	methods := []CostMethod{CostMethodFIFO, CostMethodLIFO, CostMethodWAC}
	if standardCost != nil {
		methods = append(methods, CostMethodStandard)
	}

	comparison := &CostComparison{
		RequestedQuantity: requestedQuantity,
		Results:           make(map[CostMethod]*COGSResult, len(methods)),
	}

	for _, method := range methods {
		result, err := Calculate(method, requestedQuantity, layers, standardCost)
		if err != nil {
			return nil, err
		}
		comparison.Results[method] = result

		if comparison.HighestMethod == "" || result.TotalCost.GreaterThan(comparison.Results[comparison.HighestMethod].TotalCost) {
			comparison.HighestMethod = method
		}
		if comparison.LowestMethod == "" || result.TotalCost.LessThan(comparison.Results[comparison.LowestMethod].TotalCost) {
			comparison.LowestMethod = method
		}
	}

	comparison.Spread = comparison.Results[comparison.HighestMethod].TotalCost.
		Sub(comparison.Results[comparison.LowestMethod].TotalCost)

	return comparison, nil
}

// VarianceClassification labels a standard cost variance
type VarianceClassification string

const (
	VarianceFavorable   VarianceClassification = "favorable"
	VarianceUnfavorable VarianceClassification = "unfavorable"
	VarianceNone        VarianceClassification = "none"
)

// CostVariance is the difference between the actual weighted average cost and
// a standard cost
type CostVariance struct {
	ActualUnitCost   decimal.Decimal        `json:"actual_unit_cost"`
	StandardUnitCost decimal.Decimal        `json:"standard_unit_cost"`
	Variance         decimal.Decimal        `json:"variance"`
	Percentage       decimal.Decimal        `json:"percentage"`
	Classification   VarianceClassification `json:"classification"`
}

// StandardCostVariance compares the weighted average cost over the layers
// against a standard cost. A negative variance is favorable (actual cost
// below standard), a positive one unfavorable.
func StandardCostVariance(layers []CostLayer, standardCost decimal.Decimal) (*CostVariance, error) {
	if standardCost.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_COST", "Standard cost must be positive")
	}

	totalQuantity := TotalLayerQuantity(layers)
	if totalQuantity.IsZero() {
		return nil, shared.NewDomainError("NO_COST_LAYERS", "No cost layers with remaining quantity")
	}

	actual := TotalLayerValue(layers).Div(totalQuantity).Round(4)
	variance := actual.Sub(standardCost)
	percentage := variance.Div(standardCost).Mul(decimal.NewFromInt(100)).Round(4)

	classification := VarianceNone
	switch {
	case variance.IsNegative():
		classification = VarianceFavorable
	case variance.IsPositive():
		classification = VarianceUnfavorable
	}

	return &CostVariance{
		ActualUnitCost:   actual,
		StandardUnitCost: standardCost,
		Variance:         variance,
		Percentage:       percentage,
		Classification:   classification,
	}, nil
}
