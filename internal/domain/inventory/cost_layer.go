package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostLayer is a quantity-plus-unit-cost batch originating from one incoming
// movement. Layers are not persisted separately: they are reconstructed on
// demand by replaying the movement log.
type CostLayer struct {
	MovementID        uuid.UUID
	DocumentNumber    string
	LayerDate         time.Time
	OriginalQuantity  decimal.Decimal
	RemainingQuantity decimal.Decimal
	UnitCost          decimal.Decimal
}

// LayerValue returns the value of the remaining quantity in the layer
func (l *CostLayer) LayerValue() decimal.Decimal {
	return l.RemainingQuantity.Mul(l.UnitCost)
}

// BuildCostLayers reconstructs cost layers from a movement history. Only
// cost-layer source movements (purchase, opening, production) that have not
// been reversed contribute. The result is ordered by movement date ascending,
// ties broken by creation time.
func BuildCostLayers(movements []StockMovement) []CostLayer {
	layers := make([]CostLayer, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		if !m.MovementType.IsCostLayerSource() {
			continue
		}
		if m.IsReversed {
			continue
		}
		layers = append(layers, CostLayer{
			MovementID:        m.ID,
			DocumentNumber:    m.DocumentNumber,
			LayerDate:         m.MovementDate,
			OriginalQuantity:  m.Quantity,
			RemainingQuantity: m.Quantity,
			UnitCost:          m.UnitCost,
		})
	}

	sort.Slice(layers, func(i, j int) bool {
		if !layers[i].LayerDate.Equal(layers[j].LayerDate) {
			return layers[i].LayerDate.Before(layers[j].LayerDate)
		}
		return layers[i].MovementID.String() < layers[j].MovementID.String()
	})

	return layers
}

// DepleteLayers consumes the given quantity from the oldest layers first and
// returns the layers that still hold quantity. Consumption beyond the total
// layer quantity leaves no layers.
func DepleteLayers(layers []CostLayer, consumed decimal.Decimal) []CostLayer {
	remaining := make([]CostLayer, 0, len(layers))
	for i := range layers {
		layer := layers[i]
		if consumed.IsPositive() {
			take := decimal.Min(consumed, layer.RemainingQuantity)
			layer.RemainingQuantity = layer.RemainingQuantity.Sub(take)
			consumed = consumed.Sub(take)
		}
		if layer.RemainingQuantity.IsPositive() {
			remaining = append(remaining, layer)
		}
	}
	return remaining
}

// TotalLayerQuantity returns the sum of remaining quantity across layers
func TotalLayerQuantity(layers []CostLayer) decimal.Decimal {
	total := decimal.Zero
	for i := range layers {
		total = total.Add(layers[i].RemainingQuantity)
	}
	return total
}

// TotalLayerValue returns the total value of remaining quantity across layers
func TotalLayerValue(layers []CostLayer) decimal.Decimal {
	total := decimal.Zero
	for i := range layers {
		total = total.Add(layers[i].LayerValue())
	}
	return total
}
