package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// LotStatus represents the quality status of a lot batch
type LotStatus string

const (
	LotStatusApproved    LotStatus = "approved"
	LotStatusQuarantined LotStatus = "quarantined"
)

// LotConsumptionStrategy determines the order in which lots are depleted
type LotConsumptionStrategy string

const (
	// LotStrategyFIFO consumes lots oldest-first by creation date
	LotStrategyFIFO LotConsumptionStrategy = "FIFO"
	// LotStrategyFEFO consumes lots by earliest expiry, lots without an
	// expiry date last
	LotStrategyFEFO LotConsumptionStrategy = "FEFO"
)

// IsValid returns true for a defined strategy
func (s LotConsumptionStrategy) IsValid() bool {
	switch s {
	case LotStrategyFIFO, LotStrategyFEFO:
		return true
	}
	return false
}

// String returns the string representation
func (s LotConsumptionStrategy) String() string {
	return string(s)
}

// LotBatch is one lot of stock eligible for outbound consumption
type LotBatch struct {
	ID                uuid.UUID
	LotNumber         string
	Status            LotStatus
	RemainingQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	ExpiryDate        *time.Time
	CreatedAt         time.Time
}

// IsEligible returns true if the lot can be consumed
func (l *LotBatch) IsEligible() bool {
	return l.Status == LotStatusApproved && l.RemainingQuantity.GreaterThan(decimal.Zero)
}

// LotConsumption records how much is taken from one lot
type LotConsumption struct {
	LotID            uuid.UUID       `json:"lot_id"`
	LotNumber        string          `json:"lot_number"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Cost             decimal.Decimal `json:"cost"`
	FullyConsumed    bool            `json:"fully_consumed"`
}

// LotConsumptionPlan is the outcome of planning lot depletion. An unsatisfied
// remainder is reported in ShortfallQuantity with a note, not returned as an
// error.
type LotConsumptionPlan struct {
	Strategy          LotConsumptionStrategy `json:"strategy"`
	RequestedQuantity decimal.Decimal        `json:"requested_quantity"`
	ConsumedQuantity  decimal.Decimal        `json:"consumed_quantity"`
	ShortfallQuantity decimal.Decimal        `json:"shortfall_quantity"`
	TotalCost         decimal.Decimal        `json:"total_cost"`
	Consumptions      []LotConsumption       `json:"consumptions"`
	Notes             []string               `json:"notes,omitempty"`
}

// FullySatisfied returns true if the requested quantity was fully covered
func (p *LotConsumptionPlan) FullySatisfied() bool {
	return p.ShortfallQuantity.IsZero()
}

// PlanLotConsumption selects eligible lots (approved, remaining quantity
// above zero), orders them per the strategy and consumes sequentially until
// the requested quantity is satisfied or the lots are exhausted.
func PlanLotConsumption(strategy LotConsumptionStrategy, requestedQuantity decimal.Decimal, lots []LotBatch) (*LotConsumptionPlan, error) {
	if !strategy.IsValid() {
		return nil, shared.NewDomainError("INVALID_STRATEGY", "Unknown lot consumption strategy")
	}
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	eligible := make([]LotBatch, 0, len(lots))
	for i := range lots {
		if lots[i].IsEligible() {
			eligible = append(eligible, lots[i])
		}
	}

	switch strategy {
	case LotStrategyFIFO:
		sort.SliceStable(eligible, func(i, j int) bool {
			return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
		})
	case LotStrategyFEFO:
		sort.SliceStable(eligible, func(i, j int) bool {
			// Lots with an expiry date come before lots without one
			if eligible[i].ExpiryDate != nil && eligible[j].ExpiryDate != nil {
				if !eligible[i].ExpiryDate.Equal(*eligible[j].ExpiryDate) {
					return eligible[i].ExpiryDate.Before(*eligible[j].ExpiryDate)
				}
			} else if eligible[i].ExpiryDate != nil {
				return true
			} else if eligible[j].ExpiryDate != nil {
				return false
			}
			return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
		})
	}

	plan := &LotConsumptionPlan{
		Strategy:          strategy,
		RequestedQuantity: requestedQuantity,
		ConsumedQuantity:  decimal.Zero,
		TotalCost:         decimal.Zero,
		Consumptions:      make([]LotConsumption, 0),
	}

	remaining := requestedQuantity
	for i := range eligible {
		if remaining.IsZero() {
			break
		}
		lot := &eligible[i]

		consumed := decimal.Min(remaining, lot.RemainingQuantity)
		cost := consumed.Mul(lot.UnitCost)

		plan.Consumptions = append(plan.Consumptions, LotConsumption{
			LotID:            lot.ID,
			LotNumber:        lot.LotNumber,
			ConsumedQuantity: consumed,
			UnitCost:         lot.UnitCost,
			Cost:             cost,
			FullyConsumed:    consumed.Equal(lot.RemainingQuantity),
		})
		plan.ConsumedQuantity = plan.ConsumedQuantity.Add(consumed)
		plan.TotalCost = plan.TotalCost.Add(cost)
		remaining = remaining.Sub(consumed)
	}

	plan.ShortfallQuantity = remaining
	if remaining.GreaterThan(decimal.Zero) {
		plan.Notes = append(plan.Notes, fmt.Sprintf(
			"insufficient lot quantity: requested %s, planned %s, shortfall %s",
			requestedQuantity.String(), plan.ConsumedQuantity.String(), remaining.String()))
	}

	return plan, nil
}
