package inventory

// MovementType classifies a stock movement and determines its ledger
// direction, document number prefix and reversal counterpart.
type MovementType string

const (
	MovementTypePurchase           MovementType = "purchase"
	MovementTypeSales              MovementType = "sales"
	MovementTypeTransfer           MovementType = "transfer"
	MovementTypeProduction         MovementType = "production"
	MovementTypeConsumption        MovementType = "consumption"
	MovementTypeAdjustmentIncrease MovementType = "adjustment_increase"
	MovementTypeAdjustmentDecrease MovementType = "adjustment_decrease"
	MovementTypeOpening            MovementType = "opening"
	MovementTypeCounting           MovementType = "counting"
	MovementTypeDamage             MovementType = "damage"
	MovementTypeLoss               MovementType = "loss"
	MovementTypeFound              MovementType = "found"
	MovementTypePurchaseReturn     MovementType = "purchase_return"
	MovementTypeSalesReturn        MovementType = "sales_return"
)

// AllMovementTypes returns every defined movement type
func AllMovementTypes() []MovementType {
	return []MovementType{
		MovementTypePurchase,
		MovementTypeSales,
		MovementTypeTransfer,
		MovementTypeProduction,
		MovementTypeConsumption,
		MovementTypeAdjustmentIncrease,
		MovementTypeAdjustmentDecrease,
		MovementTypeOpening,
		MovementTypeCounting,
		MovementTypeDamage,
		MovementTypeLoss,
		MovementTypeFound,
		MovementTypePurchaseReturn,
		MovementTypeSalesReturn,
	}
}

// IsValid returns true for a defined movement type
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSales, MovementTypeTransfer,
		MovementTypeProduction, MovementTypeConsumption,
		MovementTypeAdjustmentIncrease, MovementTypeAdjustmentDecrease,
		MovementTypeOpening, MovementTypeCounting, MovementTypeDamage,
		MovementTypeLoss, MovementTypeFound,
		MovementTypePurchaseReturn, MovementTypeSalesReturn:
		return true
	}
	return false
}

// DocumentPrefix returns the 3-letter document number prefix for the type
func (t MovementType) DocumentPrefix() string {
	switch t {
	case MovementTypePurchase:
		return "PUR"
	case MovementTypeSales:
		return "SAL"
	case MovementTypeTransfer:
		return "TRF"
	case MovementTypeProduction:
		return "PRD"
	case MovementTypeConsumption:
		return "CON"
	case MovementTypeAdjustmentIncrease:
		return "ADI"
	case MovementTypeAdjustmentDecrease:
		return "ADD"
	case MovementTypeOpening:
		return "OPN"
	case MovementTypeCounting:
		return "CNT"
	case MovementTypeDamage:
		return "DMG"
	case MovementTypeLoss:
		return "LOS"
	case MovementTypeFound:
		return "FND"
	case MovementTypePurchaseReturn:
		return "PRT"
	case MovementTypeSalesReturn:
		return "SRT"
	}
	return "MOV"
}

// Direction returns +1 for movements that add stock, -1 for movements that
// remove stock, and 0 for movements whose ledger effect is computed elsewhere
// (transfers move between locations, counting records a signed delta).
func (t MovementType) Direction() int {
	switch t {
	case MovementTypePurchase, MovementTypeProduction,
		MovementTypeAdjustmentIncrease, MovementTypeOpening,
		MovementTypeFound, MovementTypeSalesReturn:
		return 1
	case MovementTypeSales, MovementTypeConsumption,
		MovementTypeAdjustmentDecrease, MovementTypeDamage,
		MovementTypeLoss, MovementTypePurchaseReturn:
		return -1
	case MovementTypeTransfer, MovementTypeCounting:
		return 0
	}
	return 0
}

// IsIncoming returns true for movements that add stock on hand
func (t MovementType) IsIncoming() bool {
	return t.Direction() > 0
}

// IsOutgoing returns true for movements that remove stock on hand
func (t MovementType) IsOutgoing() bool {
	return t.Direction() < 0
}

// ReversalType returns the movement type used to reverse a movement of this
// type. Types without a dedicated counterpart reverse as an adjustment
// decrease. The ledger inverse itself is derived from the original movement's
// direction, not from the reversal type.
func (t MovementType) ReversalType() MovementType {
	switch t {
	case MovementTypePurchase:
		return MovementTypePurchaseReturn
	case MovementTypePurchaseReturn:
		return MovementTypePurchase
	case MovementTypeSales:
		return MovementTypeSalesReturn
	case MovementTypeSalesReturn:
		return MovementTypeSales
	case MovementTypeAdjustmentIncrease:
		return MovementTypeAdjustmentDecrease
	case MovementTypeAdjustmentDecrease:
		return MovementTypeAdjustmentIncrease
	}
	return MovementTypeAdjustmentDecrease
}

// IsCostLayerSource returns true for movement types that create cost layers
// used in valuation
func (t MovementType) IsCostLayerSource() bool {
	switch t {
	case MovementTypePurchase, MovementTypeOpening, MovementTypeProduction:
		return true
	}
	return false
}
