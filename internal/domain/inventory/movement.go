package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StockMovement is an immutable ledger entry for one stock quantity change.
// Once created, movements are never modified except to record their reversal
// exactly once. Corrections are made by creating a reversal movement.
type StockMovement struct {
	shared.BaseEntity
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_tenant_date,priority:1;uniqueIndex:idx_movement_doc,priority:1"`
	DocumentNumber       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_movement_doc,priority:2"`
	MovementDate         time.Time       `gorm:"not null;index:idx_movement_tenant_date,priority:2"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product"`
	WarehouseID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_warehouse"`
	FromLocationID       *uuid.UUID      `gorm:"type:uuid"`
	ToLocationID         *uuid.UUID      `gorm:"type:uuid"`
	MovementType         MovementType    `gorm:"type:varchar(30);not null;index:idx_movement_type"`
	Quantity             decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Always positive, direction determined by type
	UnitCost             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LotNumber            string          `gorm:"type:varchar(100)"`
	SerialNumber         string          `gorm:"type:varchar(100)"`
	ReferenceType        string          `gorm:"type:varchar(30)"` // Type of source document
	ReferenceID          string          `gorm:"type:varchar(50)"` // ID of source document
	Reason               string          `gorm:"type:varchar(255)"`
	IsReversed           bool            `gorm:"not null;default:false"`
	ReversedByMovementID *uuid.UUID      `gorm:"type:uuid"` // Movement that reversed this one
	ReversalOfMovementID *uuid.UUID      `gorm:"type:uuid"` // Movement this one reverses
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement record
func NewStockMovement(
	tenantID uuid.UUID,
	documentNumber string,
	movementType MovementType,
	productID uuid.UUID,
	warehouseID uuid.UUID,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	m := &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		DocumentNumber: documentNumber,
		MovementDate:   time.Now(),
		ProductID:      productID,
		WarehouseID:    warehouseID,
		MovementType:   movementType,
		Quantity:       quantity,
		UnitCost:       unitCost,
		TotalCost:      quantity.Mul(unitCost),
	}

	return m, nil
}

// WithMovementDate sets the movement date
func (m *StockMovement) WithMovementDate(date time.Time) *StockMovement {
	m.MovementDate = date
	return m
}

// WithFromLocation sets the source location
func (m *StockMovement) WithFromLocation(locationID uuid.UUID) *StockMovement {
	m.FromLocationID = &locationID
	return m
}

// WithToLocation sets the destination location
func (m *StockMovement) WithToLocation(locationID uuid.UUID) *StockMovement {
	m.ToLocationID = &locationID
	return m
}

// WithLotNumber sets the lot number
func (m *StockMovement) WithLotNumber(lotNumber string) *StockMovement {
	m.LotNumber = lotNumber
	return m
}

// WithSerialNumber sets the serial number
func (m *StockMovement) WithSerialNumber(serialNumber string) *StockMovement {
	m.SerialNumber = serialNumber
	return m
}

// WithReference sets the source document reference
func (m *StockMovement) WithReference(referenceType, referenceID string) *StockMovement {
	m.ReferenceType = referenceType
	m.ReferenceID = referenceID
	return m
}

// WithReason sets the reason
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// WithReversalOf links this movement as the reversal of another movement
func (m *StockMovement) WithReversalOf(movementID uuid.UUID) *StockMovement {
	m.ReversalOfMovementID = &movementID
	return m
}

// MarkReversed records that this movement has been reversed by another
// movement. A movement may be reversed at most once.
func (m *StockMovement) MarkReversed(reversedBy uuid.UUID) error {
	if m.IsReversed {
		return shared.ErrAlreadyReversed
	}
	if reversedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_MOVEMENT", "Reversing movement ID cannot be empty")
	}

	m.IsReversed = true
	m.ReversedByMovementID = &reversedBy
	m.UpdatedAt = time.Now()

	return nil
}

// IsReversal returns true if this movement reverses another movement
func (m *StockMovement) IsReversal() bool {
	return m.ReversalOfMovementID != nil
}

// SignedQuantity returns the quantity with sign based on movement direction
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.MovementType.IsOutgoing() {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// SignedTotalCost returns the total cost with sign based on movement direction
func (m *StockMovement) SignedTotalCost() decimal.Decimal {
	if m.MovementType.IsOutgoing() {
		return m.TotalCost.Neg()
	}
	return m.TotalCost
}

// StockKey returns the ledger key this movement touches. For transfers this
// is the destination side; the source side uses FromLocationID.
func (m *StockMovement) StockKey() StockKey {
	return StockKey{
		ProductID:    m.ProductID,
		WarehouseID:  m.WarehouseID,
		LocationID:   m.ToLocationID,
		LotNumber:    m.LotNumber,
		SerialNumber: m.SerialNumber,
	}
}
