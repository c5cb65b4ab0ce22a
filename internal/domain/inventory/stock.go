package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Stock represents the on-hand quantity for one ledger key.
// It is the aggregate root for all quantity and reservation mutations.
// The composite identifier is tenant + product + warehouse + optional
// location, lot number and serial number.
type Stock struct {
	shared.BaseAggregateRoot
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:1"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:2"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:3"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:4"` // uuid.Nil for warehouse-level records
	LotNumber        string          `gorm:"size:100;uniqueIndex:idx_stock_key,priority:5"`
	SerialNumber     string          `gorm:"size:100;uniqueIndex:idx_stock_key,priority:6"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinQuantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Low-stock alert threshold
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "stocks"
}

// StockKey identifies one Stock row within a tenant. A nil LocationID means
// the warehouse-level record; it is stored as uuid.Nil so the key tuple
// stays unique.
type StockKey struct {
	ProductID    uuid.UUID
	WarehouseID  uuid.UUID
	LocationID   *uuid.UUID
	LotNumber    string
	SerialNumber string
}

// StoredLocationID returns the location column value for this key
func (k StockKey) StoredLocationID() uuid.UUID {
	if k.LocationID == nil {
		return uuid.Nil
	}
	return *k.LocationID
}

// NewStock creates a new stock record for a ledger key with zero quantities
func NewStock(tenantID uuid.UUID, key StockKey) (*Stock, error) {
	if key.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if key.WarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	stock := &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		ProductID:         key.ProductID,
		WarehouseID:       key.WarehouseID,
		LocationID:        key.StoredLocationID(),
		LotNumber:         key.LotNumber,
		SerialNumber:      key.SerialNumber,
		Quantity:          decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		MinQuantity:       decimal.Zero,
	}

	return stock, nil
}

// Key returns the ledger key of this stock record
func (s *Stock) Key() StockKey {
	key := StockKey{
		ProductID:    s.ProductID,
		WarehouseID:  s.WarehouseID,
		LotNumber:    s.LotNumber,
		SerialNumber: s.SerialNumber,
	}
	if s.LocationID != uuid.Nil {
		locationID := s.LocationID
		key.LocationID = &locationID
	}
	return key
}

// AvailableQuantity returns the quantity not held by reservations
func (s *Stock) AvailableQuantity() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// Increase adds quantity to the stock on hand
func (s *Stock) Increase(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.Quantity = s.Quantity.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockIncreasedEvent(s, quantity))

	return nil
}

// Decrease removes quantity from the stock on hand.
// Fails without mutation when the result would drop below zero or below the
// reserved quantity; reserved stock must be released or fulfilled first.
func (s *Stock) Decrease(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Quantity.Sub(quantity).LessThan(s.ReservedQuantity) {
		return shared.ErrInsufficientStock
	}

	s.Quantity = s.Quantity.Sub(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockDecreasedEvent(s, quantity))

	if s.IsBelowMinimum() {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}

	return nil
}

// Reserve holds quantity against future outbound movements.
// Fails without mutation when available quantity is insufficient.
func (s *Stock) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.AvailableQuantity().LessThan(quantity) {
		return shared.ErrInsufficientAvailable
	}

	s.ReservedQuantity = s.ReservedQuantity.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockReservedEvent(s, quantity))

	return nil
}

// ReleaseReservation returns reserved quantity to the available pool.
// The release is clamped so reserved quantity never goes negative.
func (s *Stock) ReleaseReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	released := decimal.Min(quantity, s.ReservedQuantity)
	s.ReservedQuantity = s.ReservedQuantity.Sub(released)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewReservationReleasedEvent(s, released))

	return nil
}

// SetQuantity adjusts the on-hand quantity to an absolute value, as measured
// during a physical count. It returns the signed delta from the previous
// quantity; the caller records that delta as a counting movement.
func (s *Stock) SetQuantity(newQuantity decimal.Decimal) (decimal.Decimal, error) {
	if newQuantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if newQuantity.LessThan(s.ReservedQuantity) {
		return decimal.Zero, shared.NewDomainError("HAS_RESERVED_STOCK", "Counted quantity cannot be below reserved quantity")
	}

	oldQuantity := s.Quantity
	delta := newQuantity.Sub(oldQuantity)

	s.Quantity = newQuantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockCountedEvent(s, oldQuantity, newQuantity, delta))

	if s.IsBelowMinimum() {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}

	return delta, nil
}

// SetMinQuantity sets the low-stock alert threshold
func (s *Stock) SetMinQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
	}

	s.MinQuantity = quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// IsBelowMinimum returns true if on-hand quantity is below the alert threshold
func (s *Stock) IsBelowMinimum() bool {
	return s.MinQuantity.GreaterThan(decimal.Zero) && s.Quantity.LessThan(s.MinQuantity)
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (s *Stock) CanFulfill(quantity decimal.Decimal) bool {
	return s.AvailableQuantity().GreaterThanOrEqual(quantity)
}
