package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// ReservationStatus represents the lifecycle state of a stock reservation
type ReservationStatus string

const (
	ReservationStatusActive             ReservationStatus = "active"
	ReservationStatusPartiallyFulfilled ReservationStatus = "partially_fulfilled"
	ReservationStatusFulfilled          ReservationStatus = "fulfilled"
	ReservationStatusCancelled          ReservationStatus = "cancelled"
	ReservationStatusExpired            ReservationStatus = "expired"
)

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that accept no further transitions
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusFulfilled, ReservationStatusCancelled, ReservationStatusExpired:
		return true
	}
	return false
}

// StockReservation is a soft allocation of available stock pending a future
// outbound movement. It holds reserved quantity on the stock record without
// changing the quantity on hand.
type StockReservation struct {
	shared.BaseAggregateRoot
	TenantID          uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_reservation_number,priority:1"`
	ReservationNumber string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_reservation_number,priority:2"`
	ProductID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservation_product"`
	WarehouseID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservation_warehouse"`
	LocationID        *uuid.UUID        `gorm:"type:uuid"`
	LotNumber         string            `gorm:"type:varchar(100)"`
	SerialNumber      string            `gorm:"type:varchar(100)"`
	Quantity          decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	ReservationType   string            `gorm:"type:varchar(30);not null"` // e.g. sales_order, production_order
	Status            ReservationStatus `gorm:"type:varchar(30);not null;index:idx_reservation_status"`
	ExpirationDate    *time.Time        `gorm:"index:idx_reservation_expiry"`
	ReferenceType     string            `gorm:"type:varchar(30)"`
	ReferenceID       string            `gorm:"type:varchar(50)"`
	CancelledBy       string            `gorm:"type:varchar(100)"`
	CancelReason      string            `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// NewStockReservation creates a new active reservation
func NewStockReservation(
	tenantID uuid.UUID,
	reservationNumber string,
	productID uuid.UUID,
	warehouseID uuid.UUID,
	quantity decimal.Decimal,
	reservationType string,
) (*StockReservation, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if reservationNumber == "" {
		return nil, shared.NewDomainError("INVALID_RESERVATION_NUMBER", "Reservation number cannot be empty")
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
	if reservationType == "" {
		return nil, shared.NewDomainError("INVALID_RESERVATION_TYPE", "Reservation type cannot be empty")
	}

	r := &StockReservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		ReservationNumber: reservationNumber,
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		ReservationType:   reservationType,
		Status:            ReservationStatusActive,
	}

	r.AddDomainEvent(NewReservationCreatedEvent(r))

	return r, nil
}

// WithLocation sets the location for the reservation
func (r *StockReservation) WithLocation(locationID uuid.UUID) *StockReservation {
	r.LocationID = &locationID
	return r
}

// WithLotNumber sets the lot number
func (r *StockReservation) WithLotNumber(lotNumber string) *StockReservation {
	r.LotNumber = lotNumber
	return r
}

// WithSerialNumber sets the serial number
func (r *StockReservation) WithSerialNumber(serialNumber string) *StockReservation {
	r.SerialNumber = serialNumber
	return r
}

// WithExpiration sets the expiration date
func (r *StockReservation) WithExpiration(expireAt time.Time) *StockReservation {
	r.ExpirationDate = &expireAt
	return r
}

// WithReference sets the source document reference
func (r *StockReservation) WithReference(referenceType, referenceID string) *StockReservation {
	r.ReferenceType = referenceType
	r.ReferenceID = referenceID
	return r
}

// StockKey returns the ledger key this reservation holds quantity on
func (r *StockReservation) StockKey() StockKey {
	return StockKey{
		ProductID:    r.ProductID,
		WarehouseID:  r.WarehouseID,
		LocationID:   r.LocationID,
		LotNumber:    r.LotNumber,
		SerialNumber: r.SerialNumber,
	}
}

// Fulfill completes the reservation in full. It returns the quantity the
// caller must release from the stock record's reserved quantity.
func (r *StockReservation) Fulfill() (decimal.Decimal, error) {
	if r.Status.IsTerminal() {
		return decimal.Zero, shared.ErrInvalidState
	}

	released := r.RemainingQuantity
	r.RemainingQuantity = decimal.Zero
	r.Status = ReservationStatusFulfilled
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationFulfilledEvent(r, released))

	return released, nil
}

// PartialFulfill completes part of the reservation. It returns the quantity
// the caller must release from the stock record's reserved quantity.
func (r *StockReservation) PartialFulfill(quantity decimal.Decimal) (decimal.Decimal, error) {
	if r.Status.IsTerminal() {
		return decimal.Zero, shared.ErrInvalidState
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(r.RemainingQuantity) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds remaining reservation")
	}

	r.RemainingQuantity = r.RemainingQuantity.Sub(quantity)
	if r.RemainingQuantity.IsZero() {
		r.Status = ReservationStatusFulfilled
	} else {
		r.Status = ReservationStatusPartiallyFulfilled
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationFulfilledEvent(r, quantity))

	return quantity, nil
}

// Cancel aborts the reservation. It returns the quantity the caller must
// release from the stock record's reserved quantity.
func (r *StockReservation) Cancel(cancelledBy, reason string) (decimal.Decimal, error) {
	if r.Status.IsTerminal() {
		return decimal.Zero, shared.ErrInvalidState
	}

	released := r.RemainingQuantity
	r.RemainingQuantity = decimal.Zero
	r.Status = ReservationStatusCancelled
	r.CancelledBy = cancelledBy
	r.CancelReason = reason
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationCancelledEvent(r, released, cancelledBy, reason))

	return released, nil
}

// Expire transitions an overdue reservation to expired. Reservations already
// in a terminal state or not yet due are skipped with zero released, which
// makes the expiry sweep idempotent. It returns the quantity the caller must
// release from the stock record's reserved quantity.
func (r *StockReservation) Expire(now time.Time) (decimal.Decimal, error) {
	if r.Status.IsTerminal() {
		return decimal.Zero, nil
	}
	if r.ExpirationDate == nil || !r.ExpirationDate.Before(now) {
		return decimal.Zero, nil
	}

	released := r.RemainingQuantity
	r.RemainingQuantity = decimal.Zero
	r.Status = ReservationStatusExpired
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewReservationExpiredEvent(r, released))

	return released, nil
}

// IsExpired returns true if the reservation is past its expiration date and
// still holds quantity
func (r *StockReservation) IsExpired(now time.Time) bool {
	return !r.Status.IsTerminal() && r.ExpirationDate != nil && r.ExpirationDate.Before(now)
}
