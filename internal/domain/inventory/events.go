package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeStock            = "Stock"
	AggregateTypeStockMovement    = "StockMovement"
	AggregateTypeStockReservation = "StockReservation"
)

// Event type constants
const (
	EventTypeStockIncreased       = "StockIncreased"
	EventTypeStockDecreased       = "StockDecreased"
	EventTypeStockReserved        = "StockReserved"
	EventTypeReservationReleased  = "ReservationReleased"
	EventTypeStockCounted         = "StockCounted"
	EventTypeStockBelowThreshold  = "StockBelowThreshold"
	EventTypeMovementRecorded     = "MovementRecorded"
	EventTypeMovementReversed     = "MovementReversed"
	EventTypeReservationCreated   = "ReservationCreated"
	EventTypeReservationFulfilled = "ReservationFulfilled"
	EventTypeReservationCancelled = "ReservationCancelled"
	EventTypeReservationExpired   = "ReservationExpired"
)

// StockIncreasedEvent is raised when stock on hand is increased
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// NewStockIncreasedEvent creates a new StockIncreasedEvent
func NewStockIncreasedEvent(stock *Stock, quantity decimal.Decimal) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, AggregateTypeStock, stock.ID, stock.TenantID),
		StockID:         stock.ID,
		ProductID:       stock.ProductID,
		WarehouseID:     stock.WarehouseID,
		Quantity:        quantity,
		NewQuantity:     stock.Quantity,
	}
}

// EventType returns the event type name
func (e *StockIncreasedEvent) EventType() string {
	return EventTypeStockIncreased
}

// StockDecreasedEvent is raised when stock on hand is decreased
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(stock *Stock, quantity decimal.Decimal) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeStock, stock.ID, stock.TenantID),
		StockID:         stock.ID,
		ProductID:       stock.ProductID,
		WarehouseID:     stock.WarehouseID,
		Quantity:        quantity,
		NewQuantity:     stock.Quantity,
	}
}

// EventType returns the event type name
func (e *StockDecreasedEvent) EventType() string {
	return EventTypeStockDecreased
}

// StockReservedEvent is raised when available stock is reserved
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewReserved decimal.Decimal `json:"new_reserved"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(stock *Stock, quantity decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStock, stock.ID, stock.TenantID),
		StockID:         stock.ID,
		ProductID:       stock.ProductID,
		WarehouseID:     stock.WarehouseID,
		Quantity:        quantity,
		NewReserved:     stock.ReservedQuantity,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// ReservationReleasedEvent is raised when reserved quantity returns to the
// available pool
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewReserved decimal.Decimal `json:"new_reserved"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(stock *Stock, quantity decimal.Decimal) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeStock, stock.ID, stock.TenantID),
		StockID:         stock.ID,
		ProductID:       stock.ProductID,
		WarehouseID:     stock.WarehouseID,
		Quantity:        quantity,
		NewReserved:     stock.ReservedQuantity,
	}
}

// EventType returns the event type name
func (e *ReservationReleasedEvent) EventType() string {
	return EventTypeReservationReleased
}

// StockCountedEvent is raised when a physical count adjusts the quantity on hand
type StockCountedEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Delta       decimal.Decimal `json:"delta"`
}

// NewStockCountedEvent creates a new StockCountedEvent
func NewStockCountedEvent(stock *Stock, oldQuantity, newQuantity, delta decimal.Decimal) *StockCountedEvent {
	return &StockCountedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCounted, AggregateTypeStock, stock.ID, stock.TenantID),
		StockID:         stock.ID,
		ProductID:       stock.ProductID,
		WarehouseID:     stock.WarehouseID,
		OldQuantity:     oldQuantity,
		NewQuantity:     newQuantity,
		Delta:           delta,
	}
}

// EventType returns the event type name
func (e *StockCountedEvent) EventType() string {
	return EventTypeStockCounted
}

// StockBelowThresholdEvent is raised when quantity drops below the alert threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	StockID     uuid.UUID       `json:"stock_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(stock *Stock) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStock, stock.ID, stock.TenantID),
		StockID:         stock.ID,
		ProductID:       stock.ProductID,
		WarehouseID:     stock.WarehouseID,
		Quantity:        stock.Quantity,
		MinQuantity:     stock.MinQuantity,
	}
}

// EventType returns the event type name
func (e *StockBelowThresholdEvent) EventType() string {
	return EventTypeStockBelowThreshold
}

// MovementRecordedEvent is raised when a new movement is appended to the ledger
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementID     uuid.UUID       `json:"movement_id"`
	DocumentNumber string          `json:"document_number"`
	MovementType   MovementType    `json:"movement_type"`
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
}

// NewMovementRecordedEvent creates a new MovementRecordedEvent
func NewMovementRecordedEvent(movement *StockMovement) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRecorded, AggregateTypeStockMovement, movement.ID, movement.TenantID),
		MovementID:      movement.ID,
		DocumentNumber:  movement.DocumentNumber,
		MovementType:    movement.MovementType,
		ProductID:       movement.ProductID,
		WarehouseID:     movement.WarehouseID,
		Quantity:        movement.Quantity,
		UnitCost:        movement.UnitCost,
	}
}

// EventType returns the event type name
func (e *MovementRecordedEvent) EventType() string {
	return EventTypeMovementRecorded
}

// MovementReversedEvent is raised when a movement is reversed
type MovementReversedEvent struct {
	shared.BaseDomainEvent
	MovementID         uuid.UUID `json:"movement_id"`
	ReversalMovementID uuid.UUID `json:"reversal_movement_id"`
	DocumentNumber     string    `json:"document_number"`
	Reason             string    `json:"reason,omitempty"`
}

// NewMovementReversedEvent creates a new MovementReversedEvent
func NewMovementReversedEvent(original, reversal *StockMovement, reason string) *MovementReversedEvent {
	return &MovementReversedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeMovementReversed, AggregateTypeStockMovement, original.ID, original.TenantID),
		MovementID:         original.ID,
		ReversalMovementID: reversal.ID,
		DocumentNumber:     original.DocumentNumber,
		Reason:             reason,
	}
}

// EventType returns the event type name
func (e *MovementReversedEvent) EventType() string {
	return EventTypeMovementReversed
}

// ReservationCreatedEvent is raised when a new reservation is created
type ReservationCreatedEvent struct {
	shared.BaseDomainEvent
	ReservationID     uuid.UUID       `json:"reservation_id"`
	ReservationNumber string          `json:"reservation_number"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// NewReservationCreatedEvent creates a new ReservationCreatedEvent
func NewReservationCreatedEvent(r *StockReservation) *ReservationCreatedEvent {
	return &ReservationCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReservationCreated, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		Quantity:          r.Quantity,
	}
}

// EventType returns the event type name
func (e *ReservationCreatedEvent) EventType() string {
	return EventTypeReservationCreated
}

// ReservationFulfilledEvent is raised on full or partial fulfillment
type ReservationFulfilledEvent struct {
	shared.BaseDomainEvent
	ReservationID     uuid.UUID         `json:"reservation_id"`
	ReservationNumber string            `json:"reservation_number"`
	FulfilledQuantity decimal.Decimal   `json:"fulfilled_quantity"`
	RemainingQuantity decimal.Decimal   `json:"remaining_quantity"`
	Status            ReservationStatus `json:"status"`
}

// NewReservationFulfilledEvent creates a new ReservationFulfilledEvent
func NewReservationFulfilledEvent(r *StockReservation, fulfilled decimal.Decimal) *ReservationFulfilledEvent {
	return &ReservationFulfilledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReservationFulfilled, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		FulfilledQuantity: fulfilled,
		RemainingQuantity: r.RemainingQuantity,
		Status:            r.Status,
	}
}

// EventType returns the event type name
func (e *ReservationFulfilledEvent) EventType() string {
	return EventTypeReservationFulfilled
}

// ReservationCancelledEvent is raised when a reservation is cancelled
type ReservationCancelledEvent struct {
	shared.BaseDomainEvent
	ReservationID     uuid.UUID       `json:"reservation_id"`
	ReservationNumber string          `json:"reservation_number"`
	ReleasedQuantity  decimal.Decimal `json:"released_quantity"`
	CancelledBy       string          `json:"cancelled_by"`
	Reason            string          `json:"reason,omitempty"`
}

// NewReservationCancelledEvent creates a new ReservationCancelledEvent
func NewReservationCancelledEvent(r *StockReservation, released decimal.Decimal, cancelledBy, reason string) *ReservationCancelledEvent {
	return &ReservationCancelledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReservationCancelled, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		ReleasedQuantity:  released,
		CancelledBy:       cancelledBy,
		Reason:            reason,
	}
}

// EventType returns the event type name
func (e *ReservationCancelledEvent) EventType() string {
	return EventTypeReservationCancelled
}

// ReservationExpiredEvent is raised when the expiry sweep expires a reservation
type ReservationExpiredEvent struct {
	shared.BaseDomainEvent
	ReservationID     uuid.UUID       `json:"reservation_id"`
	ReservationNumber string          `json:"reservation_number"`
	ReleasedQuantity  decimal.Decimal `json:"released_quantity"`
}

// NewReservationExpiredEvent creates a new ReservationExpiredEvent
func NewReservationExpiredEvent(r *StockReservation, released decimal.Decimal) *ReservationExpiredEvent {
	return &ReservationExpiredEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReservationExpired, AggregateTypeStockReservation, r.ID, r.TenantID),
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		ReleasedQuantity:  released,
	}
}

// EventType returns the event type name
func (e *ReservationExpiredEvent) EventType() string {
	return EventTypeReservationExpired
}
