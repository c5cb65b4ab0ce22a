package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// StockResponse represents a stock record in API responses
type StockResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	LocationID        *uuid.UUID      `json:"location_id,omitempty"`
	LotNumber         string          `json:"lot_number,omitempty"`
	SerialNumber      string          `json:"serial_number,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	MinQuantity       decimal.Decimal `json:"min_quantity"`
	IsBelowMinimum    bool            `json:"is_below_minimum"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToStockResponse converts a stock record to its API representation
func ToStockResponse(stock *inventory.Stock) StockResponse {
	return StockResponse{
		ID:                stock.ID,
		TenantID:          stock.TenantID,
		ProductID:         stock.ProductID,
		WarehouseID:       stock.WarehouseID,
		LocationID:        stock.Key().LocationID,
		LotNumber:         stock.LotNumber,
		SerialNumber:      stock.SerialNumber,
		Quantity:          stock.Quantity,
		ReservedQuantity:  stock.ReservedQuantity,
		AvailableQuantity: stock.AvailableQuantity(),
		MinQuantity:       stock.MinQuantity,
		IsBelowMinimum:    stock.IsBelowMinimum(),
		UpdatedAt:         stock.UpdatedAt,
		Version:           stock.Version,
	}
}

// ToStockResponses converts a slice of stock records
func ToStockResponses(stocks []inventory.Stock) []StockResponse {
	responses := make([]StockResponse, 0, len(stocks))
	for i := range stocks {
		responses = append(responses, ToStockResponse(&stocks[i]))
	}
	return responses
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID                   uuid.UUID              `json:"id"`
	DocumentNumber       string                 `json:"document_number"`
	MovementDate         time.Time              `json:"movement_date"`
	ProductID            uuid.UUID              `json:"product_id"`
	WarehouseID          uuid.UUID              `json:"warehouse_id"`
	FromLocationID       *uuid.UUID             `json:"from_location_id,omitempty"`
	ToLocationID         *uuid.UUID             `json:"to_location_id,omitempty"`
	MovementType         inventory.MovementType `json:"movement_type"`
	Quantity             decimal.Decimal        `json:"quantity"`
	UnitCost             decimal.Decimal        `json:"unit_cost"`
	TotalCost            decimal.Decimal        `json:"total_cost"`
	LotNumber            string                 `json:"lot_number,omitempty"`
	SerialNumber         string                 `json:"serial_number,omitempty"`
	ReferenceType        string                 `json:"reference_type,omitempty"`
	ReferenceID          string                 `json:"reference_id,omitempty"`
	Reason               string                 `json:"reason,omitempty"`
	IsReversed           bool                   `json:"is_reversed"`
	ReversedByMovementID *uuid.UUID             `json:"reversed_by_movement_id,omitempty"`
	ReversalOfMovementID *uuid.UUID             `json:"reversal_of_movement_id,omitempty"`
}

// ToMovementResponse converts a movement to its API representation
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                   m.ID,
		DocumentNumber:       m.DocumentNumber,
		MovementDate:         m.MovementDate,
		ProductID:            m.ProductID,
		WarehouseID:          m.WarehouseID,
		FromLocationID:       m.FromLocationID,
		ToLocationID:         m.ToLocationID,
		MovementType:         m.MovementType,
		Quantity:             m.Quantity,
		UnitCost:             m.UnitCost,
		TotalCost:            m.TotalCost,
		LotNumber:            m.LotNumber,
		SerialNumber:         m.SerialNumber,
		ReferenceType:        m.ReferenceType,
		ReferenceID:          m.ReferenceID,
		Reason:               m.Reason,
		IsReversed:           m.IsReversed,
		ReversedByMovementID: m.ReversedByMovementID,
		ReversalOfMovementID: m.ReversalOfMovementID,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID                uuid.UUID                   `json:"id"`
	ReservationNumber string                      `json:"reservation_number"`
	ProductID         uuid.UUID                   `json:"product_id"`
	WarehouseID       uuid.UUID                   `json:"warehouse_id"`
	LocationID        *uuid.UUID                  `json:"location_id,omitempty"`
	LotNumber         string                      `json:"lot_number,omitempty"`
	SerialNumber      string                      `json:"serial_number,omitempty"`
	Quantity          decimal.Decimal             `json:"quantity"`
	RemainingQuantity decimal.Decimal             `json:"remaining_quantity"`
	ReservationType   string                      `json:"reservation_type"`
	Status            inventory.ReservationStatus `json:"status"`
	ExpirationDate    *time.Time                  `json:"expiration_date,omitempty"`
	ReferenceType     string                      `json:"reference_type,omitempty"`
	ReferenceID       string                      `json:"reference_id,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// ToReservationResponse converts a reservation to its API representation
func ToReservationResponse(r *inventory.StockReservation) ReservationResponse {
	return ReservationResponse{
		ID:                r.ID,
		ReservationNumber: r.ReservationNumber,
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		LocationID:        r.LocationID,
		LotNumber:         r.LotNumber,
		SerialNumber:      r.SerialNumber,
		Quantity:          r.Quantity,
		RemainingQuantity: r.RemainingQuantity,
		ReservationType:   r.ReservationType,
		Status:            r.Status,
		ExpirationDate:    r.ExpirationDate,
		ReferenceType:     r.ReferenceType,
		ReferenceID:       r.ReferenceID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// ToReservationResponses converts a slice of reservations
func ToReservationResponses(reservations []inventory.StockReservation) []ReservationResponse {
	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, ToReservationResponse(&reservations[i]))
	}
	return responses
}

// CreateMovementRequest represents a request to record an incoming or
// outgoing movement
type CreateMovementRequest struct {
	ProductID     uuid.UUID              `json:"product_id" binding:"required"`
	WarehouseID   uuid.UUID              `json:"warehouse_id" binding:"required"`
	LocationID    *uuid.UUID             `json:"location_id"`
	MovementType  inventory.MovementType `json:"movement_type" binding:"required"`
	Quantity      decimal.Decimal        `json:"quantity" binding:"required"`
	UnitCost      decimal.Decimal        `json:"unit_cost"`
	MovementDate  *time.Time             `json:"movement_date"`
	LotNumber     string                 `json:"lot_number"`
	SerialNumber  string                 `json:"serial_number"`
	ReferenceType string                 `json:"reference_type"`
	ReferenceID   string                 `json:"reference_id"`
	Reason        string                 `json:"reason"`
}

// CreateTransferRequest represents a request to transfer stock between
// locations of the same warehouse
type CreateTransferRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID    uuid.UUID       `json:"warehouse_id" binding:"required"`
	FromLocationID uuid.UUID       `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID       `json:"to_location_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	LotNumber      string          `json:"lot_number"`
	SerialNumber   string          `json:"serial_number"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	Reason         string          `json:"reason"`
}

// ReverseMovementRequest represents a request to reverse a movement
type ReverseMovementRequest struct {
	MovementID uuid.UUID `json:"movement_id" binding:"required"`
	Reason     string    `json:"reason" binding:"required,min=1,max=255"`
}

// RecordCountRequest represents a physical count adjustment
type RecordCountRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID     uuid.UUID       `json:"warehouse_id" binding:"required"`
	LocationID      *uuid.UUID      `json:"location_id"`
	LotNumber       string          `json:"lot_number"`
	SerialNumber    string          `json:"serial_number"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Reason          string          `json:"reason" binding:"required,min=1,max=255"`
}

// RecordCountResponse reports the outcome of a physical count
type RecordCountResponse struct {
	Stock    StockResponse     `json:"stock"`
	Delta    decimal.Decimal   `json:"delta"`
	Movement *MovementResponse `json:"movement,omitempty"`
}

// MovementListFilter represents filter options for movement queries
type MovementListFilter struct {
	WarehouseID     *uuid.UUID `form:"warehouse_id"`
	ProductID       *uuid.UUID `form:"product_id"`
	MovementType    string     `form:"movement_type"`
	StartDate       *time.Time `form:"start_date"`
	EndDate         *time.Time `form:"end_date"`
	IncludeReversed bool       `form:"include_reversed"`
	Page            int        `form:"page" binding:"min=0"`
	PageSize        int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateReservationRequest represents a request to reserve stock
type CreateReservationRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID     uuid.UUID       `json:"warehouse_id" binding:"required"`
	LocationID      *uuid.UUID      `json:"location_id"`
	LotNumber       string          `json:"lot_number"`
	SerialNumber    string          `json:"serial_number"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	ReservationType string          `json:"reservation_type" binding:"required"`
	ExpirationDate  *time.Time      `json:"expiration_date"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
}

// PartialFulfillRequest represents a partial fulfillment of a reservation
type PartialFulfillRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CancelReservationRequest represents a request to cancel a reservation
type CancelReservationRequest struct {
	CancelledBy string `json:"cancelled_by" binding:"required"`
	Reason      string `json:"reason" binding:"max=255"`
}

// ReservationListFilter represents filter options for reservation queries
type ReservationListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ProductID   *uuid.UUID `form:"product_id"`
	Status      string     `form:"status"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AvailabilityResponse reports whether a requested quantity can be reserved
type AvailabilityResponse struct {
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	CanFulfill        bool            `json:"can_fulfill"`
}

// COGSRequest represents a cost-of-goods calculation request
type COGSRequest struct {
	ProductID    uuid.UUID            `json:"product_id" binding:"required"`
	WarehouseID  *uuid.UUID           `json:"warehouse_id"`
	Quantity     decimal.Decimal      `json:"quantity" binding:"required"`
	Method       inventory.CostMethod `json:"method" binding:"required"`
	StandardCost *decimal.Decimal     `json:"standard_cost"`
}

// CompareCostMethodsRequest represents a cost method comparison request
type CompareCostMethodsRequest struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	WarehouseID  *uuid.UUID       `json:"warehouse_id"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"required"`
	StandardCost *decimal.Decimal `json:"standard_cost"`
}

// CostVarianceRequest represents a standard cost variance request
type CostVarianceRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID  *uuid.UUID      `json:"warehouse_id"`
	StandardCost decimal.Decimal `json:"standard_cost" binding:"required"`
}

// WarehouseValuationResponse reports the valued stock of one warehouse
type WarehouseValuationResponse struct {
	WarehouseID   uuid.UUID                  `json:"warehouse_id"`
	Method        inventory.CostMethod       `json:"method"`
	TotalQuantity decimal.Decimal            `json:"total_quantity"`
	TotalValue    decimal.Decimal            `json:"total_value"`
	Lines         []ProductValuationResponse `json:"lines"`
}

// ProductValuationResponse is one product line of a warehouse valuation
type ProductValuationResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// LotBatchInput describes one candidate lot for consumption planning
type LotBatchInput struct {
	ID                uuid.UUID       `json:"id"`
	LotNumber         string          `json:"lot_number" binding:"required"`
	Status            string          `json:"status" binding:"required,oneof=approved quarantined"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PlanLotConsumptionRequest asks for a depletion plan over candidate lots
type PlanLotConsumptionRequest struct {
	Strategy          string          `json:"strategy" binding:"required,oneof=FIFO FEFO fifo fefo"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	Lots              []LotBatchInput `json:"lots" binding:"required,dive"`
}
