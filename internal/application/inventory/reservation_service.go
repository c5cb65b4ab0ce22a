package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ReservationService manages stock reservations. Reserving holds available
// quantity on a stock row without changing quantity on hand; fulfillment
// and cancellation hand the hold back.
type ReservationService struct {
	scope             TransactionScope
	sequencer         inventory.DocumentSequencer
	eventPublisher    shared.EventPublisher
	defaultExpiration time.Duration
	logger            *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	scope TransactionScope,
	sequencer inventory.DocumentSequencer,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		scope:     scope,
		sequencer: sequencer,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaultExpiration sets the expiration applied to reservations created
// without an explicit expiration date. Zero keeps them open-ended.
func (s *ReservationService) SetDefaultExpiration(d time.Duration) {
	s.defaultExpiration = d
}

func (s *ReservationService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func drainReservationEvents(reservation *inventory.StockReservation) []shared.DomainEvent {
	events := reservation.GetDomainEvents()
	reservation.ClearDomainEvents()
	return events
}

func reservationStockKey(r *inventory.StockReservation) inventory.StockKey {
	return inventory.StockKey{
		ProductID:    r.ProductID,
		WarehouseID:  r.WarehouseID,
		LocationID:   r.LocationID,
		LotNumber:    r.LotNumber,
		SerialNumber: r.SerialNumber,
	}
}

// CreateReservation reserves available stock for a later outbound. It fails
// with InsufficientAvailable when the unreserved quantity does not cover
// the request, reserving nothing.
func (s *ReservationService) CreateReservation(ctx context.Context, tenantID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error) {
	now := time.Now()
	if req.ExpirationDate != nil && !req.ExpirationDate.After(now) {
		return nil, shared.NewDomainError("INVALID_EXPIRATION", "Expiration date must be in the future")
	}
	if req.ExpirationDate == nil && s.defaultExpiration > 0 {
		expiresAt := now.Add(s.defaultExpiration)
		req.ExpirationDate = &expiresAt
	}

	seq, err := s.sequencer.Next(ctx, tenantID, inventory.ReservationNumberPrefix, now)
	if err != nil {
		return nil, err
	}
	reservationNumber := inventory.FormatReservationNumber(now, seq)

	var reservation *inventory.StockReservation
	var events []shared.DomainEvent

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		key := inventory.StockKey{
			ProductID:    req.ProductID,
			WarehouseID:  req.WarehouseID,
			LocationID:   req.LocationID,
			LotNumber:    req.LotNumber,
			SerialNumber: req.SerialNumber,
		}
		stock, err := repos.StockRepo().GetOrCreate(ctx, tenantID, key)
		if err != nil {
			return err
		}
		if err := stock.Reserve(req.Quantity); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
			return err
		}

		reservation, err = inventory.NewStockReservation(
			tenantID,
			reservationNumber,
			req.ProductID,
			req.WarehouseID,
			req.Quantity,
			req.ReservationType,
		)
		if err != nil {
			return err
		}
		if req.LocationID != nil {
			reservation.WithLocation(*req.LocationID)
		}
		if req.LotNumber != "" {
			reservation.WithLotNumber(req.LotNumber)
		}
		if req.SerialNumber != "" {
			reservation.WithSerialNumber(req.SerialNumber)
		}
		if req.ExpirationDate != nil {
			reservation.WithExpiration(*req.ExpirationDate)
		}
		if req.ReferenceType != "" || req.ReferenceID != "" {
			reservation.WithReference(req.ReferenceType, req.ReferenceID)
		}
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}

		events = append(drainEvents(stock), drainReservationEvents(reservation)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)

	response := ToReservationResponse(reservation)
	return &response, nil
}

// FulfillReservation marks a reservation fully consumed and releases its
// remaining hold on the stock row.
func (s *ReservationService) FulfillReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationResponse, error) {
	return s.settle(ctx, tenantID, reservationID, func(r *inventory.StockReservation) (decimal.Decimal, error) {
		return r.Fulfill()
	})
}

// PartialFulfillReservation consumes part of a reservation, releasing the
// fulfilled quantity from the stock hold. The reservation moves to
// fulfilled when nothing remains.
func (s *ReservationService) PartialFulfillReservation(ctx context.Context, tenantID, reservationID uuid.UUID, req PartialFulfillRequest) (*ReservationResponse, error) {
	return s.settle(ctx, tenantID, reservationID, func(r *inventory.StockReservation) (decimal.Decimal, error) {
		return r.PartialFulfill(req.Quantity)
	})
}

// CancelReservation cancels a reservation and releases its remaining hold.
func (s *ReservationService) CancelReservation(ctx context.Context, tenantID, reservationID uuid.UUID, req CancelReservationRequest) (*ReservationResponse, error) {
	return s.settle(ctx, tenantID, reservationID, func(r *inventory.StockReservation) (decimal.Decimal, error) {
		return r.Cancel(req.CancelledBy, req.Reason)
	})
}

// settle applies a terminal or fulfilling transition to a reservation and
// releases the returned quantity from the matching stock row.
func (s *ReservationService) settle(ctx context.Context, tenantID, reservationID uuid.UUID, transition func(*inventory.StockReservation) (decimal.Decimal, error)) (*ReservationResponse, error) {
	var reservation *inventory.StockReservation
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		reservation, err = repos.ReservationRepo().FindByIDForTenant(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}

		released, err := transition(reservation)
		if err != nil {
			return err
		}
		if err := repos.ReservationRepo().SaveWithLock(ctx, reservation); err != nil {
			return err
		}

		if released.IsPositive() {
			stock, err := repos.StockRepo().FindByKey(ctx, tenantID, reservationStockKey(reservation))
			if err != nil {
				return err
			}
			if err := stock.ReleaseReservation(released); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
				return err
			}
			events = append(events, drainEvents(stock)...)
		}

		events = append(events, drainReservationEvents(reservation)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)

	response := ToReservationResponse(reservation)
	return &response, nil
}

// CheckAvailability reports whether the requested quantity could be
// reserved right now. It takes no hold.
func (s *ReservationService) CheckAvailability(ctx context.Context, tenantID uuid.UUID, req CreateReservationRequest) (*AvailabilityResponse, error) {
	response := &AvailabilityResponse{
		ProductID:         req.ProductID,
		WarehouseID:       req.WarehouseID,
		RequestedQuantity: req.Quantity,
		AvailableQuantity: decimal.Zero,
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		key := inventory.StockKey{
			ProductID:    req.ProductID,
			WarehouseID:  req.WarehouseID,
			LocationID:   req.LocationID,
			LotNumber:    req.LotNumber,
			SerialNumber: req.SerialNumber,
		}
		stock, err := repos.StockRepo().FindByKey(ctx, tenantID, key)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil
			}
			return err
		}
		response.AvailableQuantity = stock.AvailableQuantity()
		response.CanFulfill = stock.CanFulfill(req.Quantity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetReservation retrieves a reservation by ID
func (s *ReservationService) GetReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationResponse, error) {
	var response ReservationResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByIDForTenant(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}
		response = ToReservationResponse(reservation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetReservationByNumber retrieves a reservation by its reservation number
func (s *ReservationService) GetReservationByNumber(ctx context.Context, tenantID uuid.UUID, reservationNumber string) (*ReservationResponse, error) {
	var response ReservationResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByNumber(ctx, tenantID, reservationNumber)
		if err != nil {
			return err
		}
		response = ToReservationResponse(reservation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListReservations retrieves reservations with filtering and pagination
func (s *ReservationService) ListReservations(ctx context.Context, tenantID uuid.UUID, filter ReservationListFilter) ([]ReservationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.Status != "" {
		status := inventory.ReservationStatus(filter.Status)
		domainFilter.Filters["status"] = status
	}

	var responses []ReservationResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservations, err := repos.ReservationRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.ReservationRepo().CountForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		responses = ToReservationResponses(reservations)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// GetReservationsByReference retrieves the reservations created from one
// source document
func (s *ReservationService) GetReservationsByReference(ctx context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]ReservationResponse, error) {
	var responses []ReservationResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservations, err := repos.ReservationRepo().FindByReference(ctx, tenantID, referenceType, referenceID)
		if err != nil {
			return err
		}
		responses = ToReservationResponses(reservations)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ListExpiringSoon retrieves non-terminal reservations due to expire within
// the given window, soonest first
func (s *ReservationService) ListExpiringSoon(ctx context.Context, tenantID uuid.UUID, within time.Duration) ([]ReservationResponse, error) {
	domainFilter := shared.Filter{
		OrderBy:  "expiration_date",
		OrderDir: "asc",
		Filters: map[string]interface{}{
			"expiring_before": time.Now().Add(within),
		},
	}

	var responses []ReservationResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservations, err := repos.ReservationRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		responses = ToReservationResponses(reservations)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}
