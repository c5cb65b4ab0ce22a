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

// MovementService records ledger movements. Every mutation runs inside a
// transaction scope so the stock update and the movement record commit or
// roll back together.
type MovementService struct {
	scope          TransactionScope
	sequencer      inventory.DocumentSequencer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewMovementService creates a new MovementService
func NewMovementService(
	scope TransactionScope,
	sequencer inventory.DocumentSequencer,
	logger *zap.Logger,
) *MovementService {
	return &MovementService{
		scope:     scope,
		sequencer: sequencer,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes domain events after the transaction has committed.
// Publish failures are logged and never propagated: the ledger mutation that
// triggered them has already committed.
func (s *MovementService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
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

// drainEvents collects and clears pending events from a stock aggregate
func drainEvents(stock *inventory.Stock) []shared.DomainEvent {
	events := stock.GetDomainEvents()
	stock.ClearDomainEvents()
	return events
}

// nextDocumentNumber generates the document number for a movement type on
// the given date
func (s *MovementService) nextDocumentNumber(ctx context.Context, tenantID uuid.UUID, movementType inventory.MovementType, date time.Time) (string, error) {
	seq, err := s.sequencer.Next(ctx, tenantID, movementType.DocumentPrefix(), date)
	if err != nil {
		return "", err
	}
	return inventory.FormatMovementNumber(movementType.DocumentPrefix(), date, seq), nil
}

// buildMovement constructs the movement record from a request and generated
// document number
func buildMovement(tenantID uuid.UUID, documentNumber string, req CreateMovementRequest, date time.Time) (*inventory.StockMovement, error) {
	movement, err := inventory.NewStockMovement(
		tenantID,
		documentNumber,
		req.MovementType,
		req.ProductID,
		req.WarehouseID,
		req.Quantity,
		req.UnitCost,
	)
	if err != nil {
		return nil, err
	}

	movement.WithMovementDate(date)
	if req.LocationID != nil {
		movement.WithToLocation(*req.LocationID)
	}
	if req.LotNumber != "" {
		movement.WithLotNumber(req.LotNumber)
	}
	if req.SerialNumber != "" {
		movement.WithSerialNumber(req.SerialNumber)
	}
	if req.ReferenceType != "" || req.ReferenceID != "" {
		movement.WithReference(req.ReferenceType, req.ReferenceID)
	}
	if req.Reason != "" {
		movement.WithReason(req.Reason)
	}

	return movement, nil
}

// CreateIncoming records a movement that adds stock on hand. The stock row
// for the movement's key is created on first touch.
func (s *MovementService) CreateIncoming(ctx context.Context, tenantID uuid.UUID, req CreateMovementRequest) (*MovementResponse, error) {
	if !req.MovementType.IsIncoming() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type is not an incoming type")
	}
	return s.createDirectional(ctx, tenantID, req)
}

// CreateOutgoing records a movement that removes stock on hand. It fails
// with InsufficientStock when the quantity on hand does not cover the
// movement, leaving no partial state.
func (s *MovementService) CreateOutgoing(ctx context.Context, tenantID uuid.UUID, req CreateMovementRequest) (*MovementResponse, error) {
	if !req.MovementType.IsOutgoing() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type is not an outgoing type")
	}
	return s.createDirectional(ctx, tenantID, req)
}

func (s *MovementService) createDirectional(ctx context.Context, tenantID uuid.UUID, req CreateMovementRequest) (*MovementResponse, error) {
	date := time.Now()
	if req.MovementDate != nil {
		date = *req.MovementDate
	}

	documentNumber, err := s.nextDocumentNumber(ctx, tenantID, req.MovementType, date)
	if err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
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

		if req.MovementType.IsIncoming() {
			if err := stock.Increase(req.Quantity); err != nil {
				return err
			}
		} else {
			if err := stock.Decrease(req.Quantity); err != nil {
				return err
			}
		}

		if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
			return err
		}

		movement, err = buildMovement(tenantID, documentNumber, req, date)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}

		events = append(drainEvents(stock), inventory.NewMovementRecordedEvent(movement))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)

	response := ToMovementResponse(movement)
	return &response, nil
}

// CreateTransfer moves stock between two locations of the same warehouse,
// recorded as a single movement referencing both locations. The decrease at
// the source and the increase at the destination commit atomically.
func (s *MovementService) CreateTransfer(ctx context.Context, tenantID uuid.UUID, req CreateTransferRequest) (*MovementResponse, error) {
	if req.FromLocationID == req.ToLocationID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination locations must differ")
	}

	date := time.Now()
	documentNumber, err := s.nextDocumentNumber(ctx, tenantID, inventory.MovementTypeTransfer, date)
	if err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
	var events []shared.DomainEvent

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		fromKey := inventory.StockKey{
			ProductID:    req.ProductID,
			WarehouseID:  req.WarehouseID,
			LocationID:   &req.FromLocationID,
			LotNumber:    req.LotNumber,
			SerialNumber: req.SerialNumber,
		}
		toKey := fromKey
		toKey.LocationID = &req.ToLocationID

		source, err := repos.StockRepo().GetOrCreate(ctx, tenantID, fromKey)
		if err != nil {
			return err
		}
		if err := source.Decrease(req.Quantity); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, source); err != nil {
			return err
		}

		destination, err := repos.StockRepo().GetOrCreate(ctx, tenantID, toKey)
		if err != nil {
			return err
		}
		if err := destination.Increase(req.Quantity); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, destination); err != nil {
			return err
		}

		movement, err = inventory.NewStockMovement(
			tenantID,
			documentNumber,
			inventory.MovementTypeTransfer,
			req.ProductID,
			req.WarehouseID,
			req.Quantity,
			decimal.Zero,
		)
		if err != nil {
			return err
		}
		movement.WithMovementDate(date).
			WithFromLocation(req.FromLocationID).
			WithToLocation(req.ToLocationID)
		if req.LotNumber != "" {
			movement.WithLotNumber(req.LotNumber)
		}
		if req.SerialNumber != "" {
			movement.WithSerialNumber(req.SerialNumber)
		}
		if req.ReferenceType != "" || req.ReferenceID != "" {
			movement.WithReference(req.ReferenceType, req.ReferenceID)
		}
		if req.Reason != "" {
			movement.WithReason(req.Reason)
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}

		events = append(drainEvents(source), drainEvents(destination)...)
		events = append(events, inventory.NewMovementRecordedEvent(movement))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)

	response := ToMovementResponse(movement)
	return &response, nil
}

// ReverseMovement exactly inverts the ledger effect of an earlier movement.
// A new movement of the mapped reversal type is created referencing the
// original, and the original is marked reversed with a back reference. A
// movement may be reversed at most once.
func (s *MovementService) ReverseMovement(ctx context.Context, tenantID uuid.UUID, req ReverseMovementRequest) (*MovementResponse, error) {
	date := time.Now()

	var reversal *inventory.StockMovement
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.MovementRepo().FindByIDForTenant(ctx, tenantID, req.MovementID)
		if err != nil {
			return err
		}
		if original.IsReversed {
			return shared.ErrAlreadyReversed
		}

		reversalType := original.MovementType.ReversalType()
		documentNumber, err := s.nextDocumentNumber(ctx, tenantID, reversalType, date)
		if err != nil {
			return err
		}

		switch {
		case original.MovementType == inventory.MovementTypeTransfer:
			// Undo both sides of the transfer
			if err := s.invertTransfer(ctx, repos, original, &events); err != nil {
				return err
			}
		case original.MovementType.IsIncoming():
			stock, err := repos.StockRepo().GetOrCreate(ctx, tenantID, original.StockKey())
			if err != nil {
				return err
			}
			if err := stock.Decrease(original.Quantity); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
				return err
			}
			events = append(events, drainEvents(stock)...)
		case original.MovementType.IsOutgoing():
			stock, err := repos.StockRepo().GetOrCreate(ctx, tenantID, original.StockKey())
			if err != nil {
				return err
			}
			if err := stock.Increase(original.Quantity); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
				return err
			}
			events = append(events, drainEvents(stock)...)
		default:
			return shared.NewDomainError("NOT_REVERSIBLE", "Movement type has no ledger direction to invert")
		}

		reversal, err = inventory.NewStockMovement(
			tenantID,
			documentNumber,
			reversalType,
			original.ProductID,
			original.WarehouseID,
			original.Quantity,
			original.UnitCost,
		)
		if err != nil {
			return err
		}
		reversal.WithMovementDate(date).
			WithReversalOf(original.ID).
			WithReference("movement", original.DocumentNumber).
			WithReason(req.Reason)
		if original.MovementType == inventory.MovementTypeTransfer {
			// Locations swap on the reversal record
			if original.ToLocationID != nil {
				reversal.WithFromLocation(*original.ToLocationID)
			}
			if original.FromLocationID != nil {
				reversal.WithToLocation(*original.FromLocationID)
			}
		} else {
			if original.ToLocationID != nil {
				reversal.WithToLocation(*original.ToLocationID)
			}
		}
		if original.LotNumber != "" {
			reversal.WithLotNumber(original.LotNumber)
		}
		if original.SerialNumber != "" {
			reversal.WithSerialNumber(original.SerialNumber)
		}
		if err := repos.MovementRepo().Create(ctx, reversal); err != nil {
			return err
		}

		if err := original.MarkReversed(reversal.ID); err != nil {
			return err
		}
		if err := repos.MovementRepo().UpdateReversal(ctx, original); err != nil {
			return err
		}

		events = append(events,
			inventory.NewMovementRecordedEvent(reversal),
			inventory.NewMovementReversedEvent(original, reversal, req.Reason),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)

	response := ToMovementResponse(reversal)
	return &response, nil
}

func (s *MovementService) invertTransfer(ctx context.Context, repos TransactionalRepositories, original *inventory.StockMovement, events *[]shared.DomainEvent) error {
	toKey := original.StockKey()
	fromKey := toKey
	fromKey.LocationID = original.FromLocationID

	destination, err := repos.StockRepo().GetOrCreate(ctx, original.TenantID, toKey)
	if err != nil {
		return err
	}
	if err := destination.Decrease(original.Quantity); err != nil {
		return err
	}
	if err := repos.StockRepo().SaveWithLock(ctx, destination); err != nil {
		return err
	}

	source, err := repos.StockRepo().GetOrCreate(ctx, original.TenantID, fromKey)
	if err != nil {
		return err
	}
	if err := source.Increase(original.Quantity); err != nil {
		return err
	}
	if err := repos.StockRepo().SaveWithLock(ctx, source); err != nil {
		return err
	}

	*events = append(*events, drainEvents(destination)...)
	*events = append(*events, drainEvents(source)...)
	return nil
}

// RecordCount adjusts a stock row to the physically counted quantity and
// records the signed delta as a counting movement. A count that matches the
// book quantity records no movement.
func (s *MovementService) RecordCount(ctx context.Context, tenantID uuid.UUID, req RecordCountRequest) (*RecordCountResponse, error) {
	date := time.Now()

	var response RecordCountResponse
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
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

		delta, err := stock.SetQuantity(req.CountedQuantity)
		if err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
			return err
		}

		response.Stock = ToStockResponse(stock)
		response.Delta = delta
		events = drainEvents(stock)

		if delta.IsZero() {
			return nil
		}

		documentNumber, err := s.nextDocumentNumber(ctx, tenantID, inventory.MovementTypeCounting, date)
		if err != nil {
			return err
		}
		movement, err := inventory.NewStockMovement(
			tenantID,
			documentNumber,
			inventory.MovementTypeCounting,
			req.ProductID,
			req.WarehouseID,
			delta.Abs(),
			decimal.Zero,
		)
		if err != nil {
			return err
		}
		movement.WithMovementDate(date).
			WithReference("stock_count", documentNumber).
			WithReason(req.Reason)
		if req.LocationID != nil {
			movement.WithToLocation(*req.LocationID)
		}
		if req.LotNumber != "" {
			movement.WithLotNumber(req.LotNumber)
		}
		if req.SerialNumber != "" {
			movement.WithSerialNumber(req.SerialNumber)
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}

		mr := ToMovementResponse(movement)
		response.Movement = &mr
		events = append(events, inventory.NewMovementRecordedEvent(movement))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events...)

	return &response, nil
}

// GetMovement retrieves a movement by ID
func (s *MovementService) GetMovement(ctx context.Context, tenantID, movementID uuid.UUID) (*MovementResponse, error) {
	var response MovementResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := repos.MovementRepo().FindByIDForTenant(ctx, tenantID, movementID)
		if err != nil {
			return err
		}
		response = ToMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetMovementByDocumentNumber retrieves a movement by its document number
func (s *MovementService) GetMovementByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (*MovementResponse, error) {
	var response MovementResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := repos.MovementRepo().FindByDocumentNumber(ctx, tenantID, documentNumber)
		if err != nil {
			return err
		}
		response = ToMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListMovements retrieves movements with filtering and pagination
func (s *MovementService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "movement_date"
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
	if filter.MovementType != "" {
		movementType := inventory.MovementType(filter.MovementType)
		if !movementType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
		}
		domainFilter.Filters["movement_type"] = movementType
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}
	if !filter.IncludeReversed {
		domainFilter.Filters["exclude_reversed"] = true
	}

	var responses []MovementResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.MovementRepo().FindForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.MovementRepo().CountForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		responses = ToMovementResponses(movements)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}
