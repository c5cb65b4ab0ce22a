package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StockRepository defines the interface for stock ledger persistence
type StockRepository interface {
	// FindByID finds a stock record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)

	// FindByIDForTenant finds a stock record by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Stock, error)

	// FindByKey finds the stock record for a ledger key
	FindByKey(ctx context.Context, tenantID uuid.UUID, key StockKey) (*Stock, error)

	// GetOrCreate returns the stock record for a ledger key, creating a
	// zero-quantity record on first touch
	GetOrCreate(ctx context.Context, tenantID uuid.UUID, key StockKey) (*Stock, error)

	// FindByWarehouse finds all stock records in a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// FindByProduct finds all stock records for a product across warehouses
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// FindAllForTenant finds all stock records for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// FindBelowMinimum finds stock records below their alert threshold
	FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// Save creates or updates a stock record
	Save(ctx context.Context, stock *Stock) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, stock *Stock) error

	// CountForTenant counts stock records matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// SumQuantityByProduct sums on-hand quantity for a product, optionally
	// scoped to one warehouse
	SumQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error)
}

// MovementRepository defines the interface for the append-only movement log.
// Movements are never updated after creation except for reversal linkage.
type MovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByIDForTenant finds a movement by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockMovement, error)

	// FindByDocumentNumber finds a movement by its document number
	FindByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (*StockMovement, error)

	// FindByProduct finds movements for a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByWarehouse finds movements for a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByDateRange finds movements within a date range
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time, filter shared.Filter) ([]StockMovement, error)

	// FindByType finds movements of a specific type
	FindByType(ctx context.Context, tenantID uuid.UUID, movementType MovementType, filter shared.Filter) ([]StockMovement, error)

	// FindForTenant finds all movements for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindCostLayerSources finds non-reversed cost-layer source movements for
	// a product (optionally scoped to one warehouse), ordered by movement
	// date ascending
	FindCostLayerSources(ctx context.Context, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) ([]StockMovement, error)

	// Create appends a new movement to the log
	Create(ctx context.Context, movement *StockMovement) error

	// UpdateReversal records the reversal linkage on an existing movement.
	// It fails with ErrAlreadyReversed when the movement was already
	// reversed by a concurrent caller.
	UpdateReversal(ctx context.Context, movement *StockMovement) error

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ReservationRepository defines the interface for reservation persistence
type ReservationRepository interface {
	// FindByID finds a reservation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockReservation, error)

	// FindByIDForTenant finds a reservation by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockReservation, error)

	// FindByNumber finds a reservation by its reservation number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, reservationNumber string) (*StockReservation, error)

	// FindByProduct finds reservations for a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]StockReservation, error)

	// FindByStatus finds reservations in a specific status
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ReservationStatus, filter shared.Filter) ([]StockReservation, error)

	// FindByReference finds reservations by source document
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]StockReservation, error)

	// FindAllForTenant finds all reservations for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockReservation, error)

	// FindExpired finds non-terminal reservations whose expiration date is
	// before the given instant, across all tenants
	FindExpired(ctx context.Context, now time.Time) ([]StockReservation, error)

	// Save creates or updates a reservation
	Save(ctx context.Context, reservation *StockReservation) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, reservation *StockReservation) error

	// CountForTenant counts reservations matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
