package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByIDForTenant finds a reservation by ID within a tenant
func (r *GormReservationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByNumber finds a reservation by its reservation number
func (r *GormReservationRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, reservationNumber string) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reservation_number = ?", tenantID, reservationNumber).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByProduct finds reservations for a product
func (r *GormReservationRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockReservation{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter,
	)

	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindByStatus finds reservations in a specific status
func (r *GormReservationRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status inventory.ReservationStatus, filter shared.Filter) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockReservation{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindByReference finds reservations by source document
func (r *GormReservationRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID).
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindAllForTenant finds all reservations for a tenant
func (r *GormReservationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockReservation{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindExpired finds non-terminal reservations whose expiration date is
// before the given instant, across all tenants
func (r *GormReservationRepository) FindExpired(ctx context.Context, now time.Time) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND expiration_date IS NOT NULL AND expiration_date < ?",
			[]inventory.ReservationStatus{
				inventory.ReservationStatusActive,
				inventory.ReservationStatusPartiallyFulfilled,
			}, now).
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Save creates or updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, reservation *inventory.StockReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormReservationRepository) SaveWithLock(ctx context.Context, reservation *inventory.StockReservation) error {
	result := r.db.WithContext(ctx).
		Model(reservation).
		Where("id = ? AND version = ?", reservation.ID, reservation.Version-1).
		Updates(map[string]interface{}{
			"remaining_quantity": reservation.RemainingQuantity,
			"status":             reservation.Status,
			"cancelled_by":       reservation.CancelledBy,
			"cancel_reason":      reservation.CancelReason,
			"version":            reservation.Version,
			"updated_at":         reservation.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForTenant counts reservations matching the filter
func (r *GormReservationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.StockReservation{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormReservationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReservationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "reservation_type":
			query = query.Where("reservation_type = ?", value)
		case "expiring_before":
			query = query.Where("status IN ? AND expiration_date IS NOT NULL AND expiration_date < ?",
				[]inventory.ReservationStatus{
					inventory.ReservationStatusActive,
					inventory.ReservationStatusPartiallyFulfilled,
				}, value)
		}
	}

	return query
}

// Ensure GormReservationRepository implements ReservationRepository
var _ inventory.ReservationRepository = (*GormReservationRepository)(nil)
