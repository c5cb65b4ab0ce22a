package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByIDForTenant finds a stock record by ID within a tenant
func (r *GormStockRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// keyQuery narrows a query to one ledger key. Warehouse-level records store
// uuid.Nil in location_id and lot/serial default to the empty string, so the
// full tuple is always comparable and the unique index always conflicts.
func keyQuery(query *gorm.DB, tenantID uuid.UUID, key inventory.StockKey) *gorm.DB {
	return query.Where(
		"tenant_id = ? AND product_id = ? AND warehouse_id = ? AND location_id = ? AND lot_number = ? AND serial_number = ?",
		tenantID, key.ProductID, key.WarehouseID, key.StoredLocationID(), key.LotNumber, key.SerialNumber,
	)
}

// FindByKey finds the stock record for a ledger key
func (r *GormStockRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := keyQuery(r.db.WithContext(ctx), tenantID, key).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// GetOrCreate returns the stock record for a ledger key, creating a
// zero-quantity record on first touch
func (r *GormStockRepository) GetOrCreate(ctx context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.Stock, error) {
	stock, err := r.FindByKey(ctx, tenantID, key)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	stock, err = inventory.NewStock(tenantID, key)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT covers two callers racing on the first touch. The loser
	// inserts nothing and reads back the winner's row.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "product_id"}, {Name: "warehouse_id"},
				{Name: "location_id"}, {Name: "lot_number"}, {Name: "serial_number"},
			},
			DoNothing: true,
		}).
		Create(stock)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return r.FindByKey(ctx, tenantID, key)
	}
	return stock, nil
}

// FindByWarehouse finds all stock records in a warehouse
func (r *GormStockRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Stock{}).
			Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter,
	)

	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindByProduct finds all stock records for a product across warehouses
func (r *GormStockRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Stock{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter,
	)

	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindAllForTenant finds all stock records for a tenant
func (r *GormStockRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Stock{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindBelowMinimum finds stock records below their alert threshold
func (r *GormStockRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Stock{}).
			Where("tenant_id = ? AND min_quantity > 0 AND quantity < min_quantity", tenantID),
		filter,
	)

	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Save creates or updates a stock record
func (r *GormStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockRepository) SaveWithLock(ctx context.Context, stock *inventory.Stock) error {
	result := r.db.WithContext(ctx).
		Model(stock).
		Where("id = ? AND version = ?", stock.ID, stock.Version-1).
		Updates(map[string]interface{}{
			"quantity":          stock.Quantity,
			"reserved_quantity": stock.ReservedQuantity,
			"min_quantity":      stock.MinQuantity,
			"version":           stock.Version,
			"updated_at":        stock.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForTenant counts stock records matching the filter
func (r *GormStockRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Stock{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByProduct sums on-hand quantity for a product, optionally
// scoped to one warehouse
func (r *GormStockRepository) SumQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&inventory.Stock{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormStockRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormStockRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "lot_number":
			query = query.Where("lot_number = ?", value)
		case "below_minimum":
			if value == true {
				query = query.Where("min_quantity > 0 AND quantity < min_quantity")
			}
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		case "has_reserved":
			if value == true {
				query = query.Where("reserved_quantity > 0")
			}
		}
	}

	return query
}

// Ensure GormStockRepository implements StockRepository
var _ inventory.StockRepository = (*GormStockRepository)(nil)
