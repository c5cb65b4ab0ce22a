package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// SetMinQuantityRequest represents a request to update the reorder threshold
type SetMinQuantityRequest struct {
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// listFilter builds a pagination filter from common query parameters
func listFilter(c *gin.Context) (shared.Filter, error) {
	filter := shared.DefaultFilter()

	page, err := queryInt(c, "page", filter.Page)
	if err != nil {
		return filter, err
	}
	pageSize, err := queryInt(c, "page_size", filter.PageSize)
	if err != nil {
		return filter, err
	}
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		filter.PageSize = pageSize
	}
	if orderBy := c.Query("order_by"); orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir := c.Query("order_dir"); orderDir == "asc" || orderDir == "desc" {
		filter.OrderDir = orderDir
	}
	return filter, nil
}

// Get returns a stock record by ID
func (h *StockHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	stockID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid stock ID")
		return
	}

	stock, err := h.stockService.GetStock(c.Request.Context(), tenantID, stockID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Lookup returns the stock record for an exact ledger key
func (h *StockHandler) Lookup(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	productID, err := queryUUID(c, "product_id")
	if err != nil || productID == nil {
		h.BadRequest(c, "product_id is required")
		return
	}
	warehouseID, err := queryUUID(c, "warehouse_id")
	if err != nil || warehouseID == nil {
		h.BadRequest(c, "warehouse_id is required")
		return
	}
	locationID, err := queryUUID(c, "location_id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	key := inventory.StockKey{
		ProductID:    *productID,
		WarehouseID:  *warehouseID,
		LocationID:   locationID,
		LotNumber:    c.Query("lot_number"),
		SerialNumber: c.Query("serial_number"),
	}

	stock, err := h.stockService.GetStockByKey(c.Request.Context(), tenantID, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListByWarehouse returns all stock records of one warehouse
func (h *StockHandler) ListByWarehouse(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	warehouseID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stocks, err := h.stockService.ListByWarehouse(c.Request.Context(), tenantID, warehouseID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stocks)
}

// ListByProduct returns all stock records of one product across warehouses
func (h *StockHandler) ListByProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	productID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stocks, err := h.stockService.ListByProduct(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stocks)
}

// ListBelowMinimum returns stock records under their reorder threshold
func (h *StockHandler) ListBelowMinimum(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stocks, err := h.stockService.ListBelowMinimum(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stocks)
}

// SetMinQuantity updates the reorder threshold of a stock record
func (h *StockHandler) SetMinQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	stockID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid stock ID")
		return
	}

	var req SetMinQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	stock, err := h.stockService.SetMinimumQuantity(c.Request.Context(), tenantID, stockID, req.MinQuantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// PlanLotConsumption plans lot depletion over candidate lots supplied by the
// caller, FIFO or FEFO
func (h *StockHandler) PlanLotConsumption(c *gin.Context) {
	var req inventoryapp.PlanLotConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	plan, err := h.stockService.PlanLotConsumption(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// RegisterRoutes registers stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/lookup", h.Lookup)
		stock.GET("/below-minimum", h.ListBelowMinimum)
		stock.GET("/:id", h.Get)
		stock.PUT("/:id/min-quantity", h.SetMinQuantity)
		stock.POST("/plan-lot-consumption", h.PlanLotConsumption)
	}

	rg.GET("/warehouses/:id/stock", h.ListByWarehouse)
	rg.GET("/products/:id/stock", h.ListByProduct)
}
