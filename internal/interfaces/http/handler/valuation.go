package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// ValuationHandler handles inventory valuation API endpoints
type ValuationHandler struct {
	BaseHandler
	valuationService *inventoryapp.ValuationService
}

// NewValuationHandler creates a new ValuationHandler
func NewValuationHandler(valuationService *inventoryapp.ValuationService) *ValuationHandler {
	return &ValuationHandler{valuationService: valuationService}
}

// GetCostLayers returns the open cost layers of a product
func (h *ValuationHandler) GetCostLayers(c *gin.Context) {
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
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	layers, err := h.valuationService.GetCostLayers(c.Request.Context(), tenantID, *productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, layers)
}

// CalculateCOGS prices a hypothetical issue of stock under one cost method
func (h *ValuationHandler) CalculateCOGS(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.COGSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.valuationService.CalculateCOGS(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CompareCostMethods prices the same issue under FIFO, LIFO and WAC
func (h *ValuationHandler) CompareCostMethods(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CompareCostMethodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	comparison, err := h.valuationService.CompareCostMethods(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comparison)
}

// StandardCostVariance reports actual versus standard unit cost
func (h *ValuationHandler) StandardCostVariance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CostVarianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	variance, err := h.valuationService.StandardCostVariance(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variance)
}

// WarehouseValuation values all stock of one warehouse under a cost method
func (h *ValuationHandler) WarehouseValuation(c *gin.Context) {
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

	method := inventory.CostMethod(strings.ToUpper(c.DefaultQuery("method", string(inventory.CostMethodWAC))))
	if !method.IsValid() {
		h.BadRequest(c, "Invalid cost method")
		return
	}

	valuation, err := h.valuationService.WarehouseValuation(c.Request.Context(), tenantID, warehouseID, method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, valuation)
}

// RegisterRoutes registers valuation routes
func (h *ValuationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	valuation := rg.Group("/valuation")
	{
		valuation.GET("/layers", h.GetCostLayers)
		valuation.POST("/cogs", h.CalculateCOGS)
		valuation.POST("/compare", h.CompareCostMethods)
		valuation.POST("/variance", h.StandardCostVariance)
		valuation.GET("/warehouses/:id", h.WarehouseValuation)
	}
}
