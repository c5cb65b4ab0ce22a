package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
)

// MovementHandler handles stock movement API endpoints
type MovementHandler struct {
	BaseHandler
	movementService *inventoryapp.MovementService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movementService *inventoryapp.MovementService) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

// ReverseRequest is the body of a movement reversal request
type ReverseRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// CreateIncoming records an incoming stock movement
func (h *MovementHandler) CreateIncoming(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	movement, err := h.movementService.CreateIncoming(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// CreateOutgoing records an outgoing stock movement
func (h *MovementHandler) CreateOutgoing(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	movement, err := h.movementService.CreateOutgoing(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// CreateTransfer records a transfer between locations of one warehouse
func (h *MovementHandler) CreateTransfer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	movement, err := h.movementService.CreateTransfer(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Reverse reverses a recorded movement with a compensating movement
func (h *MovementHandler) Reverse(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	movementID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	var body ReverseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}

	reversal, err := h.movementService.ReverseMovement(c.Request.Context(), tenantID, inventoryapp.ReverseMovementRequest{
		MovementID: movementID,
		Reason:     body.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reversal)
}

// RecordCount applies a physical count result to the ledger
func (h *MovementHandler) RecordCount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.movementService.RecordCount(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get returns a movement by ID
func (h *MovementHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	movementID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	movement, err := h.movementService.GetMovement(c.Request.Context(), tenantID, movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// GetByNumber returns a movement by document number
func (h *MovementHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	movement, err := h.movementService.GetMovementByDocumentNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// List returns movements matching the query filters
func (h *MovementHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	filter, err := h.buildFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, total, err := h.movementService.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, movements, total, page, pageSize)
}

func (h *MovementHandler) buildFilter(c *gin.Context) (inventoryapp.MovementListFilter, error) {
	var filter inventoryapp.MovementListFilter
	var err error

	if filter.WarehouseID, err = queryUUID(c, "warehouse_id"); err != nil {
		return filter, err
	}
	if filter.ProductID, err = queryUUID(c, "product_id"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = queryTime(c, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryTime(c, "end_date"); err != nil {
		return filter, err
	}
	if filter.IncludeReversed, err = queryBool(c, "include_reversed"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt(c, "page", 0); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt(c, "page_size", 0); err != nil {
		return filter, err
	}
	filter.MovementType = c.Query("movement_type")
	filter.OrderBy = c.Query("order_by")
	if orderDir := c.Query("order_dir"); orderDir == "asc" || orderDir == "desc" {
		filter.OrderDir = orderDir
	}
	return filter, nil
}

// RegisterRoutes registers movement routes
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movements := rg.Group("/movements")
	{
		movements.GET("", h.List)
		movements.GET("/by-number/:number", h.GetByNumber)
		movements.GET("/:id", h.Get)
		movements.POST("/incoming", h.CreateIncoming)
		movements.POST("/outgoing", h.CreateOutgoing)
		movements.POST("/transfer", h.CreateTransfer)
		movements.POST("/count", h.RecordCount)
		movements.POST("/:id/reverse", h.Reverse)
	}
}
