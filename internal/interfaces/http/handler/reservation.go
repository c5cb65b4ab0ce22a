package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
)

// ReservationHandler handles stock reservation API endpoints
type ReservationHandler struct {
	BaseHandler
	reservationService *inventoryapp.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService *inventoryapp.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// Create places a hold on available stock
func (h *ReservationHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	reservation, err := h.reservationService.CreateReservation(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reservation)
}

// CheckAvailability reports whether a quantity could be reserved without
// placing a hold
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var req inventoryapp.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	availability, err := h.reservationService.CheckAvailability(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, availability)
}

// Fulfill consumes the full remaining quantity of a reservation
func (h *ReservationHandler) Fulfill(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	reservationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	reservation, err := h.reservationService.FulfillReservation(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// PartialFulfill consumes part of the remaining quantity of a reservation
func (h *ReservationHandler) PartialFulfill(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	reservationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	var req inventoryapp.PartialFulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	reservation, err := h.reservationService.PartialFulfillReservation(c.Request.Context(), tenantID, reservationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// Cancel releases the remaining quantity of a reservation
func (h *ReservationHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	reservationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	var req inventoryapp.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	reservation, err := h.reservationService.CancelReservation(c.Request.Context(), tenantID, reservationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// Get returns a reservation by ID
func (h *ReservationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}
	reservationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	reservation, err := h.reservationService.GetReservation(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// GetByNumber returns a reservation by reservation number
func (h *ReservationHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	reservation, err := h.reservationService.GetReservationByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// List returns reservations matching the query filters
func (h *ReservationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	var filter inventoryapp.ReservationListFilter
	if filter.WarehouseID, err = queryUUID(c, "warehouse_id"); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.ProductID, err = queryUUID(c, "product_id"); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page, err = queryInt(c, "page", 0); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.PageSize, err = queryInt(c, "page_size", 0); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter.Status = c.Query("status")
	filter.OrderBy = c.Query("order_by")
	if orderDir := c.Query("order_dir"); orderDir == "asc" || orderDir == "desc" {
		filter.OrderDir = orderDir
	}

	reservations, total, err := h.reservationService.ListReservations(c.Request.Context(), tenantID, filter)
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
	h.SuccessWithMeta(c, reservations, total, page, pageSize)
}

// ListByReference returns the reservations created from one source document
func (h *ReservationHandler) ListByReference(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	referenceType := c.Query("reference_type")
	referenceID := c.Query("reference_id")
	if referenceType == "" || referenceID == "" {
		h.BadRequest(c, "reference_type and reference_id are required")
		return
	}

	reservations, err := h.reservationService.GetReservationsByReference(c.Request.Context(), tenantID, referenceType, referenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservations)
}

// ListExpiringSoon returns non-terminal reservations due to expire within
// the requested number of hours (default 24), soonest first
func (h *ReservationHandler) ListExpiringSoon(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant context")
		return
	}

	hours, err := queryInt(c, "within_hours", 24)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if hours <= 0 {
		h.BadRequest(c, "within_hours must be positive")
		return
	}

	reservations, err := h.reservationService.ListExpiringSoon(c.Request.Context(), tenantID, time.Duration(hours)*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservations)
}

// RegisterRoutes registers reservation routes
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.GET("", h.List)
		reservations.GET("/by-reference", h.ListByReference)
		reservations.GET("/expiring-soon", h.ListExpiringSoon)
		reservations.GET("/by-number/:number", h.GetByNumber)
		reservations.GET("/:id", h.Get)
		reservations.POST("", h.Create)
		reservations.POST("/check-availability", h.CheckAvailability)
		reservations.POST("/:id/fulfill", h.Fulfill)
		reservations.POST("/:id/partial-fulfill", h.PartialFulfill)
		reservations.POST("/:id/cancel", h.Cancel)
	}
}
