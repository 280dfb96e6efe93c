package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studiobooking/internal/modules/lifecycle"
	"studiobooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// bookings
	admin.GET("/bookings", h.ListBookings)
	admin.GET("/bookings/:id", h.GetBooking)
	admin.PUT("/bookings/:id/status", h.UpdateStatus)
	admin.PATCH("/bookings/:id/notes", h.UpdateNotes)
	admin.POST("/bookings/:id/invoice", h.RegenerateInvoice)
	admin.POST("/bookings/:id/resend-email", h.ResendEmail)

	// cancellation policy
	admin.GET("/cancellation-policy", h.GetPolicy)
	admin.PUT("/cancellation-policy", h.ReplacePolicy)

	// catalog
	admin.GET("/time-slots", h.ListTimeSlots)
	admin.POST("/time-slots", h.CreateTimeSlot)
	admin.PUT("/time-slots/:id", h.UpdateTimeSlot)
	admin.DELETE("/time-slots/:id", h.DeleteTimeSlot)

	admin.GET("/extras", h.ListExtras)
	admin.POST("/extras", h.CreateExtra)
	admin.PUT("/extras/:id", h.UpdateExtra)
	admin.DELETE("/extras/:id", h.DeleteExtra)

	admin.GET("/coupons", h.ListCoupons)
	admin.POST("/coupons", h.CreateCoupon)
	admin.PUT("/coupons/:id", h.UpdateCoupon)
	admin.DELETE("/coupons/:id", h.DeleteCoupon)

	admin.GET("/opening-hours", h.ListOpeningHours)
	admin.PUT("/opening-hours", h.SaveOpeningHours)
}

// -------------------- bookings --------------------

func (h *Handler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	params := ListParams{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date_from")
			return
		}
		params.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date_to")
			return
		}
		params.DateTo = &t
	}

	bookings, total, err := h.service.ListBookings(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown booking status filter")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    total,
	})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.lifecycleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"booking": result.Booking,
		"quote":   result.Quote,
		"steps":   result.Steps,
		"message": result.Summary(),
	})
}

func (h *Handler) UpdateNotes(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.UpdateNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update notes")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RegenerateInvoice(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	result, err := h.service.RegenerateInvoice(c.Request.Context(), id)
	if err != nil {
		h.lifecycleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"booking": result.Booking,
		"steps":   result.Steps,
		"message": result.Summary(),
	})
}

func (h *Handler) ResendEmail(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req ResendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.ResendEmail(c.Request.Context(), id, req.Template)
	if err != nil {
		if errors.Is(err, ErrInvalidTemplate) {
			response.Error(c, http.StatusBadRequest, "INVALID_TEMPLATE", "Unknown email template")
			return
		}
		h.lifecycleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"steps":   result.Steps,
		"message": result.Summary(),
	})
}

// -------------------- cancellation policy --------------------

func (h *Handler) GetPolicy(c *gin.Context) {
	rules, err := h.service.GetPolicy(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cancellation policy")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rules": rules})
}

func (h *Handler) ReplacePolicy(c *gin.Context) {
	var req ReplacePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rules, err := h.service.ReplacePolicy(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidPolicy) {
			response.Error(c, http.StatusBadRequest, "INVALID_POLICY", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cancellation policy")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rules": rules})
}

// -------------------- catalog --------------------

func (h *Handler) ListTimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list time slots")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"time_slots": slots})
}

func (h *Handler) CreateTimeSlot(c *gin.Context) { h.saveTimeSlot(c, 0) }

func (h *Handler) UpdateTimeSlot(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	h.saveTimeSlot(c, id)
}

func (h *Handler) saveTimeSlot(c *gin.Context, id int64) {
	var req TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	slot, err := h.service.SaveTimeSlot(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid time slot")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save time slot")
		return
	}
	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"time_slot": slot})
}

func (h *Handler) DeleteTimeSlot(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTimeSlot(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete time slot")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ListExtras(c *gin.Context) {
	extras, err := h.service.ListExtras(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list extras")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"extras": extras})
}

func (h *Handler) CreateExtra(c *gin.Context) { h.saveExtra(c, 0) }

func (h *Handler) UpdateExtra(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	h.saveExtra(c, id)
}

func (h *Handler) saveExtra(c *gin.Context, id int64) {
	var req ExtraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	extra, err := h.service.SaveExtra(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid extra")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save extra")
		return
	}
	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"extra": extra})
}

func (h *Handler) DeleteExtra(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteExtra(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete extra")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ListCoupons(c *gin.Context) {
	coupons, err := h.service.ListCoupons(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list coupons")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"coupons": coupons})
}

func (h *Handler) CreateCoupon(c *gin.Context) { h.saveCoupon(c, 0) }

func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	h.saveCoupon(c, id)
}

func (h *Handler) saveCoupon(c *gin.Context, id int64) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	coupon, err := h.service.SaveCoupon(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid coupon")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save coupon")
		return
	}
	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"coupon": coupon})
}

func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCoupon(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete coupon")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ListOpeningHours(c *gin.Context) {
	hours, err := h.service.ListOpeningHours(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list opening hours")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"opening_hours": hours})
}

func (h *Handler) SaveOpeningHours(c *gin.Context) {
	var req OpeningHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	hours, err := h.service.SaveOpeningHours(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid opening hours")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save opening hours")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"opening_hours": hours})
}

// -------------------- helpers --------------------

func (h *Handler) bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) lifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown booking status")
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, lifecycle.ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Transition not allowed from the current status")
	case errors.Is(err, lifecycle.ErrNotCancellable):
		response.Error(c, http.StatusConflict, "NOT_CANCELLABLE", "Booking can no longer be cancelled")
	case errors.Is(err, lifecycle.ErrBookingDatePassed):
		response.Error(c, http.StatusConflict, "DATE_PASSED", "Booking date is already in the past")
	case errors.Is(err, lifecycle.ErrConcurrentUpdate):
		response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", "Booking was modified concurrently, try again")
	case errors.Is(err, lifecycle.ErrInvoicingNotConfigured), errors.Is(err, lifecycle.ErrStornoFailed):
		response.Error(c, http.StatusBadGateway, "STORNO_FAILED", "The paid invoice could not be reversed")
	case errors.Is(err, lifecycle.ErrNoDocumentForStatus):
		response.Error(c, http.StatusConflict, "NO_DOCUMENT", "No invoice applies to the current status")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}
