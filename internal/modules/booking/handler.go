package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studiobooking/internal/modules/lifecycle"
	"studiobooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.MyBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/bookings/:id/cancellation-quote", h.CancellationQuote)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
		case errors.Is(err, ErrDateInPast):
			response.Error(c, http.StatusBadRequest, "DATE_IN_PAST", "Booking date must be in the future")
		case errors.Is(err, ErrSlotNotFound):
			response.Error(c, http.StatusNotFound, "SLOT_NOT_FOUND", "Time slot not found")
		case errors.Is(err, ErrStudioClosed):
			response.Error(c, http.StatusConflict, "STUDIO_CLOSED", "The studio is closed on that day")
		case errors.Is(err, ErrInvalidCoupon):
			response.Error(c, http.StatusBadRequest, "INVALID_COUPON", "Coupon code is invalid or expired")
		case errors.Is(err, ErrSlotTaken):
			response.Error(c, http.StatusConflict, "SLOT_TAKEN", "The slot is already booked for that date")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) MyBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.GetMyBookings(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.ownershipError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancellationQuote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	quote, err := h.service.QuoteCancellation(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.ownershipError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	result, err := h.service.CancelBooking(c.Request.Context(), c.GetInt64("user_id"), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another user")
		case errors.Is(err, lifecycle.ErrNotCancellable):
			response.Error(c, http.StatusConflict, "NOT_CANCELLABLE", "Booking can no longer be cancelled")
		case errors.Is(err, lifecycle.ErrBookingDatePassed):
			response.Error(c, http.StatusConflict, "DATE_PASSED", "Booking date is already in the past")
		case errors.Is(err, lifecycle.ErrConcurrentUpdate):
			response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", "Booking was modified concurrently, try again")
		case errors.Is(err, lifecycle.ErrInvoicingNotConfigured), errors.Is(err, lifecycle.ErrStornoFailed):
			response.Error(c, http.StatusBadGateway, "STORNO_FAILED", "The paid invoice could not be reversed")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel booking")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"booking": result.Booking,
		"quote":   result.Quote,
		"steps":   result.Steps,
		"message": result.Summary(),
	})
}

func (h *Handler) ownershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Booking belongs to another user")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
	}
}
