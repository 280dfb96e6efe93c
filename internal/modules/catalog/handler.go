package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studiobooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/time-slots", h.ListTimeSlots)
	rg.GET("/extras", h.ListExtras)
	rg.GET("/opening-hours", h.ListOpeningHours)
	rg.GET("/availability", h.GetAvailability)
}

func (h *Handler) ListTimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list time slots")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"time_slots": slots})
}

func (h *Handler) ListExtras(c *gin.Context) {
	extras, err := h.service.ListExtras(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list extras")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"extras": extras})
}

func (h *Handler) ListOpeningHours(c *gin.Context) {
	hours, err := h.service.ListOpeningHours(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list opening hours")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"opening_hours": hours})
}

func (h *Handler) GetAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required")
		return
	}

	availability, err := h.service.GetAvailability(c.Request.Context(), dateStr)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date, expected YYYY-MM-DD")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load availability")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"availability": availability})
}
