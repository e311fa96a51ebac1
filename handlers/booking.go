package handlers

import (
	"net/http"

	"academix/services/booking"
	"academix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// CreateOrderHandler prices a batch enrollment and opens a gateway order.
func (h *BookingHandler) CreateOrderHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req booking.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	resp, err := h.Service.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CancelOrderHandler cancels a pending booking before payment completes.
func (h *BookingHandler) CancelOrderHandler(c *gin.Context) {
	userID := c.GetString("userID")
	bookingID := c.Param("id")

	if err := h.Service.CancelOrder(c.Request.Context(), userID, bookingID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "bookingId": bookingID})
}

// GetBookingHandler returns one booking owned by the caller.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	userID := c.GetString("userID")
	bookingID := c.Param("id")

	bk, err := h.Service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bk)
}

// ListBookingsHandler returns the caller's bookings, newest first.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	userID := c.GetString("userID")

	bookings, err := h.Service.ListBookings(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}
