package booking

import (
	"context"

	"academix/models"
)

// CreateOrderRequest opens a booking and its gateway order.
type CreateOrderRequest struct {
	BatchID        string   `json:"batchId" binding:"required"`
	ParticipantIDs []string `json:"participantIds" binding:"required,min=1"`
	Currency       string   `json:"currency"`
}

// CreateOrderResponse returns the pending booking plus what the client needs
// to open the gateway checkout.
type CreateOrderResponse struct {
	Booking *models.Booking `json:"booking"`
	OrderID string          `json:"orderId"`
	Amount  float64         `json:"amount"`
}

// BookingService owns the booking state machine up to payment confirmation.
type BookingService interface {
	CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*CreateOrderResponse, error)
	CancelOrder(ctx context.Context, userID, bookingID string) error
	GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]models.Booking, error)
}
