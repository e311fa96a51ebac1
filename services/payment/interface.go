package payment

import (
	"context"

	"academix/models"
)

// VerifyPaymentRequest is the client-side confirmation call, carrying the
// checkout artefacts the gateway handed to the app.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// RefundRequest is the admin-triggered refund call.
type RefundRequest struct {
	BookingID string  `json:"bookingId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Reason    string  `json:"reason"`
}

// ReconcilerService unifies the two payment confirmation paths (the client
// verification call and the gateway webhook) into one idempotent state
// transition, and owns the refund engine.
type ReconcilerService interface {
	VerifyPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (*models.Booking, error)
	HandlePaymentCaptured(ctx context.Context, p *models.PaymentEntity) error
	HandlePaymentFailed(ctx context.Context, p *models.PaymentEntity) error

	CreateRefund(ctx context.Context, adminID string, req RefundRequest) (*models.Transaction, error)
	HandleRefundProcessed(ctx context.Context, r *models.RefundEntity) error
	HandleRefundFailed(ctx context.Context, r *models.RefundEntity) error
}
