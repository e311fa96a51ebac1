package models

import "time"

// Booking-level statuses.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Payment statuses (tracked on the booking independently of Booking.Status).
const (
	PaymentStatusPending    = "PENDING"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusSuccess    = "SUCCESS"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusCancelled  = "CANCELLED"
	PaymentStatusRefunded   = "REFUNDED"
)

// Payout mirror statuses kept on the booking for fast reads.
const (
	PayoutStatusNotInitiated = "NOT_INITIATED"
	PayoutStatusPending      = "PENDING"
	PayoutStatusProcessing   = "PROCESSING"
	PayoutStatusCompleted    = "COMPLETED"
	PayoutStatusFailed       = "FAILED"
	PayoutStatusRefunded     = "REFUNDED"
)

// PriceBreakdown captures every component of the charged amount, each value
// pre-rounded to 2 decimals so stored and recomputed figures match exactly.
type PriceBreakdown struct {
	AdmissionFee     float64 `bson:"admission_fee" json:"admissionFee"`
	BaseFee          float64 `bson:"base_fee" json:"baseFee"`
	PlatformFee      float64 `bson:"platform_fee" json:"platformFee"`
	GST              float64 `bson:"gst" json:"gst"`
	Subtotal         float64 `bson:"subtotal" json:"subtotal"`
	ParticipantCount int     `bson:"participant_count" json:"participantCount"`
}

// Commission is the platform's cut of the academy's gross share, snapshotted
// at calculation time so later settings changes never alter historical payouts.
type Commission struct {
	Rate         float64   `bson:"rate" json:"rate"` // normalized to [0,1]
	Amount       float64   `bson:"amount" json:"amount"`
	PayoutAmount float64   `bson:"payout_amount" json:"payoutAmount"`
	CalculatedAt time.Time `bson:"calculated_at" json:"calculatedAt"`
}

// PaymentInfo tracks the payment axis of a booking.
type PaymentInfo struct {
	Status        string     `bson:"status" json:"status"`
	OrderID       string     `bson:"order_id" json:"orderId"`
	PaymentID     string     `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	FailureReason string     `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
}

// Booking is a reservation of batch capacity for one or more participants.
type Booking struct {
	ID             string         `bson:"id" json:"id"`
	Code           string         `bson:"code" json:"code"` // e.g. BK-2026-000042
	UserID         string         `bson:"user_id" json:"userId"`
	BatchID        string         `bson:"batch_id" json:"batchId"`
	AcademyID      string         `bson:"academy_id" json:"academyId"`
	ParticipantIDs []string       `bson:"participant_ids" json:"participantIds"`
	Amount         float64        `bson:"amount" json:"amount"`
	Currency       string         `bson:"currency" json:"currency"`
	PriceBreakdown PriceBreakdown `bson:"price_breakdown" json:"priceBreakdown"`
	Commission     Commission     `bson:"commission" json:"commission"`
	Status         string         `bson:"status" json:"status"`
	Payment        PaymentInfo    `bson:"payment" json:"payment"`
	PayoutStatus   string         `bson:"payout_status" json:"payoutStatus"`
	CreatedAt      time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updatedAt"`
}
