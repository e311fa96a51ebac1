package models

import "time"

// Payout statuses. Once COMPLETED a payout may only move to REFUNDED, never
// back to PENDING.
const (
	TransferStatusPending    = "PENDING"
	TransferStatusProcessing = "PROCESSING"
	TransferStatusCompleted  = "COMPLETED"
	TransferStatusFailed     = "FAILED"
	TransferStatusCancelled  = "CANCELLED"
	TransferStatusRefunded   = "REFUNDED"
)

// Payout is the platform's obligation to transfer money to an academy for one
// completed, paid booking. Exactly one payout exists per booking.
type Payout struct {
	ID            string  `bson:"id" json:"id"`
	BookingID     string  `bson:"booking_id" json:"bookingId"`
	TransactionID string  `bson:"transaction_id" json:"transactionId"`
	AcademyID     string  `bson:"academy_id" json:"academyId"`
	AccountID     string  `bson:"account_id,omitempty" json:"accountId,omitempty"` // gateway linked account
	Amount        float64 `bson:"amount" json:"amount"`                            // full booking amount
	BatchAmount   float64 `bson:"batch_amount" json:"batchAmount"`                 // academy's share before commission

	CommissionRate   float64 `bson:"commission_rate" json:"commissionRate"`
	CommissionAmount float64 `bson:"commission_amount" json:"commissionAmount"`
	PayoutAmount     float64 `bson:"payout_amount" json:"payoutAmount"` // batch_amount - commission_amount

	Currency string `bson:"currency" json:"currency"`
	Status   string `bson:"status" json:"status"`

	RazorpayTransferID string `bson:"razorpay_transfer_id,omitempty" json:"razorpayTransferId,omitempty"`
	FailureReason      string `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`

	// Set only once a refund has touched this payout.
	RefundAmount         *float64 `bson:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	AdjustedPayoutAmount *float64 `bson:"adjusted_payout_amount,omitempty" json:"adjustedPayoutAmount,omitempty"`

	ProcessedAt *time.Time `bson:"processed_at,omitempty" json:"processedAt,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}
