package models

import "time"

// Transaction types.
const (
	TransactionTypePayment = "PAYMENT"
	TransactionTypeRefund  = "REFUND"
)

// Transaction sources record provenance for audit, not authority; both the
// client verification call and the webhook may legitimately write the same row.
const (
	TransactionSourceClient  = "client-verification"
	TransactionSourceWebhook = "webhook"
	TransactionSourceManual  = "manual"
)

// Transaction is an immutable ledger entry for one money movement attempt
// tied to one booking. Payments are keyed by (booking, order id); the two
// confirmation paths upsert the same logical record rather than racing to
// insert separate rows.
type Transaction struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"booking_id" json:"bookingId"`
	Type      string    `bson:"type" json:"type"`
	OrderID   string    `bson:"order_id" json:"orderId"`
	PaymentID string    `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	RefundID  string    `bson:"refund_id,omitempty" json:"refundId,omitempty"`
	Amount    float64   `bson:"amount" json:"amount"`
	Currency  string    `bson:"currency" json:"currency"`
	Status    string    `bson:"status" json:"status"`
	Source    string    `bson:"source" json:"source"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
