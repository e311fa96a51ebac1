package gateway

import "context"

// Gateway payment statuses considered paid.
const (
	PaymentStateCaptured   = "captured"
	PaymentStateAuthorized = "authorized"
)

// CreateOrderInput opens a gateway order. Amount is in paise.
type CreateOrderInput struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is a gateway order reference.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

// Payment is the gateway's view of a payment attempt. Amount is in paise.
type Payment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
	Method   string
}

// CreateTransferInput initiates a transfer to a linked account. Amount is in
// paise; Notes carry the idempotency references (booking id, transaction id).
type CreateTransferInput struct {
	AccountID string
	Amount    int64
	Currency  string
	Notes     map[string]string
}

// Transfer is a gateway transfer reference. The create call only confirms
// initiation; settlement arrives later via webhook.
type Transfer struct {
	ID     string
	Status string
}

// CreateRefundInput refunds a captured payment, fully when Amount is 0.
type CreateRefundInput struct {
	PaymentID string
	Amount    int64
	Notes     map[string]string
}

// Refund is a gateway refund reference.
type Refund struct {
	ID     string
	Status string
	Amount int64
}

// Client is the payment gateway collaborator. Every call is a blocking I/O
// boundary; callers must not hold locks across it.
type Client interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreateTransfer(ctx context.Context, in CreateTransferInput) (*Transfer, error)
	CreateRefund(ctx context.Context, in CreateRefundInput) (*Refund, error)

	// VerifyPaymentSignature checks the checkout signature the client app
	// received against the shared key secret.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool

	// VerifyWebhookSignature checks the webhook signature header against the
	// raw request body using the webhook secret.
	VerifyWebhookSignature(body []byte, signature string) bool
}
