package models

// Gateway webhook event names handled by the pipeline.
const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
	EventTransferProcessed = "transfer.processed"
	EventTransferFailed    = "transfer.failed"
	EventRefundProcessed   = "refund.processed"
	EventRefundFailed      = "refund.failed"
)

// PaymentEntity mirrors the gateway's payment object. Amounts are in paise.
type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// TransferEntity mirrors the gateway's transfer object.
type TransferEntity struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

// RefundEntity mirrors the gateway's refund object.
type RefundEntity struct {
	ID        string                 `json:"id"`
	PaymentID string                 `json:"payment_id"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	Status    string                 `json:"status"`
	Notes     map[string]interface{} `json:"notes"`
}

type paymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

type transferWrapper struct {
	Entity TransferEntity `json:"entity"`
}

type refundWrapper struct {
	Entity RefundEntity `json:"entity"`
}

// WebhookPayload carries whichever entity the event concerns.
type WebhookPayload struct {
	Payment  *paymentWrapper  `json:"payment,omitempty"`
	Transfer *transferWrapper `json:"transfer,omitempty"`
	Refund   *refundWrapper   `json:"refund,omitempty"`
}

// WebhookEvent is the gateway's webhook envelope.
type WebhookEvent struct {
	Event     string         `json:"event"`
	AccountID string         `json:"account_id"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

// PaymentEntity returns the payment entity of the event, if present.
func (e *WebhookEvent) PaymentEntity() *PaymentEntity {
	if e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

// TransferEntity returns the transfer entity of the event, if present.
func (e *WebhookEvent) TransferEntity() *TransferEntity {
	if e.Payload.Transfer == nil {
		return nil
	}
	return &e.Payload.Transfer.Entity
}

// RefundEntity returns the refund entity of the event, if present.
func (e *WebhookEvent) RefundEntity() *RefundEntity {
	if e.Payload.Refund == nil {
		return nil
	}
	return &e.Payload.Refund.Entity
}
