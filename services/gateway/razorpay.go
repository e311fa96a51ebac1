package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayClient implements Client against the Razorpay REST API.
type RazorpayClient struct {
	client        *razorpay.Client
	keySecret     string
	webhookSecret string
}

// NewRazorpayClient creates a gateway client with the given credentials.
func NewRazorpayClient(keyID, keySecret, webhookSecret string) *RazorpayClient {
	return &RazorpayClient{
		client:        razorpay.NewClient(keyID, keySecret),
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// CreateOrder opens a gateway order for the given paise amount.
func (g *RazorpayClient) CreateOrder(_ context.Context, in CreateOrderInput) (*Order, error) {
	data := map[string]interface{}{
		"amount":   in.Amount,
		"currency": in.Currency,
		"receipt":  in.Receipt,
		"notes":    toNotes(in.Notes),
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create failed: %w", err)
	}
	return &Order{
		ID:       asString(body["id"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Status:   asString(body["status"]),
	}, nil
}

// FetchPayment retrieves a payment's gateway-side state.
func (g *RazorpayClient) FetchPayment(_ context.Context, paymentID string) (*Payment, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch failed for %s: %w", paymentID, err)
	}
	return &Payment{
		ID:       asString(body["id"]),
		OrderID:  asString(body["order_id"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Status:   asString(body["status"]),
		Method:   asString(body["method"]),
	}, nil
}

// CreateTransfer initiates a transfer to a linked account.
func (g *RazorpayClient) CreateTransfer(_ context.Context, in CreateTransferInput) (*Transfer, error) {
	data := map[string]interface{}{
		"account":  in.AccountID,
		"amount":   in.Amount,
		"currency": in.Currency,
		"notes":    toNotes(in.Notes),
	}

	body, err := g.client.Transfer.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay transfer create failed: %w", err)
	}
	return &Transfer{
		ID:     asString(body["id"]),
		Status: asString(body["status"]),
	}, nil
}

// CreateRefund refunds a captured payment; a zero amount refunds in full.
func (g *RazorpayClient) CreateRefund(_ context.Context, in CreateRefundInput) (*Refund, error) {
	data := map[string]interface{}{
		"notes": toNotes(in.Notes),
	}

	body, err := g.client.Payment.Refund(in.PaymentID, int(in.Amount), data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay refund create failed for payment %s: %w", in.PaymentID, err)
	}
	return &Refund{
		ID:     asString(body["id"]),
		Status: asString(body["status"]),
		Amount: asInt64(body["amount"]),
	}, nil
}

// VerifyPaymentSignature checks the checkout signature against the key secret.
func (g *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, g.keySecret)
}

// VerifyWebhookSignature checks the webhook signature header against the raw body.
func (g *RazorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, g.webhookSecret)
}

func toNotes(notes map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(notes))
	for k, v := range notes {
		out[k] = v
	}
	return out
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
