package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"academix/models"
	"academix/services/gateway"
	"academix/services/payment"
	"academix/services/payout"
	"academix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const webhookProcessTimeout = 30 * time.Second

// WebhookHandler receives gateway webhook events. The contract with the
// gateway is: authenticate the payload, acknowledge fast, process async.
// Returning non-2xx makes the gateway retry, so only signature and payload
// failures are rejected.
type WebhookHandler struct {
	Gateway    gateway.Client
	Reconciler payment.ReconcilerService
	PayoutSvc  payout.PayoutService
	Logger     *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(gw gateway.Client, reconciler payment.ReconcilerService, payoutSvc payout.PayoutService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Gateway: gw, Reconciler: reconciler, PayoutSvc: payoutSvc, Logger: logger}
}

// HandleWebhook verifies the signature on the raw body, acknowledges with 200,
// and dispatches the event in a background goroutine.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unreadable body", err.Error())
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" || !h.Gateway.VerifyWebhookSignature(body, signature) {
		h.Logger.Warn("webhook signature verification failed")
		utils.JSONError(c, http.StatusBadRequest, "invalid signature", "")
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	go h.process(&event)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) process(event *models.WebhookEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), webhookProcessTimeout)
	defer cancel()

	var err error
	switch event.Event {
	case models.EventPaymentCaptured, models.EventOrderPaid:
		if p := event.PaymentEntity(); p != nil {
			err = h.Reconciler.HandlePaymentCaptured(ctx, p)
		}
	case models.EventPaymentFailed:
		if p := event.PaymentEntity(); p != nil {
			err = h.Reconciler.HandlePaymentFailed(ctx, p)
		}
	case models.EventTransferProcessed:
		if t := event.TransferEntity(); t != nil {
			err = h.PayoutSvc.HandleTransferProcessed(ctx, t)
		}
	case models.EventTransferFailed:
		if t := event.TransferEntity(); t != nil {
			err = h.PayoutSvc.HandleTransferFailed(ctx, t)
		}
	case models.EventRefundProcessed:
		if r := event.RefundEntity(); r != nil {
			err = h.Reconciler.HandleRefundProcessed(ctx, r)
		}
	case models.EventRefundFailed:
		if r := event.RefundEntity(); r != nil {
			err = h.Reconciler.HandleRefundFailed(ctx, r)
		}
	default:
		h.Logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		return
	}

	if err != nil {
		h.Logger.Error("webhook event processing failed",
			zap.String("event", event.Event), zap.Error(err))
	}
}
