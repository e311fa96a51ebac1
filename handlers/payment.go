package handlers

import (
	"net/http"

	"academix/services/payment"
	"academix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler serves the client-side payment verification endpoint.
type PaymentHandler struct {
	Reconciler payment.ReconcilerService
	Logger     *zap.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(reconciler payment.ReconcilerService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Reconciler: reconciler, Logger: logger}
}

// VerifyPaymentHandler confirms a checkout from the client side. The webhook
// path may already have confirmed the same payment; the service makes the two
// paths converge, so a Conflict here still means the money is accounted for.
func (h *PaymentHandler) VerifyPaymentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req payment.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	bk, err := h.Reconciler.VerifyPayment(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": bk, "paymentStatus": bk.Payment.Status})
}
