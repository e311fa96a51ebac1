package handlers

import (
	"net/http"

	"academix/services/payment"
	"academix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RefundHandler serves the admin refund endpoint.
type RefundHandler struct {
	Reconciler payment.ReconcilerService
	Logger     *zap.Logger
}

// NewRefundHandler creates a RefundHandler.
func NewRefundHandler(reconciler payment.ReconcilerService, logger *zap.Logger) *RefundHandler {
	return &RefundHandler{Reconciler: reconciler, Logger: logger}
}

// CreateRefundHandler issues a refund against a paid booking. Full refunds
// cancel the booking and its payout; partial refunds scale the payout down.
func (h *RefundHandler) CreateRefundHandler(c *gin.Context) {
	adminID := c.GetString("userID")

	var req payment.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	tx, err := h.Reconciler.CreateRefund(c.Request.Context(), adminID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}
