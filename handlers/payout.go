package handlers

import (
	"net/http"
	"strconv"

	auditRepo "academix/database/repository/audit"
	"academix/models"
	"academix/services/payout"
	"academix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PayoutHandler serves the admin payout endpoints.
type PayoutHandler struct {
	Service   payout.PayoutService
	AuditRepo auditRepo.AuditRepository
	Logger    *zap.Logger
}

// NewPayoutHandler creates a PayoutHandler.
func NewPayoutHandler(svc payout.PayoutService, audit auditRepo.AuditRepository, logger *zap.Logger) *PayoutHandler {
	return &PayoutHandler{Service: svc, AuditRepo: audit, Logger: logger}
}

// ListPayoutsHandler lists payouts, optionally filtered by status.
func (h *PayoutHandler) ListPayoutsHandler(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !validTransferStatus(status) {
		utils.JSONError(c, http.StatusBadRequest, "invalid status", "unknown payout status: "+status)
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 200 {
			utils.JSONError(c, http.StatusBadRequest, "invalid limit", "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	payouts, err := h.Service.ListPayouts(c.Request.Context(), status, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts, "count": len(payouts)})
}

// GetPayoutHandler returns one payout with its audit trail.
func (h *PayoutHandler) GetPayoutHandler(c *gin.Context) {
	p, err := h.Service.GetPayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	events, err := h.AuditRepo.ListByEntity("payout", p.ID)
	if err != nil {
		h.Logger.Warn("failed to load payout audit trail", zap.String("payoutId", p.ID), zap.Error(err))
		events = nil
	}
	c.JSON(http.StatusOK, gin.H{"payout": p, "audit": events})
}

// InitiateTransferHandler enqueues a transfer for a pending or failed payout.
func (h *PayoutHandler) InitiateTransferHandler(c *gin.Context) {
	adminID := c.GetString("userID")
	payoutID := c.Param("id")

	if err := h.Service.InitiateTransfer(c.Request.Context(), adminID, payoutID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "transfer enqueued", "payoutId": payoutID})
}

func validTransferStatus(s string) bool {
	switch s {
	case models.TransferStatusPending, models.TransferStatusProcessing,
		models.TransferStatusCompleted, models.TransferStatusFailed,
		models.TransferStatusCancelled, models.TransferStatusRefunded:
		return true
	}
	return false
}
