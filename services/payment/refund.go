package payment

import (
	"context"
	"math"

	"academix/models"
	"academix/services/gateway"
	"academix/utils"

	"go.uber.org/zap"
)

// fullRefundTolerance separates full from partial refunds: anything within a
// paisa of the booking amount is a full refund.
const fullRefundTolerance = 0.01

// CreateRefund is the admin-triggered refund path.
func (s *DefaultReconciler) CreateRefund(ctx context.Context, adminID string, req RefundRequest) (*models.Transaction, error) {
	booking, err := s.BookingRepo.GetByID(req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, utils.NewNotFoundError("BOOKING_NOT_FOUND", "booking not found")
	}

	if booking.Status != models.BookingStatusConfirmed || booking.Payment.Status != models.PaymentStatusSuccess {
		return nil, utils.NewConflictError("REFUND_NOT_ALLOWED", "booking has no successful payment to refund")
	}

	existing, err := s.TransactionRepo.GetSuccessfulRefund(booking.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError("REFUND_ALREADY_PROCESSED", "a refund already exists for this booking")
	}

	if req.Amount <= 0 || req.Amount > booking.Amount+fullRefundTolerance {
		return nil, utils.NewValidationError("INVALID_REFUND_AMOUNT", "refund amount must be positive and within the booking amount")
	}

	refund, err := s.Gateway.CreateRefund(ctx, gateway.CreateRefundInput{
		PaymentID: booking.Payment.PaymentID,
		Amount:    utils.ToPaise(req.Amount),
		Notes: map[string]string{
			"bookingId": booking.ID,
			"adminId":   adminID,
			"reason":    req.Reason,
		},
	})
	if err != nil {
		return nil, utils.NewExternalError("GATEWAY_REFUND_FAILED", "gateway refund creation failed", err)
	}

	tx := &models.Transaction{
		BookingID: booking.ID,
		OrderID:   booking.Payment.OrderID,
		PaymentID: booking.Payment.PaymentID,
		RefundID:  refund.ID,
		Amount:    req.Amount,
		Currency:  booking.Currency,
		Status:    models.PaymentStatusSuccess,
		Source:    models.TransactionSourceManual,
		Notes:     req.Reason,
	}
	if err := s.TransactionRepo.CreateRefund(tx); err != nil {
		return nil, err
	}

	s.applyRefundEffects(ctx, booking, req.Amount, adminID)

	s.Logger.Info("refund created",
		zap.String("bookingId", booking.ID),
		zap.String("refundId", refund.ID),
		zap.Float64("amount", req.Amount),
		zap.String("adminId", adminID))
	return tx, nil
}

// applyRefundEffects applies the full/partial branching to the booking and
// its payout. Every write here is idempotent, so the webhook replay of the
// same refund converges on the same state.
func (s *DefaultReconciler) applyRefundEffects(ctx context.Context, booking *models.Booking, amount float64, actorID string) {
	full := math.Abs(amount-booking.Amount) < fullRefundTolerance

	payout, err := s.PayoutRepo.GetByBookingID(booking.ID)
	if err != nil {
		s.Logger.Error("failed to load payout for refund",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}

	if full {
		if err := s.BookingRepo.ApplyFullRefund(booking.ID); err != nil {
			s.Logger.Error("failed to apply full refund to booking",
				zap.String("bookingId", booking.ID), zap.Error(err))
		}
		if payout != nil {
			s.cancelOrFlagPayout(payout, amount)
		}
	} else {
		// Partial refund: the booking stays CONFIRMED, payment stays SUCCESS,
		// and only the adjustment fields on the payout change.
		if payout != nil {
			adjusted := utils.ClampAmount(
				utils.Round2(payout.PayoutAmount*(1-amount/booking.Amount)), 0, payout.PayoutAmount)
			status := ""
			if payout.Status == models.TransferStatusCompleted {
				// Settled funds are never silently altered; flag for manual
				// reconciliation instead.
				status = models.TransferStatusRefunded
			}
			if err := s.PayoutRepo.ApplyRefund(payout.ID, amount, adjusted, status); err != nil {
				s.Logger.Error("failed to adjust payout for partial refund",
					zap.String("payoutId", payout.ID), zap.Error(err))
			}
		}
	}

	if err := s.AuditRepo.Append(&models.AuditEvent{
		EntityType: "booking",
		EntityID:   booking.ID,
		Action:     "refund_applied",
		ActorID:    actorID,
		Detail: map[string]interface{}{
			"amount": amount,
			"full":   full,
		},
	}); err != nil {
		s.Logger.Warn("failed to append refund audit event",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}

	if err := s.Notifier.SendUserPushNotification(ctx, booking.UserID,
		"Refund processed", "A refund has been issued for booking "+booking.Code+".",
		map[string]string{"bookingId": booking.ID}); err != nil {
		s.Logger.Warn("refund push failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

// cancelOrFlagPayout handles the payout side of a full refund.
func (s *DefaultReconciler) cancelOrFlagPayout(payout *models.Payout, refundAmount float64) {
	switch payout.Status {
	case models.TransferStatusPending, models.TransferStatusFailed:
		// No money has left the platform yet; the payout simply dies.
		if _, err := s.PayoutRepo.TransitionStatus(payout.ID,
			[]string{models.TransferStatusPending, models.TransferStatusFailed},
			models.TransferStatusCancelled); err != nil {
			s.Logger.Error("failed to cancel payout for full refund",
				zap.String("payoutId", payout.ID), zap.Error(err))
		}
	case models.TransferStatusProcessing, models.TransferStatusCompleted:
		// Funds are in flight or settled; mark for manual reversal rather
		// than clawing back automatically.
		if err := s.PayoutRepo.ApplyRefund(payout.ID, refundAmount, 0, models.TransferStatusRefunded); err != nil {
			s.Logger.Error("failed to flag settled payout for refund",
				zap.String("payoutId", payout.ID), zap.Error(err))
		}
	}
}

// HandleRefundProcessed replays the refund branching off a gateway webhook,
// keyed by payment id rather than an admin-supplied booking id.
func (s *DefaultReconciler) HandleRefundProcessed(ctx context.Context, r *models.RefundEntity) error {
	booking, err := s.BookingRepo.GetByPaymentID(r.PaymentID)
	if err != nil {
		return err
	}
	if booking == nil {
		s.Logger.Warn("refund.processed for unknown payment", zap.String("paymentId", r.PaymentID))
		return nil
	}

	amount := utils.FromPaise(r.Amount)

	existing, err := s.TransactionRepo.GetByRefundID(r.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		// Gateway-initiated refund (dashboard or auto-refund) with no admin
		// ledger entry yet.
		tx := &models.Transaction{
			BookingID: booking.ID,
			OrderID:   booking.Payment.OrderID,
			PaymentID: r.PaymentID,
			RefundID:  r.ID,
			Amount:    amount,
			Currency:  booking.Currency,
			Status:    models.PaymentStatusSuccess,
			Source:    models.TransactionSourceWebhook,
		}
		if err := s.TransactionRepo.CreateRefund(tx); err != nil {
			s.Logger.Error("failed to record webhook refund",
				zap.String("refundId", r.ID), zap.Error(err))
		}
	} else if err := s.TransactionRepo.SetRefundStatus(r.ID, models.PaymentStatusSuccess); err != nil {
		s.Logger.Error("failed to update refund transaction",
			zap.String("refundId", r.ID), zap.Error(err))
	}

	s.applyRefundEffects(ctx, booking, amount, "webhook")
	return nil
}

// HandleRefundFailed marks the refund ledger row FAILED. Booking and payout
// state are left as they are for manual review.
func (s *DefaultReconciler) HandleRefundFailed(ctx context.Context, r *models.RefundEntity) error {
	if err := s.TransactionRepo.SetRefundStatus(r.ID, models.PaymentStatusFailed); err != nil {
		return err
	}
	s.Logger.Warn("refund failed at gateway",
		zap.String("refundId", r.ID), zap.String("paymentId", r.PaymentID))
	return nil
}
