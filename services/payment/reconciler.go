package payment

import (
	"context"
	"time"

	auditRepo "academix/database/repository/audit"
	bookingRepo "academix/database/repository/booking"
	payoutRepo "academix/database/repository/payout"
	transactionRepo "academix/database/repository/transaction"
	"academix/models"
	"academix/services/gateway"
	"academix/services/notification"
	"academix/services/tasks"
	"academix/utils"

	"go.uber.org/zap"
)

// DefaultReconciler is the production ReconcilerService.
type DefaultReconciler struct {
	BookingRepo     bookingRepo.BookingRepository
	TransactionRepo transactionRepo.TransactionRepository
	PayoutRepo      payoutRepo.PayoutRepository
	AuditRepo       auditRepo.AuditRepository
	Gateway         gateway.Client
	Enqueuer        tasks.Enqueuer
	Notifier        notification.NotificationService
	Logger          *zap.Logger
}

// VerifyPayment is the client confirmation path. The signature proves the
// checkout result came from the gateway; the payment fetch proves the money
// actually moved and matches the booking amount to the paise.
func (s *DefaultReconciler) VerifyPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (*models.Booking, error) {
	if !s.Gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, utils.NewConflictError("INVALID_SIGNATURE", "payment signature verification failed")
	}

	booking, err := s.BookingRepo.GetByOrderID(req.OrderID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.UserID != userID {
		return nil, utils.NewNotFoundError("BOOKING_NOT_FOUND", "no booking for this order")
	}

	if booking.Payment.Status == models.PaymentStatusSuccess {
		return nil, utils.NewConflictError("ALREADY_VERIFIED", "payment is already verified")
	}

	p, err := s.Gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, utils.NewExternalError("GATEWAY_FETCH_FAILED", "could not fetch payment from gateway", err)
	}
	if p.OrderID != req.OrderID {
		return nil, utils.NewValidationError("ORDER_MISMATCH", "payment does not belong to this order")
	}
	if p.Status != gateway.PaymentStateCaptured && p.Status != gateway.PaymentStateAuthorized {
		return nil, utils.NewValidationError("PAYMENT_NOT_CAPTURED", "payment is not captured")
	}
	if p.Amount != utils.ToPaise(booking.Amount) {
		return nil, utils.NewValidationError("AMOUNT_MISMATCH", "paid amount does not match the booking amount")
	}

	if err := s.confirmPayment(ctx, booking, p.ID, models.TransactionSourceClient); err != nil {
		return nil, err
	}

	refreshed, err := s.BookingRepo.GetByID(booking.ID)
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

// HandlePaymentCaptured is the webhook confirmation path. The webhook is
// authoritative for gateway-side truth, so an amount mismatch is logged but
// does not block the transition.
func (s *DefaultReconciler) HandlePaymentCaptured(ctx context.Context, p *models.PaymentEntity) error {
	booking, err := s.BookingRepo.GetByOrderID(p.OrderID)
	if err != nil {
		return err
	}
	if booking == nil {
		s.Logger.Warn("payment.captured for unknown order", zap.String("orderId", p.OrderID))
		return nil
	}

	if p.Amount != utils.ToPaise(booking.Amount) {
		s.Logger.Warn("webhook amount differs from booking amount",
			zap.String("bookingId", booking.ID),
			zap.Int64("webhookAmount", p.Amount),
			zap.Int64("expectedAmount", utils.ToPaise(booking.Amount)))
	}

	// The webhook must always be acked, so a store failure here is logged
	// and left for the gateway's redelivery to retry.
	if err := s.confirmPayment(ctx, booking, p.ID, models.TransactionSourceWebhook); err != nil {
		s.Logger.Error("webhook payment confirmation failed",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}
	return nil
}

// confirmPayment is the single transition both paths converge on. The
// compare-and-swap in ConfirmPayment elects exactly one winner no matter how
// many times or in what order the paths run; only the winner fires side
// effects. The ledger upsert runs on every call so a late arrival still
// refreshes transaction metadata.
func (s *DefaultReconciler) confirmPayment(ctx context.Context, booking *models.Booking, paymentID, source string) error {
	now := time.Now()
	transitioned, err := s.BookingRepo.ConfirmPayment(booking.ID, paymentID, now)
	if err != nil {
		return utils.NewInternalError("CONFIRMATION_FAILED", "could not persist payment confirmation", err)
	}

	tx := &models.Transaction{
		BookingID: booking.ID,
		OrderID:   booking.Payment.OrderID,
		PaymentID: paymentID,
		Amount:    booking.Amount,
		Currency:  booking.Currency,
		Status:    models.PaymentStatusSuccess,
		Source:    source,
	}
	if err := s.TransactionRepo.UpsertPayment(tx); err != nil {
		s.Logger.Error("failed to upsert payment transaction",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}

	if !transitioned {
		s.Logger.Debug("payment already confirmed, skipping side effects",
			zap.String("bookingId", booking.ID), zap.String("source", source))
		return nil
	}

	s.Logger.Info("payment confirmed",
		zap.String("bookingId", booking.ID),
		zap.String("paymentId", paymentID),
		zap.String("source", source))

	if booking.Commission.PayoutAmount > 0 {
		s.enqueuePayoutCreation(ctx, booking)
	}

	if err := s.Notifier.SendUserPushNotification(ctx, booking.UserID,
		"Booking confirmed", "Your booking "+booking.Code+" is confirmed.",
		map[string]string{"bookingId": booking.ID}); err != nil {
		s.Logger.Warn("booking confirmation push failed",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}
	return nil
}

func (s *DefaultReconciler) enqueuePayoutCreation(ctx context.Context, booking *models.Booking) {
	ledger, err := s.TransactionRepo.GetPaymentByOrderID(booking.ID, booking.Payment.OrderID)
	if err != nil || ledger == nil {
		s.Logger.Error("could not resolve ledger row for payout enqueue",
			zap.String("bookingId", booking.ID), zap.Error(err))
		return
	}

	s.Enqueuer.EnqueuePayoutCreation(ctx, tasks.PayoutCreationPayload{
		BookingID:        booking.ID,
		TransactionID:    ledger.ID,
		AcademyID:        booking.AcademyID,
		Amount:           booking.Amount,
		BatchAmount:      booking.PriceBreakdown.Subtotal,
		CommissionRate:   booking.Commission.Rate,
		CommissionAmount: booking.Commission.Amount,
		PayoutAmount:     booking.Commission.PayoutAmount,
		Currency:         booking.Currency,
	})
}

// HandlePaymentFailed records a failed payment attempt. The booking stays
// PENDING so the user can retry checkout or cancel explicitly.
func (s *DefaultReconciler) HandlePaymentFailed(ctx context.Context, p *models.PaymentEntity) error {
	booking, err := s.BookingRepo.GetByOrderID(p.OrderID)
	if err != nil {
		return err
	}
	if booking == nil {
		s.Logger.Warn("payment.failed for unknown order", zap.String("orderId", p.OrderID))
		return nil
	}

	reason := p.ErrorDescription
	if reason == "" {
		reason = p.ErrorCode
	}
	marked, err := s.BookingRepo.MarkPaymentFailed(booking.ID, reason)
	if err != nil {
		return err
	}
	if !marked {
		// Stale failure event, a capture already won. Leave the SUCCESS
		// ledger row alone.
		s.Logger.Debug("ignoring payment.failed after confirmation",
			zap.String("bookingId", booking.ID), zap.String("paymentId", p.ID))
		return nil
	}

	tx := &models.Transaction{
		BookingID: booking.ID,
		OrderID:   booking.Payment.OrderID,
		PaymentID: p.ID,
		Amount:    booking.Amount,
		Currency:  booking.Currency,
		Status:    models.PaymentStatusFailed,
		Source:    models.TransactionSourceWebhook,
		Notes:     reason,
	}
	if err := s.TransactionRepo.UpsertPayment(tx); err != nil {
		s.Logger.Error("failed to record failed payment transaction",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}

	s.Logger.Info("payment failed",
		zap.String("bookingId", booking.ID), zap.String("reason", reason))
	return nil
}
