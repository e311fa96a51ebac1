package payout

import (
	"context"
	"errors"
	"time"

	auditRepo "academix/database/repository/audit"
	batchRepo "academix/database/repository/batch"
	bookingRepo "academix/database/repository/booking"
	payoutRepo "academix/database/repository/payout"
	"academix/models"
	"academix/services/gateway"
	"academix/services/notification"
	"academix/services/tasks"
	"academix/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPayoutService is the production PayoutService.
type DefaultPayoutService struct {
	PayoutRepo  payoutRepo.PayoutRepository
	BookingRepo bookingRepo.BookingRepository
	BatchRepo   batchRepo.BatchRepository
	AuditRepo   auditRepo.AuditRepository
	Gateway     gateway.Client
	Enqueuer    tasks.Enqueuer
	Notifier    notification.NotificationService
	Logger      *zap.Logger
}

// CreatePayout derives the payout record from a confirmed payment. The
// deterministic job key already collapses duplicate enqueues; the pre-check
// and the unique index on booking_id are the second and third lines of
// defense against a double payout.
func (s *DefaultPayoutService) CreatePayout(ctx context.Context, payload tasks.PayoutCreationPayload) (string, error) {
	existing, err := s.PayoutRepo.GetByBookingID(payload.BookingID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return ResultSkipped, nil
	}

	p := &models.Payout{
		ID:               uuid.New().String(),
		BookingID:        payload.BookingID,
		TransactionID:    payload.TransactionID,
		AcademyID:        payload.AcademyID,
		Amount:           payload.Amount,
		BatchAmount:      payload.BatchAmount,
		CommissionRate:   payload.CommissionRate,
		CommissionAmount: payload.CommissionAmount,
		PayoutAmount:     payload.PayoutAmount,
		Currency:         payload.Currency,
		Status:           models.TransferStatusPending,
	}
	if err := s.PayoutRepo.Create(p); err != nil {
		if errors.Is(err, payoutRepo.ErrDuplicatePayout) {
			return ResultSkipped, nil
		}
		return "", err
	}

	// Mirror write: the payout record stays the source of truth.
	if err := s.BookingRepo.SetPayoutStatus(payload.BookingID, models.PayoutStatusPending); err != nil {
		s.Logger.Warn("failed to mirror payout status on booking",
			zap.String("bookingId", payload.BookingID), zap.Error(err))
	}

	s.Logger.Info("payout created",
		zap.String("payoutId", p.ID),
		zap.String("bookingId", p.BookingID),
		zap.Float64("payoutAmount", p.PayoutAmount))
	return ResultCreated, nil
}

// ExecuteTransfer runs one transfer attempt. PROCESSING is persisted before
// the gateway call so a crash mid-call is observable instead of leaving the
// payout silently PENDING.
func (s *DefaultPayoutService) ExecuteTransfer(ctx context.Context, payload tasks.PayoutTransferPayload) (string, error) {
	p, err := s.PayoutRepo.GetByID(payload.PayoutID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", utils.NewNotFoundError("PAYOUT_NOT_FOUND", "payout not found")
	}

	if p.Status == models.TransferStatusCompleted {
		return ResultSkipped, nil
	}
	if p.Status != models.TransferStatusPending && p.Status != models.TransferStatusFailed {
		return "", utils.NewConflictError("INVALID_TRANSFER_STATE",
			"payout is not in a transferable state: "+p.Status)
	}

	amount := p.PayoutAmount
	if p.AdjustedPayoutAmount != nil {
		amount = *p.AdjustedPayoutAmount
	}
	if amount <= 0 {
		// Refund adjustments ate the whole entitlement; nothing to transfer.
		if _, err := s.PayoutRepo.TransitionStatus(p.ID,
			[]string{models.TransferStatusPending, models.TransferStatusFailed},
			models.TransferStatusCancelled); err != nil {
			return "", err
		}
		return ResultSkipped, nil
	}

	accountID, err := s.resolveAccount(p, payload.AccountID)
	if err != nil {
		return "", err
	}

	ok, err := s.PayoutRepo.TransitionStatus(p.ID,
		[]string{models.TransferStatusPending, models.TransferStatusFailed},
		models.TransferStatusProcessing)
	if err != nil {
		return "", err
	}
	if !ok {
		// Another worker won the transition.
		return ResultSkipped, nil
	}
	if err := s.BookingRepo.SetPayoutStatus(p.BookingID, models.PayoutStatusProcessing); err != nil {
		s.Logger.Warn("failed to mirror payout status on booking",
			zap.String("bookingId", p.BookingID), zap.Error(err))
	}

	transfer, err := s.Gateway.CreateTransfer(ctx, gateway.CreateTransferInput{
		AccountID: accountID,
		Amount:    utils.ToPaise(amount),
		Currency:  p.Currency,
		Notes: map[string]string{
			"bookingId":     p.BookingID,
			"transactionId": p.TransactionID,
			"payoutId":      p.ID,
		},
	})
	if err != nil {
		s.failTransfer(p, err.Error())
		return "", utils.NewExternalError("GATEWAY_TRANSFER_FAILED", "gateway transfer creation failed", err)
	}

	if err := s.PayoutRepo.SetTransferInitiated(p.ID, transfer.ID); err != nil {
		// The transfer is in flight at the gateway; subsequent settlement
		// webhooks will miss the id, so surface this loudly for manual fix.
		s.Logger.Error("transfer initiated but id not persisted",
			zap.String("payoutId", p.ID), zap.String("transferId", transfer.ID), zap.Error(err))
		return "", err
	}

	// The synchronous call only confirms initiation; COMPLETED is set by the
	// transfer.processed webhook.
	s.appendAudit(p.ID, "transfer_initiated", payload.AdminUserID, map[string]interface{}{
		"transferId": transfer.ID,
		"amount":     amount,
		"accountId":  accountID,
	})
	s.notifyAcademy(ctx, p, "Payout on the way",
		"A payout transfer for your booking has been initiated.")

	s.Logger.Info("transfer initiated",
		zap.String("payoutId", p.ID), zap.String("transferId", transfer.ID))
	return ResultCreated, nil
}

func (s *DefaultPayoutService) resolveAccount(p *models.Payout, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if p.AccountID != "" {
		return p.AccountID, nil
	}
	academy, err := s.BatchRepo.GetAcademyByID(p.AcademyID)
	if err != nil {
		return "", err
	}
	if academy == nil || academy.RazorpayAccountID == "" {
		return "", utils.NewConflictError("NO_LINKED_ACCOUNT",
			"academy has no linked payout account")
	}
	return academy.RazorpayAccountID, nil
}

func (s *DefaultPayoutService) failTransfer(p *models.Payout, reason string) {
	if err := s.PayoutRepo.MarkFailed(p.ID, reason); err != nil {
		s.Logger.Error("failed to mark payout failed",
			zap.String("payoutId", p.ID), zap.Error(err))
	}
	if err := s.BookingRepo.SetPayoutStatus(p.BookingID, models.PayoutStatusFailed); err != nil {
		s.Logger.Warn("failed to mirror payout status on booking",
			zap.String("bookingId", p.BookingID), zap.Error(err))
	}
	s.appendAudit(p.ID, "transfer_failed", "", map[string]interface{}{"reason": reason})
}

// HandleTransferProcessed settles the payout for a transfer.processed event.
// Unknown transfer ids are no-ops: the event is foreign or already consumed.
func (s *DefaultPayoutService) HandleTransferProcessed(ctx context.Context, t *models.TransferEntity) error {
	p, err := s.PayoutRepo.CompleteByTransferID(t.ID, time.Now())
	if err != nil {
		return err
	}
	if p == nil {
		s.Logger.Warn("transfer.processed for unknown transfer", zap.String("transferId", t.ID))
		return nil
	}

	if err := s.BookingRepo.SetPayoutStatus(p.BookingID, models.PayoutStatusCompleted); err != nil {
		s.Logger.Warn("failed to mirror payout status on booking",
			zap.String("bookingId", p.BookingID), zap.Error(err))
	}
	s.appendAudit(p.ID, "transfer_settled", "", map[string]interface{}{"transferId": t.ID})
	s.notifyAcademy(ctx, p, "Payout completed", "Your payout has been settled.")

	s.Logger.Info("payout settled",
		zap.String("payoutId", p.ID), zap.String("transferId", t.ID))
	return nil
}

// HandleTransferFailed records a failed settlement. Unknown transfer ids are
// no-ops.
func (s *DefaultPayoutService) HandleTransferFailed(ctx context.Context, t *models.TransferEntity) error {
	p, err := s.PayoutRepo.FailByTransferID(t.ID, "transfer failed at gateway")
	if err != nil {
		return err
	}
	if p == nil {
		s.Logger.Warn("transfer.failed for unknown transfer", zap.String("transferId", t.ID))
		return nil
	}

	if err := s.BookingRepo.SetPayoutStatus(p.BookingID, models.PayoutStatusFailed); err != nil {
		s.Logger.Warn("failed to mirror payout status on booking",
			zap.String("bookingId", p.BookingID), zap.Error(err))
	}
	s.appendAudit(p.ID, "transfer_failed", "", map[string]interface{}{"transferId": t.ID})

	s.Logger.Warn("payout transfer failed",
		zap.String("payoutId", p.ID), zap.String("transferId", t.ID))
	return nil
}

// InitiateTransfer is the operator trigger behind the admin endpoint.
func (s *DefaultPayoutService) InitiateTransfer(ctx context.Context, adminID, payoutID string) error {
	p, err := s.PayoutRepo.GetByID(payoutID)
	if err != nil {
		return err
	}
	if p == nil {
		return utils.NewNotFoundError("PAYOUT_NOT_FOUND", "payout not found")
	}
	if p.Status != models.TransferStatusPending && p.Status != models.TransferStatusFailed {
		return utils.NewConflictError("INVALID_TRANSFER_STATE",
			"payout is not in a transferable state: "+p.Status)
	}

	accountID, err := s.resolveAccount(p, "")
	if err != nil {
		return err
	}

	s.Enqueuer.EnqueuePayoutTransfer(ctx, tasks.PayoutTransferPayload{
		PayoutID:    p.ID,
		AccountID:   accountID,
		AdminUserID: adminID,
	})
	s.appendAudit(p.ID, "transfer_enqueued", adminID, nil)
	return nil
}

// GetPayout returns one payout.
func (s *DefaultPayoutService) GetPayout(ctx context.Context, payoutID string) (*models.Payout, error) {
	p, err := s.PayoutRepo.GetByID(payoutID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, utils.NewNotFoundError("PAYOUT_NOT_FOUND", "payout not found")
	}
	return p, nil
}

// ListPayouts returns payouts filtered by status.
func (s *DefaultPayoutService) ListPayouts(ctx context.Context, status string, limit int64) ([]models.Payout, error) {
	return s.PayoutRepo.ListByStatus(status, limit)
}

func (s *DefaultPayoutService) appendAudit(payoutID, action, actorID string, detail map[string]interface{}) {
	if err := s.AuditRepo.Append(&models.AuditEvent{
		EntityType: "payout",
		EntityID:   payoutID,
		Action:     action,
		ActorID:    actorID,
		Detail:     detail,
	}); err != nil {
		s.Logger.Warn("failed to append payout audit event",
			zap.String("payoutId", payoutID), zap.Error(err))
	}
}

func (s *DefaultPayoutService) notifyAcademy(ctx context.Context, p *models.Payout, title, body string) {
	if err := s.Notifier.SendAcademyPushNotification(ctx, p.AcademyID, title, body,
		map[string]string{"payoutId": p.ID, "bookingId": p.BookingID}); err != nil {
		s.Logger.Warn("payout push failed", zap.String("payoutId", p.ID), zap.Error(err))
	}
}
