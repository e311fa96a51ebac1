package booking

import (
	"context"
	"fmt"
	"time"

	batchRepo "academix/database/repository/batch"
	bookingRepo "academix/database/repository/booking"
	settingsRepo "academix/database/repository/settings"
	transactionRepo "academix/database/repository/transaction"
	"academix/models"
	"academix/services/gateway"
	"academix/services/pricing"
	"academix/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService is the production BookingService.
type DefaultBookingService struct {
	BookingRepo     bookingRepo.BookingRepository
	TransactionRepo transactionRepo.TransactionRepository
	BatchRepo       batchRepo.BatchRepository
	SettingsRepo    settingsRepo.SettingsRepository
	Gateway         gateway.Client
	Logger          *zap.Logger
}

// CreateOrder validates eligibility, prices the booking, opens a gateway
// order and persists the pending booking with its ledger entry. Nothing is
// written before the gateway call succeeds, so a validation or gateway
// failure leaves no partial state behind.
func (s *DefaultBookingService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*CreateOrderResponse, error) {
	batch, err := s.BatchRepo.GetBatchByID(req.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, utils.NewNotFoundError("BATCH_NOT_FOUND", "batch not found")
	}
	if !batch.Active {
		return nil, utils.NewValidationError("BATCH_INACTIVE", "batch is not accepting enrollments")
	}

	academy, err := s.BatchRepo.GetAcademyByID(batch.AcademyID)
	if err != nil {
		return nil, err
	}
	if academy == nil {
		return nil, utils.NewNotFoundError("ACADEMY_NOT_FOUND", "academy not found")
	}

	participants, err := s.BatchRepo.GetParticipants(req.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	if err := validateParticipants(userID, batch, req.ParticipantIDs, participants); err != nil {
		return nil, err
	}

	enrolled, err := s.BookingRepo.HasActiveEnrollment(batch.ID, req.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, utils.NewConflictError("ALREADY_ENROLLED", "a participant is already enrolled in this batch")
	}

	if err := s.checkCapacity(batch, len(req.ParticipantIDs)); err != nil {
		return nil, err
	}

	settings, err := s.SettingsRepo.GetFeeSettings()
	if err != nil {
		return nil, err
	}
	quote, err := pricing.Calculate(batch.Pricing, len(req.ParticipantIDs), *settings)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	year := time.Now().Year()
	seq, err := s.BookingRepo.NextCodeSequence(year)
	if err != nil {
		return nil, err
	}
	bookingID := uuid.New().String()
	code := fmt.Sprintf("BK-%d-%06d", year, seq)

	order, err := s.Gateway.CreateOrder(ctx, gateway.CreateOrderInput{
		Amount:   utils.ToPaise(quote.TotalAmount),
		Currency: currency,
		Receipt:  code,
		Notes: map[string]string{
			"bookingId": bookingID,
			"batchId":   batch.ID,
			"userId":    userID,
		},
	})
	if err != nil {
		return nil, utils.NewExternalError("GATEWAY_ORDER_FAILED", "failed to open payment order", err)
	}

	booking := &models.Booking{
		ID:             bookingID,
		Code:           code,
		UserID:         userID,
		BatchID:        batch.ID,
		AcademyID:      academy.ID,
		ParticipantIDs: req.ParticipantIDs,
		Amount:         quote.TotalAmount,
		Currency:       currency,
		PriceBreakdown: quote.Breakdown,
		Commission:     quote.Commission,
		Status:         models.BookingStatusPending,
		Payment: models.PaymentInfo{
			Status:  models.PaymentStatusPending,
			OrderID: order.ID,
		},
		PayoutStatus: models.PayoutStatusNotInitiated,
	}
	if err := s.BookingRepo.Create(booking); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		BookingID: booking.ID,
		OrderID:   order.ID,
		Amount:    quote.TotalAmount,
		Currency:  currency,
		Status:    models.PaymentStatusPending,
		Source:    models.TransactionSourceClient,
	}
	if err := s.TransactionRepo.UpsertPayment(tx); err != nil {
		// The booking exists; the ledger row will be recreated by whichever
		// confirmation path lands first.
		s.Logger.Error("failed to record pending transaction",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}

	s.Logger.Info("order created",
		zap.String("bookingId", booking.ID),
		zap.String("code", booking.Code),
		zap.String("orderId", order.ID),
		zap.Float64("amount", quote.TotalAmount))

	return &CreateOrderResponse{
		Booking: booking,
		OrderID: order.ID,
		Amount:  quote.TotalAmount,
	}, nil
}

// checkCapacity rejects the order when adding the new participants would
// exceed the batch ceiling. The read is advisory: concurrent orders for the
// last slot may both pass, which is accepted as cheaper to remediate than
// locking writers.
func (s *DefaultBookingService) checkCapacity(batch *models.Batch, adding int) error {
	if batch.Capacity.Max <= 0 {
		return nil
	}
	used, err := s.BookingRepo.SumActiveParticipants(batch.ID)
	if err != nil {
		return err
	}
	if used+adding > batch.Capacity.Max {
		return utils.NewConflictError("BATCH_FULL", "batch has no remaining capacity")
	}
	return nil
}

// CancelOrder cancels a booking whose payment has not yet succeeded.
func (s *DefaultBookingService) CancelOrder(ctx context.Context, userID, bookingID string) error {
	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking == nil || booking.UserID != userID {
		return utils.NewNotFoundError("BOOKING_NOT_FOUND", "booking not found")
	}

	switch booking.Payment.Status {
	case models.PaymentStatusSuccess:
		return utils.NewConflictError("PAYMENT_COMPLETED", "payment already succeeded; request a refund instead")
	case models.PaymentStatusFailed, models.PaymentStatusCancelled, models.PaymentStatusRefunded:
		return utils.NewConflictError("ALREADY_CLOSED", "booking is already cancelled or failed")
	}

	ok, err := s.BookingRepo.Cancel(bookingID)
	if err != nil {
		return err
	}
	if !ok {
		// Raced with a confirmation between the read and the CAS write.
		return utils.NewConflictError("CANCEL_REJECTED", "booking can no longer be cancelled")
	}

	s.Logger.Info("order cancelled", zap.String("bookingId", bookingID))
	return nil
}

// GetBooking returns one of the user's bookings.
func (s *DefaultBookingService) GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.UserID != userID {
		return nil, utils.NewNotFoundError("BOOKING_NOT_FOUND", "booking not found")
	}
	return booking, nil
}

// ListBookings returns the user's bookings, newest first.
func (s *DefaultBookingService) ListBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.BookingRepo.ListByUser(userID)
}
