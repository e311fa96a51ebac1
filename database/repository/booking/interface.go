package bookingRepo

import (
	"time"

	"academix/models"
)

// BookingRepository defines data access for bookings. Lookup methods return
// (nil, nil) when no document matches so webhook-driven callers can treat a
// miss as a no-op.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	GetByOrderID(orderID string) (*models.Booking, error)
	GetByPaymentID(paymentID string) (*models.Booking, error)
	ListByUser(userID string) ([]models.Booking, error)

	// NextCodeSequence atomically increments and returns the per-year booking
	// code counter.
	NextCodeSequence(year int) (int64, error)

	// SumActiveParticipants sums participant counts across PENDING and
	// CONFIRMED bookings of a batch.
	SumActiveParticipants(batchID string) (int, error)

	// HasActiveEnrollment reports whether any of the given participants
	// already hold a PENDING or CONFIRMED booking for the batch.
	HasActiveEnrollment(batchID string, participantIDs []string) (bool, error)

	// ConfirmPayment transitions payment PENDING/PROCESSING -> SUCCESS and the
	// booking to CONFIRMED. Returns false when no transition happened (already
	// confirmed or booking cancelled), which callers use to suppress duplicate
	// side effects.
	ConfirmPayment(bookingID, paymentID string, paidAt time.Time) (bool, error)

	// MarkPaymentFailed records a failed payment attempt; the booking itself
	// stays PENDING so the user can retry. Returns false when the payment was
	// no longer PENDING/PROCESSING (a stale failure after a capture).
	MarkPaymentFailed(bookingID, reason string) (bool, error)

	// Cancel transitions a booking whose payment is still PENDING to
	// CANCELLED/FAILED. Returns false when the guard did not match.
	Cancel(bookingID string) (bool, error)

	// SetPayoutStatus updates the payout mirror field (best-effort cache of
	// the payout's lifecycle).
	SetPayoutStatus(bookingID, status string) error

	// ApplyFullRefund moves the booking to CANCELLED/REFUNDED/REFUNDED.
	ApplyFullRefund(bookingID string) error
}
