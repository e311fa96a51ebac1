package payoutRepo

import (
	"time"

	"academix/models"
)

// PayoutRepository defines data access for payouts. Lookup methods return
// (nil, nil) when no document matches so webhook handlers can no-op on
// foreign or already-consumed events.
type PayoutRepository interface {
	// Create inserts a payout. A unique index on booking_id makes a duplicate
	// insert fail; callers treat that as "already exists".
	Create(payout *models.Payout) error

	GetByID(id string) (*models.Payout, error)
	GetByBookingID(bookingID string) (*models.Payout, error)
	GetByTransferID(transferID string) (*models.Payout, error)
	ListByStatus(status string, limit int64) ([]models.Payout, error)

	// TransitionStatus moves a payout from any of the given statuses to the
	// target status. Returns false when the guard did not match.
	TransitionStatus(id string, from []string, to string) (bool, error)

	// SetTransferInitiated records the gateway transfer id after a successful
	// transfer-create call; status stays PROCESSING until settlement.
	SetTransferInitiated(id, transferID string) error

	// MarkFailed records a failure reason alongside the FAILED status.
	MarkFailed(id, reason string) error

	// CompleteByTransferID settles the PROCESSING or FAILED payout matching
	// the transfer id and returns it, or (nil, nil) when no payout matches.
	// Terminal states (COMPLETED, CANCELLED, REFUNDED) are never overwritten.
	CompleteByTransferID(transferID string, processedAt time.Time) (*models.Payout, error)

	// FailByTransferID marks the PROCESSING payout matching the transfer id
	// FAILED and returns it, or (nil, nil) when no payout matches.
	FailByTransferID(transferID, reason string) (*models.Payout, error)

	// ApplyRefund records refund adjustment fields, optionally moving the
	// payout to a new status.
	ApplyRefund(id string, refundAmount, adjustedAmount float64, status string) error
}
