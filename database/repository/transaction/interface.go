package transactionRepo

import "academix/models"

// TransactionRepository defines data access for the money-movement ledger.
// Lookup methods return (nil, nil) when no document matches.
type TransactionRepository interface {
	// UpsertPayment writes the payment transaction keyed by
	// (booking id, order id). Both confirmation paths write the same logical
	// record; a later arrival refreshes metadata instead of inserting a
	// duplicate row.
	UpsertPayment(tx *models.Transaction) error

	// CreateRefund appends a refund ledger entry.
	CreateRefund(tx *models.Transaction) error

	// SetRefundStatus updates a refund entry by its gateway refund id.
	SetRefundStatus(refundID, status string) error

	GetPaymentByOrderID(bookingID, orderID string) (*models.Transaction, error)
	GetSuccessfulRefund(bookingID string) (*models.Transaction, error)
	GetByRefundID(refundID string) (*models.Transaction, error)
	ListByBooking(bookingID string) ([]models.Transaction, error)
}
