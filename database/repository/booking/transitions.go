package bookingRepo

import (
	"fmt"
	"time"

	"academix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ConfirmPayment is the single confirmation transition both the client
// verification path and the webhook converge on. The filter doubles as a
// compare-and-swap guard: only one caller can match payment.status
// PENDING/PROCESSING, so at most one transition fires however many times or
// in whatever order the two paths run.
func (r *MongoBookingRepo) ConfirmPayment(bookingID, paymentID string, paidAt time.Time) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	// FAILED is a valid source state: a failed attempt can be retried on the
	// same order, and the capture for the retry must still confirm.
	filter := bson.M{
		"id":     bookingID,
		"status": models.BookingStatusPending,
		"payment.status": bson.M{"$in": []string{
			models.PaymentStatusPending, models.PaymentStatusProcessing, models.PaymentStatusFailed,
		}},
	}
	update := bson.M{"$set": bson.M{
		"status":             models.BookingStatusConfirmed,
		"payment.status":     models.PaymentStatusSuccess,
		"payment.payment_id": paymentID,
		"payment.paid_at":    paidAt,
		"updated_at":         time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm payment for booking %s: %w", bookingID, err)
	}
	return result.ModifiedCount > 0, nil
}

// MarkPaymentFailed records a failed payment attempt. The booking status is
// left untouched so the user can retry or cancel explicitly. The filter is a
// compare-and-swap guard like ConfirmPayment's: a stale failure event that
// lands after a successful capture must not touch a SUCCESS payment, so the
// caller gets back whether the transition actually fired.
func (r *MongoBookingRepo) MarkPaymentFailed(bookingID, reason string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":             bookingID,
		"payment.status": bson.M{"$in": []string{models.PaymentStatusPending, models.PaymentStatusProcessing}},
	}
	update := bson.M{"$set": bson.M{
		"payment.status":         models.PaymentStatusFailed,
		"payment.failure_reason": reason,
		"updated_at":             time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark payment failed for booking %s: %w", bookingID, err)
	}
	return result.ModifiedCount > 0, nil
}

// Cancel transitions a booking to CANCELLED while its payment is still
// PENDING. Returns false when the guard did not match (payment already
// succeeded, failed or booking already cancelled).
func (r *MongoBookingRepo) Cancel(bookingID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":             bookingID,
		"status":         models.BookingStatusPending,
		"payment.status": models.PaymentStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":         models.BookingStatusCancelled,
		"payment.status": models.PaymentStatusFailed,
		"updated_at":     time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}
	return result.ModifiedCount > 0, nil
}

// SetPayoutStatus updates the payout mirror field. The payout record remains
// the source of truth; this write is best-effort.
func (r *MongoBookingRepo) SetPayoutStatus(bookingID, status string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"payout_status": status,
		"updated_at":    time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": bookingID}, update); err != nil {
		return fmt.Errorf("failed to set payout status for booking %s: %w", bookingID, err)
	}
	return nil
}

// ApplyFullRefund moves the booking to its fully-refunded terminal shape.
func (r *MongoBookingRepo) ApplyFullRefund(bookingID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":         models.BookingStatusCancelled,
		"payment.status": models.PaymentStatusRefunded,
		"payout_status":  models.PayoutStatusRefunded,
		"updated_at":     time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": bookingID}, update); err != nil {
		return fmt.Errorf("failed to apply full refund to booking %s: %w", bookingID, err)
	}
	return nil
}
