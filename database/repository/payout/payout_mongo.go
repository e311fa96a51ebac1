package payoutRepo

import (
	"context"
	"fmt"
	"time"

	"academix/database"
	"academix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPayoutRepo implements PayoutRepository using MongoDB.
type MongoPayoutRepo struct {
	coll *mongo.Collection
}

// NewMongoPayoutRepo creates a new instance of PayoutRepository using MongoDB.
func NewMongoPayoutRepo() PayoutRepository {
	repo := &MongoPayoutRepo{coll: database.Collection("payouts")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payout indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPayoutRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// Exactly one payout per booking and per transaction.
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "razorpay_transfer_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a payout record.
func (r *MongoPayoutRepo) Create(payout *models.Payout) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	payout.CreatedAt = now
	payout.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, payout); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePayout
		}
		return fmt.Errorf("failed to create payout for booking %s: %w", payout.BookingID, err)
	}
	return nil
}

// GetByID retrieves a payout by its unique ID.
func (r *MongoPayoutRepo) GetByID(id string) (*models.Payout, error) {
	return r.findOne(bson.M{"id": id})
}

// GetByBookingID retrieves the payout associated with a booking.
func (r *MongoPayoutRepo) GetByBookingID(bookingID string) (*models.Payout, error) {
	return r.findOne(bson.M{"booking_id": bookingID})
}

// GetByTransferID retrieves the payout matching a gateway transfer id.
func (r *MongoPayoutRepo) GetByTransferID(transferID string) (*models.Payout, error) {
	return r.findOne(bson.M{"razorpay_transfer_id": transferID})
}

func (r *MongoPayoutRepo) findOne(filter bson.M) (*models.Payout, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var payout models.Payout
	if err := r.coll.FindOne(ctx, filter).Decode(&payout); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch payout: %w", err)
	}
	return &payout, nil
}

// ListByStatus returns payouts in the given status, newest first. Empty
// status lists all.
func (r *MongoPayoutRepo) ListByStatus(status string, limit int64) ([]models.Payout, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer cursor.Close(ctx)

	var payouts []models.Payout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, fmt.Errorf("failed to decode payouts: %w", err)
	}
	return payouts, nil
}

// TransitionStatus moves a payout between statuses with a compare-and-swap
// guard on the current status.
func (r *MongoPayoutRepo) TransitionStatus(id string, from []string, to string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to transition payout %s to %s: %w", id, to, err)
	}
	return result.ModifiedCount > 0, nil
}

// SetTransferInitiated records the gateway transfer id.
func (r *MongoPayoutRepo) SetTransferInitiated(id, transferID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"razorpay_transfer_id": transferID,
		"updated_at":           time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to record transfer id for payout %s: %w", id, err)
	}
	return nil
}

// MarkFailed sets the payout FAILED with a failure reason.
func (r *MongoPayoutRepo) MarkFailed(id, reason string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":         models.TransferStatusFailed,
		"failure_reason": reason,
		"updated_at":     time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to mark payout %s failed: %w", id, err)
	}
	return nil
}

// CompleteByTransferID settles the payout matching the transfer id. FAILED is
// a valid source state so a settlement retried after a transfer.failed event
// still closes the books.
func (r *MongoPayoutRepo) CompleteByTransferID(transferID string, processedAt time.Time) (*models.Payout, error) {
	from := []string{models.TransferStatusProcessing, models.TransferStatusFailed}
	return r.updateByTransferID(transferID, from, bson.M{"$set": bson.M{
		"status":       models.TransferStatusCompleted,
		"processed_at": processedAt,
		"updated_at":   time.Now(),
	}})
}

// FailByTransferID marks the payout matching the transfer id FAILED.
func (r *MongoPayoutRepo) FailByTransferID(transferID, reason string) (*models.Payout, error) {
	from := []string{models.TransferStatusProcessing}
	return r.updateByTransferID(transferID, from, bson.M{"$set": bson.M{
		"status":         models.TransferStatusFailed,
		"failure_reason": reason,
		"updated_at":     time.Now(),
	}})
}

// updateByTransferID applies the update only from the given source statuses.
// The guard keeps a late settlement webhook from resurrecting a payout the
// refund engine already moved to REFUNDED or CANCELLED.
func (r *MongoPayoutRepo) updateByTransferID(transferID string, from []string, update bson.M) (*models.Payout, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"razorpay_transfer_id": transferID,
		"status":               bson.M{"$in": from},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var payout models.Payout
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&payout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update payout by transfer %s: %w", transferID, err)
	}
	return &payout, nil
}

// ApplyRefund records refund adjustment fields and, when status is non-empty,
// moves the payout to that status.
func (r *MongoPayoutRepo) ApplyRefund(id string, refundAmount, adjustedAmount float64, status string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set := bson.M{
		"refund_amount":          refundAmount,
		"adjusted_payout_amount": adjustedAmount,
		"updated_at":             time.Now(),
	}
	if status != "" {
		set["status"] = status
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to apply refund to payout %s: %w", id, err)
	}
	return nil
}
