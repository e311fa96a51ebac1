package transactionRepo

import (
	"context"
	"fmt"
	"time"

	"academix/database"
	"academix/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTransactionRepo implements TransactionRepository using MongoDB.
type MongoTransactionRepo struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepo creates a new instance of TransactionRepository using MongoDB.
func NewMongoTransactionRepo() TransactionRepository {
	repo := &MongoTransactionRepo{coll: database.Collection("transactions")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create transaction indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoTransactionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One payment ledger row per (booking, order), the business key the
		// two confirmation paths upsert against.
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "order_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"type": models.TransactionTypePayment},
			),
		},
		{Keys: bson.D{{Key: "refund_id", Value: 1}}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// UpsertPayment writes the payment transaction keyed by (booking, order).
func (r *MongoTransactionRepo) UpsertPayment(tx *models.Transaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"booking_id": tx.BookingID,
		"order_id":   tx.OrderID,
		"type":       models.TransactionTypePayment,
	}
	update := bson.M{
		"$set": bson.M{
			"payment_id": tx.PaymentID,
			"amount":     tx.Amount,
			"currency":   tx.Currency,
			"status":     tx.Status,
			"source":     tx.Source,
			"notes":      tx.Notes,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"id":         uuid.New().String(),
			"booking_id": tx.BookingID,
			"order_id":   tx.OrderID,
			"type":       models.TransactionTypePayment,
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert payment transaction for booking %s: %w", tx.BookingID, err)
	}
	return nil
}

// CreateRefund appends a refund ledger entry.
func (r *MongoTransactionRepo) CreateRefund(tx *models.Transaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	tx.Type = models.TransactionTypeRefund
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to create refund transaction for booking %s: %w", tx.BookingID, err)
	}
	return nil
}

// SetRefundStatus updates a refund entry by its gateway refund id.
func (r *MongoTransactionRepo) SetRefundStatus(refundID, status string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"refund_id": refundID, "type": models.TransactionTypeRefund}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update refund %s: %w", refundID, err)
	}
	return nil
}

// GetPaymentByOrderID fetches the payment ledger row for a booking and order.
func (r *MongoTransactionRepo) GetPaymentByOrderID(bookingID, orderID string) (*models.Transaction, error) {
	return r.findOne(bson.M{
		"booking_id": bookingID,
		"order_id":   orderID,
		"type":       models.TransactionTypePayment,
	})
}

// GetSuccessfulRefund returns a SUCCESS refund transaction for the booking, if any.
func (r *MongoTransactionRepo) GetSuccessfulRefund(bookingID string) (*models.Transaction, error) {
	return r.findOne(bson.M{
		"booking_id": bookingID,
		"type":       models.TransactionTypeRefund,
		"status":     models.PaymentStatusSuccess,
	})
}

// GetByRefundID fetches a refund ledger row by its gateway refund id.
func (r *MongoTransactionRepo) GetByRefundID(refundID string) (*models.Transaction, error) {
	return r.findOne(bson.M{"refund_id": refundID, "type": models.TransactionTypeRefund})
}

func (r *MongoTransactionRepo) findOne(filter bson.M) (*models.Transaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tx models.Transaction
	if err := r.coll.FindOne(ctx, filter).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return &tx, nil
}

// ListByBooking returns the ledger for one booking, newest first.
func (r *MongoTransactionRepo) ListByBooking(bookingID string) ([]models.Transaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}
