package bookingRepo

import (
	"fmt"
	"time"

	"academix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// SumActiveParticipants sums participant counts across PENDING and CONFIRMED
// bookings for a batch. This is the advisory capacity read: it is not locked
// against concurrent writers.
func (r *MongoBookingRepo) SumActiveParticipants(batchID string) (int, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{
			"batch_id": batchID,
			"status":   bson.M{"$in": []string{models.BookingStatusPending, models.BookingStatusConfirmed}},
		}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": "$participant_ids"}},
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate batch participants: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode participant aggregate: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// HasActiveEnrollment reports whether any of the given participants already
// hold a PENDING or CONFIRMED booking for the batch.
func (r *MongoBookingRepo) HasActiveEnrollment(batchID string, participantIDs []string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"batch_id":        batchID,
		"status":          bson.M{"$in": []string{models.BookingStatusPending, models.BookingStatusConfirmed}},
		"participant_ids": bson.M{"$in": participantIDs},
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}
