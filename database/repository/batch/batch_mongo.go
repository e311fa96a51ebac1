package batchRepo

import (
	"context"
	"fmt"
	"time"

	"academix/database"
	"academix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBatchRepo implements BatchRepository using MongoDB.
type MongoBatchRepo struct {
	batches      *mongo.Collection
	academies    *mongo.Collection
	participants *mongo.Collection
}

// NewMongoBatchRepo creates a new instance of BatchRepository using MongoDB.
func NewMongoBatchRepo() BatchRepository {
	return &MongoBatchRepo{
		batches:      database.Collection("batches"),
		academies:    database.Collection("academies"),
		participants: database.Collection("participants"),
	}
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// GetBatchByID retrieves a batch by its unique ID.
func (r *MongoBatchRepo) GetBatchByID(id string) (*models.Batch, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var batch models.Batch
	if err := r.batches.FindOne(ctx, bson.M{"id": id}).Decode(&batch); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch batch %s: %w", id, err)
	}
	return &batch, nil
}

// GetAcademyByID retrieves an academy by its unique ID.
func (r *MongoBatchRepo) GetAcademyByID(id string) (*models.Academy, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var academy models.Academy
	if err := r.academies.FindOne(ctx, bson.M{"id": id}).Decode(&academy); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch academy %s: %w", id, err)
	}
	return &academy, nil
}

// GetParticipants retrieves participant documents by id.
func (r *MongoBatchRepo) GetParticipants(ids []string) ([]models.Participant, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.participants.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}
	return participants, nil
}
