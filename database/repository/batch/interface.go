package batchRepo

import "academix/models"

// BatchRepository provides read access to batches, academies and participants
// for booking validation. Lookup methods return (nil, nil) when no document
// matches.
type BatchRepository interface {
	GetBatchByID(id string) (*models.Batch, error)
	GetAcademyByID(id string) (*models.Academy, error)
	GetParticipants(ids []string) ([]models.Participant, error)
}
