package tasks

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer submits payout jobs. Enqueue failures must never block the HTTP
// response or webhook acknowledgement that triggered them, so implementations
// log and swallow errors.
type Enqueuer interface {
	EnqueuePayoutCreation(ctx context.Context, payload PayoutCreationPayload)
	EnqueuePayoutTransfer(ctx context.Context, payload PayoutTransferPayload)
}

// AsynqEnqueuer implements Enqueuer on an asynq client.
type AsynqEnqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewAsynqEnqueuer creates an Enqueuer backed by the given asynq client.
func NewAsynqEnqueuer(client *asynq.Client, logger *zap.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client, logger: logger}
}

// EnqueuePayoutCreation submits a payout-creation job. A duplicate task id
// means the job already exists for this booking and is not an error.
func (e *AsynqEnqueuer) EnqueuePayoutCreation(ctx context.Context, payload PayoutCreationPayload) {
	task, opts, err := NewPayoutCreationTask(payload)
	if err != nil {
		e.logger.Error("failed to build payout creation task",
			zap.String("bookingId", payload.BookingID), zap.Error(err))
		return
	}
	e.enqueue(ctx, task, opts, payload.BookingID)
}

// EnqueuePayoutTransfer submits a transfer job for an existing payout.
func (e *AsynqEnqueuer) EnqueuePayoutTransfer(ctx context.Context, payload PayoutTransferPayload) {
	task, opts, err := NewPayoutTransferTask(payload)
	if err != nil {
		e.logger.Error("failed to build payout transfer task",
			zap.String("payoutId", payload.PayoutID), zap.Error(err))
		return
	}
	e.enqueue(ctx, task, opts, payload.PayoutID)
}

func (e *AsynqEnqueuer) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option, entityID string) {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			e.logger.Debug("task already enqueued",
				zap.String("type", task.Type()), zap.String("entity", entityID))
			return
		}
		e.logger.Error("failed to enqueue task",
			zap.String("type", task.Type()), zap.String("entity", entityID), zap.Error(err))
		return
	}
	e.logger.Info("task enqueued",
		zap.String("type", task.Type()), zap.String("id", info.ID), zap.String("queue", info.Queue))
}
