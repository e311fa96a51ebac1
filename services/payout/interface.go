package payout

import (
	"context"

	"academix/models"
	"academix/services/tasks"
)

// Results of the idempotent job handlers, surfaced in worker logs.
const (
	ResultCreated = "created"
	ResultSkipped = "skipped"
)

// PayoutService owns the payout lifecycle: derivation from a confirmed
// payment, transfer execution against the gateway, and the settlement
// webhooks that close the loop.
type PayoutService interface {
	// CreatePayout is the payout-creation job handler. It is idempotent: a
	// payout that already exists for the booking yields ResultSkipped.
	CreatePayout(ctx context.Context, payload tasks.PayoutCreationPayload) (string, error)

	// ExecuteTransfer is the transfer job handler. A COMPLETED payout yields
	// ResultSkipped; any status outside {PENDING, FAILED} is an invalid
	// transition.
	ExecuteTransfer(ctx context.Context, payload tasks.PayoutTransferPayload) (string, error)

	HandleTransferProcessed(ctx context.Context, t *models.TransferEntity) error
	HandleTransferFailed(ctx context.Context, t *models.TransferEntity) error

	// InitiateTransfer is the operator trigger: it validates the payout and
	// enqueues a transfer job. Retrying a FAILED payout goes through the same
	// path.
	InitiateTransfer(ctx context.Context, adminID, payoutID string) error

	GetPayout(ctx context.Context, payoutID string) (*models.Payout, error)
	ListPayouts(ctx context.Context, status string, limit int64) ([]models.Payout, error)
}
