package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task types handled by the payout worker.
const (
	TypePayoutCreate   = "payout:create"
	TypePayoutTransfer = "payout:transfer"
)

// QueuePayouts is the queue both payout task types run on.
const QueuePayouts = "payouts"

const maxTaskRetries = 3

// PayoutCreationPayload carries everything needed to derive a payout from a
// confirmed payment.
type PayoutCreationPayload struct {
	BookingID        string  `json:"bookingId"`
	TransactionID    string  `json:"transactionId"`
	AcademyID        string  `json:"academyId"`
	Amount           float64 `json:"amount"`
	BatchAmount      float64 `json:"batchAmount"`
	CommissionRate   float64 `json:"commissionRate"`
	CommissionAmount float64 `json:"commissionAmount"`
	PayoutAmount     float64 `json:"payoutAmount"`
	Currency         string  `json:"currency"`
}

// PayoutTransferPayload carries one transfer attempt for an existing payout.
type PayoutTransferPayload struct {
	PayoutID    string `json:"payoutId"`
	AccountID   string `json:"accountId"`
	AdminUserID string `json:"adminUserId,omitempty"`
}

// PayoutCreationTaskID is the deterministic job key for payout creation. Both
// confirmation paths may enqueue for the same booking; the shared id collapses
// them into a single job, which is what prevents a double payout.
func PayoutCreationTaskID(bookingID string) string {
	return fmt.Sprintf("payout-%s", bookingID)
}

// PayoutTransferTaskID is the deterministic job key for one payout's transfer.
func PayoutTransferTaskID(payoutID string) string {
	return fmt.Sprintf("transfer-%s", payoutID)
}

// NewPayoutCreationTask builds the payout-creation task with its dedup id.
func NewPayoutCreationTask(payload PayoutCreationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePayoutCreate, b)
	opts := []asynq.Option{
		asynq.TaskID(PayoutCreationTaskID(payload.BookingID)),
		asynq.Queue(QueuePayouts),
		asynq.MaxRetry(maxTaskRetries),
	}
	return task, opts, nil
}

// NewPayoutTransferTask builds the transfer task with its dedup id.
func NewPayoutTransferTask(payload PayoutTransferPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePayoutTransfer, b)
	opts := []asynq.Option{
		asynq.TaskID(PayoutTransferTaskID(payload.PayoutID)),
		asynq.Queue(QueuePayouts),
		asynq.MaxRetry(maxTaskRetries),
	}
	return task, opts, nil
}
