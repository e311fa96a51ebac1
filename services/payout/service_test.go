package payout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	payoutRepoPkg "academix/database/repository/payout"
	"academix/models"
	"academix/services/gateway"
	"academix/services/payout"
	"academix/services/tasks"
	"academix/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePayoutRepo struct {
	payouts    map[string]*models.Payout
	duplicates bool
}

func newFakePayoutRepo(payouts ...*models.Payout) *fakePayoutRepo {
	r := &fakePayoutRepo{payouts: make(map[string]*models.Payout)}
	for _, p := range payouts {
		r.payouts[p.ID] = p
	}
	return r
}

func (r *fakePayoutRepo) Create(p *models.Payout) error {
	if r.duplicates {
		return payoutRepoPkg.ErrDuplicatePayout
	}
	for _, existing := range r.payouts {
		if existing.BookingID == p.BookingID {
			return payoutRepoPkg.ErrDuplicatePayout
		}
	}
	r.payouts[p.ID] = p
	return nil
}

func (r *fakePayoutRepo) GetByID(id string) (*models.Payout, error) {
	p := r.payouts[id]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePayoutRepo) GetByBookingID(bookingID string) (*models.Payout, error) {
	for _, p := range r.payouts {
		if p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutRepo) GetByTransferID(transferID string) (*models.Payout, error) {
	for _, p := range r.payouts {
		if p.RazorpayTransferID == transferID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutRepo) ListByStatus(status string, limit int64) ([]models.Payout, error) {
	var out []models.Payout
	for _, p := range r.payouts {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePayoutRepo) TransitionStatus(id string, from []string, to string) (bool, error) {
	p := r.payouts[id]
	if p == nil {
		return false, nil
	}
	for _, f := range from {
		if p.Status == f {
			p.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePayoutRepo) SetTransferInitiated(id, transferID string) error {
	if p := r.payouts[id]; p != nil {
		p.RazorpayTransferID = transferID
	}
	return nil
}

func (r *fakePayoutRepo) MarkFailed(id, reason string) error {
	if p := r.payouts[id]; p != nil {
		p.Status = models.TransferStatusFailed
		p.FailureReason = reason
	}
	return nil
}

func (r *fakePayoutRepo) CompleteByTransferID(transferID string, processedAt time.Time) (*models.Payout, error) {
	for _, p := range r.payouts {
		if p.RazorpayTransferID != transferID {
			continue
		}
		if p.Status == models.TransferStatusProcessing || p.Status == models.TransferStatusFailed {
			p.Status = models.TransferStatusCompleted
			p.ProcessedAt = &processedAt
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutRepo) FailByTransferID(transferID, reason string) (*models.Payout, error) {
	for _, p := range r.payouts {
		if p.RazorpayTransferID == transferID && p.Status == models.TransferStatusProcessing {
			p.Status = models.TransferStatusFailed
			p.FailureReason = reason
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutRepo) ApplyRefund(id string, refundAmount, adjustedAmount float64, status string) error {
	p := r.payouts[id]
	if p == nil {
		return errors.New("payout not found")
	}
	p.RefundAmount = &refundAmount
	p.AdjustedPayoutAmount = &adjustedAmount
	if status != "" {
		p.Status = status
	}
	return nil
}

type fakeBookingStatusRepo struct {
	payoutStatuses map[string]string
}

func newFakeBookingStatusRepo() *fakeBookingStatusRepo {
	return &fakeBookingStatusRepo{payoutStatuses: make(map[string]string)}
}

func (r *fakeBookingStatusRepo) Create(*models.Booking) error                   { return nil }
func (r *fakeBookingStatusRepo) GetByID(string) (*models.Booking, error)        { return nil, nil }
func (r *fakeBookingStatusRepo) GetByOrderID(string) (*models.Booking, error)   { return nil, nil }
func (r *fakeBookingStatusRepo) GetByPaymentID(string) (*models.Booking, error) { return nil, nil }
func (r *fakeBookingStatusRepo) ListByUser(string) ([]models.Booking, error)    { return nil, nil }
func (r *fakeBookingStatusRepo) NextCodeSequence(int) (int64, error)            { return 1, nil }
func (r *fakeBookingStatusRepo) SumActiveParticipants(string) (int, error)      { return 0, nil }
func (r *fakeBookingStatusRepo) HasActiveEnrollment(string, []string) (bool, error) {
	return false, nil
}
func (r *fakeBookingStatusRepo) ConfirmPayment(string, string, time.Time) (bool, error) {
	return false, nil
}
func (r *fakeBookingStatusRepo) MarkPaymentFailed(string, string) (bool, error) {
	return false, nil
}
func (r *fakeBookingStatusRepo) Cancel(string) (bool, error) { return false, nil }
func (r *fakeBookingStatusRepo) SetPayoutStatus(bookingID, status string) error {
	r.payoutStatuses[bookingID] = status
	return nil
}
func (r *fakeBookingStatusRepo) ApplyFullRefund(string) error { return nil }

type fakeBatchRepo struct {
	academy *models.Academy
}

func (r *fakeBatchRepo) GetBatchByID(string) (*models.Batch, error) { return nil, nil }
func (r *fakeBatchRepo) GetAcademyByID(string) (*models.Academy, error) {
	return r.academy, nil
}
func (r *fakeBatchRepo) GetParticipants([]string) ([]models.Participant, error) { return nil, nil }

type fakeAuditRepo struct {
	events []*models.AuditEvent
}

func (r *fakeAuditRepo) Append(event *models.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(entityType, entityID string) ([]models.AuditEvent, error) {
	return nil, nil
}

type fakeGateway struct {
	transfer       *gateway.Transfer
	transferErr    error
	transferInputs []gateway.CreateTransferInput
}

func (g *fakeGateway) CreateOrder(context.Context, gateway.CreateOrderInput) (*gateway.Order, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) FetchPayment(context.Context, string) (*gateway.Payment, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) CreateTransfer(_ context.Context, in gateway.CreateTransferInput) (*gateway.Transfer, error) {
	g.transferInputs = append(g.transferInputs, in)
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	if g.transfer != nil {
		return g.transfer, nil
	}
	return &gateway.Transfer{ID: "trf-1", Status: "processed"}, nil
}

func (g *fakeGateway) CreateRefund(context.Context, gateway.CreateRefundInput) (*gateway.Refund, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) VerifyPaymentSignature(string, string, string) bool { return true }
func (g *fakeGateway) VerifyWebhookSignature([]byte, string) bool         { return true }

type fakeEnqueuer struct {
	transfers []tasks.PayoutTransferPayload
}

func (e *fakeEnqueuer) EnqueuePayoutCreation(context.Context, tasks.PayoutCreationPayload) {}
func (e *fakeEnqueuer) EnqueuePayoutTransfer(_ context.Context, payload tasks.PayoutTransferPayload) {
	e.transfers = append(e.transfers, payload)
}

type fakeNotifier struct{ academyPushes int }

func (n *fakeNotifier) SendUserPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}

func (n *fakeNotifier) SendAcademyPushNotification(context.Context, string, string, string, map[string]string) error {
	n.academyPushes++
	return nil
}

func creationPayload() tasks.PayoutCreationPayload {
	return tasks.PayoutCreationPayload{
		BookingID:        "bk-1",
		TransactionID:    "tx-1",
		AcademyID:        "academy-1",
		Amount:           3236,
		BatchAmount:      3000,
		CommissionRate:   0.10,
		CommissionAmount: 300,
		PayoutAmount:     2700,
		Currency:         "INR",
	}
}

func newService(payouts *fakePayoutRepo, bookings *fakeBookingStatusRepo, gw *fakeGateway, enq *fakeEnqueuer) (*payout.DefaultPayoutService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	return &payout.DefaultPayoutService{
		PayoutRepo:  payouts,
		BookingRepo: bookings,
		BatchRepo:   &fakeBatchRepo{academy: &models.Academy{ID: "academy-1", RazorpayAccountID: "acc_1"}},
		AuditRepo:   audit,
		Gateway:     gw,
		Enqueuer:    enq,
		Notifier:    &fakeNotifier{},
		Logger:      zap.NewNop(),
	}, audit
}

func TestCreatePayout(t *testing.T) {
	payouts := newFakePayoutRepo()
	bookings := newFakeBookingStatusRepo()
	svc, _ := newService(payouts, bookings, &fakeGateway{}, &fakeEnqueuer{})

	result, err := svc.CreatePayout(context.Background(), creationPayload())
	require.NoError(t, err)
	assert.Equal(t, payout.ResultCreated, result)

	p, err := payouts.GetByBookingID("bk-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.TransferStatusPending, p.Status)
	assert.Equal(t, 2700.0, p.PayoutAmount)
	assert.Equal(t, "tx-1", p.TransactionID)
	assert.Equal(t, models.PayoutStatusPending, bookings.payoutStatuses["bk-1"])
}

func TestCreatePayoutIsIdempotent(t *testing.T) {
	payouts := newFakePayoutRepo()
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), &fakeGateway{}, &fakeEnqueuer{})

	result, err := svc.CreatePayout(context.Background(), creationPayload())
	require.NoError(t, err)
	assert.Equal(t, payout.ResultCreated, result)

	result, err = svc.CreatePayout(context.Background(), creationPayload())
	require.NoError(t, err)
	assert.Equal(t, payout.ResultSkipped, result)

	list, _ := payouts.ListByStatus("", 0)
	assert.Len(t, list, 1)
}

func TestCreatePayoutSkipsOnDuplicateInsert(t *testing.T) {
	payouts := newFakePayoutRepo()
	payouts.duplicates = true
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), &fakeGateway{}, &fakeEnqueuer{})

	result, err := svc.CreatePayout(context.Background(), creationPayload())
	require.NoError(t, err)
	assert.Equal(t, payout.ResultSkipped, result)
}

func TestExecuteTransferInitiatesAndStaysProcessing(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", TransactionID: "tx-1", AcademyID: "academy-1",
		PayoutAmount: 2700, Currency: "INR", Status: models.TransferStatusPending,
	})
	bookings := newFakeBookingStatusRepo()
	gw := &fakeGateway{}
	svc, audit := newService(payouts, bookings, gw, &fakeEnqueuer{})

	result, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.NoError(t, err)
	assert.Equal(t, payout.ResultCreated, result)

	require.Len(t, gw.transferInputs, 1)
	assert.Equal(t, "acc_1", gw.transferInputs[0].AccountID)
	assert.Equal(t, int64(270000), gw.transferInputs[0].Amount)
	assert.Equal(t, "bk-1", gw.transferInputs[0].Notes["bookingId"])

	// Settlement comes later from the webhook; the record stays PROCESSING.
	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusProcessing, p.Status)
	assert.Equal(t, "trf-1", p.RazorpayTransferID)
	assert.Equal(t, models.PayoutStatusProcessing, bookings.payoutStatuses["bk-1"])

	require.Len(t, audit.events, 1)
	assert.Equal(t, "transfer_initiated", audit.events[0].Action)
}

func TestExecuteTransferPrefersAdjustedAmount(t *testing.T) {
	adjusted := 1350.0
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		PayoutAmount: 2700, AdjustedPayoutAmount: &adjusted,
		Currency: "INR", Status: models.TransferStatusPending,
	})
	gw := &fakeGateway{}
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), gw, &fakeEnqueuer{})

	_, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.NoError(t, err)

	require.Len(t, gw.transferInputs, 1)
	assert.Equal(t, int64(135000), gw.transferInputs[0].Amount)
}

func TestExecuteTransferCancelsZeroEntitlement(t *testing.T) {
	adjusted := 0.0
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		PayoutAmount: 2700, AdjustedPayoutAmount: &adjusted,
		Currency: "INR", Status: models.TransferStatusPending,
	})
	gw := &fakeGateway{}
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), gw, &fakeEnqueuer{})

	result, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.NoError(t, err)
	assert.Equal(t, payout.ResultSkipped, result)
	assert.Empty(t, gw.transferInputs)

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusCancelled, p.Status)
}

func TestExecuteTransferSkipsCompleted(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", Status: models.TransferStatusCompleted,
	})
	gw := &fakeGateway{}
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), gw, &fakeEnqueuer{})

	result, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.NoError(t, err)
	assert.Equal(t, payout.ResultSkipped, result)
	assert.Empty(t, gw.transferInputs)
}

func TestExecuteTransferRejectsProcessing(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", Status: models.TransferStatusProcessing,
	})
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), &fakeGateway{}, &fakeEnqueuer{})

	_, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, "INVALID_TRANSFER_STATE"))
}

func TestExecuteTransferMarksFailedOnGatewayError(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		PayoutAmount: 2700, Currency: "INR", Status: models.TransferStatusPending,
	})
	bookings := newFakeBookingStatusRepo()
	gw := &fakeGateway{transferErr: errors.New("gateway down")}
	svc, _ := newService(payouts, bookings, gw, &fakeEnqueuer{})

	_, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindExternal), "gateway failures stay retryable")

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusFailed, p.Status)
	assert.Equal(t, "gateway down", p.FailureReason)
	assert.Equal(t, models.PayoutStatusFailed, bookings.payoutStatuses["bk-1"])
}

func TestExecuteTransferRetriesAfterFailure(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		PayoutAmount: 2700, Currency: "INR", Status: models.TransferStatusFailed,
		FailureReason: "gateway down",
	})
	gw := &fakeGateway{}
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), gw, &fakeEnqueuer{})

	result, err := svc.ExecuteTransfer(context.Background(), tasks.PayoutTransferPayload{PayoutID: "po-1"})
	require.NoError(t, err)
	assert.Equal(t, payout.ResultCreated, result)

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusProcessing, p.Status)
}

func TestHandleTransferProcessedSettlesPayout(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		RazorpayTransferID: "trf-1", Status: models.TransferStatusProcessing,
	})
	bookings := newFakeBookingStatusRepo()
	svc, audit := newService(payouts, bookings, &fakeGateway{}, &fakeEnqueuer{})

	err := svc.HandleTransferProcessed(context.Background(), &models.TransferEntity{ID: "trf-1"})
	require.NoError(t, err)

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusCompleted, p.Status)
	require.NotNil(t, p.ProcessedAt)
	assert.Equal(t, models.PayoutStatusCompleted, bookings.payoutStatuses["bk-1"])
	require.Len(t, audit.events, 1)
	assert.Equal(t, "transfer_settled", audit.events[0].Action)
}

func TestHandleTransferProcessedUnknownIsNoop(t *testing.T) {
	svc, audit := newService(newFakePayoutRepo(), newFakeBookingStatusRepo(), &fakeGateway{}, &fakeEnqueuer{})

	err := svc.HandleTransferProcessed(context.Background(), &models.TransferEntity{ID: "trf-ghost"})
	require.NoError(t, err)
	assert.Empty(t, audit.events)
}

func TestHandleTransferProcessedLeavesRefundedPayoutAlone(t *testing.T) {
	refund := 2700.0
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		RazorpayTransferID: "trf-1", Status: models.TransferStatusRefunded,
		RefundAmount: &refund,
	})
	bookings := newFakeBookingStatusRepo()
	svc, audit := newService(payouts, bookings, &fakeGateway{}, &fakeEnqueuer{})

	// A full refund already flagged the payout; the late settlement webhook
	// must not resurrect it to COMPLETED.
	err := svc.HandleTransferProcessed(context.Background(), &models.TransferEntity{ID: "trf-1"})
	require.NoError(t, err)

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusRefunded, p.Status)
	assert.Nil(t, p.ProcessedAt)
	assert.Empty(t, audit.events)
	assert.Empty(t, bookings.payoutStatuses)
}

func TestHandleTransferProcessedSettlesAfterReportedFailure(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		RazorpayTransferID: "trf-1", Status: models.TransferStatusFailed,
	})
	bookings := newFakeBookingStatusRepo()
	svc, _ := newService(payouts, bookings, &fakeGateway{}, &fakeEnqueuer{})

	// Gateway retried the settlement after reporting a failure.
	err := svc.HandleTransferProcessed(context.Background(), &models.TransferEntity{ID: "trf-1"})
	require.NoError(t, err)

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusCompleted, p.Status)
	assert.Equal(t, models.PayoutStatusCompleted, bookings.payoutStatuses["bk-1"])
}

func TestHandleTransferFailedMarksFailed(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1",
		RazorpayTransferID: "trf-1", Status: models.TransferStatusProcessing,
	})
	bookings := newFakeBookingStatusRepo()
	svc, _ := newService(payouts, bookings, &fakeGateway{}, &fakeEnqueuer{})

	err := svc.HandleTransferFailed(context.Background(), &models.TransferEntity{ID: "trf-1"})
	require.NoError(t, err)

	p, _ := payouts.GetByID("po-1")
	assert.Equal(t, models.TransferStatusFailed, p.Status)
	assert.Equal(t, models.PayoutStatusFailed, bookings.payoutStatuses["bk-1"])
}

func TestInitiateTransferEnqueuesJob(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		PayoutAmount: 2700, Status: models.TransferStatusPending,
	})
	enq := &fakeEnqueuer{}
	svc, audit := newService(payouts, newFakeBookingStatusRepo(), &fakeGateway{}, enq)

	err := svc.InitiateTransfer(context.Background(), "admin-1", "po-1")
	require.NoError(t, err)

	require.Len(t, enq.transfers, 1)
	assert.Equal(t, "po-1", enq.transfers[0].PayoutID)
	assert.Equal(t, "acc_1", enq.transfers[0].AccountID)
	assert.Equal(t, "admin-1", enq.transfers[0].AdminUserID)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "transfer_enqueued", audit.events[0].Action)
}

func TestInitiateTransferRejectsNonTransferableStates(t *testing.T) {
	for _, status := range []string{
		models.TransferStatusProcessing,
		models.TransferStatusCompleted,
		models.TransferStatusCancelled,
		models.TransferStatusRefunded,
	} {
		payouts := newFakePayoutRepo(&models.Payout{ID: "po-1", BookingID: "bk-1", Status: status})
		svc, _ := newService(payouts, newFakeBookingStatusRepo(), &fakeGateway{}, &fakeEnqueuer{})

		err := svc.InitiateTransfer(context.Background(), "admin-1", "po-1")
		require.Error(t, err, status)
		assert.True(t, utils.IsCode(err, "INVALID_TRANSFER_STATE"))
	}
}

func TestInitiateTransferWithoutLinkedAccount(t *testing.T) {
	payouts := newFakePayoutRepo(&models.Payout{
		ID: "po-1", BookingID: "bk-1", AcademyID: "academy-1",
		Status: models.TransferStatusPending,
	})
	svc, _ := newService(payouts, newFakeBookingStatusRepo(), &fakeGateway{}, &fakeEnqueuer{})
	svc.BatchRepo = &fakeBatchRepo{academy: &models.Academy{ID: "academy-1"}}

	err := svc.InitiateTransfer(context.Background(), "admin-1", "po-1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, "NO_LINKED_ACCOUNT"))
}
