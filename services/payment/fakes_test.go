package payment_test

import (
	"context"
	"errors"
	"time"

	"academix/models"
	"academix/services/gateway"
	"academix/services/tasks"
)

// In-memory fakes mirroring the repository CAS semantics closely enough to
// exercise the reconciliation and refund state machines.

type fakeBookingRepo struct {
	bookings   map[string]*models.Booking
	confirmErr error
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) Create(b *models.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	b := r.bookings[id]
	if b == nil {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) GetByOrderID(orderID string) (*models.Booking, error) {
	for _, b := range r.bookings {
		if b.Payment.OrderID == orderID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) GetByPaymentID(paymentID string) (*models.Booking, error) {
	for _, b := range r.bookings {
		if b.Payment.PaymentID == paymentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) ListByUser(userID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) NextCodeSequence(year int) (int64, error) { return 1, nil }

func (r *fakeBookingRepo) SumActiveParticipants(batchID string) (int, error) { return 0, nil }

func (r *fakeBookingRepo) HasActiveEnrollment(batchID string, participantIDs []string) (bool, error) {
	return false, nil
}

func (r *fakeBookingRepo) ConfirmPayment(bookingID, paymentID string, paidAt time.Time) (bool, error) {
	if r.confirmErr != nil {
		return false, r.confirmErr
	}
	b := r.bookings[bookingID]
	if b == nil {
		return false, nil
	}
	if b.Status != models.BookingStatusPending {
		return false, nil
	}
	switch b.Payment.Status {
	case models.PaymentStatusPending, models.PaymentStatusProcessing, models.PaymentStatusFailed:
	default:
		return false, nil
	}
	b.Status = models.BookingStatusConfirmed
	b.Payment.Status = models.PaymentStatusSuccess
	b.Payment.PaymentID = paymentID
	b.Payment.PaidAt = &paidAt
	return true, nil
}

func (r *fakeBookingRepo) MarkPaymentFailed(bookingID, reason string) (bool, error) {
	b := r.bookings[bookingID]
	if b == nil {
		return false, errors.New("booking not found")
	}
	switch b.Payment.Status {
	case models.PaymentStatusPending, models.PaymentStatusProcessing:
	default:
		return false, nil
	}
	b.Payment.Status = models.PaymentStatusFailed
	b.Payment.FailureReason = reason
	return true, nil
}

func (r *fakeBookingRepo) Cancel(bookingID string) (bool, error) {
	b := r.bookings[bookingID]
	if b == nil || b.Status != models.BookingStatusPending || b.Payment.Status != models.PaymentStatusPending {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	b.Payment.Status = models.PaymentStatusFailed
	return true, nil
}

func (r *fakeBookingRepo) SetPayoutStatus(bookingID, status string) error {
	if b := r.bookings[bookingID]; b != nil {
		b.PayoutStatus = status
	}
	return nil
}

func (r *fakeBookingRepo) ApplyFullRefund(bookingID string) error {
	b := r.bookings[bookingID]
	if b == nil {
		return errors.New("booking not found")
	}
	b.Status = models.BookingStatusCancelled
	b.Payment.Status = models.PaymentStatusRefunded
	b.PayoutStatus = models.PayoutStatusRefunded
	return nil
}

type paymentKey struct {
	bookingID string
	orderID   string
}

type fakeTransactionRepo struct {
	payments map[paymentKey]*models.Transaction
	refunds  []*models.Transaction
	upserts  int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{payments: make(map[paymentKey]*models.Transaction)}
}

func (r *fakeTransactionRepo) UpsertPayment(tx *models.Transaction) error {
	r.upserts++
	key := paymentKey{tx.BookingID, tx.OrderID}
	if existing := r.payments[key]; existing != nil {
		tx.ID = existing.ID
	} else if tx.ID == "" {
		tx.ID = "tx-" + tx.BookingID
	}
	cp := *tx
	r.payments[key] = &cp
	return nil
}

func (r *fakeTransactionRepo) CreateRefund(tx *models.Transaction) error {
	cp := *tx
	if cp.ID == "" {
		cp.ID = "rtx-" + cp.RefundID
	}
	r.refunds = append(r.refunds, &cp)
	return nil
}

func (r *fakeTransactionRepo) SetRefundStatus(refundID, status string) error {
	for _, tx := range r.refunds {
		if tx.RefundID == refundID {
			tx.Status = status
			return nil
		}
	}
	return nil
}

func (r *fakeTransactionRepo) GetPaymentByOrderID(bookingID, orderID string) (*models.Transaction, error) {
	tx := r.payments[paymentKey{bookingID, orderID}]
	if tx == nil {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTransactionRepo) GetSuccessfulRefund(bookingID string) (*models.Transaction, error) {
	for _, tx := range r.refunds {
		if tx.BookingID == bookingID && tx.Status == models.PaymentStatusSuccess {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) GetByRefundID(refundID string) (*models.Transaction, error) {
	for _, tx := range r.refunds {
		if tx.RefundID == refundID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) ListByBooking(bookingID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range r.payments {
		if tx.BookingID == bookingID {
			out = append(out, *tx)
		}
	}
	for _, tx := range r.refunds {
		if tx.BookingID == bookingID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

type fakePayoutRepo struct {
	payouts map[string]*models.Payout
}

func newFakePayoutRepo(payouts ...*models.Payout) *fakePayoutRepo {
	r := &fakePayoutRepo{payouts: make(map[string]*models.Payout)}
	for _, p := range payouts {
		r.payouts[p.ID] = p
	}
	return r
}

func (r *fakePayoutRepo) Create(p *models.Payout) error {
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

type fakeAuditRepo struct {
	events []*models.AuditEvent
}

func (r *fakeAuditRepo) Append(event *models.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(entityType, entityID string) ([]models.AuditEvent, error) {
	var out []models.AuditEvent
	for _, e := range r.events {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeGateway struct {
	signatureOK     bool
	webhookOK       bool
	payment         *gateway.Payment
	fetchErr        error
	refund          *gateway.Refund
	refundErr       error
	refundRequests  []gateway.CreateRefundInput
	transfer        *gateway.Transfer
	transferErr     error
	transferInputs  []gateway.CreateTransferInput
	createdOrder    *gateway.Order
	createOrderErrs error
}

func (g *fakeGateway) CreateOrder(_ context.Context, in gateway.CreateOrderInput) (*gateway.Order, error) {
	if g.createOrderErrs != nil {
		return nil, g.createOrderErrs
	}
	if g.createdOrder != nil {
		return g.createdOrder, nil
	}
	return &gateway.Order{ID: "order_fake", Amount: in.Amount, Currency: in.Currency}, nil
}

func (g *fakeGateway) FetchPayment(_ context.Context, paymentID string) (*gateway.Payment, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.payment, nil
}

func (g *fakeGateway) CreateTransfer(_ context.Context, in gateway.CreateTransferInput) (*gateway.Transfer, error) {
	g.transferInputs = append(g.transferInputs, in)
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	if g.transfer != nil {
		return g.transfer, nil
	}
	return &gateway.Transfer{ID: "trf_fake", Status: "processed"}, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, in gateway.CreateRefundInput) (*gateway.Refund, error) {
	g.refundRequests = append(g.refundRequests, in)
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	if g.refund != nil {
		return g.refund, nil
	}
	return &gateway.Refund{ID: "rfnd_fake", Status: "processed", Amount: in.Amount}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.signatureOK
}

func (g *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return g.webhookOK
}

type fakeEnqueuer struct {
	creations []tasks.PayoutCreationPayload
	transfers []tasks.PayoutTransferPayload
}

func (e *fakeEnqueuer) EnqueuePayoutCreation(_ context.Context, payload tasks.PayoutCreationPayload) {
	e.creations = append(e.creations, payload)
}

func (e *fakeEnqueuer) EnqueuePayoutTransfer(_ context.Context, payload tasks.PayoutTransferPayload) {
	e.transfers = append(e.transfers, payload)
}

type fakeNotifier struct {
	userPushes    int
	academyPushes int
}

func (n *fakeNotifier) SendUserPushNotification(_ context.Context, userID, title, body string, data map[string]string) error {
	n.userPushes++
	return nil
}

func (n *fakeNotifier) SendAcademyPushNotification(_ context.Context, academyID, title, body string, data map[string]string) error {
	n.academyPushes++
	return nil
}
