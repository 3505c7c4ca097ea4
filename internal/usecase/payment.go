package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"shramik-backend/internal/gateway"
	"shramik-backend/internal/lock"
	"shramik-backend/internal/model"
	"shramik-backend/internal/notification"
	"shramik-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sender queues a notification without waiting for delivery.
type Sender interface {
	Send(msg notification.Message)
}

type PaymentOptions struct {
	// PaymentTimeout bounds every gateway call.
	PaymentTimeout time.Duration
	StoreTimeout   time.Duration
	// StaleAfter is how long a capturing attempt may sit before it needs reconciliation.
	StaleAfter time.Duration
	LockTTL    time.Duration
	Currency   string
}

func (o *PaymentOptions) defaults() {
	if o.PaymentTimeout <= 0 {
		o.PaymentTimeout = 20 * time.Second
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = 30 * time.Minute
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 2*o.PaymentTimeout + time.Minute
	}
	if o.Currency == "" {
		o.Currency = "INR"
	}
}

// PaymentResult is an attempt and, once the period is settled, the record it produced.
type PaymentResult struct {
	Attempt *model.PaymentAttempt `json:"attempt"`
	Record  *model.PaymentRecord  `json:"record,omitempty"`
}

type PaymentUsecase struct {
	records  repository.AttendanceRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	gateways map[model.PaymentMethod]gateway.Gateway
	locker   lock.Locker
	sender   Sender
	opts     PaymentOptions
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

func NewPaymentUsecase(
	records repository.AttendanceRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	locker lock.Locker,
	sender Sender,
	opts PaymentOptions,
	logger *slog.Logger,
	gateways ...gateway.Gateway,
) *PaymentUsecase {
	opts.defaults()
	byMethod := make(map[model.PaymentMethod]gateway.Gateway, len(gateways))
	for _, g := range gateways {
		byMethod[g.Method()] = g
	}
	return &PaymentUsecase{
		records:  records,
		payments: payments,
		users:    users,
		gateways: byMethod,
		locker:   locker,
		sender:   sender,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger.With("component", "payment"),
	}
}

type InitiateInput struct {
	RecordID string
	Method   model.PaymentMethod
}

// Initiate prices the period, runs the duplicate guard and opens a gateway order for the client's
// checkout. Nothing is charged until Confirm.
func (u *PaymentUsecase) Initiate(ctx context.Context, caller *Identity, in InitiateInput) (*model.PaymentAttempt, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	gw, ok := u.gateways[in.Method]
	if !in.Method.Valid() || !ok {
		return nil, ErrInvalidMethod
	}

	storeCtx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()

	record, err := u.records.FindByID(storeCtx, in.RecordID)
	if err != nil {
		return nil, storeError(err)
	}
	if record.EmployerID != caller.UserID {
		return nil, ErrNotOwner
	}
	if !ComputeSummary(record).Payable {
		return nil, ErrNothingToPay
	}

	release, err := u.acquire(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Attendance edits take the same lock, so the amount is priced from a fresh read.
	record, err = u.records.FindByID(storeCtx, record.ID)
	if err != nil {
		return nil, storeError(err)
	}
	summary := ComputeSummary(record)
	if !summary.Payable {
		return nil, ErrNothingToPay
	}

	if err := u.guard(storeCtx, record); err != nil {
		return nil, err
	}

	employer, err := u.users.FindByID(storeCtx, record.EmployerID)
	if err != nil {
		return nil, storeError(err)
	}

	period := PeriodLabel(record.Year, record.Month)
	attempt := &model.PaymentAttempt{
		ID:                 u.newID(),
		AttendanceRecordID: record.ID,
		EmployerID:         record.EmployerID,
		WorkerID:           record.WorkerID,
		Method:             in.Method,
		Amount:             summary.TotalAmount,
		WorkDays:           summary.WorkDays,
		DailyRate:          record.DailyRate,
		WorkPeriod:         period,
		JobTitle:           record.JobTitle,
		Status:             model.AttemptCapturing,
		Notes: datatypes.JSONMap{
			"attendance_record_id": record.ID,
			"worker_id":            record.WorkerID,
			"work_period":          period,
			"work_days":            summary.WorkDays,
		},
	}
	if err := u.payments.CreateAttempt(storeCtx, attempt); err != nil {
		return nil, storeError(err)
	}

	gwCtx, gwCancel := withTimeout(ctx, u.opts.PaymentTimeout)
	defer gwCancel()

	order, err := gw.CreateOrder(gwCtx, gateway.OrderRequest{
		Amount:   summary.TotalAmount,
		Currency: u.opts.Currency,
		Receipt:  attempt.ID,
		Notes: map[string]string{
			"attendance_record_id": record.ID,
			"worker_id":            strconv.FormatUint(uint64(record.WorkerID), 10),
			"work_period":          period,
		},
		Customer: gateway.Customer{
			ID:    employer.ID,
			Name:  employer.Name,
			Email: employer.Email,
			Phone: employer.Phone,
		},
	})
	if err != nil {
		// The client never saw an order, so nothing can have been charged against it.
		attempt.Status = model.AttemptFailed
		attempt.FailureReason = err.Error()
		u.saveAttempt(ctx, attempt)
		u.logger.WarnContext(ctx, "create order failed", "attempt_id", attempt.ID, "method", in.Method, "error", err)
		return nil, ErrGatewayFailure.Wrap(err)
	}

	attempt.GatewayOrderID = order.ID
	attempt.CheckoutURL = order.CheckoutURL
	if err := u.updateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "payment initiated",
		"attempt_id", attempt.ID, "record_id", record.ID, "method", in.Method,
		"amount", attempt.Amount, "order_id", order.ID)
	return attempt, nil
}

type ConfirmInput struct {
	AttemptID string
	PaymentID string
	Signature string
	Cancelled bool
}

// Confirm captures a checkout. A verified success is persisted as the period's payment record;
// a declined or cancelled checkout writes nothing and leaves the attendance untouched.
func (u *PaymentUsecase) Confirm(ctx context.Context, caller *Identity, in ConfirmInput) (*PaymentResult, error) {
	if in.Cancelled {
		return u.Cancel(ctx, caller, in.AttemptID)
	}
	if err := caller.verified(); err != nil {
		return nil, err
	}

	attempt, release, err := u.lockAttempt(ctx, caller, in.AttemptID)
	if err != nil {
		return nil, err
	}
	defer release()

	if attempt.Status != model.AttemptCapturing {
		return u.closedResult(ctx, attempt)
	}

	gw, ok := u.gateways[attempt.Method]
	if !ok {
		return nil, ErrInvalidMethod
	}
	if signed, ok := gw.(gateway.SignedCheckout); ok && signed.RequiresSignedCheckout() &&
		(in.PaymentID == "" || in.Signature == "") {
		return nil, ErrInvalidInput.WithMessage("payment_id and signature are required for %s", attempt.Method)
	}

	// Once the capture is sent, a client disconnect must not abandon the bookkeeping.
	ctx = context.WithoutCancel(ctx)
	gwCtx, cancel := withTimeout(ctx, u.opts.PaymentTimeout)
	defer cancel()

	res, err := gw.Capture(gwCtx, u.order(attempt), gateway.Checkout{PaymentID: in.PaymentID, Signature: in.Signature})
	if err != nil {
		attempt.Status = model.AttemptUnknown
		attempt.GatewayPaymentID = in.PaymentID
		attempt.FailureReason = err.Error()
		u.saveAttempt(ctx, attempt)
		u.logger.WarnContext(ctx, "capture outcome unknown", "attempt_id", attempt.ID, "error", err)
		return &PaymentResult{Attempt: attempt}, ErrOutcomeUnknown.Wrap(err)
	}
	if res.TransactionID == "" {
		res.TransactionID = in.PaymentID
	}
	return u.settle(ctx, attempt, res)
}

// Cancel closes a capturing attempt whose checkout the payer dismissed.
func (u *PaymentUsecase) Cancel(ctx context.Context, caller *Identity, attemptID string) (*PaymentResult, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}

	attempt, release, err := u.lockAttempt(ctx, caller, attemptID)
	if err != nil {
		return nil, err
	}
	defer release()

	if attempt.Status != model.AttemptCapturing {
		return u.closedResult(ctx, attempt)
	}

	attempt.Status = model.AttemptCancelled
	if err := u.updateAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "payment cancelled", "attempt_id", attempt.ID)
	return &PaymentResult{Attempt: attempt}, nil
}

// Reconcile resolves an attempt whose outcome is not known. Unknown and stale capturing attempts
// are settled from the gateway's order status; an unrecorded attempt is written again from the
// ids already stored, without a second capture.
func (u *PaymentUsecase) Reconcile(ctx context.Context, caller *Identity, attemptID string) (*PaymentResult, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}

	attempt, release, err := u.lockAttempt(ctx, caller, attemptID)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = context.WithoutCancel(ctx)

	switch attempt.Status {
	case model.AttemptUnrecorded:
		return u.record(ctx, attempt, attempt.GatewayPaymentID)
	case model.AttemptCapturing:
		if u.now().Sub(attempt.UpdatedAt) < u.opts.StaleAfter {
			return nil, ErrPaymentInProgress
		}
	case model.AttemptUnknown:
	default:
		return u.closedResult(ctx, attempt)
	}

	if attempt.GatewayOrderID == "" {
		attempt.Status = model.AttemptFailed
		attempt.FailureReason = "no gateway order was created"
		if err := u.updateAttempt(ctx, attempt); err != nil {
			return nil, err
		}
		return &PaymentResult{Attempt: attempt}, nil
	}

	gw, ok := u.gateways[attempt.Method]
	if !ok {
		return nil, ErrInvalidMethod
	}
	gwCtx, cancel := withTimeout(ctx, u.opts.PaymentTimeout)
	defer cancel()

	res, err := gw.FetchStatus(gwCtx, u.order(attempt))
	if err != nil {
		u.logger.WarnContext(ctx, "reconcile status check failed", "attempt_id", attempt.ID, "error", err)
		return nil, ErrGatewayFailure.Wrap(err)
	}
	if res.TransactionID == "" {
		res.TransactionID = attempt.GatewayPaymentID
	}

	result, err := u.settle(ctx, attempt, res)
	if errors.Is(err, ErrPaymentDeclined) {
		// A confirmed failure resolves the attempt; the period can be paid again.
		return result, nil
	}
	return result, err
}

// HandleGatewayNotification applies a verified server-to-server notification for orderID.
// paidPaise is the amount the gateway reports, checked against the attempt before recording.
func (u *PaymentUsecase) HandleGatewayNotification(ctx context.Context, orderID string, res *gateway.CaptureResult, paidPaise int64) (*PaymentResult, error) {
	storeCtx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()

	found, err := u.payments.FindAttemptByOrderID(storeCtx, orderID)
	if err != nil {
		return nil, storeError(err)
	}

	release, err := u.acquire(ctx, found.AttendanceRecordID)
	if err != nil {
		return nil, err
	}
	defer release()

	attempt, err := u.payments.FindAttempt(storeCtx, found.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if attempt.Status != model.AttemptCapturing && attempt.Status != model.AttemptUnknown {
		return u.closedResult(ctx, attempt)
	}

	if res.Succeeded() && paidPaise != attempt.Amount*100 {
		res = &gateway.CaptureResult{
			Outcome:       gateway.OutcomePending,
			TransactionID: res.TransactionID,
			Reason:        fmt.Sprintf("notified amount %d paise does not match attempt amount %d", paidPaise, attempt.Amount),
		}
	}

	result, err := u.settle(context.WithoutCancel(ctx), attempt, res)
	if errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrOutcomeUnknown) {
		return result, nil
	}
	return result, err
}

// Attempt returns one attempt to its employer or worker.
func (u *PaymentUsecase) Attempt(ctx context.Context, caller *Identity, attemptID string) (*model.PaymentAttempt, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()

	attempt, err := u.payments.FindAttempt(ctx, attemptID)
	if err != nil {
		return nil, storeError(err)
	}
	if attempt.EmployerID != caller.UserID && attempt.WorkerID != caller.UserID {
		return nil, ErrNotOwner
	}
	return attempt, nil
}

// History lists the payments an employer made or a worker received.
func (u *PaymentUsecase) History(ctx context.Context, caller *Identity, filter repository.PaymentFilter) ([]model.PaymentRecord, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}
	if filter.Month < 0 || filter.Month > 12 {
		return nil, ErrInvalidPeriod
	}
	ctx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()

	var (
		list []model.PaymentRecord
		err  error
	)
	if caller.Role == model.RoleWorker {
		list, err = u.payments.ListByWorker(ctx, caller.UserID, filter)
	} else {
		list, err = u.payments.ListByEmployer(ctx, caller.UserID, filter)
	}
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// guard is the reconciliation guard: a period that is paid, or has an attempt whose outcome is
// open, cannot start another payment.
func (u *PaymentUsecase) guard(ctx context.Context, record *model.AttendanceRecord) error {
	_, err := u.payments.FindRecordByPeriod(ctx, record.ID)
	switch {
	case err == nil:
		return ErrAlreadyPaid
	case !errors.Is(err, repository.ErrNotFound):
		return storeError(err)
	}

	open, err := u.payments.FindOpenAttempts(ctx, record.ID)
	if err != nil {
		return storeError(err)
	}
	for _, a := range open {
		switch {
		case a.Status == model.AttemptUnknown || a.Status == model.AttemptUnrecorded:
			return ErrReconciliationRequired.WithMessage("payment attempt %s has an unknown outcome; reconcile it first", a.ID)
		case u.now().Sub(a.UpdatedAt) >= u.opts.StaleAfter:
			return ErrReconciliationRequired.WithMessage("payment attempt %s was never confirmed; reconcile it first", a.ID)
		default:
			return ErrPaymentInProgress
		}
	}
	return nil
}

// settle applies a gateway verdict to a capturing or unknown attempt.
func (u *PaymentUsecase) settle(ctx context.Context, attempt *model.PaymentAttempt, res *gateway.CaptureResult) (*PaymentResult, error) {
	switch {
	case res.Succeeded():
		return u.record(ctx, attempt, res.TransactionID)

	case res.Verified && (res.Outcome == gateway.OutcomeFailure || res.Outcome == gateway.OutcomeNotPaid):
		attempt.Status = model.AttemptFailed
		attempt.FailureReason = res.Reason
		if res.TransactionID != "" {
			attempt.GatewayPaymentID = res.TransactionID
		}
		if err := u.updateAttempt(ctx, attempt); err != nil {
			return nil, err
		}
		u.logger.InfoContext(ctx, "payment failed", "attempt_id", attempt.ID, "reason", res.Reason)
		msg := "payment was not completed"
		if res.Reason != "" {
			msg += ": " + res.Reason
		}
		return &PaymentResult{Attempt: attempt}, ErrPaymentDeclined.WithMessage("%s", msg)

	default:
		attempt.Status = model.AttemptUnknown
		attempt.FailureReason = res.Reason
		if res.TransactionID != "" {
			attempt.GatewayPaymentID = res.TransactionID
		}
		if err := u.updateAttempt(ctx, attempt); err != nil {
			return nil, err
		}
		return &PaymentResult{Attempt: attempt}, ErrOutcomeUnknown
	}
}

// record persists the payment record for a captured attempt. The existence check and the unique
// index on the period both stop a second record; a store failure after capture leaves the attempt
// unrecorded so it can be written again without charging twice.
func (u *PaymentUsecase) record(ctx context.Context, attempt *model.PaymentAttempt, transactionID string) (*PaymentResult, error) {
	attempt.GatewayPaymentID = transactionID

	storeCtx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()

	if existing, err := u.payments.FindRecordByPeriod(storeCtx, attempt.AttendanceRecordID); err == nil {
		return u.alreadyRecorded(ctx, attempt, existing)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return u.unrecorded(ctx, attempt, err)
	}

	year, month := periodOf(attempt.AttendanceRecordID)
	rec := &model.PaymentRecord{
		ID:                 u.newID(),
		EmployerID:         attempt.EmployerID,
		WorkerID:           attempt.WorkerID,
		AttendanceRecordID: attempt.AttendanceRecordID,
		AttemptID:          attempt.ID,
		JobTitle:           attempt.JobTitle,
		Amount:             attempt.Amount,
		WorkDays:           attempt.WorkDays,
		WorkPeriod:         attempt.WorkPeriod,
		PeriodYear:         year,
		PeriodMonth:        month,
		DailyRate:          attempt.DailyRate,
		PaymentMethod:      attempt.Method,
		GatewayOrderID:     attempt.GatewayOrderID,
		GatewayPaymentID:   transactionID,
		Status:             model.PaymentCompleted,
		PaidAt:             u.now(),
	}
	if err := u.payments.CreateRecord(storeCtx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if existing, findErr := u.payments.FindRecordByPeriod(storeCtx, attempt.AttendanceRecordID); findErr == nil {
				return u.alreadyRecorded(ctx, attempt, existing)
			}
		}
		return u.unrecorded(ctx, attempt, err)
	}

	attempt.Status = model.AttemptSucceeded
	attempt.FailureReason = ""
	if err := u.payments.UpdateAttempt(storeCtx, attempt); err != nil {
		// The record is the source of truth; a later reconcile finds it and closes the attempt.
		u.logger.WarnContext(ctx, "payment recorded but attempt not updated", "attempt_id", attempt.ID, "payment_id", rec.ID, "error", err)
	}

	u.logger.InfoContext(ctx, "payment recorded",
		"payment_id", rec.ID, "attempt_id", attempt.ID, "record_id", rec.AttendanceRecordID,
		"amount", rec.Amount, "work_days", rec.WorkDays)
	u.notifyWorker(ctx, rec)
	return &PaymentResult{Attempt: attempt, Record: rec}, nil
}

// alreadyRecorded handles a period that already has a record. If it is this attempt's record the
// call is a repeat and succeeds; otherwise money moved twice for one period and needs a refund.
func (u *PaymentUsecase) alreadyRecorded(ctx context.Context, attempt *model.PaymentAttempt, existing *model.PaymentRecord) (*PaymentResult, error) {
	if existing.AttemptID == attempt.ID {
		attempt.Status = model.AttemptSucceeded
		attempt.FailureReason = ""
		u.saveAttempt(ctx, attempt)
		return &PaymentResult{Attempt: attempt, Record: existing}, nil
	}

	attempt.Status = model.AttemptFailed
	attempt.FailureReason = fmt.Sprintf("period already settled by payment %s; captured amount must be refunded", existing.ID)
	u.saveAttempt(ctx, attempt)
	u.logger.ErrorContext(ctx, "duplicate capture for settled period",
		"attempt_id", attempt.ID, "gateway_payment_id", attempt.GatewayPaymentID,
		"existing_payment_id", existing.ID, "record_id", attempt.AttendanceRecordID)
	return &PaymentResult{Attempt: attempt, Record: existing}, ErrAlreadyPaid
}

func (u *PaymentUsecase) unrecorded(ctx context.Context, attempt *model.PaymentAttempt, cause error) (*PaymentResult, error) {
	attempt.Status = model.AttemptUnrecorded
	attempt.FailureReason = cause.Error()
	u.saveAttempt(ctx, attempt)
	u.logger.ErrorContext(ctx, "payment captured but not recorded",
		"attempt_id", attempt.ID, "order_id", attempt.GatewayOrderID,
		"gateway_payment_id", attempt.GatewayPaymentID, "amount", attempt.Amount, "error", cause)
	return &PaymentResult{Attempt: attempt}, ErrPaymentNotRecorded.Wrap(cause)
}

func (u *PaymentUsecase) closedResult(ctx context.Context, attempt *model.PaymentAttempt) (*PaymentResult, error) {
	switch attempt.Status {
	case model.AttemptSucceeded:
		storeCtx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
		defer cancel()
		rec, err := u.payments.FindRecordByPeriod(storeCtx, attempt.AttendanceRecordID)
		if err != nil {
			return nil, storeError(err)
		}
		return &PaymentResult{Attempt: attempt, Record: rec}, nil
	case model.AttemptUnknown:
		return &PaymentResult{Attempt: attempt}, ErrOutcomeUnknown
	case model.AttemptUnrecorded:
		return &PaymentResult{Attempt: attempt}, ErrPaymentNotRecorded
	default:
		return &PaymentResult{Attempt: attempt}, ErrAttemptClosed.WithMessage("payment attempt is already %s", attempt.Status)
	}
}

// lockAttempt loads an attempt the caller owns, takes its period lock, and reloads it so the
// status seen under the lock is current.
func (u *PaymentUsecase) lockAttempt(ctx context.Context, caller *Identity, attemptID string) (*model.PaymentAttempt, lock.Release, error) {
	storeCtx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()

	attempt, err := u.payments.FindAttempt(storeCtx, attemptID)
	if err != nil {
		return nil, nil, storeError(err)
	}
	if attempt.EmployerID != caller.UserID {
		return nil, nil, ErrNotOwner
	}

	release, err := u.acquire(ctx, attempt.AttendanceRecordID)
	if err != nil {
		return nil, nil, err
	}

	attempt, err = u.payments.FindAttempt(storeCtx, attemptID)
	if err != nil {
		release()
		return nil, nil, storeError(err)
	}
	return attempt, release, nil
}

func (u *PaymentUsecase) acquire(ctx context.Context, recordID string) (lock.Release, error) {
	release, err := u.locker.Acquire(ctx, periodLockKey(recordID), u.opts.LockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return nil, ErrPaymentInProgress
	}
	if err != nil {
		return nil, ErrStoreUnavailable.Wrap(err)
	}
	return release, nil
}

func (u *PaymentUsecase) order(attempt *model.PaymentAttempt) gateway.Order {
	return gateway.Order{
		ID:       attempt.GatewayOrderID,
		Amount:   attempt.Amount,
		Currency: u.opts.Currency,
		Receipt:  attempt.ID,
	}
}

func (u *PaymentUsecase) updateAttempt(ctx context.Context, attempt *model.PaymentAttempt) error {
	ctx, cancel := withTimeout(ctx, u.opts.StoreTimeout)
	defer cancel()
	return storeError(u.payments.UpdateAttempt(ctx, attempt))
}

// saveAttempt is updateAttempt for paths that already carry an error of their own.
func (u *PaymentUsecase) saveAttempt(ctx context.Context, attempt *model.PaymentAttempt) {
	if err := u.updateAttempt(ctx, attempt); err != nil {
		u.logger.ErrorContext(ctx, "save payment attempt", "attempt_id", attempt.ID, "status", attempt.Status, "error", err)
	}
}

func (u *PaymentUsecase) notifyWorker(ctx context.Context, rec *model.PaymentRecord) {
	if u.sender == nil {
		return
	}
	worker, err := u.users.FindByID(ctx, rec.WorkerID)
	if err != nil {
		u.logger.WarnContext(ctx, "payment notification skipped", "worker_id", rec.WorkerID, "error", err)
		return
	}
	u.sender.Send(notification.Message{
		To:      worker.Email,
		Subject: "Payment received for " + rec.WorkPeriod,
		Body: fmt.Sprintf("Hello %s,\n\nYou have been paid Rs. %d for %d day(s) of work (%s) in %s.\nPayment reference: %s\n",
			worker.Name, rec.Amount, rec.WorkDays, rec.JobTitle, rec.WorkPeriod, rec.ID),
	})
}

// periodOf reads year and month back out of a period key.
func periodOf(key string) (year, month int) {
	var employer, worker uint
	if _, err := fmt.Sscanf(key, "%d_%d_%d_%d", &employer, &worker, &year, &month); err != nil {
		return 0, 0
	}
	return year, month
}
