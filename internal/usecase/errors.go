package usecase

import (
	"errors"
	"fmt"

	"shramik-backend/internal/repository"
)

// Kind groups errors by how the caller should react; handlers map it to an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindUnverified
	KindForbidden
	KindNotFound
	KindConflict
	KindTransient
	KindGateway
	KindOutcomeUnknown
	KindNotRecorded
)

// Error is a classified domain error. Two Errors match under errors.Is when their codes match,
// so a sentinel with extra detail still compares equal to the bare sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

var (
	ErrInvalidInput      = &Error{Kind: KindValidation, Code: "invalid_input", Message: "invalid input"}
	ErrInvalidDate       = &Error{Kind: KindValidation, Code: "invalid_date", Message: "date must be formatted as YYYY-MM-DD"}
	ErrFutureDate        = &Error{Kind: KindValidation, Code: "future_date", Message: "attendance cannot be marked for a future date"}
	ErrDateOutsidePeriod = &Error{Kind: KindValidation, Code: "date_outside_period", Message: "date does not belong to this attendance month"}
	ErrInvalidStatus     = &Error{Kind: KindValidation, Code: "invalid_status", Message: "status must be present or absent"}
	ErrInvalidPeriod     = &Error{Kind: KindValidation, Code: "invalid_period", Message: "year or month is out of range"}
	ErrInvalidRate       = &Error{Kind: KindValidation, Code: "invalid_daily_rate", Message: "daily rate must be a positive amount"}
	ErrNothingToPay      = &Error{Kind: KindValidation, Code: "nothing_to_pay", Message: "nothing to pay for this period"}
	ErrInvalidMethod     = &Error{Kind: KindValidation, Code: "invalid_payment_method", Message: "unsupported payment method"}

	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Code: "unauthenticated", Message: "sign in to continue"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Code: "invalid_credentials", Message: "email or password is incorrect"}
	ErrUnverified         = &Error{Kind: KindUnverified, Code: "unverified", Message: "verify your account"}

	ErrNotOwner  = &Error{Kind: KindForbidden, Code: "not_owner", Message: "you are not allowed to change this record"}
	ErrWrongRole = &Error{Kind: KindForbidden, Code: "wrong_role", Message: "this action is not available for your role"}

	ErrNotFound = &Error{Kind: KindNotFound, Code: "not_found", Message: "not found"}

	ErrAlreadyPaid            = &Error{Kind: KindConflict, Code: "already_paid", Message: "this period has already been paid"}
	ErrPeriodSettled          = &Error{Kind: KindConflict, Code: "period_settled", Message: "this period has been paid and can no longer change"}
	ErrReconciliationRequired = &Error{Kind: KindConflict, Code: "reconciliation_required", Message: "a previous payment for this period has an unknown outcome; reconcile it first"}
	ErrPaymentInProgress      = &Error{Kind: KindConflict, Code: "payment_in_progress", Message: "a payment for this period is already in progress"}
	ErrInvalidTransition      = &Error{Kind: KindConflict, Code: "invalid_transition", Message: "this status change is not allowed"}
	ErrDuplicateApplication   = &Error{Kind: KindConflict, Code: "duplicate_application", Message: "you have already applied for this job"}
	ErrEmailTaken             = &Error{Kind: KindConflict, Code: "email_taken", Message: "an account with this email already exists"}
	ErrJobClosed              = &Error{Kind: KindConflict, Code: "job_closed", Message: "this job is no longer accepting applications"}
	ErrAttemptClosed          = &Error{Kind: KindConflict, Code: "attempt_closed", Message: "this payment attempt is already finished"}

	ErrStoreUnavailable = &Error{Kind: KindTransient, Code: "store_unavailable", Message: "storage is temporarily unavailable, try again"}
	ErrGatewayFailure   = &Error{Kind: KindGateway, Code: "gateway_unavailable", Message: "payment gateway is unavailable, try again"}
	ErrPaymentDeclined  = &Error{Kind: KindGateway, Code: "payment_failed", Message: "payment was not completed"}
	ErrOutcomeUnknown   = &Error{Kind: KindOutcomeUnknown, Code: "outcome_unknown", Message: "payment outcome is unknown; reconcile before retrying"}

	ErrPaymentNotRecorded = &Error{Kind: KindNotRecorded, Code: "payment_not_recorded", Message: "payment succeeded but could not be recorded; contact support"}
)

// KindOf reports the Kind of err, KindInternal when err is not a classified Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// storeError classifies a repository error. Anything but not-found is treated as retryable.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return ErrStoreUnavailable.Wrap(err)
}
