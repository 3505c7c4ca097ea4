// Package gateway holds the payment gateway clients. Both gateways are reached through the
// same Gateway capability so the payment flow never branches on the provider.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"shramik-backend/internal/model"
)

var (
	// ErrTimeout means the gateway did not answer in time; the outcome is unknown.
	ErrTimeout = errors.New("gateway: request timed out")
	// ErrUnavailable means the gateway could not be reached or answered with a server error.
	ErrUnavailable = errors.New("gateway: unavailable")
	// ErrRejected means the gateway refused the request itself (bad credentials, bad payload).
	ErrRejected = errors.New("gateway: request rejected")
)

type Outcome string

const (
	OutcomeSuccess Outcome = "verified_success"
	OutcomeFailure Outcome = "verified_failure"
	// OutcomePending: the gateway has not settled yet; poll again later.
	OutcomePending Outcome = "pending"
	// OutcomeNotPaid: the order exists but the customer never completed a payment.
	OutcomeNotPaid Outcome = "not_paid"
)

type Customer struct {
	ID    uint
	Name  string
	Email string
	Phone string
}

type OrderRequest struct {
	Amount   int64 // whole rupees
	Currency string
	Receipt  string
	Notes    map[string]string
	Customer Customer
}

type Order struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"` // whole rupees
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// Checkout is what the mobile client reports after the gateway's checkout screen closes.
type Checkout struct {
	PaymentID string
	Signature string
}

type CaptureResult struct {
	Outcome       Outcome
	Verified      bool
	TransactionID string
	Reason        string
}

func (r *CaptureResult) Succeeded() bool {
	return r != nil && r.Outcome == OutcomeSuccess && r.Verified
}

// SignedCheckout is implemented by gateways whose Capture verifies the checkout's payment id
// and signature. A confirm without them is rejected before the attempt is touched.
type SignedCheckout interface {
	RequiresSignedCheckout() bool
}

type Gateway interface {
	Method() model.PaymentMethod
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	Capture(ctx context.Context, order Order, checkout Checkout) (*CaptureResult, error)
	FetchStatus(ctx context.Context, order Order) (*CaptureResult, error)
}

// classify wraps a transport error with ErrTimeout or ErrUnavailable.
func classify(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// toPaise converts whole rupees to the minor unit both gateways expect.
func toPaise(rupees int64) int64 {
	return rupees * 100
}
