package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shramik-backend/internal/model"
)

// Wire types of the relay server. Amounts on the wire are in paise, as Razorpay expects.

type CreateOrderRequest struct {
	Amount   int64             `json:"amount" validate:"required,gt=0"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt" validate:"max=40"`
	Notes    map[string]string `json:"notes"`
}

type RelayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type CreateOrderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Order   *RelayOrder `json:"order,omitempty"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type RelayPayment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method,omitempty"`
}

type VerifyPaymentResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Payment *RelayPayment `json:"payment,omitempty"`
}

type OrderStatusResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"` // paid | pending | failed | created
	PaymentID string `json:"payment_id,omitempty"`
}

// RelayGateway is gateway-A: Razorpay reached through the relay server, which keeps the key
// secret off the api host.
type RelayGateway struct {
	baseURL string
	client  *http.Client
}

func NewRelayGateway(baseURL string, timeout time.Duration) *RelayGateway {
	return &RelayGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *RelayGateway) Method() model.PaymentMethod {
	return model.MethodRazorpay
}

func (g *RelayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	body := CreateOrderRequest{
		Amount:   toPaise(req.Amount),
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}

	var resp CreateOrderResponse
	status, err := doJSON(ctx, g.client, "relay create-order", http.MethodPost, g.baseURL+"/create-order", body, &resp, nil)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("relay create-order: %w: status %d: %s", ErrUnavailable, status, resp.Message)
	}
	if !resp.Success || resp.Order == nil {
		return nil, fmt.Errorf("relay create-order: %w: status %d: %s", ErrRejected, status, resp.Message)
	}

	return &Order{
		ID:       resp.Order.ID,
		Amount:   resp.Order.Amount / 100,
		Currency: resp.Order.Currency,
		Receipt:  resp.Order.Receipt,
		Status:   resp.Order.Status,
	}, nil
}

// RequiresSignedCheckout reports that Capture needs the payment id and signature the checkout
// screen returned.
func (g *RelayGateway) RequiresSignedCheckout() bool { return true }

// Capture verifies the checkout signature through the relay. A 400 from the relay is a
// verified failure; transport and server errors leave the outcome unknown.
// Without checkout data nothing can be verified, so the order status decides; an order with no
// payment yet is pending because the checkout may still be open.
func (g *RelayGateway) Capture(ctx context.Context, order Order, checkout Checkout) (*CaptureResult, error) {
	if checkout.PaymentID == "" || checkout.Signature == "" {
		res, err := g.FetchStatus(ctx, order)
		if err != nil {
			return nil, err
		}
		if res.Outcome == OutcomeNotPaid {
			return &CaptureResult{Outcome: OutcomePending, Reason: "checkout not completed"}, nil
		}
		return res, nil
	}

	body := VerifyPaymentRequest{OrderID: order.ID, PaymentID: checkout.PaymentID, Signature: checkout.Signature}
	var resp VerifyPaymentResponse
	status, err := doJSON(ctx, g.client, "relay verify-payment", http.MethodPost, g.baseURL+"/verify-payment", body, &resp, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK && resp.Success:
		if resp.Payment != nil && resp.Payment.Amount > 0 && resp.Payment.Amount != toPaise(order.Amount) {
			return &CaptureResult{
				Outcome:       OutcomeFailure,
				Verified:      true,
				TransactionID: checkout.PaymentID,
				Reason:        fmt.Sprintf("captured amount %d paise does not match order amount %d", resp.Payment.Amount, toPaise(order.Amount)),
			}, nil
		}
		return &CaptureResult{Outcome: OutcomeSuccess, Verified: true, TransactionID: checkout.PaymentID}, nil
	case status == http.StatusBadRequest:
		return &CaptureResult{Outcome: OutcomeFailure, Verified: true, TransactionID: checkout.PaymentID, Reason: resp.Message}, nil
	default:
		return nil, fmt.Errorf("relay verify-payment: %w: status %d: %s", ErrUnavailable, status, resp.Message)
	}
}

func (g *RelayGateway) FetchStatus(ctx context.Context, order Order) (*CaptureResult, error) {
	var resp OrderStatusResponse
	endpoint := g.baseURL + "/order-status/" + url.PathEscape(order.ID)
	status, err := doJSON(ctx, g.client, "relay order-status", http.MethodGet, endpoint, nil, &resp, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !resp.Success {
		return nil, fmt.Errorf("relay order-status: %w: status %d: %s", ErrUnavailable, status, resp.Message)
	}

	switch resp.Status {
	case RelayStatusPaid:
		return &CaptureResult{Outcome: OutcomeSuccess, Verified: true, TransactionID: resp.PaymentID}, nil
	case RelayStatusFailed:
		return &CaptureResult{Outcome: OutcomeFailure, Verified: true, TransactionID: resp.PaymentID, Reason: "payment failed at gateway"}, nil
	case RelayStatusCreated:
		return &CaptureResult{Outcome: OutcomeNotPaid, Verified: true, Reason: "no payment made against order"}, nil
	default:
		return &CaptureResult{Outcome: OutcomePending, Reason: "payment not settled yet"}, nil
	}
}

const (
	RelayStatusPaid    = "paid"
	RelayStatusPending = "pending"
	RelayStatusFailed  = "failed"
	RelayStatusCreated = "created"
)
