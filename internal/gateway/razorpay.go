package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Razorpay payment states as reported by the payments API.
const (
	RazorpayPaymentCreated    = "created"
	RazorpayPaymentAuthorized = "authorized"
	RazorpayPaymentCaptured   = "captured"
	RazorpayPaymentRefunded   = "refunded"
	RazorpayPaymentFailed     = "failed"
)

// RazorpayClient talks to the Razorpay REST API with the merchant key pair.
// Only the relay server holds one.
type RazorpayClient struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayClient(keyID, keySecret, baseURL string, timeout time.Duration) *RazorpayClient {
	return &RazorpayClient{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *RazorpayClient) KeySecret() string {
	return c.keySecret
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type razorpayCollection struct {
	Count int            `json:"count"`
	Items []RelayPayment `json:"items"`
}

func (c *RazorpayClient) auth(req *http.Request) {
	req.SetBasicAuth(c.keyID, c.keySecret)
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RelayOrder, error) {
	var raw struct {
		RelayOrder
		razorpayError
	}
	status, err := doJSON(ctx, c.client, "razorpay create order", http.MethodPost, c.baseURL+"/orders", req, &raw, c.auth)
	if err != nil {
		return nil, err
	}
	if err := razorpayStatusError("razorpay create order", status, raw.razorpayError); err != nil {
		return nil, err
	}
	return &raw.RelayOrder, nil
}

func (c *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*RelayPayment, error) {
	var raw struct {
		RelayPayment
		razorpayError
	}
	endpoint := c.baseURL + "/payments/" + url.PathEscape(paymentID)
	status, err := doJSON(ctx, c.client, "razorpay fetch payment", http.MethodGet, endpoint, nil, &raw, c.auth)
	if err != nil {
		return nil, err
	}
	if err := razorpayStatusError("razorpay fetch payment", status, raw.razorpayError); err != nil {
		return nil, err
	}
	return &raw.RelayPayment, nil
}

func (c *RazorpayClient) FetchOrderPayments(ctx context.Context, orderID string) ([]RelayPayment, error) {
	var raw struct {
		razorpayCollection
		razorpayError
	}
	endpoint := c.baseURL + "/orders/" + url.PathEscape(orderID) + "/payments"
	status, err := doJSON(ctx, c.client, "razorpay order payments", http.MethodGet, endpoint, nil, &raw, c.auth)
	if err != nil {
		return nil, err
	}
	if err := razorpayStatusError("razorpay order payments", status, raw.razorpayError); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// OrderStatus folds the order's payments into one relay status.
func (c *RazorpayClient) OrderStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error) {
	payments, err := c.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return summarizeOrderPayments(orderID, payments), nil
}

func summarizeOrderPayments(orderID string, payments []RelayPayment) *OrderStatusResponse {
	resp := &OrderStatusResponse{Success: true, OrderID: orderID, Status: RelayStatusCreated}
	if len(payments) == 0 {
		return resp
	}

	failed := true
	for _, p := range payments {
		switch p.Status {
		case RazorpayPaymentCaptured:
			resp.Status = RelayStatusPaid
			resp.PaymentID = p.ID
			return resp
		case RazorpayPaymentFailed:
			if resp.PaymentID == "" {
				resp.PaymentID = p.ID
			}
		default:
			failed = false
			resp.PaymentID = p.ID
		}
	}
	if failed {
		resp.Status = RelayStatusFailed
	} else {
		resp.Status = RelayStatusPending
	}
	return resp
}

func razorpayStatusError(op string, status int, body razorpayError) error {
	if status >= 200 && status < 300 {
		return nil
	}
	desc := body.Error.Description
	if desc == "" {
		desc = http.StatusText(status)
	}
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%s: %w: status %d: %s", op, ErrUnavailable, status, desc)
	}
	return fmt.Errorf("%s: %w: status %d: %s", op, ErrRejected, status, desc)
}
