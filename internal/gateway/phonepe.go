package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shramik-backend/internal/model"
)

const (
	phonePePayPath    = "/pg/v1/pay"
	phonePeStatusPath = "/pg/v1/status"
)

// PhonePe response codes the status API returns.
const (
	PhonePeSuccess  = "PAYMENT_SUCCESS"
	PhonePePending  = "PAYMENT_PENDING"
	PhonePeError    = "PAYMENT_ERROR"
	PhonePeDeclined = "PAYMENT_DECLINED"
	PhonePeTimedOut = "TIMED_OUT"
	PhonePeNotFound = "TRANSACTION_NOT_FOUND"
)

// ErrBadChecksum is returned when a callback's X-VERIFY header does not match its body.
var ErrBadChecksum = errors.New("gateway: callback checksum mismatch")

type PhonePeConfig struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	BaseURL     string
	RedirectURL string
	CallbackURL string
}

// PhonePeGateway is gateway-B: PhonePe's hosted pay page. There is no client-side signature;
// capture is confirmed with a server-to-server status check.
type PhonePeGateway struct {
	cfg    PhonePeConfig
	client *http.Client
}

func NewPhonePeGateway(cfg PhonePeConfig, timeout time.Duration) *PhonePeGateway {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PhonePeGateway{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

func (g *PhonePeGateway) Method() model.PaymentMethod {
	return model.MethodPhonePe
}

type phonePePayPayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl,omitempty"`
	RedirectMode          string            `json:"redirectMode,omitempty"`
	CallbackURL           string            `json:"callbackUrl,omitempty"`
	MobileNumber          string            `json:"mobileNumber,omitempty"`
	PaymentInstrument     map[string]string `json:"paymentInstrument"`
}

type phonePeResponse struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    phonePeDataBody `json:"data"`
}

type phonePeDataBody struct {
	MerchantID            string `json:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	TransactionID         string `json:"transactionId"`
	Amount                int64  `json:"amount"`
	State                 string `json:"state"`
	ResponseCode          string `json:"responseCode"`
	InstrumentResponse    struct {
		Type         string `json:"type"`
		RedirectInfo struct {
			URL    string `json:"url"`
			Method string `json:"method"`
		} `json:"redirectInfo"`
	} `json:"instrumentResponse"`
}

// MerchantTransactionID derives PhonePe's transaction id from a receipt: alphanumeric, at most 38 chars.
func MerchantTransactionID(receipt string) string {
	id := "P" + strings.ReplaceAll(receipt, "-", "")
	if len(id) > 38 {
		id = id[:38]
	}
	return id
}

func (g *PhonePeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	txnID := MerchantTransactionID(req.Receipt)
	payload := phonePePayPayload{
		MerchantID:            g.cfg.MerchantID,
		MerchantTransactionID: txnID,
		MerchantUserID:        fmt.Sprintf("U%d", req.Customer.ID),
		Amount:                toPaise(req.Amount),
		RedirectURL:           g.cfg.RedirectURL,
		RedirectMode:          "POST",
		CallbackURL:           g.cfg.CallbackURL,
		MobileNumber:          req.Customer.Phone,
		PaymentInstrument:     map[string]string{"type": "PAY_PAGE"},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("phonepe pay: encode payload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	checksum := phonePeChecksum(encoded, phonePePayPath, g.cfg.SaltKey, g.cfg.SaltIndex)

	var resp phonePeResponse
	status, err := doJSON(ctx, g.client, "phonepe pay", http.MethodPost, g.cfg.BaseURL+phonePePayPath,
		map[string]string{"request": encoded}, &resp, func(r *http.Request) {
			r.Header.Set("X-VERIFY", checksum)
		})
	if err != nil {
		return nil, err
	}
	if status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("phonepe pay: %w: status %d: %s", ErrUnavailable, status, resp.Message)
	}
	if !resp.Success {
		return nil, fmt.Errorf("phonepe pay: %w: %s: %s", ErrRejected, resp.Code, resp.Message)
	}

	return &Order{
		ID:          txnID,
		Amount:      req.Amount,
		Currency:    "INR",
		Receipt:     req.Receipt,
		Status:      "created",
		CheckoutURL: resp.Data.InstrumentResponse.RedirectInfo.URL,
	}, nil
}

// Capture ignores the checkout details and asks PhonePe for the transaction state.
func (g *PhonePeGateway) Capture(ctx context.Context, order Order, _ Checkout) (*CaptureResult, error) {
	return g.FetchStatus(ctx, order)
}

func (g *PhonePeGateway) FetchStatus(ctx context.Context, order Order) (*CaptureResult, error) {
	path := fmt.Sprintf("%s/%s/%s", phonePeStatusPath, g.cfg.MerchantID, order.ID)
	checksum := phonePeChecksum("", path, g.cfg.SaltKey, g.cfg.SaltIndex)

	var resp phonePeResponse
	status, err := doJSON(ctx, g.client, "phonepe status", http.MethodGet, g.cfg.BaseURL+path, nil, &resp, func(r *http.Request) {
		r.Header.Set("X-VERIFY", checksum)
		r.Header.Set("X-MERCHANT-ID", g.cfg.MerchantID)
	})
	if err != nil {
		return nil, err
	}
	if status >= http.StatusInternalServerError && resp.Code == "" {
		return nil, fmt.Errorf("phonepe status: %w: status %d", ErrUnavailable, status)
	}
	return interpretPhonePe(toPaise(order.Amount), resp.Code, resp.Data), nil
}

// interpretPhonePe maps a response code to an outcome. A negative expectedPaise skips the amount
// check, for callers that compare the amount themselves.
func interpretPhonePe(expectedPaise int64, code string, data phonePeDataBody) *CaptureResult {
	switch code {
	case PhonePeSuccess:
		if expectedPaise >= 0 && data.Amount != expectedPaise {
			return &CaptureResult{
				Outcome:       OutcomeFailure,
				Verified:      true,
				TransactionID: data.TransactionID,
				Reason:        fmt.Sprintf("paid amount %d paise does not match order amount %d", data.Amount, expectedPaise),
			}
		}
		return &CaptureResult{Outcome: OutcomeSuccess, Verified: true, TransactionID: data.TransactionID}
	case PhonePeError, PhonePeDeclined, PhonePeTimedOut:
		return &CaptureResult{Outcome: OutcomeFailure, Verified: true, TransactionID: data.TransactionID, Reason: strings.ToLower(code)}
	case PhonePeNotFound:
		return &CaptureResult{Outcome: OutcomeNotPaid, Verified: true, Reason: "transaction not found"}
	default:
		return &CaptureResult{Outcome: OutcomePending, TransactionID: data.TransactionID, Reason: code}
	}
}

// CallbackResult is a verified server-to-server notification.
type CallbackResult struct {
	MerchantTransactionID string
	AmountPaise           int64
	Result                *CaptureResult
}

// VerifyCallback checks the X-VERIFY header against the base64 response body and decodes it.
// The caller compares AmountPaise with the order once it has looked the order up.
func (g *PhonePeGateway) VerifyCallback(xVerify, encoded string) (*CallbackResult, error) {
	expected := phonePeChecksum(encoded, "", g.cfg.SaltKey, g.cfg.SaltIndex)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(xVerify)) != 1 {
		return nil, ErrBadChecksum
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("phonepe callback: decode: %w", err)
	}
	var resp phonePeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("phonepe callback: unmarshal: %w", err)
	}
	if resp.Data.MerchantTransactionID == "" {
		return nil, fmt.Errorf("phonepe callback: missing merchant transaction id")
	}

	return &CallbackResult{
		MerchantTransactionID: resp.Data.MerchantTransactionID,
		AmountPaise:           resp.Data.Amount,
		Result:                interpretPhonePe(-1, resp.Code, resp.Data),
	}, nil
}

// CallbackChecksum is exported for tests and sandbox tooling that need to forge a valid callback.
func (g *PhonePeGateway) CallbackChecksum(encoded string) string {
	return phonePeChecksum(encoded, "", g.cfg.SaltKey, g.cfg.SaltIndex)
}
