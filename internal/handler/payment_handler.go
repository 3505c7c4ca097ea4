package handler

import (
	"bytes"
	"errors"
	"fmt"

	"shramik-backend/internal/gateway"
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"
	"shramik-backend/internal/report"
	"shramik-backend/internal/repository"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// CallbackVerifier authenticates a gateway's server-to-server notification.
type CallbackVerifier interface {
	VerifyCallback(xVerify, encoded string) (*gateway.CallbackResult, error)
}

type PaymentHandler struct {
	payments *usecase.PaymentUsecase
	phonePe  CallbackVerifier
}

// NewPaymentHandler wires the payment endpoints. phonePe may be nil when that gateway is not
// configured; its callback then answers 404.
func NewPaymentHandler(payments *usecase.PaymentUsecase, phonePe CallbackVerifier) *PaymentHandler {
	return &PaymentHandler{payments: payments, phonePe: phonePe}
}

type InitiatePaymentRequest struct {
	AttendanceRecordID string `json:"attendance_record_id" validate:"required"`
	Method             string `json:"method" validate:"required,oneof=razorpay phonepe"`
}

type ConfirmPaymentRequest struct {
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	Cancelled bool   `json:"cancelled"`
}

type PhonePeCallbackRequest struct {
	Response string `json:"response" validate:"required"`
}

// Initiate opens a gateway order for the period's total. The client runs checkout with the
// returned attempt and then calls Confirm.
func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	attempt, err := h.payments.Initiate(c.UserContext(), middleware.Identity(c), usecase.InitiateInput{
		RecordID: req.AttendanceRecordID,
		Method:   model.PaymentMethod(req.Method),
	})
	if err != nil {
		return respondError(c, err, attempt)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Payment initiated",
		"data":    attempt,
	})
}

func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	var req ConfirmPaymentRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	res, err := h.payments.Confirm(c.UserContext(), middleware.Identity(c), usecase.ConfirmInput{
		AttemptID: c.Params("id"),
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Cancelled: req.Cancelled,
	})
	if err != nil {
		return respondError(c, err, res)
	}
	if res.Record == nil {
		return respondOK(c, "Payment "+string(res.Attempt.Status), res)
	}
	return respondOK(c, fmt.Sprintf("Payment of ₹%d for %s completed", res.Record.Amount, res.Record.WorkPeriod), res)
}

func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	res, err := h.payments.Cancel(c.UserContext(), middleware.Identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, res)
	}
	return respondOK(c, "Payment cancelled", res)
}

func (h *PaymentHandler) Reconcile(c *fiber.Ctx) error {
	res, err := h.payments.Reconcile(c.UserContext(), middleware.Identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, res)
	}
	return respondOK(c, "Payment "+string(res.Attempt.Status), res)
}

func (h *PaymentHandler) GetAttempt(c *fiber.Ctx) error {
	attempt, err := h.payments.Attempt(c.UserContext(), middleware.Identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Payment attempt loaded", attempt)
}

// History serves ?year=&month=&limit=&offset=
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	filter, err := paymentFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	list, err := h.payments.History(c.UserContext(), middleware.Identity(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Payment history loaded", list)
}

// Export downloads the same history as an XLSX workbook.
func (h *PaymentHandler) Export(c *fiber.Ctx) error {
	filter, err := paymentFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	filter.Limit, filter.Offset = 0, 0

	list, err := h.payments.History(c.UserContext(), middleware.Identity(c), filter)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := report.WritePayments(&buf, list); err != nil {
		return respondError(c, err)
	}

	name := "payments.xlsx"
	if filter.Year > 0 && filter.Month > 0 {
		name = fmt.Sprintf("payments_%d_%02d.xlsx", filter.Year, filter.Month)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(name)
	return c.Send(buf.Bytes())
}

// PhonePeCallback receives PhonePe's server-to-server notification. The body is only trusted
// once its X-VERIFY checksum matches.
func (h *PaymentHandler) PhonePeCallback(c *fiber.Ctx) error {
	if h.phonePe == nil {
		return respondError(c, usecase.ErrNotFound)
	}

	var req PhonePeCallbackRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	cb, err := h.phonePe.VerifyCallback(c.Get("X-VERIFY"), req.Response)
	if err != nil {
		middleware.Logger(c).Warn("phonepe callback rejected", "error", err)
		if errors.Is(err, gateway.ErrBadChecksum) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid checksum",
				"code":    "invalid_checksum",
			})
		}
		return respondError(c, usecase.ErrInvalidInput.WithMessage("malformed callback"))
	}

	res, err := h.payments.HandleGatewayNotification(c.UserContext(), cb.MerchantTransactionID, cb.Result, cb.AmountPaise)
	if err != nil {
		return respondError(c, err, res)
	}
	return respondOK(c, "Callback processed", res)
}

func paymentFilter(c *fiber.Ctx) (repository.PaymentFilter, error) {
	year, month, err := periodQuery(c)
	if err != nil {
		return repository.PaymentFilter{}, err
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 200 || offset < 0 {
		return repository.PaymentFilter{}, usecase.ErrInvalidInput.WithMessage("limit must be 1-200 and offset non-negative")
	}
	return repository.PaymentFilter{Year: year, Month: month, Limit: limit, Offset: offset}, nil
}
