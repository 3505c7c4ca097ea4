package handler

import (
	"context"
	"errors"
	"log/slog"

	"shramik-backend/internal/gateway"

	"github.com/gofiber/fiber/v2"
)

// RazorpayAPI is the part of the Razorpay REST API the relay calls.
type RazorpayAPI interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.RelayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*gateway.RelayPayment, error)
	OrderStatus(ctx context.Context, orderID string) (*gateway.OrderStatusResponse, error)
	KeySecret() string
}

// RelayHandler serves the relay's wire contract. It is the only process holding the key secret.
type RelayHandler struct {
	razorpay RazorpayAPI
	logger   *slog.Logger
}

func NewRelayHandler(razorpay RazorpayAPI, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{razorpay: razorpay, logger: logger.With("component", "relay")}
}

func (h *RelayHandler) relayFail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func (h *RelayHandler) CreateOrder(c *fiber.Ctx) error {
	var req gateway.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return h.relayFail(c, fiber.StatusBadRequest, FormatValidationError(err))
	}
	if err := validate.Struct(&req); err != nil {
		return h.relayFail(c, fiber.StatusBadRequest, FormatValidationError(err))
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	order, err := h.razorpay.CreateOrder(c.UserContext(), req)
	if err != nil {
		h.logger.Error("create order failed", "receipt", req.Receipt, "error", err)
		return h.relayFail(c, upstreamStatus(err), "could not create order")
	}

	h.logger.Info("order created", "order_id", order.ID, "amount", order.Amount)
	return c.JSON(gateway.CreateOrderResponse{Success: true, Order: order})
}

// VerifyPayment checks the checkout signature and that the payment was captured for this order.
// A 400 tells the api the payment definitely failed; any 5xx leaves the outcome open.
func (h *RelayHandler) VerifyPayment(c *fiber.Ctx) error {
	var req gateway.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return h.relayFail(c, fiber.StatusBadRequest, FormatValidationError(err))
	}
	if err := validate.Struct(&req); err != nil {
		return h.relayFail(c, fiber.StatusBadRequest, FormatValidationError(err))
	}

	if !gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature, h.razorpay.KeySecret()) {
		h.logger.Warn("signature mismatch", "order_id", req.OrderID, "payment_id", req.PaymentID)
		return c.Status(fiber.StatusBadRequest).JSON(gateway.VerifyPaymentResponse{
			Success: false,
			Message: "Payment verification failed: invalid signature",
		})
	}

	payment, err := h.razorpay.FetchPayment(c.UserContext(), req.PaymentID)
	if err != nil {
		h.logger.Error("fetch payment failed", "payment_id", req.PaymentID, "error", err)
		return h.relayFail(c, fiber.StatusBadGateway, "could not confirm payment with gateway")
	}

	switch {
	case payment.OrderID != "" && payment.OrderID != req.OrderID:
		return c.Status(fiber.StatusBadRequest).JSON(gateway.VerifyPaymentResponse{
			Success: false,
			Message: "Payment does not belong to this order",
		})
	case payment.Status == gateway.RazorpayPaymentFailed:
		return c.Status(fiber.StatusBadRequest).JSON(gateway.VerifyPaymentResponse{
			Success: false,
			Message: "Payment failed at gateway",
			Payment: payment,
		})
	case payment.Status != gateway.RazorpayPaymentCaptured:
		return h.relayFail(c, fiber.StatusServiceUnavailable, "payment is "+payment.Status+", not captured yet")
	}

	h.logger.Info("payment verified", "order_id", req.OrderID, "payment_id", req.PaymentID, "amount", payment.Amount)
	return c.JSON(gateway.VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified successfully",
		Payment: payment,
	})
}

func (h *RelayHandler) OrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	status, err := h.razorpay.OrderStatus(c.UserContext(), orderID)
	if err != nil {
		h.logger.Error("order status failed", "order_id", orderID, "error", err)
		return h.relayFail(c, upstreamStatus(err), "could not fetch order status")
	}
	return c.JSON(status)
}

func (h *RelayHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "status": "ok"})
}

func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, gateway.ErrRejected):
		return fiber.StatusBadRequest
	case errors.Is(err, gateway.ErrTimeout):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusBadGateway
}
