package payment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/payment"
)

// CodePayPal is the payment method code of the PayPal adapter
const CodePayPal = "paypal"

// Capture modes accepted by the PayPal adapter
const (
	PayPalCaptureImmediate = "immediate"
	PayPalCaptureDeferred  = "deferred"
)

// PayPalConfig holds the handler arguments of the PayPal method
type PayPalConfig struct {
	// CaptureMode is "immediate" (default) or "deferred"
	CaptureMode string
}

// Validate validates the configuration
func (c *PayPalConfig) Validate() error {
	switch c.captureMode() {
	case PayPalCaptureImmediate, PayPalCaptureDeferred:
		return nil
	default:
		return fmt.Errorf("paypal: unsupported capture mode %q", c.CaptureMode)
	}
}

func (c *PayPalConfig) captureMode() string {
	if c == nil || c.CaptureMode == "" {
		return PayPalCaptureImmediate
	}
	return c.CaptureMode
}

// PayPalAdapter records payments captured client-side by the PayPal checkout.
// The capture id supplied by the storefront is taken as proof of settlement;
// the adapter makes no processor call.
type PayPalAdapter struct {
	captureMode string
	logger      *zap.Logger
}

// NewPayPalAdapter creates a new PayPal adapter
func NewPayPalAdapter(config *PayPalConfig, logger *zap.Logger) (*PayPalAdapter, error) {
	if config == nil {
		config = &PayPalConfig{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayPalAdapter{
		captureMode: config.captureMode(),
		logger:      logger.With(zap.String("payment_method", CodePayPal)),
	}, nil
}

// Code returns the payment method code
func (a *PayPalAdapter) Code() string {
	return CodePayPal
}

// CaptureMode returns the configured capture mode
func (a *PayPalAdapter) CaptureMode() string {
	return a.captureMode
}

// Settle validates the PayPal correlation ids and records the capture
func (a *PayPalAdapter) Settle(_ context.Context, req *payment.Request) *payment.Outcome {
	amount := req.RequestedAmount()
	if !req.HasOrder() {
		return payment.Declined(amount, payment.FailureValidation, payment.ReasonNoActiveOrder)
	}

	orderID := strings.TrimSpace(req.Meta("paypalOrderId"))
	captureID := strings.TrimSpace(req.Meta("paypalCaptureId"))
	if orderID == "" || captureID == "" {
		a.logger.Warn("PayPal payment missing correlation ids",
			zap.String("order_code", req.Order.Code),
			zap.Bool("has_order_id", orderID != ""),
			zap.Bool("has_capture_id", captureID != ""),
		)
		return payment.Declined(amount, payment.FailureValidation, "missing paypalOrderId/paypalCaptureId")
	}

	metadata := map[string]string{
		"processor":       CodePayPal,
		"paypalOrderId":   orderID,
		"paypalCaptureId": captureID,
		"captureMode":     a.captureMode,
		"currency":        req.Order.Currency().String(),
		"amount":          req.ChargeAmount().MajorString(),
	}
	if email := req.Meta("payerEmail"); email != "" {
		metadata["payerEmail"] = email
	}

	a.logger.Info("PayPal capture recorded",
		zap.String("order_code", req.Order.Code),
		zap.String("capture_id", captureID),
	)
	return payment.Settled(amount, captureID, metadata)
}

// ConfirmSettlement always succeeds because captures arrive already settled
func (a *PayPalAdapter) ConfirmSettlement(_ context.Context, _ *payment.Outcome) payment.SettlementConfirmation {
	return payment.SettlementConfirmation{Success: true}
}
