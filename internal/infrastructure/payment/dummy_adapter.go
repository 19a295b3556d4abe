package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/payment"
)

// CodeDummy is the payment method code of the dummy adapter
const CodeDummy = "dummy"

// DummyAdapter settles every payment that has an order. Used for development
// and test storefronts.
type DummyAdapter struct{}

// NewDummyAdapter creates a new dummy adapter
func NewDummyAdapter() *DummyAdapter {
	return &DummyAdapter{}
}

// Code returns the payment method code
func (a *DummyAdapter) Code() string {
	return CodeDummy
}

// Settle settles the payment with a generated transaction id
func (a *DummyAdapter) Settle(_ context.Context, req *payment.Request) *payment.Outcome {
	amount := req.RequestedAmount()
	if !req.HasOrder() {
		return payment.Declined(amount, payment.FailureValidation, payment.ReasonNoActiveOrder)
	}
	txID := "dummy-" + uuid.NewString()
	return payment.Settled(amount, txID, map[string]string{
		"processor":     CodeDummy,
		"transactionId": txID,
		"currency":      req.Order.Currency().String(),
		"amount":        req.ChargeAmount().MajorString(),
	})
}

// ConfirmSettlement always succeeds
func (a *DummyAdapter) ConfirmSettlement(_ context.Context, _ *payment.Outcome) payment.SettlementConfirmation {
	return payment.SettlementConfirmation{Success: true}
}
