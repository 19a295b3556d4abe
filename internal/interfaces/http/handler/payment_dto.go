package handler

import (
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// SettlePaymentRequest is the body of POST /payments
type SettlePaymentRequest struct {
	Method string `json:"method" binding:"required"`
	// OrderCode names the order when the order body omits its code
	OrderCode string             `json:"orderCode"`
	Order     *order.Order       `json:"order"`
	Amount    valueobject.Amount `json:"amount" binding:"gte=0"`
	Metadata  map[string]string  `json:"metadata"`
}

// toDomain builds the payment request. Without an order body the request has no
// active order, whatever OrderCode says.
func (r *SettlePaymentRequest) toDomain() *payment.Request {
	o := r.Order
	if o != nil && o.Code == "" {
		o.Code = r.OrderCode
	}
	return &payment.Request{
		Order:    o,
		Amount:   r.Amount,
		Metadata: r.Metadata,
	}
}

// PaymentOutcomeResponse is the JSON form of a settlement outcome
type PaymentOutcomeResponse struct {
	Method        string             `json:"method"`
	State         payment.State      `json:"state"`
	Amount        valueobject.Amount `json:"amount"`
	TransactionID string             `json:"transactionId,omitempty"`
	Reason        string             `json:"errorMessage,omitempty"`
	FailureKind   string             `json:"failureKind,omitempty"`
	Metadata      map[string]string  `json:"metadata,omitempty"`
}

func newPaymentOutcomeResponse(method string, o *payment.Outcome) PaymentOutcomeResponse {
	resp := PaymentOutcomeResponse{
		Method:        method,
		State:         o.State(),
		Amount:        o.Amount(),
		TransactionID: o.TransactionID(),
		Reason:        o.Reason(),
		FailureKind:   string(o.FailureKind()),
	}
	if md := o.Metadata(); len(md) > 0 {
		resp.Metadata = md
	}
	return resp
}

// ConfirmSettlementRequest is the body of POST /payments/confirm
type ConfirmSettlementRequest struct {
	Method  string               `json:"method" binding:"required"`
	Outcome ConfirmOutcomeFields `json:"outcome"`
}

// ConfirmOutcomeFields identifies the outcome being confirmed
type ConfirmOutcomeFields struct {
	State         payment.State      `json:"state" binding:"required,oneof=Settled Declined Error"`
	Amount        valueobject.Amount `json:"amount" binding:"gte=0"`
	TransactionID string             `json:"transactionId"`
	Reason        string             `json:"errorMessage"`
	Metadata      map[string]string  `json:"metadata"`
}

func (f ConfirmOutcomeFields) toDomain() *payment.Outcome {
	switch f.State {
	case payment.StateSettled:
		return payment.Settled(f.Amount, f.TransactionID, f.Metadata)
	case payment.StateDeclined:
		return payment.Declined(f.Amount, payment.FailureNone, f.Reason)
	default:
		return payment.Errored(f.Amount, payment.FailureNone, f.Reason)
	}
}

// PaymentMethodsResponse lists the enabled payment method codes
type PaymentMethodsResponse struct {
	Methods []string `json:"methods"`
}
