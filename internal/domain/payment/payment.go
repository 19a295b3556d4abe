package payment

import (
	"context"
	"errors"
	"maps"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ---------------------------------------------------------------------------
// Payment Errors
// ---------------------------------------------------------------------------

var (
	// ErrPaymentMethodNotFound is returned when no handler is registered for a method code
	ErrPaymentMethodNotFound = shared.NewDomainError("PAYMENT_METHOD_NOT_FOUND", "payment method not found")

	// ErrMethodNotConfigured is returned when a method is enabled without its configuration
	ErrMethodNotConfigured = errors.New("payment: method not configured")
)

// ---------------------------------------------------------------------------
// Outcome
// ---------------------------------------------------------------------------

// State is the state of a PaymentOutcome
type State string

const (
	StateSettled  State = "Settled"
	StateDeclined State = "Declined"
	StateError    State = "Error"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// FailureKind classifies why a payment was not settled
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureValidation    FailureKind = "validation"
	FailureTransport     FailureKind = "transport"
	FailureProcessor     FailureKind = "processor"
	FailureConfiguration FailureKind = "configuration"
)

// ReasonNoActiveOrder is the decline reason used when a request carries no order
const ReasonNoActiveOrder = "no active order"

// Outcome is the immutable result of a settlement attempt
type Outcome struct {
	amount        valueobject.Amount
	state         State
	transactionID string
	reason        string
	failure       FailureKind
	metadata      map[string]string
}

// Settled creates a settled outcome. metadata is copied.
func Settled(amount valueobject.Amount, transactionID string, metadata map[string]string) *Outcome {
	return &Outcome{
		amount:        amount,
		state:         StateSettled,
		transactionID: transactionID,
		metadata:      maps.Clone(metadata),
	}
}

// Declined creates a declined outcome carrying a human-readable reason
func Declined(amount valueobject.Amount, kind FailureKind, reason string) *Outcome {
	return &Outcome{
		amount:  amount,
		state:   StateDeclined,
		reason:  reason,
		failure: kind,
	}
}

// Errored creates an outcome for a failure that is neither a decline nor a settlement
func Errored(amount valueobject.Amount, kind FailureKind, reason string) *Outcome {
	return &Outcome{
		amount:  amount,
		state:   StateError,
		reason:  reason,
		failure: kind,
	}
}

// Amount returns the amount the outcome refers to, in minor units
func (o *Outcome) Amount() valueobject.Amount { return o.amount }

// State returns the outcome state
func (o *Outcome) State() State { return o.state }

// TransactionID returns the processor transaction id of a settled outcome
func (o *Outcome) TransactionID() string { return o.transactionID }

// Reason returns the decline or error reason
func (o *Outcome) Reason() string { return o.reason }

// FailureKind returns the failure classification, FailureNone when settled
func (o *Outcome) FailureKind() FailureKind { return o.failure }

// IsSettled returns true if the payment was settled
func (o *Outcome) IsSettled() bool { return o.state == StateSettled }

// Metadata returns a copy of the audit metadata
func (o *Outcome) Metadata() map[string]string {
	out := maps.Clone(o.metadata)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// ---------------------------------------------------------------------------
// Request / handler contract
// ---------------------------------------------------------------------------

// Request is a request to settle a payment for an order
type Request struct {
	Order *order.Order
	// Amount is the requested amount in minor units. Outcomes always record it.
	Amount   valueobject.Amount
	Metadata map[string]string
}

// HasOrder reports whether the request carries an active order
func (r *Request) HasOrder() bool {
	return r != nil && r.Order != nil
}

// Meta returns a metadata value, empty when absent
func (r *Request) Meta(key string) string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// RequestedAmount returns the requested amount recorded on the outcome
func (r *Request) RequestedAmount() valueobject.Amount {
	if r == nil {
		return 0
	}
	return r.Amount
}

// ChargeAmount returns the amount sent to the processor: the order total with
// tax when positive, otherwise the requested amount
func (r *Request) ChargeAmount() valueobject.Amount {
	if r == nil {
		return 0
	}
	if r.Order != nil && r.Order.TotalWithTax.IsPositive() {
		return r.Order.TotalWithTax
	}
	return r.Amount
}

// SettlementConfirmation is the answer to a settlement confirmation request
type SettlementConfirmation struct {
	Success bool `json:"success"`
}

// MethodHandler settles payments through one payment processor.
// Settle never returns an error: every failure is expressed as a non-settled Outcome.
type MethodHandler interface {
	// Code returns the payment method code, e.g. "braintree"
	Code() string
	Settle(ctx context.Context, req *Request) *Outcome
	ConfirmSettlement(ctx context.Context, outcome *Outcome) SettlementConfirmation
}
