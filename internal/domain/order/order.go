package order

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// State is an order lifecycle state. States are owned by the commerce platform;
// this service only reads them.
type State string

const (
	StateAddingItems        State = "AddingItems"
	StateArrangingPayment   State = "ArrangingPayment"
	StatePaymentAuthorized  State = "PaymentAuthorized"
	StatePaymentSettled     State = "PaymentSettled"
	StatePartiallyShipped   State = "PartiallyShipped"
	StateShipped            State = "Shipped"
	StatePartiallyDelivered State = "PartiallyDelivered"
	StateDelivered          State = "Delivered"
	StateCancelled          State = "Cancelled"
)

var builtinStates = map[State]struct{}{
	StateAddingItems:        {},
	StateArrangingPayment:   {},
	StatePaymentAuthorized:  {},
	StatePaymentSettled:     {},
	StatePartiallyShipped:   {},
	StateShipped:            {},
	StatePartiallyDelivered: {},
	StateDelivered:          {},
	StateCancelled:          {},
}

// ErrInvalidState is returned when a state name is empty or malformed
var ErrInvalidState = errors.New("invalid order state")

// ParseState converts a string to a State. The commerce platform allows custom
// states, so any name without whitespace is accepted.
func ParseState(s string) (State, error) {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
	return State(s), nil
}

// IsBuiltin reports whether s is one of the default lifecycle states
func (s State) IsBuiltin() bool {
	_, ok := builtinStates[s]
	return ok
}

// String returns the state name
func (s State) String() string {
	return string(s)
}

// Order is the read-only view of a storefront order
type Order struct {
	ID           uuid.UUID                `json:"id"`
	Code         string                   `json:"code"`
	CurrencyCode valueobject.CurrencyCode `json:"currencyCode"`
	// TotalWithTax is the order total in minor units
	TotalWithTax valueobject.Amount `json:"totalWithTax"`
	State        State              `json:"state"`
	Lines        []OrderLine        `json:"lines"`
}

// OrderLine is a single product variant line of an order
type OrderLine struct {
	ID               uuid.UUID            `json:"id"`
	SKU              string               `json:"sku"`
	Quantity         valueobject.Quantity `json:"quantity"`
	UnitPrice        valueobject.Amount   `json:"unitPrice"`
	UnitPriceWithTax valueobject.Amount   `json:"unitPriceWithTax"`
}

// QuantityOfSKU sums the quantities of all lines carrying sku
func (o *Order) QuantityOfSKU(sku string) int {
	if o == nil {
		return 0
	}
	total := 0
	for _, line := range o.Lines {
		if line.SKU == sku {
			total += line.Quantity.Int()
		}
	}
	return total
}

// Currency returns the order currency, falling back to the default currency
func (o *Order) Currency() valueobject.CurrencyCode {
	if o == nil {
		return valueobject.DefaultCurrency
	}
	return o.CurrencyCode.OrDefault()
}

// UnitPriceFor returns the tax-inclusive or tax-exclusive unit price
func (l OrderLine) UnitPriceFor(includeTax bool) valueobject.Amount {
	if includeTax {
		return l.UnitPriceWithTax
	}
	return l.UnitPrice
}

// Subtotal returns unit price times quantity, tax-inclusive when includeTax is set
func (l OrderLine) Subtotal(includeTax bool) valueobject.Amount {
	return l.UnitPriceFor(includeTax).MulQuantity(l.Quantity)
}
