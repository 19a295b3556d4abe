package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyCode represents a currency code (ISO 4217)
type CurrencyCode string

const (
	USD CurrencyCode = "USD" // US Dollar (default)
	EUR CurrencyCode = "EUR" // Euro
	GBP CurrencyCode = "GBP" // British Pound
	VND CurrencyCode = "VND" // Vietnamese Dong
)

// DefaultCurrency is used when an order carries no currency code
const DefaultCurrency = USD

// minorUnitExponent is the number of decimal places between minor and major units.
// All supported processors exchange amounts with two decimal places.
const minorUnitExponent = 2

// OrDefault returns the currency code, or DefaultCurrency when empty
func (c CurrencyCode) OrDefault() CurrencyCode {
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// String returns the string representation of CurrencyCode
func (c CurrencyCode) String() string {
	return string(c)
}

// Amount is a monetary amount in integer minor units (e.g. cents).
// Arithmetic on Amount never goes through floating point.
type Amount int64

// ErrInvalidAmountString is returned when an amount string cannot be parsed
var ErrInvalidAmountString = errors.New("invalid amount string")

// NewAmount creates an Amount from minor units
func NewAmount(minor int64) Amount {
	return Amount(minor)
}

// AmountFromMajor converts a decimal value in major units to minor units,
// rounding half away from zero to the nearest minor unit
func AmountFromMajor(major decimal.Decimal) Amount {
	return Amount(major.Shift(minorUnitExponent).Round(0).IntPart())
}

// AmountFromMajorString parses a decimal string in major units ("19.99")
func AmountFromMajorString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmountString, err)
	}
	return AmountFromMajor(d), nil
}

// Int64 returns the amount in minor units
func (a Amount) Int64() int64 {
	return int64(a)
}

// Major returns the amount in major units as a decimal
func (a Amount) Major() decimal.Decimal {
	return decimal.NewFromInt(int64(a)).Shift(-minorUnitExponent)
}

// MajorString returns the amount in major units with two fixed decimals,
// e.g. 1999 -> "19.99", 5 -> "0.05"
func (a Amount) MajorString() string {
	return a.Major().StringFixed(minorUnitExponent)
}

// Add returns the sum of both amounts
func (a Amount) Add(other Amount) Amount {
	return a + other
}

// Sub returns the difference of both amounts
func (a Amount) Sub(other Amount) Amount {
	return a - other
}

// Neg returns the negated amount
func (a Amount) Neg() Amount {
	return -a
}

// Abs returns the absolute amount
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// MulQuantity multiplies the amount by an integer quantity
func (a Amount) MulQuantity(q Quantity) Amount {
	return a * Amount(q)
}

// Percent returns round(a * percent / 100).
// Rounding is half away from zero: 1005 at 10% is 101, -1005 at 10% is -101.
func (a Amount) Percent(percent int) Amount {
	result := decimal.NewFromInt(int64(a)).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return Amount(result.IntPart())
}

// Min returns the smaller of both amounts
func (a Amount) Min(other Amount) Amount {
	if other < a {
		return other
	}
	return a
}

// IsZero returns true if the amount is zero
func (a Amount) IsZero() bool {
	return a == 0
}

// IsPositive returns true if the amount is positive
func (a Amount) IsPositive() bool {
	return a > 0
}

// IsNegative returns true if the amount is negative
func (a Amount) IsNegative() bool {
	return a < 0
}

// String returns the major-unit representation
func (a Amount) String() string {
	return a.MajorString()
}

// MarshalJSON encodes the amount as an integer number of minor units
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(a))
}

// UnmarshalJSON decodes an integer number of minor units
func (a *Amount) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("amount must be an integer number of minor units: %w", err)
	}
	*a = Amount(v)
	return nil
}

// Value implements driver.Valuer for database storage
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner for database retrieval
func (a *Amount) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("failed to scan amount: %w", err)
		}
		*a = Amount(d.IntPart())
	default:
		return fmt.Errorf("failed to scan amount: unsupported type %T", value)
	}
	return nil
}
