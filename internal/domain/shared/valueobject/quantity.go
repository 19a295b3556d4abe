package valueobject

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity is returned when a quantity is not a positive integer
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// Quantity is a countable number of units on an order line
type Quantity int

// NewQuantity creates a Quantity, rejecting zero and negative values
func NewQuantity(value int) (Quantity, error) {
	q := Quantity(value)
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return q, nil
}

// Validate returns an error if the quantity is not positive
func (q Quantity) Validate() error {
	if q <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, int(q))
	}
	return nil
}

// Int returns the quantity as int
func (q Quantity) Int() int {
	return int(q)
}

// Add returns the sum of both quantities
func (q Quantity) Add(other Quantity) Quantity {
	return q + other
}
