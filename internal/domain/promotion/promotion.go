package promotion

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ErrEmptyPromotion is returned when a promotion has no actions
var ErrEmptyPromotion = errors.New("promotion: at least one action is required")

// Promotion groups conditions and item actions. Actions run against each
// order line only when every condition holds.
type Promotion struct {
	Name       string
	Conditions []ConditionArgs
	Actions    []ActionArgs
}

// LineAdjustment is the discount applied to a single order line
type LineAdjustment struct {
	LineID    uuid.UUID          `json:"lineId"`
	SKU       string             `json:"sku"`
	Action    string             `json:"action"`
	PerUnit   valueobject.Amount `json:"perUnit"`
	Quantity  int                `json:"quantity"`
	LineTotal valueobject.Amount `json:"lineTotal"`
}

// Result is the outcome of evaluating a promotion against an order
type Result struct {
	Promotion   string             `json:"promotion"`
	Applied     bool               `json:"applied"`
	Adjustments []LineAdjustment   `json:"adjustments"`
	Total       valueobject.Amount `json:"total"`
}

// New creates a promotion. It fails when the promotion has no actions.
func New(name string, conditions []ConditionArgs, actions []ActionArgs) (*Promotion, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPromotion, name)
	}
	return &Promotion{Name: name, Conditions: conditions, Actions: actions}, nil
}

// Applies reports whether every condition holds for the order
func (p *Promotion) Applies(o *order.Order) bool {
	for _, c := range p.Conditions {
		switch args := c.(type) {
		case AnchorSKUArgs:
			if !(HasAnchorSKU{}).Check(o, args) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Evaluate runs the promotion against an order and returns the adjustments
func (p *Promotion) Evaluate(ch Channel, o *order.Order) Result {
	result := Result{Promotion: p.Name, Adjustments: []LineAdjustment{}}
	if o == nil || !p.Applies(o) {
		return result
	}
	result.Applied = true

	for _, line := range o.Lines {
		for _, a := range p.Actions {
			perUnit := executeAction(ch, line, a)
			if perUnit.IsZero() {
				continue
			}
			lineTotal := perUnit.MulQuantity(line.Quantity)
			result.Adjustments = append(result.Adjustments, LineAdjustment{
				LineID:    line.ID,
				SKU:       line.SKU,
				Action:    a.ActionCode(),
				PerUnit:   perUnit,
				Quantity:  line.Quantity.Int(),
				LineTotal: lineTotal,
			})
			result.Total = result.Total.Add(lineTotal)
		}
	}
	return result
}

func executeAction(ch Channel, line order.OrderLine, a ActionArgs) valueobject.Amount {
	switch args := a.(type) {
	case PercentageDiscountArgs:
		return (AccessoryPercentageDiscount{}).Execute(ch, line, args)
	default:
		return 0
	}
}
