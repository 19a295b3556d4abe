package promotion

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Codes of the promotion building blocks provided by this package
const (
	ConditionCodeHasAnchorSKU             = "has_anchor_sku"
	ActionCodeAccessoryPercentageDiscount = "accessory_percentage_discount"
)

var (
	// ErrUnknownCondition is returned when a condition code is not registered
	ErrUnknownCondition = errors.New("promotion: unknown condition")
	// ErrUnknownAction is returned when an action code is not registered
	ErrUnknownAction = errors.New("promotion: unknown action")
	// ErrInvalidArgs is returned when arguments do not match the expected shape
	ErrInvalidArgs = errors.New("promotion: invalid arguments")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ConditionArgs is the typed argument set of a condition. Implemented only by
// the argument structs of this package.
type ConditionArgs interface {
	ConditionCode() string
	isConditionArgs()
}

// ActionArgs is the typed argument set of an action. Implemented only by the
// argument structs of this package.
type ActionArgs interface {
	ActionCode() string
	isActionArgs()
}

// AnchorSKUArgs configures the has_anchor_sku condition
type AnchorSKUArgs struct {
	AnchorSKU string `mapstructure:"anchorSku" json:"anchorSku" validate:"required"`
	// MinQty of zero means at least one unit
	MinQty int `mapstructure:"minQty" json:"minQty" validate:"gte=0"`
}

// ConditionCode implements ConditionArgs
func (AnchorSKUArgs) ConditionCode() string { return ConditionCodeHasAnchorSKU }

func (AnchorSKUArgs) isConditionArgs() {}

// RequiredQty returns the effective minimum quantity
func (a AnchorSKUArgs) RequiredQty() int {
	if a.MinQty <= 0 {
		return 1
	}
	return a.MinQty
}

// PercentageDiscountArgs configures the accessory_percentage_discount action
type PercentageDiscountArgs struct {
	DiscountPercent int      `mapstructure:"discountPercent" json:"discountPercent" validate:"gte=0,lte=100"`
	TargetSKUs      []string `mapstructure:"targetSkus" json:"targetSkus" validate:"dive,required"`
}

// ActionCode implements ActionArgs
func (PercentageDiscountArgs) ActionCode() string { return ActionCodeAccessoryPercentageDiscount }

func (PercentageDiscountArgs) isActionArgs() {}

// IsTarget reports whether sku is one of the discounted SKUs
func (a PercentageDiscountArgs) IsTarget(sku string) bool {
	for _, target := range a.TargetSKUs {
		if target == sku {
			return true
		}
	}
	return false
}

// ParseCondition decodes and validates raw configuration arguments for the
// condition identified by code
func ParseCondition(code string, raw map[string]any) (ConditionArgs, error) {
	switch code {
	case ConditionCodeHasAnchorSKU:
		var args AnchorSKUArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, fmt.Errorf("condition %s: %w", code, err)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCondition, code)
	}
}

// ParseAction decodes and validates raw configuration arguments for the
// action identified by code
func ParseAction(code string, raw map[string]any) (ActionArgs, error) {
	switch code {
	case ActionCodeAccessoryPercentageDiscount:
		var args PercentageDiscountArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, fmt.Errorf("action %s: %w", code, err)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}
}

func decodeArgs(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}
