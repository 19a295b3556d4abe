package promotion

import (
	"testing"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartWith(lines ...order.OrderLine) *order.Order {
	return &order.Order{Code: "T1", Lines: lines}
}

func TestHasAnchorSKU_Check(t *testing.T) {
	cond := HasAnchorSKU{}
	args := AnchorSKUArgs{AnchorSKU: "X", MinQty: 2}

	t.Run("two units satisfy minQty 2", func(t *testing.T) {
		assert.True(t, cond.Check(cartWith(order.OrderLine{SKU: "X", Quantity: 2}), args))
	})

	t.Run("one unit does not", func(t *testing.T) {
		assert.False(t, cond.Check(cartWith(order.OrderLine{SKU: "X", Quantity: 1}), args))
	})

	t.Run("quantities are summed across lines", func(t *testing.T) {
		o := cartWith(
			order.OrderLine{SKU: "X", Quantity: 1},
			order.OrderLine{SKU: "Y", Quantity: 5},
			order.OrderLine{SKU: "X", Quantity: 1},
		)
		assert.True(t, cond.Check(o, args))
	})

	t.Run("unset minQty means one", func(t *testing.T) {
		o := cartWith(order.OrderLine{SKU: "X", Quantity: 1})
		assert.True(t, cond.Check(o, AnchorSKUArgs{AnchorSKU: "X"}))
		assert.False(t, cond.Check(cartWith(), AnchorSKUArgs{AnchorSKU: "X"}))
	})
}

func TestAccessoryPercentageDiscount_Execute(t *testing.T) {
	action := AccessoryPercentageDiscount{}
	args := PercentageDiscountArgs{DiscountPercent: 10, TargetSKUs: []string{"ACC-1", "ACC-2"}}
	exclusive := Channel{PricesIncludeTax: false}
	inclusive := Channel{PricesIncludeTax: true}

	tests := []struct {
		name    string
		channel Channel
		line    order.OrderLine
		want    valueobject.Amount
	}{
		{"target sku tax exclusive", exclusive, order.OrderLine{SKU: "ACC-1", Quantity: 1, UnitPrice: 1000, UnitPriceWithTax: 1200}, -100},
		{"target sku tax inclusive", inclusive, order.OrderLine{SKU: "ACC-2", Quantity: 1, UnitPrice: 1000, UnitPriceWithTax: 1200}, -120},
		{"non target sku", exclusive, order.OrderLine{SKU: "OTHER", Quantity: 1, UnitPrice: 1000}, 0},
		{"half cent rounds away from zero", exclusive, order.OrderLine{SKU: "ACC-1", Quantity: 1, UnitPrice: 1005}, -101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, action.Execute(tt.channel, tt.line, args))
		})
	}

	t.Run("full discount never exceeds unit price", func(t *testing.T) {
		full := PercentageDiscountArgs{DiscountPercent: 100, TargetSKUs: []string{"ACC-1"}}
		got := action.Execute(exclusive, order.OrderLine{SKU: "ACC-1", Quantity: 1, UnitPrice: 999}, full)
		assert.Equal(t, valueobject.Amount(-999), got)
	})

	t.Run("declares anchor condition", func(t *testing.T) {
		assert.Equal(t, []string{ConditionCodeHasAnchorSKU}, action.Conditions())
	})
}

func TestParseCondition(t *testing.T) {
	t.Run("decodes typed args", func(t *testing.T) {
		args, err := ParseCondition(ConditionCodeHasAnchorSKU, map[string]any{"anchorSku": "X", "minQty": "2"})
		require.NoError(t, err)
		assert.Equal(t, AnchorSKUArgs{AnchorSKU: "X", MinQty: 2}, args)
	})

	t.Run("rejects empty anchor", func(t *testing.T) {
		_, err := ParseCondition(ConditionCodeHasAnchorSKU, map[string]any{"minQty": 1})
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := ParseCondition(ConditionCodeHasAnchorSKU, map[string]any{"anchorSku": "X", "colour": "red"})
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("rejects unknown code", func(t *testing.T) {
		_, err := ParseCondition("minimum_order_amount", nil)
		assert.ErrorIs(t, err, ErrUnknownCondition)
	})
}

func TestParseAction(t *testing.T) {
	t.Run("decodes typed args", func(t *testing.T) {
		args, err := ParseAction(ActionCodeAccessoryPercentageDiscount, map[string]any{
			"discountPercent": 15,
			"targetSkus":      []any{"A", "B"},
		})
		require.NoError(t, err)
		assert.Equal(t, PercentageDiscountArgs{DiscountPercent: 15, TargetSKUs: []string{"A", "B"}}, args)
	})

	t.Run("rejects discount above 100", func(t *testing.T) {
		_, err := ParseAction(ActionCodeAccessoryPercentageDiscount, map[string]any{"discountPercent": 150})
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("rejects negative discount", func(t *testing.T) {
		_, err := ParseAction(ActionCodeAccessoryPercentageDiscount, map[string]any{"discountPercent": -5})
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("rejects unknown code", func(t *testing.T) {
		_, err := ParseAction("free_shipping", nil)
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
}

func TestPromotion_Evaluate(t *testing.T) {
	promo, err := New("bundle",
		[]ConditionArgs{AnchorSKUArgs{AnchorSKU: "PRINTER", MinQty: 1}},
		[]ActionArgs{PercentageDiscountArgs{DiscountPercent: 10, TargetSKUs: []string{"INK"}}},
	)
	require.NoError(t, err)

	t.Run("applies when anchor present", func(t *testing.T) {
		o := cartWith(
			order.OrderLine{SKU: "PRINTER", Quantity: 1, UnitPrice: 20000},
			order.OrderLine{SKU: "INK", Quantity: 3, UnitPrice: 1000},
		)
		res := promo.Evaluate(Channel{}, o)

		assert.True(t, res.Applied)
		require.Len(t, res.Adjustments, 1)
		assert.Equal(t, "INK", res.Adjustments[0].SKU)
		assert.Equal(t, valueobject.Amount(-100), res.Adjustments[0].PerUnit)
		assert.Equal(t, valueobject.Amount(-300), res.Adjustments[0].LineTotal)
		assert.Equal(t, valueobject.Amount(-300), res.Total)
	})

	t.Run("skips when anchor missing", func(t *testing.T) {
		res := promo.Evaluate(Channel{}, cartWith(order.OrderLine{SKU: "INK", Quantity: 3, UnitPrice: 1000}))
		assert.False(t, res.Applied)
		assert.Empty(t, res.Adjustments)
		assert.True(t, res.Total.IsZero())
	})

	t.Run("nil order", func(t *testing.T) {
		assert.False(t, promo.Evaluate(Channel{}, nil).Applied)
	})

	t.Run("requires an action", func(t *testing.T) {
		_, err := New("empty", nil, nil)
		assert.ErrorIs(t, err, ErrEmptyPromotion)
	})
}
