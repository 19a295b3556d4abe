package promotion

import (
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Channel carries the channel settings relevant to price calculation
type Channel struct {
	Code             string `json:"code"`
	PricesIncludeTax bool   `json:"pricesIncludeTax"`
}

// HasAnchorSKU is the has_anchor_sku condition: true iff the order holds at
// least MinQty units of the anchor SKU, summed across lines
type HasAnchorSKU struct{}

// Code returns the condition code
func (HasAnchorSKU) Code() string { return ConditionCodeHasAnchorSKU }

// Check evaluates the condition against an order
func (HasAnchorSKU) Check(o *order.Order, args AnchorSKUArgs) bool {
	return o.QuantityOfSKU(args.AnchorSKU) >= args.RequiredQty()
}

// AccessoryPercentageDiscount is the accessory_percentage_discount item action.
// It discounts target SKUs by a percentage of their unit price.
type AccessoryPercentageDiscount struct{}

// Code returns the action code
func (AccessoryPercentageDiscount) Code() string { return ActionCodeAccessoryPercentageDiscount }

// Conditions returns the condition codes the action is declared against.
// The action itself never evaluates them.
func (AccessoryPercentageDiscount) Conditions() []string {
	return []string{ConditionCodeHasAnchorSKU}
}

// Execute returns the per-unit price adjustment for a line: zero for
// non-target SKUs, otherwise the negated percentage of the unit price. The
// tax-inclusive unit price is used when the channel prices include tax.
func (AccessoryPercentageDiscount) Execute(ch Channel, line order.OrderLine, args PercentageDiscountArgs) valueobject.Amount {
	if !args.IsTarget(line.SKU) {
		return 0
	}
	unitPrice := line.UnitPriceFor(ch.PricesIncludeTax)
	discount := unitPrice.Percent(args.DiscountPercent)
	return discount.Min(unitPrice).Neg()
}
