// Package pricing derives order totals from cart line items. Every
// function is pure: no state, no side effects, identical inputs yield
// identical outputs. All arithmetic is decimal to keep money exact.
package pricing

import (
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy holds the shipping and tax configuration applied at computation
// time. Values are configuration, not constants baked into call sites.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingBaseCost      decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy matches the storefront defaults: free shipping from $100,
// $10 base shipping, 8% tax.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingBaseCost:      decimal.NewFromInt(10),
		TaxRate:               decimal.NewFromFloat(0.08),
	}
}

// CouponKind discriminates how a coupon's value is interpreted.
type CouponKind string

const (
	CouponPercentage  CouponKind = "percentage"
	CouponFixedAmount CouponKind = "fixed_amount"
)

// Coupon is an optional discount applied against the subtotal. A coupon
// whose MinPurchase is not met yields a zero discount; it is the caller's
// job to tell the user why.
type Coupon struct {
	Code        string
	Kind        CouponKind
	Value       decimal.Decimal
	MinPurchase decimal.Decimal
}

// Breakdown is the derived pricing of a cart. It is never persisted;
// callers recompute it from current line items every time.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums unit price times quantity over all items. Empty input
// yields exactly zero.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Shipping is zero at or above the free threshold (the boundary is
// inclusive), otherwise the base cost.
func Shipping(subtotal decimal.Decimal, policy Policy) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(policy.FreeShippingThreshold) {
		return decimal.Zero
	}
	return policy.ShippingBaseCost
}

// Tax applies the policy rate to the subtotal, rounded half-up to cents.
func Tax(subtotal decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// Discount computes the coupon's value against the subtotal. Percentage
// coupons are capped at the subtotal, fixed coupons never exceed it, and
// a nil coupon or an unmet minimum purchase degrades to zero rather than
// erroring.
func Discount(subtotal decimal.Decimal, coupon *Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	if subtotal.LessThan(coupon.MinPurchase) {
		return decimal.Zero
	}

	switch coupon.Kind {
	case CouponPercentage:
		discount := subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100)).Round(2)
		if discount.GreaterThan(subtotal) {
			return subtotal
		}
		return discount
	case CouponFixedAmount:
		if coupon.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return coupon.Value
	}
	return decimal.Zero
}

// Total is subtotal + shipping + tax - discount, floored at zero.
func Total(subtotal, shipping, tax, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// ComputeBreakdown composes the individual calculations into a full
// Breakdown for the given items, policy, and optional coupon.
func ComputeBreakdown(items []domain.LineItem, policy Policy, coupon *Coupon) Breakdown {
	subtotal := Subtotal(items)
	shipping := Shipping(subtotal, policy)
	tax := Tax(subtotal, policy.TaxRate)
	discount := Discount(subtotal, coupon)

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    Total(subtotal, shipping, tax, discount),
	}
}
