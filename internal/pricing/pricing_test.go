package pricing

import (
	"testing"

	"github.com/loomwear/cartcore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSubtotal_EmptyListIsZero(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
	assert.True(t, Subtotal([]domain.LineItem{}).IsZero())
}

func TestSubtotal_SumsPriceTimesQuantity(t *testing.T) {
	items := []domain.LineItem{
		{UnitPrice: dec("19.99"), Quantity: 2},
		{UnitPrice: dec("5.50"), Quantity: 3},
	}

	// 39.98 + 16.50
	assert.True(t, dec("56.48").Equal(Subtotal(items)), "got %s", Subtotal(items))
}

func TestSubtotal_NoFloatDrift(t *testing.T) {
	// 0.10 added ten times must be exactly 1.00
	items := make([]domain.LineItem, 10)
	for i := range items {
		items[i] = domain.LineItem{UnitPrice: dec("0.10"), Quantity: 1}
	}
	assert.True(t, dec("1.00").Equal(Subtotal(items)))
}

func TestShipping_ThresholdIsInclusive(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, Shipping(dec("99.99"), policy).Equal(dec("10")))
	assert.True(t, Shipping(dec("100.00"), policy).IsZero(), "boundary must be free")
	assert.True(t, Shipping(dec("150.00"), policy).IsZero())
}

func TestTax_RoundsHalfUpToCents(t *testing.T) {
	// 10.31 * 0.08 = 0.8248 -> 0.82
	assert.True(t, Tax(dec("10.31"), dec("0.08")).Equal(dec("0.82")))
	// 10.44 * 0.08 = 0.8352 -> 0.84 (half-up on the dropped 5)
	assert.True(t, Tax(dec("10.44"), dec("0.08")).Equal(dec("0.84")))
}

func TestDiscount_NilCouponIsZero(t *testing.T) {
	assert.True(t, Discount(dec("50"), nil).IsZero())
}

func TestDiscount_Percentage(t *testing.T) {
	coupon := &Coupon{Kind: CouponPercentage, Value: dec("20")}
	assert.True(t, Discount(dec("50.00"), coupon).Equal(dec("10.00")))
}

func TestDiscount_PercentageCappedAtSubtotal(t *testing.T) {
	coupon := &Coupon{Kind: CouponPercentage, Value: dec("150")}
	assert.True(t, Discount(dec("40.00"), coupon).Equal(dec("40.00")))
}

func TestDiscount_FixedAmountCappedAtSubtotal(t *testing.T) {
	coupon := &Coupon{Kind: CouponFixedAmount, Value: dec("25")}
	assert.True(t, Discount(dec("100.00"), coupon).Equal(dec("25")))
	assert.True(t, Discount(dec("10.00"), coupon).Equal(dec("10.00")))
}

func TestDiscount_UnmetMinPurchaseDegradesToZero(t *testing.T) {
	coupon := &Coupon{Kind: CouponFixedAmount, Value: dec("5"), MinPurchase: dec("50")}
	assert.True(t, Discount(dec("49.99"), coupon).IsZero())
	assert.True(t, Discount(dec("50.00"), coupon).Equal(dec("5")))
}

func TestTotal_NeverNegative(t *testing.T) {
	total := Total(dec("10"), dec("0"), dec("0.80"), dec("100"))
	assert.True(t, total.IsZero())
}

func TestComputeBreakdown_Composes(t *testing.T) {
	items := []domain.LineItem{
		{UnitPrice: dec("45.00"), Quantity: 1},
		{UnitPrice: dec("5.00"), Quantity: 2},
	}
	coupon := &Coupon{Kind: CouponPercentage, Value: dec("10")}

	b := ComputeBreakdown(items, DefaultPolicy(), coupon)

	require.True(t, b.Subtotal.Equal(dec("55.00")))
	assert.True(t, b.Shipping.Equal(dec("10")), "below threshold pays base cost")
	assert.True(t, b.Tax.Equal(dec("4.40")))
	assert.True(t, b.Discount.Equal(dec("5.50")))
	assert.True(t, b.Total.Equal(dec("63.90")))
}

func TestComputeBreakdown_Idempotent(t *testing.T) {
	items := []domain.LineItem{{UnitPrice: dec("12.34"), Quantity: 3}}

	first := ComputeBreakdown(items, DefaultPolicy(), nil)
	second := ComputeBreakdown(items, DefaultPolicy(), nil)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
}
