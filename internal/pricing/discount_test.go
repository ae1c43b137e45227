package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercentageDiscountRoundsToNearestCent(t *testing.T) {
	d := Discount{Type: DiscountPercentage, Percentage: decimal.RequireFromString("10")}
	// round(999 * 10 / 100) = round(99.9) = 100
	assert.Equal(t, int64(100), d.Cents(999))

	d = Discount{Type: DiscountPercentage, Percentage: decimal.RequireFromString("5")}
	// round(1049 * 5 / 100) = round(52.45) = 52
	assert.Equal(t, int64(52), d.Cents(1049))
}

func TestFixedDiscount(t *testing.T) {
	d := Discount{Type: DiscountFixed, FixedCents: 250}
	assert.Equal(t, int64(250), d.Cents(10000))
}

func TestComputeLine(t *testing.T) {
	res := Resolution{Quantity: 3, UnitPriceCents: 1000}
	lt := ComputeLine(res, Discount{Type: DiscountFixed, FixedCents: 200})
	assert.Equal(t, int64(3000), lt.SubtotalCents)
	assert.Equal(t, int64(200), lt.DiscountCents)
	assert.Equal(t, int64(2800), lt.TotalCents)
}

func TestBelowMinimumCustomPrice(t *testing.T) {
	kit := kitFixture() // minimum 5000, qty 3

	custom := i64(4000)
	lt := ComputeLine(Resolution{Quantity: 3, UnitPriceCents: *custom}, Discount{})
	assert.True(t, BelowMinimum(kit, custom, lt),
		"custom price under the kit minimum must flag the line")

	// Authorization bypasses the gate for the confirmation.
	assert.True(t, NeedsAuthorization(kit, custom, lt, false))
	assert.False(t, NeedsAuthorization(kit, custom, lt, true))
}

func TestBelowMinimumDiscountedTotal(t *testing.T) {
	kit := kitFixture() // minimum 5000/unit, qty 3 → floor 15000 on the total

	res := Resolution{Quantity: 3, UnitPriceCents: 10000}
	lt := ComputeLine(res, Discount{Type: DiscountFixed, FixedCents: 16000})
	assert.True(t, BelowMinimum(kit, nil, lt),
		"discounted total under the kit floor must flag the line")

	lt = ComputeLine(res, Discount{Type: DiscountFixed, FixedCents: 1000})
	assert.False(t, BelowMinimum(kit, nil, lt))
}

func TestBelowMinimumNoFloor(t *testing.T) {
	kit := kitFixture()
	kit.MinimumPriceCents = nil
	lt := ComputeLine(Resolution{Quantity: 3, UnitPriceCents: 1}, Discount{})
	assert.False(t, BelowMinimum(kit, i64(1), lt))
}

func TestComputeSaleInvariant(t *testing.T) {
	// Two items: qty 2 @ 1000, qty 1 @ 500, fixed discount 200, shipping 300.
	l1 := ComputeLine(Resolution{Quantity: 2, UnitPriceCents: 1000}, Discount{Type: DiscountFixed, FixedCents: 200})
	l2 := ComputeLine(Resolution{Quantity: 1, UnitPriceCents: 500}, Discount{})

	totals := ComputeSale([]LineTotals{l1, l2}, 300)
	assert.Equal(t, int64(2500), totals.SubtotalCents)
	assert.Equal(t, int64(200), totals.DiscountCents)
	assert.Equal(t, int64(2600), totals.TotalCents)
	assert.Equal(t, totals.SubtotalCents-totals.DiscountCents+totals.ShippingCostCents, totals.TotalCents)
}
