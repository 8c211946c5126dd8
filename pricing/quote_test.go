package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/adiwardana/commerce/cart/pkg/entry"
)

func cartWithSubtotal(t *testing.T, subtotal float64) entry.Cart {
	t.Helper()
	return entry.Cart{Entries: []entry.Entry{
		entry.NewSimple(entry.SimpleItem{
			Key:       entry.VariantKey{ProductID: uuid.New(), Size: "m", Color: "navy"},
			Name:      "Crew Tee",
			UnitPrice: decimal.NewFromFloat(subtotal),
			Quantity:  1,
		}),
	}}
}

func standardRule() ShippingRule {
	return ShippingRule{
		Threshold: decimal.NewFromInt(200),
		Cost:      decimal.NewFromFloat(6.95),
		Region:    "us",
	}
}

func TestComputeTotalInvariant(t *testing.T) {
	tests := []struct {
		name           string
		subtotal       float64
		bundleDiscount float64
		couponDiscount float64
		wantTotal      float64
		wantFree       bool
	}{
		{"no discounts below threshold", 100, 0, 0, 106.95, false},
		{"free shipping at threshold", 200, 0, 0, 200, true},
		{"bundle discount applies", 100, 20, 0, 86.95, false},
		{"discount pulls below threshold", 210, 0, 30, 186.95, false},
		{"discounts capped at subtotal", 50, 40, 40, 6.95, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var coupon *CouponState
			if tt.couponDiscount > 0 {
				coupon = &CouponState{
					Code:           "SAVE",
					DiscountAmount: decimal.NewFromFloat(tt.couponDiscount),
				}
			}
			quote := Compute(
				cartWithSubtotal(t, tt.subtotal),
				decimal.NewFromFloat(tt.bundleDiscount),
				coupon,
				standardRule(),
			)

			assert.True(t, quote.Total.Equal(decimal.NewFromFloat(tt.wantTotal)),
				"total = %s", quote.Total)
			assert.Equal(t, tt.wantFree, quote.FreeShipping)
			assert.False(t, quote.Total.IsNegative())

			// total always reconstructs from its parts
			rebuilt := quote.Subtotal.
				Sub(quote.BundleDiscount).
				Sub(quote.CouponDiscount).
				Add(quote.ShippingCost)
			assert.True(t, quote.Total.Equal(rebuilt))
		})
	}
}

func TestComputeFreeShippingOnPostDiscountSubtotal(t *testing.T) {
	// subtotal 180 against threshold 200 leaves a 20 gap; a 30 coupon
	// moves the post-discount subtotal to 150 and the gap to 50
	quote := Compute(cartWithSubtotal(t, 180), decimal.Zero, nil, standardRule())
	assert.True(t, quote.RemainingForFreeShipping.Equal(decimal.NewFromInt(20)))
	assert.False(t, quote.FreeShipping)

	coupon := &CouponState{Code: "SAVE30", DiscountAmount: decimal.NewFromInt(30)}
	quote = Compute(cartWithSubtotal(t, 180), decimal.Zero, coupon, standardRule())
	assert.True(t, quote.RemainingForFreeShipping.Equal(decimal.NewFromInt(50)))
	assert.False(t, quote.FreeShipping)
}

func TestComputeRemainingZeroExactlyWhenFree(t *testing.T) {
	for _, subtotal := range []float64{50, 199.99, 200, 200.01, 500} {
		quote := Compute(cartWithSubtotal(t, subtotal), decimal.Zero, nil, standardRule())
		if quote.FreeShipping {
			assert.True(t, quote.RemainingForFreeShipping.IsZero())
			assert.True(t, quote.ShippingCost.IsZero())
		} else {
			assert.True(t, quote.RemainingForFreeShipping.IsPositive())
		}
	}
}

func TestComputeBundleEntryContributesBundlePrice(t *testing.T) {
	// charged price is the definition price, not the sum of sub-item
	// variant prices
	cart := entry.Cart{Entries: []entry.Entry{
		entry.NewBundle(entry.BundleItem{
			BundleID:  uuid.New(),
			Name:      "Weekend Set",
			UnitPrice: decimal.NewFromInt(80),
			Quantity:  1,
			SubItems: []entry.ResolvedSubItem{
				{ProductID: uuid.New(), Size: "m", Color: "navy", Quantity: 1, UnitPrice: decimal.NewFromInt(60)},
				{ProductID: uuid.New(), Size: "32", Color: "khaki", Quantity: 1, UnitPrice: decimal.NewFromInt(70)},
			},
		}),
	}}

	quote := Compute(cart, decimal.Zero, nil, standardRule())
	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(80)))
}

func TestComputeNegativeInputsClampToZero(t *testing.T) {
	coupon := &CouponState{Code: "BROKEN", DiscountAmount: decimal.NewFromInt(-5)}
	quote := Compute(cartWithSubtotal(t, 100), decimal.NewFromInt(-10), coupon, standardRule())

	assert.True(t, quote.BundleDiscount.IsZero())
	assert.True(t, quote.CouponDiscount.IsZero())
	assert.True(t, quote.Total.Equal(decimal.NewFromFloat(106.95)))
}
