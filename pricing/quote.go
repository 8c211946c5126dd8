package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/adiwardana/commerce/cart/pkg/entry"
)

// Quote is the full price breakdown of a cart at one instant. It is
// recomputed on every input change and never persisted.
type Quote struct {
	Subtotal                 decimal.Decimal `json:"subtotal"`
	BundleDiscount           decimal.Decimal `json:"bundle_discount"`
	CouponDiscount           decimal.Decimal `json:"coupon_discount"`
	ShippingCost             decimal.Decimal `json:"shipping_cost"`
	FreeShipping             bool            `json:"free_shipping"`
	RemainingForFreeShipping decimal.Decimal `json:"remaining_for_free_shipping"`
	Total                    decimal.Decimal `json:"total"`
}

// CouponState is an accepted coupon tied to the subtotal it was
// validated at. The code is opaque here; eligibility was evaluated by
// the coupon service.
type CouponState struct {
	Code              string          `json:"code"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	ValidatedSubtotal decimal.Decimal `json:"validated_subtotal"`
}

type ShippingRule struct {
	Threshold decimal.Decimal `json:"threshold"`
	Cost      decimal.Decimal `json:"cost"`
	Region    string          `json:"region"`
}

// Compute derives the quote from a cart snapshot plus the external
// discount and shipping inputs. Pure: same inputs, same quote.
//
// Free-shipping eligibility and the remaining gap are both evaluated
// against the post-discount subtotal, so applying a coupon can move a
// cart back below the threshold. RemainingForFreeShipping is zero
// exactly when FreeShipping holds.
func Compute(
	cart entry.Cart,
	bundleDiscount decimal.Decimal,
	coupon *CouponState,
	rule ShippingRule,
) Quote {
	subtotal := cart.Subtotal()

	if bundleDiscount.IsNegative() {
		bundleDiscount = decimal.Zero
	}
	if bundleDiscount.GreaterThan(subtotal) {
		bundleDiscount = subtotal
	}

	couponDiscount := decimal.Zero
	if coupon != nil {
		couponDiscount = coupon.DiscountAmount
		if couponDiscount.IsNegative() {
			couponDiscount = decimal.Zero
		}
	}
	if couponDiscount.GreaterThan(subtotal.Sub(bundleDiscount)) {
		couponDiscount = subtotal.Sub(bundleDiscount)
	}

	discounted := subtotal.Sub(bundleDiscount).Sub(couponDiscount)

	freeShipping := discounted.GreaterThanOrEqual(rule.Threshold)
	shippingCost := decimal.Zero
	remaining := decimal.Zero
	if !freeShipping {
		shippingCost = rule.Cost
		remaining = rule.Threshold.Sub(discounted)
	}

	total := discounted.Add(shippingCost)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal:                 subtotal,
		BundleDiscount:           bundleDiscount,
		CouponDiscount:           couponDiscount,
		ShippingCost:             shippingCost,
		FreeShipping:             freeShipping,
		RemainingForFreeShipping: remaining,
		Total:                    total,
	}
}
