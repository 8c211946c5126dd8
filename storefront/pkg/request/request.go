package request

import (
	"github.com/google/uuid"

	orderRequest "github.com/adiwardana/commerce/order/pkg/request"
)

type AddItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size"      validate:"required"`
	Color     string    `json:"color"     validate:"required"`
	Quantity  int32     `json:"quantity"  validate:"required,gte=1,lte=10"`
}

// VariantSelection mirrors the shopper's per-sub-product choice inside
// an add-bundle request, keyed by sub-product id in the payload.
type VariantSelection struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int32  `json:"quantity"`
}

type AddBundle struct {
	BundleID   uuid.UUID                   `json:"bundleId"   validate:"required"`
	Selections map[string]VariantSelection `json:"selections" validate:"required"`
}

type SetQuantity struct {
	Quantity int32 `json:"quantity" validate:"gte=0,lte=10"`
}

type ApplyCoupon struct {
	Code string `json:"code" validate:"required"`
}

type Checkout struct {
	Customer orderRequest.Customer `json:"customer" validate:"required"`
}
