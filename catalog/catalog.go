package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is one purchasable size+color combination of a product. A
// zero PriceOverride means the variant sells at the product base price.
type Variant struct {
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	PriceOverride decimal.Decimal `json:"price_override"`
}

type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	FitLabel  string          `json:"fit_label"`
	BasePrice decimal.Decimal `json:"base_price"`
	Variants  []Variant       `json:"variants"`
}

// VariantPrice resolves the price of the exact size+color variant:
// the variant override when present and non-zero, the base price
// otherwise.
func (p Product) VariantPrice(size, color string) decimal.Decimal {
	for _, v := range p.Variants {
		if v.Size == size && v.Color == color {
			if !v.PriceOverride.IsZero() {
				return v.PriceOverride
			}
			break
		}
	}
	return p.BasePrice
}

// BundleDefinition fixes the charged price of the bundle regardless of
// which variants the shopper picks for its sub-products. SubProducts
// keeps catalog order; resolution reports the first incomplete one.
type BundleDefinition struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	BundlePrice decimal.Decimal `json:"bundle_price"`
	SubProducts []Product       `json:"sub_products"`
}

type Snapshot struct {
	Products []Product `json:"products"`
}

func (s Snapshot) FindProduct(id uuid.UUID) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
