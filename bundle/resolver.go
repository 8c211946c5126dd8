package bundle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/catalog"
)

// Selection is the shopper's variant choice for one sub-product of a
// bundle. Size and color are both required; a zero quantity means 1.
type Selection struct {
	Size     string `json:"size"     validate:"required"`
	Color    string `json:"color"    validate:"required"`
	Quantity int32  `json:"quantity" validate:"gte=0,lte=10"`
}

// IncompleteSelectionError names the first sub-product, in definition
// order, whose variant choice is missing or partial. The name is what
// the shopper sees, so it carries both.
type IncompleteSelectionError struct {
	SubProductID   uuid.UUID
	SubProductName string
}

func (e *IncompleteSelectionError) Error() string {
	return fmt.Sprintf("incomplete variant selection for %s", e.SubProductName)
}

// Resolve turns a bundle definition plus the shopper's per-sub-product
// selections into the ordered resolved sub-items of a cart bundle
// entry. All sub-products must have a complete size+color selection
// before anything is returned. The resolved unit price is the exact
// variant's override price when one is set, otherwise the sub-product
// base price; it feeds the savings display only and never changes what
// the bundle charges.
func Resolve(
	def catalog.BundleDefinition,
	selections map[uuid.UUID]Selection,
) ([]entry.ResolvedSubItem, error) {
	resolved := make([]entry.ResolvedSubItem, 0, len(def.SubProducts))
	for _, sub := range def.SubProducts {
		selection, ok := selections[sub.ID]
		if !ok || selection.Size == "" || selection.Color == "" {
			return nil, &IncompleteSelectionError{
				SubProductID:   sub.ID,
				SubProductName: sub.Name,
			}
		}
		quantity := selection.Quantity
		if quantity < 1 {
			quantity = 1
		}
		resolved = append(resolved, entry.ResolvedSubItem{
			ProductID: sub.ID,
			Size:      selection.Size,
			Color:     selection.Color,
			Quantity:  quantity,
			UnitPrice: sub.VariantPrice(selection.Size, selection.Color),
		})
	}
	return resolved, nil
}
