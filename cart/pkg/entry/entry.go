package entry

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantKey identifies a mergeable simple cart line. Two adds with a
// different size or color never merge, and value equality makes the key
// safe against separator collisions in color names.
type VariantKey struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

func (k VariantKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ProductID.String(), k.Size, k.Color)
}

type Kind string

const (
	KindSimple Kind = "simple"
	KindBundle Kind = "bundle"
)

type SimpleItem struct {
	Key       VariantKey      `json:"key"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	FitLabel  string          `json:"fit_label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
}

// ResolvedSubItem is one sub-product of a bundle with its variant choice
// locked in. Its unit price feeds savings displays only; the charged
// bundle price is fixed by the bundle definition.
type ResolvedSubItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BundleItem is atomic: sub-items are never removed or re-priced
// individually, the whole entry goes as one unit.
type BundleItem struct {
	BundleID  uuid.UUID         `json:"bundle_id"`
	Name      string            `json:"name"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	Quantity  int32             `json:"quantity"`
	SubItems  []ResolvedSubItem `json:"sub_items"`
}

// Entry is a tagged union over simple and bundle cart lines so pricing
// code handles both exhaustively instead of probing fields.
type Entry struct {
	Kind   Kind        `json:"kind"`
	Item   *SimpleItem `json:"item,omitempty"`
	Bundle *BundleItem `json:"bundle,omitempty"`
}

func NewSimple(item SimpleItem) Entry {
	return Entry{Kind: KindSimple, Item: &item}
}

func NewBundle(bundle BundleItem) Entry {
	return Entry{Kind: KindBundle, Bundle: &bundle}
}

func (e Entry) Subtotal() decimal.Decimal {
	switch e.Kind {
	case KindSimple:
		return e.Item.UnitPrice.Mul(decimal.NewFromInt32(e.Item.Quantity))
	case KindBundle:
		return e.Bundle.UnitPrice.Mul(decimal.NewFromInt32(e.Bundle.Quantity))
	}
	return decimal.Zero
}

func (e Entry) Quantity() int32 {
	switch e.Kind {
	case KindSimple:
		return e.Item.Quantity
	case KindBundle:
		return e.Bundle.Quantity
	}
	return 0
}

type Cart struct {
	Entries []Entry `json:"entries"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, e := range c.Entries {
		subtotal = subtotal.Add(e.Subtotal())
	}
	return subtotal
}

// SimpleItems returns the simple-item portion of the cart, the input of
// the cross-item bundle-discount calculation. BundleItem entries are
// already-bundled purchases and stay out of it.
func (c Cart) SimpleItems() []SimpleItem {
	items := []SimpleItem{}
	for _, e := range c.Entries {
		if e.Kind == KindSimple {
			items = append(items, *e.Item)
		}
	}
	return items
}

// ProductIDs collects every product id present in the cart, bundle
// sub-products included. The shipping advisor excludes these.
func (c Cart) ProductIDs() map[uuid.UUID]struct{} {
	ids := map[uuid.UUID]struct{}{}
	for _, e := range c.Entries {
		switch e.Kind {
		case KindSimple:
			ids[e.Item.Key.ProductID] = struct{}{}
		case KindBundle:
			for _, sub := range e.Bundle.SubItems {
				ids[sub.ProductID] = struct{}{}
			}
		}
	}
	return ids
}

// ContentHash is a stable fnv-1a hash over the ordered (id, quantity)
// pairs of the cart. It gates recomputation of the shipping advisor and
// the debounced pricing refresh: equal hash, no new network round-trip.
func (c Cart) ContentHash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 4)
	for _, e := range c.Entries {
		switch e.Kind {
		case KindSimple:
			id := e.Item.Key.ProductID
			h.Write(id[:])
			binary.BigEndian.PutUint32(buf, uint32(e.Item.Quantity))
			h.Write(buf)
		case KindBundle:
			id := e.Bundle.BundleID
			h.Write(id[:])
			binary.BigEndian.PutUint32(buf, uint32(e.Bundle.Quantity))
			h.Write(buf)
		}
	}
	return h.Sum64()
}

// Clone returns a deep copy, so snapshot readers can never mutate the
// store-owned cart.
func (c Cart) Clone() Cart {
	entries := make([]Entry, len(c.Entries))
	for i, e := range c.Entries {
		cloned := Entry{Kind: e.Kind}
		if e.Item != nil {
			item := *e.Item
			cloned.Item = &item
		}
		if e.Bundle != nil {
			bundle := *e.Bundle
			bundle.SubItems = append([]ResolvedSubItem{}, e.Bundle.SubItems...)
			cloned.Bundle = &bundle
		}
		entries[i] = cloned
	}
	return Cart{Entries: entries}
}
