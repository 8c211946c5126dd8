package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/catalog"
)

func product(name string, price float64) catalog.Product {
	return catalog.Product{
		ID:        uuid.New(),
		Name:      name,
		BasePrice: decimal.NewFromFloat(price),
	}
}

func TestSuggestExcludesCartProducts(t *testing.T) {
	inCart := product("Crew Tee", 18)
	snapshot := catalog.Snapshot{Products: []catalog.Product{
		inCart,
		product("Beanie", 15),
		product("Socks", 12),
	}}
	cart := entry.Cart{Entries: []entry.Entry{
		entry.NewSimple(entry.SimpleItem{
			Key:       entry.VariantKey{ProductID: inCart.ID, Size: "m", Color: "navy"},
			Name:      inCart.Name,
			UnitPrice: inCart.BasePrice,
			Quantity:  1,
		}),
	}}

	advisor := NewAdvisor(decimal.NewFromInt(15))
	suggestions := advisor.Suggest(cart, decimal.NewFromInt(20), snapshot)

	for _, s := range suggestions {
		assert.NotEqual(t, inCart.ID, s.Product.ID)
	}
}

func TestSuggestExcludesBundleSubProducts(t *testing.T) {
	subProduct := product("Field Jacket", 19)
	snapshot := catalog.Snapshot{Products: []catalog.Product{subProduct, product("Beanie", 15)}}
	cart := entry.Cart{Entries: []entry.Entry{
		entry.NewBundle(entry.BundleItem{
			BundleID:  uuid.New(),
			Name:      "Weekend Set",
			UnitPrice: decimal.NewFromInt(80),
			Quantity:  1,
			SubItems: []entry.ResolvedSubItem{
				{ProductID: subProduct.ID, Size: "l", Color: "olive", Quantity: 1},
			},
		}),
	}}

	advisor := NewAdvisor(decimal.NewFromInt(15))
	suggestions := advisor.Suggest(cart, decimal.NewFromInt(20), snapshot)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Beanie", suggestions[0].Product.Name)
}

func TestSuggestOrderedByDistanceAndCapped(t *testing.T) {
	snapshot := catalog.Snapshot{Products: []catalog.Product{
		product("Socks", 12),
		product("Beanie", 19),
		product("Cap", 22),
		product("Belt", 25),
		product("Scarf", 21),
	}}

	// remaining 20, flexibility min(20*0.3, 15) = 6, so the limit is 26
	advisor := NewAdvisor(decimal.NewFromInt(15))
	suggestions := advisor.Suggest(entry.Cart{}, decimal.NewFromInt(20), snapshot)

	require.Len(t, suggestions, 3)
	assert.Equal(t, "Beanie", suggestions[0].Product.Name)
	assert.Equal(t, "Scarf", suggestions[1].Product.Name)
	assert.Equal(t, "Cap", suggestions[2].Product.Name)
	for i := 1; i < len(suggestions); i++ {
		assert.False(t, suggestions[i].Distance.LessThan(suggestions[i-1].Distance))
	}
}

func TestSuggestFlexibilityCapped(t *testing.T) {
	snapshot := catalog.Snapshot{Products: []catalog.Product{
		product("Belt", 109),
		product("Cap", 112),
	}}

	// remaining 100 would allow 30 flexibility uncapped; the cap of 10
	// keeps the 112 candidate out
	advisor := NewAdvisor(decimal.NewFromInt(10))
	suggestions := advisor.Suggest(entry.Cart{}, decimal.NewFromInt(100), snapshot)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Belt", suggestions[0].Product.Name)
}

func TestSuggestReusesResultForUnchangedCart(t *testing.T) {
	beanie := product("Beanie", 15)
	cart := entry.Cart{Entries: []entry.Entry{
		entry.NewSimple(entry.SimpleItem{
			Key:       entry.VariantKey{ProductID: uuid.New(), Size: "m", Color: "navy"},
			UnitPrice: decimal.NewFromInt(180),
			Quantity:  1,
		}),
	}}

	advisor := NewAdvisor(decimal.NewFromInt(15))
	first := advisor.Suggest(cart, decimal.NewFromInt(20), catalog.Snapshot{
		Products: []catalog.Product{beanie},
	})
	require.Len(t, first, 1)

	// same item identity and quantities: the catalog is not rescanned
	// even though this snapshot would yield nothing
	second := advisor.Suggest(cart, decimal.NewFromInt(20), catalog.Snapshot{})
	assert.Equal(t, first, second)

	// a quantity change invalidates the gate
	cart.Entries[0].Item.Quantity = 2
	third := advisor.Suggest(cart, decimal.NewFromInt(20), catalog.Snapshot{})
	assert.Empty(t, third)
}
