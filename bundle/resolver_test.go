package bundle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwardana/commerce/catalog"
)

var (
	teeID    = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	chinoID  = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")
	jacketID = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")
)

func weekendSet() catalog.BundleDefinition {
	return catalog.BundleDefinition{
		ID:          uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		Name:        "Weekend Set",
		BundlePrice: decimal.NewFromFloat(119.00),
		SubProducts: []catalog.Product{
			{
				ID:        teeID,
				Name:      "Crew Tee",
				BasePrice: decimal.NewFromFloat(24.90),
				Variants: []catalog.Variant{
					{Size: "m", Color: "navy"},
					{Size: "xl", Color: "navy", PriceOverride: decimal.NewFromFloat(27.90)},
				},
			},
			{
				ID:        chinoID,
				Name:      "Slim Chino",
				BasePrice: decimal.NewFromFloat(59.00),
				Variants: []catalog.Variant{
					{Size: "32", Color: "khaki"},
				},
			},
			{
				ID:        jacketID,
				Name:      "Field Jacket",
				BasePrice: decimal.NewFromFloat(98.00),
				Variants: []catalog.Variant{
					{Size: "l", Color: "olive"},
				},
			},
		},
	}
}

func TestResolveAllSelectionsComplete(t *testing.T) {
	resolved, err := Resolve(weekendSet(), map[uuid.UUID]Selection{
		teeID:    {Size: "m", Color: "navy"},
		chinoID:  {Size: "32", Color: "khaki", Quantity: 2},
		jacketID: {Size: "l", Color: "olive"},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	// definition order is preserved regardless of map iteration
	assert.Equal(t, teeID, resolved[0].ProductID)
	assert.Equal(t, chinoID, resolved[1].ProductID)
	assert.Equal(t, jacketID, resolved[2].ProductID)

	// quantity defaults to 1 when the selection leaves it zero
	assert.Equal(t, int32(1), resolved[0].Quantity)
	assert.Equal(t, int32(2), resolved[1].Quantity)
}

func TestResolveUsesVariantOverridePrice(t *testing.T) {
	resolved, err := Resolve(weekendSet(), map[uuid.UUID]Selection{
		teeID:    {Size: "xl", Color: "navy"},
		chinoID:  {Size: "32", Color: "khaki"},
		jacketID: {Size: "l", Color: "olive"},
	})
	require.NoError(t, err)

	assert.True(t, resolved[0].UnitPrice.Equal(decimal.NewFromFloat(27.90)))
	assert.True(t, resolved[1].UnitPrice.Equal(decimal.NewFromFloat(59.00)))
}

func TestResolveReportsFirstIncompleteSubProduct(t *testing.T) {
	tests := []struct {
		name       string
		selections map[uuid.UUID]Selection
		wantID     uuid.UUID
		wantName   string
	}{
		{
			name: "missing selection",
			selections: map[uuid.UUID]Selection{
				teeID:    {Size: "m", Color: "navy"},
				jacketID: {Size: "l", Color: "olive"},
			},
			wantID:   chinoID,
			wantName: "Slim Chino",
		},
		{
			name: "partial selection counts as missing",
			selections: map[uuid.UUID]Selection{
				teeID:    {Size: "m"},
				chinoID:  {Size: "32", Color: "khaki"},
				jacketID: {Size: "l", Color: "olive"},
			},
			wantID:   teeID,
			wantName: "Crew Tee",
		},
		{
			name: "first incomplete wins in definition order",
			selections: map[uuid.UUID]Selection{
				jacketID: {Size: "l", Color: "olive"},
			},
			wantID:   teeID,
			wantName: "Crew Tee",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := Resolve(weekendSet(), tt.selections)
			require.Nil(t, resolved)

			incomplete := &IncompleteSelectionError{}
			require.ErrorAs(t, err, &incomplete)
			assert.Equal(t, tt.wantID, incomplete.SubProductID)
			assert.Equal(t, tt.wantName, incomplete.SubProductName)
		})
	}
}
