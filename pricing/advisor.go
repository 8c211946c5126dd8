package pricing

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/adiwardana/commerce/cart/pkg/entry"
	"github.com/adiwardana/commerce/catalog"
)

const maxSuggestions = 3

var flexibilityRate = decimal.NewFromFloat(0.3)

// Suggestion is one catalog product proposed to close the remaining
// free-shipping gap.
type Suggestion struct {
	Product  catalog.Product `json:"product"`
	Distance decimal.Decimal `json:"distance"`
}

// Advisor proposes up to three products whose price would close the
// free-shipping gap. Results are keyed by the cart's content hash so a
// re-render with an unchanged item set costs no catalog scan.
type Advisor struct {
	flexCap decimal.Decimal

	mu          sync.Mutex
	lastHash    uint64
	lastValid   bool
	suggestions []Suggestion
}

func NewAdvisor(flexCap decimal.Decimal) *Advisor {
	return &Advisor{flexCap: flexCap}
}

// Suggest ranks candidates by absolute distance between the remaining
// gap and the candidate price, closest first, ties stable in catalog
// order. Products already in the cart are excluded, bundle sub-products
// included.
func (a *Advisor) Suggest(
	cart entry.Cart,
	remaining decimal.Decimal,
	snapshot catalog.Snapshot,
) []Suggestion {
	a.mu.Lock()
	defer a.mu.Unlock()

	hash := cart.ContentHash()
	if a.lastValid && hash == a.lastHash {
		return a.suggestions
	}

	flexibility := remaining.Mul(flexibilityRate)
	if flexibility.GreaterThan(a.flexCap) {
		flexibility = a.flexCap
	}
	limit := remaining.Add(flexibility)

	inCart := cart.ProductIDs()
	suggestions := []Suggestion{}
	for _, p := range snapshot.Products {
		if _, ok := inCart[p.ID]; ok {
			continue
		}
		if p.BasePrice.GreaterThan(limit) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Product:  p,
			Distance: remaining.Sub(p.BasePrice).Abs(),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Distance.LessThan(suggestions[j].Distance)
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	a.lastHash = hash
	a.lastValid = true
	a.suggestions = suggestions
	return suggestions
}
