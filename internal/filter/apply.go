package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dyluth/storefront/pkg/shop"
)

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	SortFeatured  SortKey = "featured"   // catalog order
	SortPriceAsc  SortKey = "price-asc"  // cheapest first
	SortPriceDesc SortKey = "price-desc" // most expensive first
	SortNewest    SortKey = "newest"     // most recently created first, undated last
)

// SortKeys lists the accepted keys in display order.
var SortKeys = []SortKey{SortFeatured, SortPriceAsc, SortPriceDesc, SortNewest}

// ParseSortKey validates a user-supplied sort key. Empty means featured.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortFeatured, nil
	}
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, key) {
		return key, nil
	}
	return "", fmt.Errorf("unknown sort key %q (expected one of: featured, price-asc, price-desc, newest)", s)
}

// Pipeline applies a selection over a fixed set of facets.
type Pipeline struct {
	Facets Facets
}

// Apply returns the visible list: products matching every constrained group,
// ordered by key. The input slice is never modified and the result depends
// only on the arguments.
func (p Pipeline) Apply(products []shop.Product, sel Selection, key SortKey) []shop.Product {
	visible := make([]shop.Product, 0, len(products))
	for i := range products {
		if p.matches(&products[i], sel) {
			visible = append(visible, products[i])
		}
	}

	sortProducts(visible, key)
	return visible
}

func (p Pipeline) matches(product *shop.Product, sel Selection) bool {
	for _, group := range sel.Groups() {
		facet, ok := p.Facets.Lookup(group)
		if !ok {
			// Unknown group: its labels match nothing
			return false
		}
		if !facet.Matches(product, sel.Labels(group)) {
			return false
		}
	}
	return true
}

// Apply runs the default storefront facets.
func Apply(products []shop.Product, sel Selection, key SortKey) []shop.Product {
	return Pipeline{Facets: DefaultFacets()}.Apply(products, sel, key)
}

func sortProducts(products []shop.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b shop.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b shop.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortNewest:
		slices.SortStableFunc(products, func(a, b shop.Product) int {
			switch {
			case a.CreatedAt == nil && b.CreatedAt == nil:
				return 0
			case a.CreatedAt == nil:
				return 1
			case b.CreatedAt == nil:
				return -1
			}
			return b.CreatedAt.Compare(*a.CreatedAt)
		})
	}
}
