// Package filter derives the visible product list from the full catalog,
// a facet selection and a sort key.
//
// Within one facet group the selected bands are ORed together; across groups
// the results are ANDed. A group with nothing selected does not constrain.
package filter

import (
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
)

// Facet group names.
const (
	GroupPrice  = "PRICE"
	GroupRating = "RATING"
)

// Band is a labelled closed interval. An invalid Max means no upper bound.
type Band struct {
	Label string
	Min   decimal.Decimal
	Max   decimal.NullDecimal
}

// Contains reports whether v lies within the band, bounds included.
func (b Band) Contains(v decimal.Decimal) bool {
	if v.LessThan(b.Min) {
		return false
	}
	return !b.Max.Valid || v.LessThanOrEqual(b.Max.Decimal)
}

// Facet is one filter group: its bands and the product value they test.
type Facet struct {
	Group string
	Bands []Band
	Value func(p *shop.Product) decimal.Decimal
}

// Band returns the band with the given label.
func (f *Facet) Band(label string) (Band, bool) {
	for _, b := range f.Bands {
		if b.Label == label {
			return b, true
		}
	}
	return Band{}, false
}

// Matches returns true if any of the labelled bands contains the product's value.
// Labels the facet does not define match nothing.
func (f *Facet) Matches(p *shop.Product, labels []string) bool {
	v := f.Value(p)
	for _, label := range labels {
		if b, ok := f.Band(label); ok && b.Contains(v) {
			return true
		}
	}
	return false
}

// Facets is an ordered set of facet groups.
type Facets []Facet

// Lookup returns the facet for group.
func (fs Facets) Lookup(group string) (*Facet, bool) {
	for i := range fs {
		if fs[i].Group == group {
			return &fs[i], true
		}
	}
	return nil, false
}

func bounded(label string, min, max int64) Band {
	return Band{
		Label: label,
		Min:   decimal.NewFromInt(min),
		Max:   decimal.NewNullDecimal(decimal.NewFromInt(max)),
	}
}

func productPrice(p *shop.Product) decimal.Decimal {
	return p.Price
}

func productRating(p *shop.Product) decimal.Decimal {
	return decimal.NewFromFloat(p.Rating)
}

// DefaultFacets returns the storefront's price and rating groups.
func DefaultFacets() Facets {
	return Facets{
		{
			Group: GroupPrice,
			Bands: []Band{
				bounded("Under ₹1000", 0, 999),
				bounded("₹1000 - ₹4999", 1000, 4999),
				bounded("₹5000 - ₹9999", 5000, 9999),
				{Label: "Above ₹10000", Min: decimal.NewFromInt(10000)},
			},
			Value: productPrice,
		},
		{
			Group: GroupRating,
			Bands: []Band{
				bounded("4 Stars & Above", 4, 5),
				bounded("3 Stars & Above", 3, 5),
				bounded("2 Stars & Above", 2, 5),
				bounded("1 Star & Above", 1, 5),
			},
			Value: productRating,
		},
	}
}
