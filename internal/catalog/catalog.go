// Package catalog holds the product list for one page visit and the views
// derived from it: categories, category pages and name search.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/storefront/pkg/shop"
)

// AllCategories is the pseudo-category that selects every product.
const AllCategories = "all"

// Source provides the full product list.
// *shop.Client and *RedisCache both satisfy it.
type Source interface {
	ListProducts(ctx context.Context) ([]shop.Product, error)
}

// Category is a distinct category with the first product seen in it,
// used as the category's thumbnail.
type Category struct {
	Name      string
	Thumbnail shop.Product
}

// Catalog is an immutable snapshot of the product list.
type Catalog struct {
	products   []shop.Product
	categories []Category
}

// Load fetches the product list once and derives its categories.
func Load(ctx context.Context, source Source) (*Catalog, error) {
	products, err := source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return New(products), nil
}

// New builds a catalog from an already fetched product list.
func New(products []shop.Product) *Catalog {
	c := &Catalog{products: append([]shop.Product(nil), products...)}

	seen := make(map[string]bool)
	for _, p := range c.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		c.categories = append(c.categories, Category{Name: p.Category, Thumbnail: p})
	}
	return c
}

// Products returns a copy of the full list in catalog order.
func (c *Catalog) Products() []shop.Product {
	return append([]shop.Product(nil), c.products...)
}

// Categories returns distinct categories in first-seen order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Find returns the product with the exact id.
func (c *Catalog) Find(id string) (shop.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return shop.Product{}, false
}

// IDs returns every product id in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.products))
	for _, p := range c.products {
		ids = append(ids, p.ID)
	}
	return ids
}

// InCategory returns products whose category equals name, ignoring case.
// The name "all" returns everything.
func (c *Catalog) InCategory(name string) []shop.Product {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, AllCategories) {
		return c.Products()
	}

	var out []shop.Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, name) {
			out = append(out, p)
		}
	}
	return out
}

// Search returns products whose name contains query, ignoring case.
// An empty query returns nothing.
func (c *Catalog) Search(query string) []shop.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var out []shop.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}
