package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dyluth/storefront/internal/catalog"
	"github.com/dyluth/storefront/pkg/shop"
)

// ProductTable writes products with ID, NAME, CATEGORY, PRICE, RATING and STOCK columns.
// Returns the number of products written.
func ProductTable(w io.Writer, products []shop.Product, emptyMessage string) int {
	if len(products) == 0 {
		fmt.Fprintln(w, emptyMessage)
		return 0
	}

	row(w, cell("ID", 8), cell("NAME", 32), cell("CATEGORY", 14), rcell("PRICE", 12), rcell("RATING", 6), rcell("STOCK", 5))
	row(w, rule(8, 32, 14, 12, 6, 5)...)

	for _, p := range products {
		row(w,
			cell(ShortID(p.ID), 8),
			cell(p.Name, 32),
			cell(p.Category, 14),
			rcell(Money(p.Price), 12),
			rcell(formatRating(p.Rating), 6),
			rcell(strconv.Itoa(int(p.InStock)), 5),
		)
	}

	fmt.Fprintf(w, "\n%d %s\n", len(products), plural(len(products), "product", "products"))
	return len(products)
}

// CategoryTable writes each category with the product used as its thumbnail.
func CategoryTable(w io.Writer, categories []catalog.Category) int {
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories found.")
		return 0
	}

	row(w, cell("CATEGORY", 20), cell("FEATURED", 32), cell("IMAGE", 40))
	row(w, rule(20, 32, 40)...)
	for _, c := range categories {
		row(w, cell(c.Name, 20), cell(c.Thumbnail.Name, 32), cell(c.Thumbnail.Image, 40))
	}

	fmt.Fprintf(w, "\n%d %s\n", len(categories), plural(len(categories), "category", "categories"))
	return len(categories)
}

// ProductDetail writes one product as labelled lines.
func ProductDetail(w io.Writer, p shop.Product) {
	fmt.Fprintf(w, "%s\n", p.Name)
	fmt.Fprintf(w, "  ID:        %s\n", p.ID)
	fmt.Fprintf(w, "  Code:      %s\n", dash(p.ProductCode))
	fmt.Fprintf(w, "  Category:  %s\n", dash(p.Category))
	fmt.Fprintf(w, "  Price:     %s\n", Money(p.Price))
	fmt.Fprintf(w, "  Rating:    %s\n", formatRating(p.Rating))
	fmt.Fprintf(w, "  In stock:  %d (sold %d)\n", p.InStock, p.Sold)
	if len(p.Sizes) > 0 {
		fmt.Fprintf(w, "  Sizes:     %v\n", p.Sizes)
	}
	if p.Material != "" || p.Color != "" {
		fmt.Fprintf(w, "  Material:  %s / %s\n", dash(p.Material), dash(p.Color))
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

func formatRating(r float64) string {
	if r <= 0 {
		return "-"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
