package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dyluth/storefront/internal/cart"
	"github.com/shopspring/decimal"
)

// EmptyCartMessage is shown instead of a table when the cart has no lines.
const EmptyCartMessage = "Your cart is empty."

// ContinueShoppingHint points the user back to the catalog.
const ContinueShoppingHint = "Continue shopping: storefront catalog"

// CartTable writes cart lines with quantities, subtotals and the order total.
// An empty cart prints EmptyCartMessage and the continue-shopping hint.
func CartTable(w io.Writer, items []cart.LineItem, total decimal.Decimal) int {
	if len(items) == 0 {
		fmt.Fprintln(w, EmptyCartMessage)
		fmt.Fprintln(w, ContinueShoppingHint)
		return 0
	}

	row(w, cell("ID", 8), cell("PRODUCT", 32), rcell("PRICE", 12), rcell("QTY", 4), rcell("SUBTOTAL", 12))
	row(w, rule(8, 32, 12, 4, 12)...)

	units := 0
	for _, item := range items {
		units += item.Quantity
		row(w,
			cell(ShortID(item.Product.ID), 8),
			cell(item.Product.Name, 32),
			rcell(Money(item.Product.Price), 12),
			rcell(strconv.Itoa(item.Quantity), 4),
			rcell(Money(item.Subtotal()), 12),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d %s, %d %s\n",
		len(items), plural(len(items), "line", "lines"),
		units, plural(units, "item", "items"))
	fmt.Fprintf(w, "Total: %s\n", Money(total))
	return len(items)
}

// DroppedNotice describes cart lines that could not be shown.
func DroppedNotice(dropped []string) string {
	if len(dropped) == 0 {
		return ""
	}
	return fmt.Sprintf("%d cart %s could not be loaded and %s hidden: %v",
		len(dropped), plural(len(dropped), "item", "items"),
		plural(len(dropped), "is", "are"), dropped)
}
