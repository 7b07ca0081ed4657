package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dyluth/storefront/pkg/shop"
)

// OrderTable writes orders with ORDER, PLACED, ITEMS, TOTAL and TRACKING columns.
func OrderTable(w io.Writer, orders []shop.Order) int {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders found.")
		fmt.Fprintln(w, ContinueShoppingHint)
		return 0
	}

	row(w, cell("ORDER", 14), cell("PLACED", 16), rcell("ITEMS", 5), rcell("TOTAL", 12), cell("TRACKING", 20))
	row(w, rule(14, 16, 5, 12, 20)...)

	for _, o := range orders {
		id := o.OrderID
		if id == "" {
			id = ShortID(o.ID)
		}
		row(w,
			cell(id, 14),
			cell(placed(o), 16),
			rcell(strconv.Itoa(itemCount(o)), 5),
			rcell(Money(o.Total), 12),
			cell(o.TrackingID, 20),
		)
	}

	fmt.Fprintf(w, "\n%d %s\n", len(orders), plural(len(orders), "order", "orders"))
	return len(orders)
}

func placed(o shop.Order) string {
	if t, ok := o.PlacedAt(); ok {
		return t.Format("2006-01-02 15:04")
	}
	return o.Date
}

func itemCount(o shop.Order) int {
	if len(o.Products) > 0 {
		return len(o.Products)
	}
	return len(o.ProductIDs)
}

// UserDetail writes a user profile as labelled lines.
func UserDetail(w io.Writer, u *shop.User) {
	fmt.Fprintf(w, "%s\n", dash(u.Name))
	fmt.Fprintf(w, "  User ID:  %s\n", dash(u.UserID))
	fmt.Fprintf(w, "  Email:    %s\n", dash(u.Email))
	fmt.Fprintf(w, "  Phone:    %s\n", dash(u.Phone))
	fmt.Fprintf(w, "  Status:   %s\n", dash(u.AccountStatus))
}
