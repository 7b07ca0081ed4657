package commands

import (
	"time"

	"github.com/dyluth/storefront/internal/format"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/internal/timespec"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/spf13/cobra"
)

var (
	ordersSince string
	ordersUntil string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your past orders",
	Long: `List your order history.

--since and --until take an RFC3339 time, a date (2006-01-02) or a
duration back from now (90m, 36h, 7d, 2d12h). Orders whose date cannot be
read are only listed when no window is given.`,
	Example: `  storefront orders
  storefront orders --since 30d
  storefront orders --since 2025-01-01 --until 2025-02-01 -o json`,
	Args: cobra.NoArgs,
	RunE: runOrders,
}

func init() {
	ordersCmd.Flags().StringVar(&ordersSince, "since", "", "Only orders placed at or after this time")
	ordersCmd.Flags().StringVar(&ordersUntil, "until", "", "Only orders placed before this time")
	rootCmd.AddCommand(ordersCmd)
}

func runOrders(cmd *cobra.Command, args []string) error {
	window, err := timespec.ParseRange(ordersSince, ordersUntil, time.Now())
	if err != nil {
		return printer.Error("invalid time window", err.Error(),
			[]string{"Use a duration like 7d, a date like 2025-01-31, or an RFC3339 time"})
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	userID, err := requireUser(a)
	if err != nil {
		return err
	}
	mode, err := outputMode(a)
	if err != nil {
		return err
	}

	orders, err := a.Client.ListOrders(cmd.Context(), userID)
	if err != nil {
		return backendError(a, "load your orders", err)
	}
	orders = ordersWithin(orders, window)

	switch mode {
	case format.JSONL:
		return format.WriteJSONL(printer.Out, orders)
	case format.JSON:
		return format.WriteJSON(printer.Out, orders)
	}
	format.OrderTable(printer.Out, orders)
	return nil
}

func ordersWithin(orders []shop.Order, window timespec.Range) []shop.Order {
	if window.IsZero() {
		return orders
	}
	kept := make([]shop.Order, 0, len(orders))
	for _, o := range orders {
		if at, ok := o.PlacedAt(); ok && window.Contains(at) {
			kept = append(kept, o)
		}
	}
	return kept
}
