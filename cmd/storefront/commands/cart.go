package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dyluth/storefront/internal/app"
	"github.com/dyluth/storefront/internal/cart"
	"github.com/dyluth/storefront/internal/format"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/internal/watch"
	"github.com/spf13/cobra"
)

var (
	addQuantity   int
	watchInterval time.Duration
	watchLimit    int
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change your cart",
	Long: `Show your cart as the server holds it.

Every change is sent to the server first and the cart is then reloaded,
so what you see is always the server's view. Products that can no longer
be loaded are hidden and reported.

Product IDs may be given in the short form printed in tables.`,
	Args: cobra.NoArgs,
	RunE: runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to your cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartIncCmd = &cobra.Command{
	Use:   "inc <product-id>",
	Short: "Raise a cart line by one",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartStep(1),
}

var cartDecCmd = &cobra.Command{
	Use:   "dec <product-id>",
	Short: "Lower a cart line by one",
	Long: `Lower a cart line by one. A line at quantity 1 is left alone;
use 'storefront cart remove' to drop it.`,
	Args: cobra.ExactArgs(1),
	RunE: runCartStep(-1),
}

var cartRemoveCmd = &cobra.Command{
	Use:     "remove <product-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a product from your cart",
	Args:    cobra.ExactArgs(1),
	RunE:    runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty your cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var cartWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow your cart as it changes",
	Long: `Reload the cart periodically and print it whenever it changes, e.g.
while shopping from another device. Press Ctrl-C to stop.`,
	Args: cobra.NoArgs,
	RunE: runCartWatch,
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "Number of units to add")
	cartWatchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultInterval, "Time between reloads")
	cartWatchCmd.Flags().IntVar(&watchLimit, "limit", 0, "Stop after this many updates (0 = never)")

	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartIncCmd, cartDecCmd, cartRemoveCmd, cartClearCmd, cartWatchCmd)
	rootCmd.AddCommand(cartCmd)
}

// withCart opens the app, checks the session and output mode, and runs fn.
func withCart(cmd *cobra.Command, fn func(a *app.App, mode format.Mode) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if _, err := requireUser(a); err != nil {
		return err
	}
	mode, err := outputMode(a)
	if err != nil {
		return err
	}
	return fn(a, mode)
}

func showCart(a *app.App, mode format.Mode) error {
	return renderCart(mode, a.Cart.Items(), a.Cart.Total(), a.Cart.Dropped())
}

func runCartShow(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app.App, mode format.Mode) error {
		if err := a.Cart.Reconcile(cmd.Context()); err != nil {
			return backendError(a, "load your cart", err)
		}
		return showCart(a, mode)
	})
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app.App, mode format.Mode) error {
		id, err := resolveCatalogID(cmd, a, args[0])
		if err != nil {
			return err
		}

		fresh, err := mutationResult(a, "add to cart", a.Cart.Add(cmd.Context(), id, addQuantity))
		if err != nil {
			return err
		}
		if mode == format.Table {
			printer.Success("Added %d × %s\n", addQuantity, format.ShortID(id))
		}
		if fresh {
			return showCart(a, mode)
		}
		return nil
	})
}

func runCartSet(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return printer.Error("invalid quantity", fmt.Sprintf("%q is not a whole number", args[1]), nil)
	}

	return withCart(cmd, func(a *app.App, mode format.Mode) error {
		id, err := resolveCartID(cmd, a, args[0], false)
		if err != nil {
			return err
		}

		fresh, err := mutationResult(a, "update quantity", a.Cart.UpdateQuantity(cmd.Context(), id, quantity))
		if err != nil {
			return err
		}
		if fresh {
			return showCart(a, mode)
		}
		return nil
	})
}

func runCartStep(delta int) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(a *app.App, mode format.Mode) error {
			id, err := resolveCartID(cmd, a, args[0], false)
			if err != nil {
				return err
			}

			var stepErr error
			if delta > 0 {
				stepErr = a.Cart.Increment(cmd.Context(), id)
			} else {
				stepErr = a.Cart.Decrement(cmd.Context(), id)
			}
			if errors.Is(stepErr, cart.ErrInvalidQuantity) {
				printer.Notice("Quantity is already 1", "Use 'storefront cart remove "+format.ShortID(id)+"' to drop the line.")
				return showCart(a, mode)
			}

			fresh, err := mutationResult(a, "update quantity", stepErr)
			if err != nil {
				return err
			}
			if fresh {
				return showCart(a, mode)
			}
			return nil
		})
	}
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app.App, mode format.Mode) error {
		id, err := resolveCartID(cmd, a, args[0], true)
		if err != nil {
			return err
		}

		fresh, err := mutationResult(a, "remove from cart", a.Cart.Remove(cmd.Context(), id))
		if err != nil {
			return err
		}
		if mode == format.Table {
			printer.Success("Removed %s\n", format.ShortID(id))
		}
		if fresh {
			return showCart(a, mode)
		}
		return nil
	})
}

func runCartClear(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app.App, mode format.Mode) error {
		if err := a.Cart.Clear(cmd.Context()); err != nil {
			return backendError(a, "clear your cart", err)
		}
		if mode == format.Table {
			printer.Success("Cart cleared\n")
		}
		return showCart(a, mode)
	})
}

func runCartWatch(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app.App, mode format.Mode) error {
		opts := watch.Options{
			Interval: watchInterval,
			Limit:    watchLimit,
			OnError: func(err error) {
				printer.Warning("Cart reload failed, retrying: %v\n", err)
			},
		}

		err := watch.PollCart(cmd.Context(), a.Cart, opts, func(s watch.Snapshot) {
			if mode == format.Table {
				printer.Step("%s\n", s.At.Format(time.TimeOnly))
			}
			if err := renderCart(mode, s.Items, s.Total, s.Dropped); err != nil {
				a.Logger.Warn("failed to render cart", slog.String("error", err.Error()))
			}
			if mode == format.Table {
				printer.Println()
			}
		})

		switch {
		case err == nil, cmd.Context().Err() != nil:
			// Limit reached or Ctrl-C
			return nil
		case errors.Is(err, cart.ErrSignInRequired):
			return printer.SignInRequired(false)
		}
		return backendError(a, "watch your cart", err)
	})
}
