package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dyluth/storefront/internal/app"
	"github.com/dyluth/storefront/internal/cart"
	"github.com/dyluth/storefront/internal/config"
	"github.com/dyluth/storefront/internal/format"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/internal/resolver"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// openApp resolves configuration and wires the components for one command.
// The caller must closeApp the result.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, _, err := config.Resolve(configPath)
	if err != nil {
		return nil, printer.Error(
			"failed to load configuration",
			err.Error(),
			[]string{
				"Run 'storefront init' to create storefront.yml",
				"Pass --config with the path to an existing file",
			},
		)
	}

	a, err := app.New(cmd.Context(), cfg, app.Options{Version: version, Ephemeral: ephemeral})
	if err != nil {
		return nil, printer.ErrorWithContext(
			"failed to start",
			err.Error(),
			map[string]string{"Backend": cfg.Backend.URL, "Session store": cfg.Session.Store},
			nil,
		)
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(context.Background()); err != nil {
		a.Logger.Warn("failed to release resources", slog.String("error", err.Error()))
	}
}

// outputMode is --output if given, otherwise the configured default.
func outputMode(a *app.App) (format.Mode, error) {
	s := a.Config.Output
	if outputFormat != "" {
		s = outputFormat
	}
	mode, err := format.ParseMode(s)
	if err != nil {
		return "", printer.Error("invalid output format", err.Error(), []string{"Use --output table, jsonl or json"})
	}
	return mode, nil
}

// requireUser returns the signed-in shopper or the sign-in error.
func requireUser(a *app.App) (string, error) {
	userID, ok := a.User.Current()
	if !ok {
		return "", printer.SignInRequired(false)
	}
	return userID, nil
}

// requireSeller returns the signed-in seller or the sign-in error.
func requireSeller(a *app.App) (string, error) {
	sellerID, ok := a.Seller.Current()
	if !ok {
		return "", printer.SignInRequired(true)
	}
	return sellerID, nil
}

// backendError turns a failed backend call into CLI output.
// Business rejections are notices carrying the server's message; everything
// else is a full error with the backend address.
func backendError(a *app.App, action string, err error) error {
	var rejected *shop.RejectedError
	switch {
	case errors.Is(err, cart.ErrSignInRequired):
		return printer.SignInRequired(false)
	case errors.Is(err, cart.ErrInvalidQuantity):
		return printer.Error("invalid quantity", err.Error(),
			[]string{"Use 'storefront cart remove <id>' to drop a line"})
	case errors.Is(err, cart.ErrNotInCart):
		return printer.Error("product is not in your cart", "", []string{"Run 'storefront cart' to list cart lines"})
	case errors.As(err, &rejected):
		printer.Notice(fmt.Sprintf("Could not %s", action), rejected.Message)
		return fmt.Errorf("failed to %s: %w", action, err)
	case errors.Is(err, context.Canceled):
		return err
	case shop.IsNotFound(err):
		return printer.Error(fmt.Sprintf("failed to %s", action), "The backend has no matching record.", nil)
	}
	return printer.ErrorWithContext(
		fmt.Sprintf("failed to %s", action),
		err.Error(),
		map[string]string{"Backend": a.Client.BaseURL()},
		[]string{"Check that the backend is running and backend.url is correct"},
	)
}

// mutationResult reports a cart mutation. A stale refresh is only a warning:
// the server already applied the change.
func mutationResult(a *app.App, action string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, cart.ErrStaleCart) {
		printer.Warning("%v\n", err)
		return false, nil
	}
	return false, backendError(a, action, err)
}

// resolveCatalogID expands a (short) product id against the catalog.
func resolveCatalogID(cmd *cobra.Command, a *app.App, arg string) (string, error) {
	c, err := a.LoadCatalog(cmd.Context())
	if err != nil {
		return "", backendError(a, "load the catalog", err)
	}
	id, err := resolver.Resolve(arg, c.IDs())
	if err != nil {
		return "", idError(err)
	}
	return id, nil
}

// resolveCartID expands a (short) product id against the reconciled cart.
// With passthrough, an id the cart does not hold is returned unchanged.
func resolveCartID(cmd *cobra.Command, a *app.App, arg string, passthrough bool) (string, error) {
	if err := a.Cart.Reconcile(cmd.Context()); err != nil {
		return "", backendError(a, "load your cart", err)
	}

	ids := make([]string, 0, len(a.Cart.Items())+len(a.Cart.Dropped()))
	for _, item := range a.Cart.Items() {
		ids = append(ids, item.Product.ID)
	}
	ids = append(ids, a.Cart.Dropped()...)

	id, err := resolver.Resolve(arg, ids)
	if err != nil {
		var notFound *resolver.NotFoundError
		if passthrough && errors.As(err, &notFound) {
			return arg, nil
		}
		return "", idError(err)
	}
	return id, nil
}

func idError(err error) error {
	var ambiguous *resolver.AmbiguousError
	var notFound *resolver.NotFoundError
	switch {
	case errors.As(err, &ambiguous):
		return printer.Error("ambiguous product ID", ambiguous.Describe(), nil)
	case errors.As(err, &notFound):
		return printer.Error("product not found", notFound.Error(),
			[]string{"Run 'storefront catalog' to list product IDs"})
	}
	return printer.Error("invalid product ID", err.Error(), nil)
}

// cartLine is the machine-readable form of one cart line.
type cartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Lines   []cartLine      `json:"lines"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Dropped []string        `json:"dropped,omitempty"`
}

func cartLines(items []cart.LineItem) []cartLine {
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return lines
}

// renderCart writes the synchronizer's current lines in the chosen mode.
func renderCart(mode format.Mode, items []cart.LineItem, total decimal.Decimal, dropped []string) error {
	switch mode {
	case format.JSONL:
		return format.WriteJSONL(printer.Out, cartLines(items))
	case format.JSON:
		count := 0
		for _, item := range items {
			count += item.Quantity
		}
		return format.WriteJSON(printer.Out, cartView{
			Lines:   cartLines(items),
			Count:   count,
			Total:   total,
			Dropped: dropped,
		})
	}

	format.CartTable(printer.Out, items, total)
	if notice := format.DroppedNotice(dropped); notice != "" {
		printer.Warning("%s\n", notice)
	}
	return nil
}

// renderProducts writes a product list in the chosen mode.
func renderProducts(mode format.Mode, products []shop.Product, emptyMessage string) error {
	switch mode {
	case format.JSONL:
		return format.WriteJSONL(printer.Out, products)
	case format.JSON:
		if products == nil {
			products = []shop.Product{}
		}
		return format.WriteJSON(printer.Out, products)
	}
	format.ProductTable(printer.Out, products, emptyMessage)
	return nil
}
