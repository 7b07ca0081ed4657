package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/storefront/internal/catalog"
	"github.com/dyluth/storefront/internal/filter"
	"github.com/dyluth/storefront/internal/format"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/spf13/cobra"
)

var (
	catalogCategory string
	catalogPrices   []string
	catalogRatings  []string
	catalogSort     string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse products",
	Long: `Browse the product catalog, optionally narrowed to one category and
filtered by price and rating bands.

Bands within one group are alternatives (any may match); different groups
must all match. Bands may be abbreviated to a unique prefix:

  --price "under 1000" --price 1000-4999     Under ₹1000 or ₹1000 - ₹4999
  --rating 4                                 4 Stars & Above

Sort keys: featured (backend order), price-asc, price-desc, newest.`,
	Example: `  storefront catalog
  storefront catalog --category Men --price 1000-4999 --sort price-asc
  storefront catalog --rating 4 -o jsonl`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var productCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product",
	Long: `Show one product in detail.

The ID may be the short form printed in tables (at least 6 characters).`,
	Args: cobra.ExactArgs(1),
	RunE: runProductShow,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", catalog.AllCategories, "Only show products in this category")
	catalogCmd.Flags().StringArrayVar(&catalogPrices, "price", nil, "Price band to include (repeatable)")
	catalogCmd.Flags().StringArrayVar(&catalogRatings, "rating", nil, "Rating band to include (repeatable)")
	catalogCmd.Flags().StringVar(&catalogSort, "sort", string(filter.SortFeatured), "Sort order: featured, price-asc, price-desc or newest")

	catalogCmd.AddCommand(categoriesCmd, productCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	key, err := filter.ParseSortKey(catalogSort)
	if err != nil {
		return printer.Error("invalid sort order", err.Error(), nil)
	}

	facets := filter.DefaultFacets()
	sel, err := selectionFromFlags(facets, map[string][]string{
		filter.GroupPrice:  catalogPrices,
		filter.GroupRating: catalogRatings,
	})
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	mode, err := outputMode(a)
	if err != nil {
		return err
	}

	c, err := a.LoadCatalog(cmd.Context())
	if err != nil {
		return backendError(a, "load the catalog", err)
	}

	products := c.InCategory(catalogCategory)
	empty := "No products in this category."
	if !sel.IsEmpty() {
		empty = "No products match the selected filters."
	}

	pipeline := filter.Pipeline{Facets: facets}
	return renderProducts(mode, pipeline.Apply(products, sel, key), empty)
}

func runCategories(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	mode, err := outputMode(a)
	if err != nil {
		return err
	}

	c, err := a.LoadCatalog(cmd.Context())
	if err != nil {
		return backendError(a, "load the catalog", err)
	}

	switch mode {
	case format.JSONL:
		return format.WriteJSONL(printer.Out, c.Categories())
	case format.JSON:
		return format.WriteJSON(printer.Out, c.Categories())
	}
	format.CategoryTable(printer.Out, c.Categories())
	return nil
}

func runProductShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	mode, err := outputMode(a)
	if err != nil {
		return err
	}

	id, err := resolveCatalogID(cmd, a, args[0])
	if err != nil {
		return err
	}

	product, err := a.Client.GetProduct(cmd.Context(), id)
	if err != nil {
		return backendError(a, "load the product", err)
	}

	if mode == format.Table {
		format.ProductDetail(printer.Out, *product)
		return nil
	}
	return format.WriteJSON(printer.Out, product)
}

// selectionFromFlags maps band arguments onto band labels, group by group.
func selectionFromFlags(facets filter.Facets, args map[string][]string) (filter.Selection, error) {
	labels := make(map[string][]string, len(args))
	for group, values := range args {
		facet, ok := facets.Lookup(group)
		if !ok {
			return filter.Selection{}, fmt.Errorf("unknown filter group %s", group)
		}
		for _, v := range values {
			label, err := matchBand(facet, v)
			if err != nil {
				return filter.Selection{}, err
			}
			labels[group] = append(labels[group], label)
		}
	}
	return filter.NewSelection(labels), nil
}

// matchBand finds the band arg names: an exact label, or a unique prefix,
// compared without case, spaces or currency signs.
func matchBand(facet *filter.Facet, arg string) (string, error) {
	want := normalizeBand(arg)
	var matches []string
	for _, band := range facet.Bands {
		have := normalizeBand(band.Label)
		if have == want {
			return band.Label, nil
		}
		if want != "" && strings.HasPrefix(have, want) {
			matches = append(matches, band.Label)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	valid := make([]string, 0, len(facet.Bands))
	for _, band := range facet.Bands {
		valid = append(valid, fmt.Sprintf("%q", band.Label))
	}
	flag := strings.ToLower(facet.Group)
	return "", printer.Error(
		fmt.Sprintf("unknown %s band %q", flag, arg),
		"Valid bands: "+strings.Join(valid, ", "),
		nil,
	)
}

func normalizeBand(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "₹", "", ",", "").Replace(s)
}
