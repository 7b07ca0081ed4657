package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/storefront/internal/printer"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find products by name",
	Long: `Find products whose name contains the query, ignoring case.

Results keep catalog order.`,
	Example: `  storefront search shirt`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return printer.Error("empty search", "Give a word to look for in product names.", nil)
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

	return renderProducts(mode, c.Search(query), fmt.Sprintf("No products match %q.", query))
}
