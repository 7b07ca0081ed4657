package commands

import (
	"errors"

	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter storefront.yml",
	Long: `Create a starter storefront.yml with every setting at its default.

Edit backend.url to point at your shop API, then sign in.

Use --force to replace an existing file (WARNING: your settings are lost).`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Replace an existing storefront.yml")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write storefront.yml into")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := scaffold.Initialize(initDir, forceInit)
	if err != nil {
		var exists *scaffold.ExistsError
		if errors.As(err, &exists) {
			return printer.Error(
				"storefront.yml already exists",
				"Found "+exists.Path+".",
				[]string{"Run 'storefront init --force' to replace it"},
			)
		}
		return printer.Error("initialization failed", err.Error(), nil)
	}

	scaffold.PrintSuccess(path)
	return nil
}
