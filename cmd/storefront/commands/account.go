package commands

import (
	"github.com/dyluth/storefront/internal/format"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runAccount,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func runAccount(cmd *cobra.Command, args []string) error {
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

	user, err := a.Client.GetUser(cmd.Context(), userID)
	if err != nil {
		return backendError(a, "load your profile", err)
	}

	switch mode {
	case format.JSONL:
		return format.WriteJSONL(printer.Out, []*shop.User{user})
	case format.JSON:
		return format.WriteJSON(printer.Out, user)
	}
	format.UserDetail(printer.Out, user)
	return nil
}
