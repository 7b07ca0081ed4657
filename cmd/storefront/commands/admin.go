package commands

import (
	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	adminSellerID string
	adminLogin    string
	adminPassword string

	sellerName     string
	sellerEmail    string
	sellerPassword string
	sellerPhone    string

	draftName        string
	draftPrice       string
	draftCategory    string
	draftDescription string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Seller admin panel",
	Long: `Seller admin panel: register as a seller, sign in, and add products.

The seller session is separate from the shopper session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminSigninCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in as a seller",
	Args:  cobra.NoArgs,
	RunE:  runAdminSignin,
}

var adminSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register as a seller and sign in",
	Long: `Register as a seller. The backend assigns a seller ID, which is printed
and needed for later sign-ins.`,
	Args: cobra.NoArgs,
	RunE: runAdminSignup,
}

var adminSignoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the seller session",
	Args:  cobra.NoArgs,
	RunE:  runAdminSignout,
}

var adminProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the catalog as a seller",
	Args:  cobra.NoArgs,
	RunE:  runAdminProducts,
}

var adminAddProductCmd = &cobra.Command{
	Use:   "add-product",
	Short: "Add a product to the catalog",
	Example: `  storefront admin add-product --name "Linen Shirt" --price 1299 \
    --category Men --description "Breathable summer shirt"`,
	Args: cobra.NoArgs,
	RunE: runAdminAddProduct,
}

func init() {
	adminSigninCmd.Flags().StringVar(&adminSellerID, "seller-id", "", "Seller ID assigned at sign-up")
	adminSigninCmd.Flags().StringVar(&adminLogin, "login", "", "Seller email or phone number")
	adminSigninCmd.Flags().StringVar(&adminPassword, "password", "", "Seller password")

	adminSignupCmd.Flags().StringVar(&sellerName, "name", "", "Seller name")
	adminSignupCmd.Flags().StringVar(&sellerEmail, "email", "", "Seller email")
	adminSignupCmd.Flags().StringVar(&sellerPassword, "password", "", "Seller password")
	adminSignupCmd.Flags().StringVar(&sellerPhone, "phone", "", "Seller phone number")

	adminAddProductCmd.Flags().StringVar(&draftName, "name", "", "Product name")
	adminAddProductCmd.Flags().StringVar(&draftPrice, "price", "", "Unit price")
	adminAddProductCmd.Flags().StringVar(&draftCategory, "category", "", "Product category")
	adminAddProductCmd.Flags().StringVar(&draftDescription, "description", "", "Product description")

	adminCmd.AddCommand(adminSigninCmd, adminSignupCmd, adminSignoutCmd, adminProductsCmd, adminAddProductCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminSignin(cmd *cobra.Command, args []string) error {
	creds := shop.SellerCredentials{SellerID: adminSellerID, EmailOrPhone: adminLogin, Password: adminPassword}
	if err := creds.Validate(); err != nil {
		return printer.Error("invalid seller sign in", err.Error(),
			[]string{"Pass --seller-id, --login and --password"})
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	sellerID, err := a.Client.AdminSignIn(cmd.Context(), creds)
	if err != nil {
		return backendError(a, "sign in as seller", err)
	}
	return startSession(cmd, a.Seller, sellerID, "Signed in as seller "+sellerID)
}

func runAdminSignup(cmd *cobra.Command, args []string) error {
	reg := shop.SellerRegistration{Name: sellerName, Email: sellerEmail, Password: sellerPassword, PhoneNumber: sellerPhone}
	if err := reg.Validate(); err != nil {
		return printer.Error("invalid seller sign up", err.Error(),
			[]string{"Pass --name, --email, --password and --phone"})
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	sellerID, err := a.Client.AdminSignUp(cmd.Context(), reg)
	if err != nil {
		return backendError(a, "register as seller", err)
	}
	if err := startSession(cmd, a.Seller, sellerID, "Registered seller "+sellerID); err != nil {
		return err
	}
	printer.Hint("Keep this seller ID: it is required to sign in again.\n")
	return nil
}

func runAdminSignout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if _, ok := a.Seller.Current(); !ok {
		printer.Info("Not signed in as a seller.\n")
		return nil
	}
	if err := a.Seller.Clear(cmd.Context()); err != nil {
		return printer.Error("failed to forget seller session", err.Error(), nil)
	}
	printer.Success("Signed out of the admin panel\n")
	return nil
}

func runAdminProducts(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if _, err := requireSeller(a); err != nil {
		return err
	}
	mode, err := outputMode(a)
	if err != nil {
		return err
	}

	c, err := a.LoadCatalog(cmd.Context())
	if err != nil {
		return backendError(a, "load the catalog", err)
	}
	return renderProducts(mode, c.Products(), "The catalog is empty.")
}

func runAdminAddProduct(cmd *cobra.Command, args []string) error {
	price, err := decimal.NewFromString(draftPrice)
	if err != nil {
		return printer.Error("invalid price", "--price must be a number, e.g. 1299 or 499.50", nil)
	}
	draft := shop.ProductDraft{Name: draftName, Price: price, Category: draftCategory, Description: draftDescription}
	if err := draft.Validate(); err != nil {
		return printer.Error("invalid product", err.Error(),
			[]string{"Pass --name, --price, --category and --description"})
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if _, err := requireSeller(a); err != nil {
		return err
	}

	if err := a.Client.CreateProduct(cmd.Context(), draft); err != nil {
		return backendError(a, "add the product", err)
	}
	a.InvalidateCatalog(cmd.Context())

	printer.Success("Added %s to %s\n", draft.Name, draft.Category)
	return nil
}
