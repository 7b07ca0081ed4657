package commands

import (
	"github.com/dyluth/storefront/internal/identity"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/spf13/cobra"
)

var (
	signinEmail    string
	signinPassword string

	signupName     string
	signupEmail    string
	signupPassword string
	signupPhone    string
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in as a shopper",
	Long: `Sign in with your email and password.

The session is remembered between runs until 'storefront signout'.`,
	RunE: runSignin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a shopper account and sign in",
	RunE:  runSignup,
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the shopper session",
	RunE:  runSignout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current shopper and seller sessions",
	RunE:  runWhoami,
}

func init() {
	signinCmd.Flags().StringVar(&signinEmail, "email", "", "Account email")
	signinCmd.Flags().StringVar(&signinPassword, "password", "", "Account password")
	_ = signinCmd.MarkFlagRequired("email")
	_ = signinCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVar(&signupName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Account password")
	signupCmd.Flags().StringVar(&signupPhone, "phone", "", "Phone number")

	rootCmd.AddCommand(signinCmd, signupCmd, signoutCmd, whoamiCmd)
}

func runSignin(cmd *cobra.Command, args []string) error {
	creds := shop.Credentials{Email: signinEmail, Password: signinPassword}
	if err := creds.Validate(); err != nil {
		return printer.Error("invalid sign in", err.Error(), nil)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	userID, err := a.Client.SignIn(cmd.Context(), creds)
	if err != nil {
		return backendError(a, "sign in", err)
	}
	return startSession(cmd, a.User, userID, "Signed in as "+creds.Email)
}

func runSignup(cmd *cobra.Command, args []string) error {
	reg := shop.Registration{Name: signupName, Email: signupEmail, Password: signupPassword, Phone: signupPhone}
	if err := reg.Validate(); err != nil {
		return printer.Error("invalid sign up", err.Error(),
			[]string{"Pass --name, --email, --password and --phone"})
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	userID, err := a.Client.SignUp(cmd.Context(), reg)
	if err != nil {
		return backendError(a, "sign up", err)
	}
	return startSession(cmd, a.User, userID, "Account created for "+reg.Email)
}

func runSignout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if _, ok := a.User.Current(); !ok {
		printer.Info("Not signed in.\n")
		return nil
	}
	if err := a.SignOut(cmd.Context()); err != nil {
		return printer.Error("failed to forget session", err.Error(),
			[]string{"Check the session store settings in storefront.yml"})
	}
	printer.Success("Signed out\n")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if userID, ok := a.User.Current(); ok {
		printer.Printf("Shopper: %s\n", userID)
	} else {
		printer.Printf("Shopper: not signed in\n")
	}
	if sellerID, ok := a.Seller.Current(); ok {
		printer.Printf("Seller:  %s\n", sellerID)
	}
	return nil
}

// startSession stores a fresh token. The session still works for this run
// if it could not be persisted.
func startSession(cmd *cobra.Command, holder *identity.Holder, token, message string) error {
	if err := holder.Set(cmd.Context(), token); err != nil {
		printer.Warning("Session could not be saved and will end with this command: %v\n", err)
	}
	printer.Success("%s\n", message)
	return nil
}
