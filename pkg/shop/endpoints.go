package shop

import "net/url"

// Backend path helpers
//
// Paths are relative to the configured base URL. The backend is not
// consistent about REST verbs (remove is a POST, update is a PUT), so each
// operation's method lives next to its call site in client.go.

const (
	pathListProducts   = "get-product"
	pathGetCart        = "cart/get-cart"
	pathAddToCart      = "cart/addtocart"
	pathUpdateQuantity = "cart/update-quantity"
	pathRemoveFromCart = "cart/delete-items"
	pathClearCart      = "cart/clear-cart"
	pathSignIn         = "auth/login"
	pathSignUp         = "auth/signup"
	pathListOrders     = "find-my-order"
	pathGetUser        = "get-user-byid"
	pathAdminSignIn    = "admin/login"
	pathAdminSignUp    = "admin/seller/signup"
	pathCreateProduct  = "create-product"
)

// ProductPath returns the detail path for a product.
// Pattern: product/{id}, with the ID path-escaped.
func ProductPath(productID string) string {
	return "product/" + url.PathEscape(productID)
}
