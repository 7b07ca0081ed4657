// Package shop provides typed Go definitions and a REST client for the
// storefront backend.
//
// # Overview
//
// The backend owns every business rule: inventory, pricing, carts, orders and
// authentication. This package only consumes its JSON contract. Callers get
// strongly typed products, cart entries, orders and profiles, and a small set
// of error types that classify what went wrong.
//
// # Error taxonomy
//
// Transport failures are returned wrapped ("failed to ...: %w").
// Business rejections, where the backend answers 200 with success=false, are
// returned as *RejectedError carrying the server message (or a generic
// fallback). HTTP 404 and empty lookups map to ErrNotFound. Any other non-2xx
// status is a *StatusError.
//
// # Usage Example
//
//	client, err := shop.NewClient(shop.Options{BaseURL: "https://shop.example.com"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	products, err := client.ListProducts(ctx)
//	if shop.IsRejected(err) {
//		fmt.Println(err) // server message, verbatim
//	}
//
// # Endpoints
//
// All paths are relative to the configured base URL:
//
//	GET  /get-product            catalog
//	GET  /product/{id}           product detail
//	POST /cart/get-cart          cart contents
//	POST /cart/addtocart         add or increment
//	PUT  /cart/update-quantity   absolute quantity
//	POST /cart/delete-items      remove one line
//	POST /cart/clear-cart        remove every line
//	POST /auth/login, /auth/signup
//	POST /find-my-order          order history
//	GET  /get-user-byid          profile
//	POST /admin/login, /admin/seller/signup, /create-product
package shop
