// Package testutil provides an in-process fake of the shop REST backend for
// command and wiring tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dyluth/storefront/pkg/shop"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FakeShop is an httptest server speaking the backend's JSON contract.
// State is guarded by a mutex; helpers may be called while requests run.
type FakeShop struct {
	Server *httptest.Server

	mu       sync.Mutex
	products []shop.Product
	carts    map[string][]shop.CartEntry
	users    map[string]fakeUser // by email
	sellers  map[string]string   // sellerID -> password
	orders   map[string][]shop.Order

	// BrokenProducts makes GET /product/{id} fail with 500 for these ids.
	BrokenProducts map[string]bool

	requests atomic.Int64
}

type fakeUser struct {
	shop.User
	password string
}

// NewFakeShop starts a fake backend seeded with products. It is closed when
// the test ends.
func NewFakeShop(t *testing.T, products ...shop.Product) *FakeShop {
	t.Helper()

	f := &FakeShop{
		products:       products,
		carts:          map[string][]shop.CartEntry{},
		users:          map[string]fakeUser{},
		sellers:        map[string]string{},
		orders:         map[string][]shop.Order{},
		BrokenProducts: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /get-product", f.listProducts)
	mux.HandleFunc("GET /product/{id}", f.getProduct)
	mux.HandleFunc("POST /cart/get-cart", f.getCart)
	mux.HandleFunc("POST /cart/addtocart", f.addToCart)
	mux.HandleFunc("PUT /cart/update-quantity", f.updateQuantity)
	mux.HandleFunc("POST /cart/delete-items", f.removeItem)
	mux.HandleFunc("POST /cart/clear-cart", f.clearCart)
	mux.HandleFunc("POST /auth/login", f.signIn)
	mux.HandleFunc("POST /auth/signup", f.signUp)
	mux.HandleFunc("POST /find-my-order", f.listOrders)
	mux.HandleFunc("GET /get-user-byid", f.getUser)
	mux.HandleFunc("POST /admin/login", f.adminSignIn)
	mux.HandleFunc("POST /admin/seller/signup", f.adminSignUp)
	mux.HandleFunc("POST /create-product", f.createProduct)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL to configure clients with.
func (f *FakeShop) URL() string {
	return f.Server.URL
}

// Requests returns how many requests the server has received.
func (f *FakeShop) Requests() int64 {
	return f.requests.Load()
}

// AddUser registers a shopper and returns their user ID.
func (f *FakeShop) AddUser(name, email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
	f.users[email] = fakeUser{
		User:     shop.User{ID: id, Name: name, Email: email, UserID: id, AccountStatus: "active"},
		password: password,
	}
	return id
}

// AddSeller registers a seller.
func (f *FakeShop) AddSeller(sellerID, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sellers[sellerID] = password
}

// SetCart replaces a user's server cart.
func (f *FakeShop) SetCart(userID string, entries ...shop.CartEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[userID] = entries
}

// Cart returns a copy of a user's server cart.
func (f *FakeShop) Cart(userID string) []shop.CartEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shop.CartEntry(nil), f.carts[userID]...)
}

// AddOrder appends an order to a user's history.
func (f *FakeShop) AddOrder(userID string, order shop.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[userID] = append(f.orders[userID], order)
}

// Products returns a copy of the catalog.
func (f *FakeShop) Products() []shop.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shop.Product(nil), f.products...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return false
	}
	return true
}

func (f *FakeShop) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "products": f.Products()})
}

func (f *FakeShop) getProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BrokenProducts[id] {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
		return
	}
	for _, p := range f.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"product": p})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Product not found"})
}

type cartRequest struct {
	UserID     string `json:"userId"`
	ProductID  string `json:"_id"`
	Quantity   int    `json:"quantity"`
	ProductQty int    `json:"productQty"`
}

func (f *FakeShop) getCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": map[string]any{"productsInCart": f.Cart(req.UserID)}})
}

func (f *FakeShop) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.carts[req.UserID]
	for i := range entries {
		if entries[i].ProductID == req.ProductID {
			entries[i].Quantity += req.Quantity
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	f.carts[req.UserID] = append(entries, shop.CartEntry{ProductID: req.ProductID, Quantity: req.Quantity})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (f *FakeShop) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.carts[req.UserID] {
		if f.carts[req.UserID][i].ProductID == req.ProductID {
			f.carts[req.UserID][i].Quantity = req.ProductQty
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Product not in cart"})
}

func (f *FakeShop) removeItem(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []shop.CartEntry
	for _, e := range f.carts[req.UserID] {
		if e.ProductID != req.ProductID {
			kept = append(kept, e)
		}
	}
	f.carts[req.UserID] = kept
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (f *FakeShop) clearCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, req.UserID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (f *FakeShop) signIn(w http.ResponseWriter, r *http.Request) {
	var creds shop.Credentials
	if !decode(w, r, &creds) {
		return
	}
	f.mu.Lock()
	u, ok := f.users[creds.Email]
	f.mu.Unlock()
	if !ok || u.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": u.UserID})
}

func (f *FakeShop) signUp(w http.ResponseWriter, r *http.Request) {
	var reg shop.Registration
	if !decode(w, r, &reg) {
		return
	}
	f.mu.Lock()
	_, exists := f.users[reg.Email]
	f.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusOK, map[string]any{"message": "User already exists"})
		return
	}
	id := f.AddUser(reg.Name, reg.Email, reg.Password)
	writeJSON(w, http.StatusOK, map[string]any{"userId": id})
}

func (f *FakeShop) listOrders(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	orders := append([]shop.Order(nil), f.orders[req.UserID]...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (f *FakeShop) getUser(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("userId")
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []shop.User
	for _, u := range f.users {
		if u.UserID == id {
			users = append(users, u.User)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (f *FakeShop) adminSignIn(w http.ResponseWriter, r *http.Request) {
	var creds shop.SellerCredentials
	if !decode(w, r, &creds) {
		return
	}
	f.mu.Lock()
	password, ok := f.sellers[creds.SellerID]
	f.mu.Unlock()
	if !ok || password != creds.Password {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid seller credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sellerId": creds.SellerID})
}

func (f *FakeShop) adminSignUp(w http.ResponseWriter, r *http.Request) {
	var reg shop.SellerRegistration
	if !decode(w, r, &reg) {
		return
	}
	id := "MBAS" + strings.ToUpper(uuid.New().String()[:6])
	f.AddSeller(id, reg.Password)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sellerId": id, "message": "Seller registered"})
}

func (f *FakeShop) createProduct(w http.ResponseWriter, r *http.Request) {
	var draft shop.ProductDraft
	if !decode(w, r, &draft) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, shop.Product{
		ID:          strings.ReplaceAll(uuid.New().String(), "-", "")[:24],
		Name:        draft.Name,
		Price:       draft.Price,
		Category:    draft.Category,
		Description: draft.Description,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product created"})
}

// Product is a convenience constructor for seeding.
func Product(id, name, category string, price int64, rating float64) shop.Product {
	return shop.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Rating:   rating,
		InStock:  10,
	}
}
