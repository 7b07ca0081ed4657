package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every backend call when Options.Timeout is zero.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent is sent when Options.UserAgent is empty.
	DefaultUserAgent = "storefront-cli/1.0"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 8 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL    string        // Backend root, e.g. https://shop.example.com (required)
	HTTPClient *http.Client  // Optional; a traced client with Timeout is built when nil
	Timeout    time.Duration // Per-request timeout for the built client (default DefaultTimeout)
	RateLimit  float64       // Requests per second, 0 = unlimited
	Burst      int           // Limiter burst (default 1 when RateLimit > 0)
	UserAgent  string        // User-Agent header (default DefaultUserAgent)
	Logger     *slog.Logger  // Optional; defaults to slog.Default()
}

// Client provides typed access to the storefront backend.
// The client is safe for concurrent use from multiple goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a backend client.
// Returns an error if BaseURL is empty or not an absolute http(s) URL.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("backend base URL cannot be empty")
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend base URL: scheme must be http or https, got %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL: missing host")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		limiter:    limiter,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp productListResponse
	if err := c.do(ctx, "list products", http.MethodGet, pathListProducts, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.rejected() {
		return nil, rejection("list products", resp.Message, "Failed to load products")
	}
	if resp.Products == nil {
		return []Product{}, nil
	}
	return resp.Products, nil
}

// GetProduct fetches a single product by its backend ID.
// Returns ErrNotFound if the backend has no such product.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("product ID cannot be empty")
	}

	var resp productResponse
	if err := c.do(ctx, "get product", http.MethodGet, ProductPath(productID), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("get product %s: %w", productID, ErrNotFound)
	}
	return resp.Product, nil
}

// GetCart fetches the authoritative (product, quantity) pairs for a user.
// A missing cart is an empty cart.
func (c *Client) GetCart(ctx context.Context, userID string) ([]CartEntry, error) {
	var resp cartResponse
	if err := c.do(ctx, "get cart", http.MethodPost, pathGetCart, nil, userRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil || resp.Cart.ProductsInCart == nil {
		return []CartEntry{}, nil
	}
	return resp.Cart.ProductsInCart, nil
}

// AddToCart adds quantity units of a product, incrementing an existing line.
func (c *Client) AddToCart(ctx context.Context, userID, productID string, quantity int) error {
	body := cartItemRequest{UserID: userID, ProductID: productID, Quantity: quantity}
	return c.ack(ctx, "add to cart", http.MethodPost, pathAddToCart, body, "Failed to add product to cart")
}

// UpdateQuantity sets the absolute quantity of a cart line.
func (c *Client) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	body := updateQuantityRequest{UserID: userID, ProductID: productID, Quantity: quantity}
	return c.ack(ctx, "update quantity", http.MethodPut, pathUpdateQuantity, body, "Failed to update quantity")
}

// RemoveFromCart deletes a cart line.
func (c *Client) RemoveFromCart(ctx context.Context, userID, productID string) error {
	body := removeItemRequest{UserID: userID, ProductID: productID}
	return c.ack(ctx, "remove item", http.MethodPost, pathRemoveFromCart, body, "Failed to remove item")
}

// ClearCart deletes every line of the user's cart.
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	return c.ack(ctx, "clear cart", http.MethodPost, pathClearCart, userRequest{UserID: userID}, "Failed to clear cart")
}

// SignIn exchanges credentials for a user ID.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	return c.authenticate(ctx, "sign in", pathSignIn, creds, "Invalid email or password. Please try again.")
}

// SignUp registers a shopper and returns the new user ID.
func (c *Client) SignUp(ctx context.Context, reg Registration) (string, error) {
	if err := reg.Validate(); err != nil {
		return "", err
	}
	return c.authenticate(ctx, "sign up", pathSignUp, reg, "Error signing up. Please try again.")
}

// ListOrders fetches the order history for a user.
// An empty history is an empty slice, not an error.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	var resp orderListResponse
	if err := c.do(ctx, "list orders", http.MethodPost, pathListOrders, nil, userRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.rejected() {
		return nil, rejection("list orders", resp.Message, "No orders found")
	}
	if resp.Orders == nil {
		return []Order{}, nil
	}
	return resp.Orders, nil
}

// GetUser fetches the profile for a user ID.
// The endpoint returns a list; the entry whose userId matches is selected.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	query := url.Values{"userId": []string{userID}}

	var resp userListResponse
	if err := c.do(ctx, "get user", http.MethodGet, pathGetUser, query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.rejected() {
		return nil, rejection("get user", resp.Message, "Error fetching user details")
	}
	for i := range resp.Users {
		if resp.Users[i].UserID == userID {
			return &resp.Users[i], nil
		}
	}
	return nil, fmt.Errorf("get user %s: %w", userID, ErrNotFound)
}

// AdminSignIn authenticates a seller and returns the seller ID.
func (c *Client) AdminSignIn(ctx context.Context, creds SellerCredentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	return c.seller(ctx, "admin sign in", pathAdminSignIn, creds, "Login failed")
}

// AdminSignUp registers a seller and returns the assigned seller ID.
func (c *Client) AdminSignUp(ctx context.Context, reg SellerRegistration) (string, error) {
	if err := reg.Validate(); err != nil {
		return "", err
	}
	return c.seller(ctx, "admin sign up", pathAdminSignUp, reg, "Signup failed")
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, draft ProductDraft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return c.ack(ctx, "create product", http.MethodPost, pathCreateProduct, draft, "Failed to add product")
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any, fallback string) (string, error) {
	var resp authResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, body, &resp); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			return "", rejection(op, "", fallback)
		}
		return "", err
	}
	if resp.UserID == "" {
		return "", rejection(op, resp.Message, fallback)
	}
	return resp.UserID, nil
}

func (c *Client) seller(ctx context.Context, op, path string, body any, fallback string) (string, error) {
	var resp sellerResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, body, &resp); err != nil {
		return "", err
	}
	if resp.Success == nil || !*resp.Success {
		return "", rejection(op, resp.Message, fallback)
	}
	return resp.SellerID, nil
}

// ack performs a mutation whose response is only an acknowledgement.
func (c *Client) ack(ctx context.Context, op, method, path string, body any, fallback string) error {
	var resp ackResponse
	if err := c.do(ctx, op, method, path, nil, body, &resp); err != nil {
		return err
	}
	if resp.rejected() {
		return rejection(op, resp.Message, fallback)
	}
	return nil
}

// do sends one JSON request and decodes the response into out.
// Empty or non-JSON success bodies are accepted when out is an ack.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed",
			slog.String("op", op),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", endpoint.Path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(start)),
	)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A rejection body on an error status (404 included) still carries the
		// server's message.
		var rejected ackResponse
		if json.Unmarshal(data, &rejected) == nil && rejected.rejected() && rejected.Message != "" {
			return &RejectedError{Op: op, Message: rejected.Message}
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		c.logger.Warn("backend returned error status",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("request_id", requestID),
		)
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if _, isAck := out.(*ackResponse); isAck {
			return nil
		}
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
