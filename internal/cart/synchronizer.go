// Package cart keeps a local projection of the signed-in user's server-side
// cart.
//
// The backend is authoritative. Every mutation is sent first and the local
// list is then rebuilt from the server (reconcile); nothing is updated
// optimistically. Only Clear writes local state directly, to empty.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxConcurrentLookups bounds product detail fetches during reconcile.
const DefaultMaxConcurrentLookups = 8

var (
	// ErrSignInRequired is returned by every operation when no identity is set.
	// No network call has been made.
	ErrSignInRequired = errors.New("sign in required")

	// ErrInvalidQuantity is returned when a requested quantity is below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrNotInCart is returned by Increment/Decrement for a product the cart does not hold.
	ErrNotInCart = errors.New("product is not in the cart")

	// ErrStaleCart marks a mutation that succeeded on the server but whose
	// follow-up reconcile failed; the local list may be behind.
	ErrStaleCart = errors.New("cart changed but could not be refreshed")
)

// Backend is the subset of the shop API the synchronizer needs.
// *shop.Client satisfies it.
type Backend interface {
	GetCart(ctx context.Context, userID string) ([]shop.CartEntry, error)
	GetProduct(ctx context.Context, productID string) (*shop.Product, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

// IdentitySource yields the current user token. *identity.Holder satisfies it.
type IdentitySource interface {
	Current() (string, bool)
}

// LineItem is one product in the cart with its quantity (always >= 1).
type LineItem struct {
	Product  shop.Product `json:"product"`
	Quantity int          `json:"quantity"`
}

// Subtotal returns price x quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Options configures a Synchronizer. Zero values select defaults.
type Options struct {
	MaxConcurrentLookups int
	Logger               *slog.Logger
	Tracer               trace.Tracer
}

// Synchronizer owns the local cart projection for one identity source.
// It is safe for concurrent use.
type Synchronizer struct {
	backend       Backend
	identity      IdentitySource
	maxConcurrent int
	logger        *slog.Logger
	tracer        trace.Tracer

	// issued counts reconciles (and direct writes) handed out; committed is
	// the generation currently shown. A result older than committed is stale.
	issued atomic.Uint64

	mu        sync.Mutex
	committed uint64
	items     []LineItem
	dropped   []string
	syncedAt  time.Time
}

// New creates a synchronizer with an empty local cart.
func New(backend Backend, identity IdentitySource, opts Options) (*Synchronizer, error) {
	if backend == nil {
		return nil, fmt.Errorf("cart backend cannot be nil")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity source cannot be nil")
	}
	if opts.MaxConcurrentLookups <= 0 {
		opts.MaxConcurrentLookups = DefaultMaxConcurrentLookups
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("storefront/cart")
	}

	return &Synchronizer{
		backend:       backend,
		identity:      identity,
		maxConcurrent: opts.MaxConcurrentLookups,
		logger:        opts.Logger,
		tracer:        opts.Tracer,
	}, nil
}

func (s *Synchronizer) user() (string, error) {
	userID, ok := s.identity.Current()
	if !ok {
		return "", ErrSignInRequired
	}
	return userID, nil
}

// Add asks the server to add quantity units of productID (or increase an
// existing line by that much), then reconciles.
func (s *Synchronizer) Add(ctx context.Context, productID string, quantity int) error {
	userID, err := s.user()
	if err != nil {
		return err
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if err := s.backend.AddToCart(ctx, userID, productID, quantity); err != nil {
		s.logger.Error("add to cart failed",
			slog.String("product_id", productID),
			slog.Int("quantity", quantity),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return s.refresh(ctx)
}

// UpdateQuantity sets the absolute quantity of productID, then reconciles.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	userID, err := s.user()
	if err != nil {
		return err
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if err := s.backend.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
		s.logger.Error("update quantity failed",
			slog.String("product_id", productID),
			slog.Int("quantity", quantity),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return s.refresh(ctx)
}

// Increment raises the line for productID by one.
func (s *Synchronizer) Increment(ctx context.Context, productID string) error {
	return s.step(ctx, productID, 1)
}

// Decrement lowers the line for productID by one. A line at quantity 1
// cannot be decremented; use Remove.
func (s *Synchronizer) Decrement(ctx context.Context, productID string) error {
	return s.step(ctx, productID, -1)
}

func (s *Synchronizer) step(ctx context.Context, productID string, delta int) error {
	if _, err := s.user(); err != nil {
		return err
	}

	current, ok := s.quantity(productID)
	if !ok {
		// Local view may not be loaded yet
		if err := s.Reconcile(ctx); err != nil {
			return err
		}
		if current, ok = s.quantity(productID); !ok {
			return ErrNotInCart
		}
	}

	return s.UpdateQuantity(ctx, productID, current+delta)
}

func (s *Synchronizer) quantity(productID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Product.ID == productID {
			return item.Quantity, true
		}
	}
	return 0, false
}

// Remove deletes productID from the server cart, then reconciles.
// Removing a product the cart does not hold is not an error.
func (s *Synchronizer) Remove(ctx context.Context, productID string) error {
	userID, err := s.user()
	if err != nil {
		return err
	}

	if err := s.backend.RemoveFromCart(ctx, userID, productID); err != nil {
		s.logger.Error("remove from cart failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return s.refresh(ctx)
}

// Clear empties the server cart and, on success, the local list.
// No reconcile follows.
func (s *Synchronizer) Clear(ctx context.Context) error {
	userID, err := s.user()
	if err != nil {
		return err
	}

	if err := s.backend.ClearCart(ctx, userID); err != nil {
		s.logger.Error("clear cart failed", slog.String("error", err.Error()))
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.replace(s.issued.Add(1), nil, nil)
	return nil
}

// Reset drops local state without touching the server, e.g. on sign-out.
// Reconciles still in flight are discarded.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = s.issued.Add(1)
	s.items = nil
	s.dropped = nil
	s.syncedAt = time.Time{}
}

func (s *Synchronizer) refresh(ctx context.Context) error {
	if err := s.Reconcile(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleCart, err)
	}
	return nil
}

type lookup struct {
	item LineItem
	ok   bool
}

// Reconcile rebuilds the local list from the server: the (id, quantity)
// pairs are fetched, product details are looked up concurrently, and the
// joined list replaces local state in one step, in server order.
//
// If the pair list cannot be fetched, local state is left untouched. A
// failed detail lookup drops only that line; its id is reported by Dropped.
// A cancelled ctx, or a newer reconcile committing first, discards the result.
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	userID, err := s.user()
	if err != nil {
		return err
	}

	gen := s.issued.Add(1)

	ctx, span := s.tracer.Start(ctx, "storefront/cart.Reconcile")
	defer span.End()

	entries, err := s.backend.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error("failed to fetch cart", slog.String("error", err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch cart")
		return fmt.Errorf("failed to fetch cart: %w", err)
	}

	results := make([]lookup, len(entries))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, entry := range entries {
		if entry.Quantity < 1 {
			s.logger.Warn("dropping cart line with invalid quantity",
				slog.String("product_id", entry.ProductID),
				slog.Int("quantity", entry.Quantity),
			)
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, entry shop.CartEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			product, err := s.backend.GetProduct(ctx, entry.ProductID)
			if err != nil {
				s.logger.Warn("dropping cart line, product lookup failed",
					slog.String("product_id", entry.ProductID),
					slog.String("error", err.Error()),
				)
				return
			}
			results[i] = lookup{item: LineItem{Product: *product, Quantity: entry.Quantity}, ok: true}
		}(i, entry)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("reconcile abandoned: %w", err)
	}

	items := make([]LineItem, 0, len(entries))
	var dropped []string
	for i, r := range results {
		if r.ok {
			items = append(items, r.item)
		} else {
			dropped = append(dropped, entries[i].ProductID)
		}
	}

	span.SetAttributes(
		attribute.Int("cart.lines", len(items)),
		attribute.Int("cart.dropped", len(dropped)),
	)

	if !s.replace(gen, items, dropped) {
		s.logger.Debug("discarding stale reconcile", slog.Uint64("generation", gen))
		span.SetAttributes(attribute.Bool("cart.stale", true))
	}
	return nil
}

// replace commits items as generation gen unless a newer generation is
// already shown.
func (s *Synchronizer) replace(gen uint64, items []LineItem, dropped []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.committed {
		return false
	}
	s.committed = gen
	s.items = items
	s.dropped = dropped
	s.syncedAt = time.Now()
	return true
}

// Items returns a copy of the local lines.
func (s *Synchronizer) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.items...)
}

// Total returns the sum of price x quantity over the local lines.
func (s *Synchronizer) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count returns the total number of units in the local cart.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Dropped returns the product ids omitted by the last committed reconcile,
// in server order.
func (s *Synchronizer) Dropped() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dropped...)
}

// SyncedAt returns when local state was last replaced. Zero if never.
func (s *Synchronizer) SyncedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncedAt
}
