package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeBackend is an in-memory cart server.
type fakeBackend struct {
	mu       sync.Mutex
	cart     []shop.CartEntry
	products map[string]shop.Product
	broken   map[string]bool // product ids whose lookup fails

	cartErr     error
	mutationErr error
	calls       atomic.Int32

	// gate, when set, blocks the first GetCart after it has taken its snapshot
	gate    chan struct{}
	entered chan struct{}
	gated   atomic.Bool

	onGetProduct func()
}

func newFakeBackend(products ...shop.Product) *fakeBackend {
	f := &fakeBackend{products: map[string]shop.Product{}, broken: map[string]bool{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeBackend) GetCart(_ context.Context, _ string) ([]shop.CartEntry, error) {
	f.calls.Add(1)
	f.mu.Lock()
	snapshot := append([]shop.CartEntry(nil), f.cart...)
	err := f.cartErr
	f.mu.Unlock()

	if f.gate != nil && f.gated.CompareAndSwap(false, true) {
		close(f.entered)
		<-f.gate
	}
	return snapshot, err
}

func (f *fakeBackend) GetProduct(_ context.Context, id string) (*shop.Product, error) {
	f.calls.Add(1)
	if f.onGetProduct != nil {
		f.onGetProduct()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken[id] {
		return nil, errors.New("connection reset")
	}
	p, ok := f.products[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	return &p, nil
}

func (f *fakeBackend) AddToCart(_ context.Context, _ string, id string, qty int) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	for i := range f.cart {
		if f.cart[i].ProductID == id {
			f.cart[i].Quantity += qty
			return nil
		}
	}
	f.cart = append(f.cart, shop.CartEntry{ProductID: id, Quantity: qty})
	return nil
}

func (f *fakeBackend) UpdateQuantity(_ context.Context, _ string, id string, qty int) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	for i := range f.cart {
		if f.cart[i].ProductID == id {
			f.cart[i].Quantity = qty
		}
	}
	return nil
}

func (f *fakeBackend) RemoveFromCart(_ context.Context, _ string, id string) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	kept := f.cart[:0]
	for _, e := range f.cart {
		if e.ProductID != id {
			kept = append(kept, e)
		}
	}
	f.cart = kept
	return nil
}

func (f *fakeBackend) ClearCart(context.Context, string) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	f.cart = nil
	return nil
}

func (f *fakeBackend) setCart(entries ...shop.CartEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = entries
}

type staticIdentity string

func (s staticIdentity) Current() (string, bool) {
	return string(s), s != ""
}

func item(id string, price int64) shop.Product {
	return shop.Product{ID: id, Name: "product " + id, Price: decimal.NewFromInt(price)}
}

func setupSynchronizer(t *testing.T, backend Backend, user string) *Synchronizer {
	t.Helper()
	s, err := New(backend, staticIdentity(user), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return s
}

func lineIDs(items []LineItem) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Product.ID)
	}
	return out
}

func TestAnonymousMakesNoCalls(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(item("p1", 100))
	s := setupSynchronizer(t, backend, "")

	ops := map[string]func() error{
		"add":       func() error { return s.Add(ctx, "p1", 1) },
		"update":    func() error { return s.UpdateQuantity(ctx, "p1", 2) },
		"increment": func() error { return s.Increment(ctx, "p1") },
		"decrement": func() error { return s.Decrement(ctx, "p1") },
		"remove":    func() error { return s.Remove(ctx, "p1") },
		"clear":     func() error { return s.Clear(ctx) },
		"reconcile": func() error { return s.Reconcile(ctx) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrSignInRequired)
		})
	}

	assert.Equal(t, int32(0), backend.calls.Load())
	assert.Empty(t, s.Items())
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("adds then reconciles", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100), item("p2", 250))
		s := setupSynchronizer(t, backend, "u1")

		require.NoError(t, s.Add(ctx, "p1", 2))
		require.NoError(t, s.Add(ctx, "p2", 1))
		require.NoError(t, s.Add(ctx, "p1", 1))

		items := s.Items()
		require.Len(t, items, 2)
		assert.Equal(t, []string{"p1", "p2"}, lineIDs(items))
		assert.Equal(t, 3, items[0].Quantity)
		assert.Equal(t, "550", s.Total().String())
		assert.Equal(t, 4, s.Count())
	})

	t.Run("quantity below one is rejected without a call", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100))
		s := setupSynchronizer(t, backend, "u1")

		assert.ErrorIs(t, s.Add(ctx, "p1", 0), ErrInvalidQuantity)
		assert.ErrorIs(t, s.UpdateQuantity(ctx, "p1", -1), ErrInvalidQuantity)
		assert.Equal(t, int32(0), backend.calls.Load())
	})

	t.Run("mutation failure leaves local state unchanged", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100))
		backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 1})
		s := setupSynchronizer(t, backend, "u1")
		require.NoError(t, s.Reconcile(ctx))

		backend.mutationErr = &shop.RejectedError{Op: "add to cart", Message: "Out of stock"}
		err := s.Add(ctx, "p1", 1)
		require.Error(t, err)
		assert.True(t, shop.IsRejected(err))
		assert.Equal(t, 1, s.Items()[0].Quantity)
	})

	t.Run("refresh failure after success is reported stale", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100))
		s := setupSynchronizer(t, backend, "u1")
		backend.cartErr = errors.New("timeout")

		err := s.Add(ctx, "p1", 1)
		assert.ErrorIs(t, err, ErrStaleCart)
	})
}

func TestIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(item("p1", 100))
	backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 1})
	s := setupSynchronizer(t, backend, "u1")

	t.Run("increment loads view when empty", func(t *testing.T) {
		require.NoError(t, s.Increment(ctx, "p1"))
		assert.Equal(t, 2, s.Items()[0].Quantity)
	})

	t.Run("decrement to one", func(t *testing.T) {
		require.NoError(t, s.Decrement(ctx, "p1"))
		assert.Equal(t, 1, s.Items()[0].Quantity)
	})

	t.Run("decrement at one is refused", func(t *testing.T) {
		assert.ErrorIs(t, s.Decrement(ctx, "p1"), ErrInvalidQuantity)
		assert.Equal(t, 1, s.Items()[0].Quantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		assert.ErrorIs(t, s.Increment(ctx, "nope"), ErrNotInCart)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(item("p1", 100), item("p2", 200))
	backend.setCart(
		shop.CartEntry{ProductID: "p1", Quantity: 1},
		shop.CartEntry{ProductID: "p2", Quantity: 2},
	)
	s := setupSynchronizer(t, backend, "u1")

	require.NoError(t, s.Remove(ctx, "p1"))
	assert.Equal(t, []string{"p2"}, lineIDs(s.Items()))

	// Unknown id is not an error; the view just omits it
	require.NoError(t, s.Remove(ctx, "never-added"))
	assert.Equal(t, []string{"p2"}, lineIDs(s.Items()))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(item("p1", 100))
	backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 3})
	s := setupSynchronizer(t, backend, "u1")
	require.NoError(t, s.Reconcile(ctx))

	before := backend.calls.Load()
	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
	// one clear call, no reconcile
	assert.Equal(t, before+1, backend.calls.Load())

	t.Run("failure keeps items", func(t *testing.T) {
		backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 1})
		require.NoError(t, s.Reconcile(ctx))
		backend.mutationErr = errors.New("boom")

		assert.Error(t, s.Clear(ctx))
		assert.Len(t, s.Items(), 1)
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart totals zero", func(t *testing.T) {
		s := setupSynchronizer(t, newFakeBackend(), "u1")
		require.NoError(t, s.Reconcile(ctx))
		assert.Empty(t, s.Items())
		assert.Equal(t, "0", s.Total().String())
		assert.False(t, s.SyncedAt().IsZero())
	})

	t.Run("preserves server order across concurrent lookups", func(t *testing.T) {
		var products []shop.Product
		var entries []shop.CartEntry
		var want []string
		for _, id := range []string{"e", "d", "c", "b", "a", "f", "g", "h", "i", "j"} {
			products = append(products, item(id, 10))
			entries = append(entries, shop.CartEntry{ProductID: id, Quantity: 1})
			want = append(want, id)
		}
		backend := newFakeBackend(products...)
		backend.setCart(entries...)
		s, err := New(backend, staticIdentity("u1"), Options{
			MaxConcurrentLookups: 3,
			Logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		require.NoError(t, err)

		require.NoError(t, s.Reconcile(ctx))
		assert.Equal(t, want, lineIDs(s.Items()))
		assert.Equal(t, "100", s.Total().String())
	})

	t.Run("failed lookup drops only that line", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100), item("p2", 200), item("p3", 300))
		backend.broken["p2"] = true
		backend.setCart(
			shop.CartEntry{ProductID: "p1", Quantity: 1},
			shop.CartEntry{ProductID: "p2", Quantity: 1},
			shop.CartEntry{ProductID: "p3", Quantity: 1},
		)
		s := setupSynchronizer(t, backend, "u1")

		require.NoError(t, s.Reconcile(ctx))
		assert.Equal(t, []string{"p1", "p3"}, lineIDs(s.Items()))
		assert.Equal(t, []string{"p2"}, s.Dropped())
		assert.Equal(t, "400", s.Total().String())
	})

	t.Run("server quantity below one is dropped", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100), item("p2", 200))
		backend.setCart(
			shop.CartEntry{ProductID: "p1", Quantity: 0},
			shop.CartEntry{ProductID: "p2", Quantity: 2},
		)
		s := setupSynchronizer(t, backend, "u1")

		require.NoError(t, s.Reconcile(ctx))
		assert.Equal(t, []string{"p2"}, lineIDs(s.Items()))
		assert.Equal(t, []string{"p1"}, s.Dropped())
	})

	t.Run("list failure keeps previous state", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100))
		backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 2})
		s := setupSynchronizer(t, backend, "u1")
		require.NoError(t, s.Reconcile(ctx))

		backend.cartErr = errors.New("503")
		assert.Error(t, s.Reconcile(ctx))
		assert.Len(t, s.Items(), 1)
		assert.Equal(t, "200", s.Total().String())
	})

	t.Run("cancelled context discards result", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100))
		backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 1})
		s := setupSynchronizer(t, backend, "u1")

		cctx, cancel := context.WithCancel(ctx)
		backend.onGetProduct = cancel

		err := s.Reconcile(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, s.Items())
		assert.True(t, s.SyncedAt().IsZero())
	})

	t.Run("earlier issued result cannot overwrite newer", func(t *testing.T) {
		backend := newFakeBackend(item("old", 100), item("new", 200))
		backend.setCart(shop.CartEntry{ProductID: "old", Quantity: 1})
		backend.gate = make(chan struct{})
		backend.entered = make(chan struct{})
		s := setupSynchronizer(t, backend, "u1")

		done := make(chan error, 1)
		go func() { done <- s.Reconcile(ctx) }()
		<-backend.entered

		backend.setCart(shop.CartEntry{ProductID: "new", Quantity: 1})
		require.NoError(t, s.Reconcile(ctx))
		assert.Equal(t, []string{"new"}, lineIDs(s.Items()))

		close(backend.gate)
		require.NoError(t, <-done)
		assert.Equal(t, []string{"new"}, lineIDs(s.Items()))
	})

	t.Run("reset discards in-flight reconcile", func(t *testing.T) {
		backend := newFakeBackend(item("p1", 100))
		backend.setCart(shop.CartEntry{ProductID: "p1", Quantity: 1})
		backend.gate = make(chan struct{})
		backend.entered = make(chan struct{})
		s := setupSynchronizer(t, backend, "u1")

		done := make(chan error, 1)
		go func() { done <- s.Reconcile(ctx) }()
		<-backend.entered

		s.Reset()
		close(backend.gate)
		require.NoError(t, <-done)
		assert.Empty(t, s.Items())
	})
}

func TestReconcileSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	backend := newFakeBackend(item("p1", 100))
	backend.broken["p2"] = true
	backend.setCart(
		shop.CartEntry{ProductID: "p1", Quantity: 1},
		shop.CartEntry{ProductID: "p2", Quantity: 1},
	)
	s, err := New(backend, staticIdentity("u1"), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer: provider.Tracer("test"),
	})
	require.NoError(t, err)

	require.NoError(t, s.Reconcile(context.Background()))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "storefront/cart.Reconcile", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(1), attrs["cart.lines"].AsInt64())
	assert.Equal(t, int64(1), attrs["cart.dropped"].AsInt64())
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, staticIdentity("u1"), Options{})
	assert.Error(t, err)
	_, err = New(newFakeBackend(), nil, Options{})
	assert.Error(t, err)
}
