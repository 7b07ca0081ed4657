package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dyluth/storefront/internal/cart"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCart replays one state (or error) per Reconcile call, repeating the last.
type scriptedCart struct {
	mu     sync.Mutex
	states [][]cart.LineItem
	errs   []error
	calls  int
	items  []cart.LineItem
}

func (s *scriptedCart) Reconcile(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.calls, len(s.states)-1)
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return s.errs[i]
	}
	s.items = s.states[i]
	return nil
}

func (s *scriptedCart) Items() []cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cart.LineItem(nil), s.items...)
}

func (s *scriptedCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, i := range s.Items() {
		total = total.Add(i.Subtotal())
	}
	return total
}

func (s *scriptedCart) Dropped() []string { return nil }

func line(id string, qty int) cart.LineItem {
	return cart.LineItem{Product: shop.Product{ID: id, Price: decimal.NewFromInt(100)}, Quantity: qty}
}

func TestPollCart(t *testing.T) {
	t.Run("reports first state and changes only", func(t *testing.T) {
		c := &scriptedCart{states: [][]cart.LineItem{
			{line("p1", 1)},
			{line("p1", 1)},
			{line("p1", 2)},
		}}

		var snapshots []Snapshot
		err := PollCart(context.Background(), c, Options{Interval: 5 * time.Millisecond, Limit: 2}, func(s Snapshot) {
			snapshots = append(snapshots, s)
		})
		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.Equal(t, 1, snapshots[0].Items[0].Quantity)
		assert.Equal(t, 2, snapshots[1].Items[0].Quantity)
		assert.Equal(t, "200", snapshots[1].Total.String())
		assert.Equal(t, 3, c.calls)
	})

	t.Run("transient errors continue", func(t *testing.T) {
		c := &scriptedCart{
			states: [][]cart.LineItem{nil, {line("p1", 1)}},
			errs:   []error{errors.New("timeout")},
		}

		var seen []error
		var got []Snapshot
		err := PollCart(context.Background(), c, Options{
			Interval: 5 * time.Millisecond,
			Limit:    1,
			OnError:  func(err error) { seen = append(seen, err) },
		}, func(s Snapshot) { got = append(got, s) })

		require.NoError(t, err)
		assert.Len(t, seen, 1)
		require.Len(t, got, 1)
		assert.Len(t, got[0].Items, 1)
	})

	t.Run("sign out ends the loop", func(t *testing.T) {
		c := &scriptedCart{states: [][]cart.LineItem{nil}, errs: []error{cart.ErrSignInRequired}}
		err := PollCart(context.Background(), c, Options{Interval: 5 * time.Millisecond}, func(Snapshot) {})
		assert.ErrorIs(t, err, cart.ErrSignInRequired)
	})

	t.Run("cancellation ends the loop", func(t *testing.T) {
		c := &scriptedCart{states: [][]cart.LineItem{{line("p1", 1)}}}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		notified := 0
		err := PollCart(ctx, c, Options{Interval: 5 * time.Millisecond}, func(Snapshot) { notified++ })
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, notified, "unchanged cart is reported once")
	})
}
