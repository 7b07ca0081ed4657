// Package watch polls the server cart and reports when it changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/storefront/internal/cart"
	"github.com/shopspring/decimal"
)

// DefaultInterval is the polling period used when none is given.
const DefaultInterval = 5 * time.Second

// Cart is the part of the synchronizer the watcher drives.
type Cart interface {
	Reconcile(ctx context.Context) error
	Items() []cart.LineItem
	Total() decimal.Decimal
	Dropped() []string
}

// Snapshot is the cart as seen after one reconcile.
type Snapshot struct {
	Items   []cart.LineItem
	Total   decimal.Decimal
	Dropped []string
	At      time.Time
}

// Options controls a watch loop.
type Options struct {
	Interval time.Duration
	// Limit stops the loop after this many change notifications (0 = no limit).
	Limit int
	// OnError is called for reconcile failures that do not end the loop.
	OnError func(error)
}

// PollCart reconciles immediately and then every interval, calling onChange
// with the first snapshot and with every snapshot whose lines differ from the
// previous one.
//
// Transient failures are passed to OnError and polling continues. Losing the
// identity ends the loop with cart.ErrSignInRequired. Cancelling ctx ends it
// with ctx.Err().
func PollCart(ctx context.Context, c Cart, opts Options, onChange func(Snapshot)) error {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	last := ""
	first := true
	notified := 0

	poll := func() error {
		if err := c.Reconcile(ctx); err != nil {
			if errors.Is(err, cart.ErrSignInRequired) || ctx.Err() != nil {
				return err
			}
			if opts.OnError != nil {
				opts.OnError(err)
			}
			return nil
		}

		items := c.Items()
		key := fingerprint(items)
		if !first && key == last {
			return nil
		}
		first = false
		last = key

		onChange(Snapshot{Items: items, Total: c.Total(), Dropped: c.Dropped(), At: time.Now()})
		notified++
		return nil
	}

	for {
		if err := poll(); err != nil {
			return err
		}
		if opts.Limit > 0 && notified >= opts.Limit {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// fingerprint identifies the visible state of a cart: ids, quantities and prices.
func fingerprint(items []cart.LineItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s:%d:%s;", item.Product.ID, item.Quantity, item.Product.Price.String())
	}
	return b.String()
}
