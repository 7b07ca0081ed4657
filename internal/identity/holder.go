// Package identity holds the signed-in user's opaque token and keeps it in
// durable storage across runs.
//
// The token is never inspected: no expiry, refresh or validation happens here.
// The backend alone decides what a token is allowed to do.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Identity slots used by the storefront.
const (
	// KeyUser is the shopper session slot.
	KeyUser = "userId"

	// KeySeller is the admin panel session slot.
	KeySeller = "sellerId"
)

// Holder is the in-memory owner of one identity slot.
// It is hydrated from its Store exactly once, in Open, and is safe for
// concurrent use.
type Holder struct {
	store  Store
	key    string
	logger *slog.Logger

	mu    sync.RWMutex
	token string
}

// Open creates a holder for key and hydrates it from store.
// A missing or unreadable stored value leaves the holder anonymous; it is
// logged, never returned as an error.
func Open(ctx context.Context, store Store, key string, logger *slog.Logger) (*Holder, error) {
	if store == nil {
		return nil, fmt.Errorf("identity store cannot be nil")
	}
	if key == "" {
		return nil, fmt.Errorf("identity key cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Holder{store: store, key: key, logger: logger}

	token, err := store.Load(ctx, key)
	switch {
	case err == nil:
		h.token = token
	case errors.Is(err, ErrNoValue):
	default:
		logger.Warn("stored identity unreadable, continuing anonymous",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	return h, nil
}

// Current returns the cached token and whether one is set.
func (h *Holder) Current() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// Set replaces the token in memory and in durable storage.
// An empty token signs out and purges the stored value.
//
// Memory always reflects the request. A storage failure is returned but not
// rolled back, so the session continues for this process.
func (h *Holder) Set(ctx context.Context, token string) error {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	var err error
	if token == "" {
		err = h.store.Delete(ctx, h.key)
	} else {
		err = h.store.Save(ctx, h.key, token)
	}
	if err != nil {
		h.logger.Warn("failed to persist identity",
			slog.String("key", h.key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to persist identity: %w", err)
	}
	return nil
}

// Clear signs out. Equivalent to Set(ctx, "").
func (h *Holder) Clear(ctx context.Context) error {
	return h.Set(ctx, "")
}
