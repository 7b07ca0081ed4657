// Package app wires configuration into the live components a command uses:
// logger, tracer, backend client, identity holders, cart synchronizer and
// catalog source.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dyluth/storefront/internal/cart"
	"github.com/dyluth/storefront/internal/catalog"
	"github.com/dyluth/storefront/internal/config"
	"github.com/dyluth/storefront/internal/identity"
	"github.com/dyluth/storefront/internal/logger"
	"github.com/dyluth/storefront/internal/telemetry"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/redis/go-redis/v9"
)

// Options adjusts wiring for one invocation.
type Options struct {
	Version string
	// Ephemeral keeps sessions in memory regardless of session.store.
	Ephemeral bool
	// Logger overrides the configured logger (tests).
	Logger *slog.Logger
}

// App holds the wired components. Close releases them.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Client *shop.Client
	User   *identity.Holder
	Seller *identity.Holder
	Cart   *cart.Synchronizer

	products catalog.Source
	cache    *catalog.RedisCache
	closers  []io.Closer
	shutdown telemetry.Shutdown
}

// New builds an App from cfg. On error, anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(ctx)
		}
	}()

	a.Logger = opts.Logger
	if a.Logger == nil {
		l, closer, err := logger.Open(cfg.Logging.File, cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to set up logging: %w", err)
		}
		a.Logger = l
		a.closers = append(a.closers, closer)
	}

	a.shutdown, err = telemetry.Open(cfg.Tracing.Enabled, cfg.Tracing.File, opts.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	a.Client, err = shop.NewClient(shop.Options{
		BaseURL:   cfg.Backend.URL,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		Burst:     cfg.Backend.Burst,
		UserAgent: "storefront-cli/" + opts.Version,
		Logger:    a.Logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := a.sessionStore(ctx, opts.Ephemeral)
	if err != nil {
		return nil, err
	}

	a.User, err = identity.Open(ctx, store, identity.KeyUser, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Seller, err = identity.Open(ctx, store, identity.KeySeller, a.Logger)
	if err != nil {
		return nil, err
	}

	a.Cart, err = cart.New(a.Client, a.User, cart.Options{
		MaxConcurrentLookups: cfg.Backend.MaxConcurrentLookups,
		Logger:               a.Logger,
	})
	if err != nil {
		return nil, err
	}

	a.products = a.Client
	if cfg.Catalog.Cache {
		redisOpts, err := redisOptions(cfg)
		if err != nil {
			return nil, err
		}
		a.cache, err = catalog.NewRedisCache(a.Client, redisOpts, cfg.Redis.Namespace, cfg.Catalog.CacheTTL, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.cache)
		a.products = a.cache
	}

	return a, nil
}

func redisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return nil, fmt.Errorf("redis.url is not configured")
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis.url: %w", err)
	}
	return opts, nil
}

func (a *App) sessionStore(ctx context.Context, ephemeral bool) (identity.Store, error) {
	if ephemeral {
		return identity.NewMemoryStore(), nil
	}

	switch a.Config.Session.Store {
	case config.StoreMemory:
		return identity.NewMemoryStore(), nil
	case config.StoreRedis:
		redisOpts, err := redisOptions(a.Config)
		if err != nil {
			return nil, err
		}
		store, err := identity.NewRedisStore(redisOpts, a.Config.Redis.Namespace)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis session store unreachable: %w", err)
		}
		return store, nil
	default:
		return identity.NewFileStore(a.Config.Session.File)
	}
}

// LoadCatalog fetches the product list (through the cache when enabled).
func (a *App) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return catalog.Load(ctx, a.products)
}

// InvalidateCatalog drops the cached product list, if any.
func (a *App) InvalidateCatalog(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx); err != nil {
		a.Logger.Warn("failed to invalidate catalog cache", slog.String("error", err.Error()))
	}
}

// SignOut clears the shopper session and forgets the local cart.
func (a *App) SignOut(ctx context.Context) error {
	a.Cart.Reset()
	return a.User.Clear(ctx)
}

// Close flushes traces and releases connections and files.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
