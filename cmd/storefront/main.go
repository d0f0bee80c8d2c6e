package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/prianik/storefront/internal/cart"
	"github.com/prianik/storefront/internal/cart/storage"
	"github.com/prianik/storefront/internal/checkout"
	"github.com/prianik/storefront/pkg/api"
	"github.com/prianik/storefront/pkg/config"
	"github.com/prianik/storefront/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithSessionID(context.Background(), uuid.NewString())

	var closers []func() error
	slot := pickSlot(ctx, cfg, logg, &closers)

	ledger, err := cart.New(slot, logg)
	if err != nil {
		logg.Error(ctx, "failed to build cart ledger", err)
		os.Exit(1)
	}
	ledger.Rehydrate(ctx)

	client, err := api.New(cfg.API, logg)
	if err != nil {
		logg.Error(ctx, "failed to build api client", err)
		os.Exit(1)
	}

	orders, err := checkout.NewService(client, ledger, logg)
	if err != nil {
		logg.Error(ctx, "failed to build checkout service", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"base_url":     cfg.API.BaseURL,
		"language":     cfg.API.Language,
		"cart_backend": cfg.Cart.Backend,
		"cart_items":   ledger.ItemCount(),
	}), "storefront session started")

	session := &session{
		api:      client,
		ledger:   ledger,
		checkout: orders,
		language: cfg.API.Language,
		out:      os.Stdout,
		in:       os.Stdin,
	}
	session.run(ctx)

	if err := closeAll(closers); err != nil {
		logg.Error(ctx, "error closing storage", err)
	}
}

// pickSlot selects the configured durable slot. Storage is best-effort
// by contract, so an unreachable redis degrades to the no-op slot with
// a warning instead of aborting the session.
func pickSlot(ctx context.Context, cfg *config.Config, logg *logger.Logger, closers *[]func() error) storage.Store {
	switch cfg.Cart.Backend {
	case config.CartBackendFile:
		return storage.NewFile(cfg.Cart.FilePath, logg)
	case config.CartBackendRedis:
		slot, err := storage.NewRedis(ctx, cfg.Redis, cfg.Cart.SlotKey, logg)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()),
				"redis cart slot unavailable, continuing without persistence")
			return storage.NewNoop()
		}
		*closers = append(*closers, slot.Close)
		return slot
	default:
		return storage.NewNoop()
	}
}

func closeAll(closers []func() error) error {
	var err error
	for _, close := range closers {
		err = multierr.Append(err, close())
	}
	return err
}
