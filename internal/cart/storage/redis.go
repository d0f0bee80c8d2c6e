package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/prianik/storefront/pkg/config"
	"github.com/prianik/storefront/pkg/logger"
)

const keyNamespace = "storefront"

// Redis persists the cart record under one namespaced key. The record
// carries no TTL: the slot lives as long as the server keeps it.
type Redis struct {
	client *redis.Client
	key    string
	logger *logger.Logger
}

// NewRedis bootstraps the connection and verifies it with a ping.
// Construction failures are real errors; once built, the store is
// best-effort like every other slot.
func NewRedis(ctx context.Context, cfg config.RedisConfig, slotKey string, logg *logger.Logger) (*Redis, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		client: client,
		key:    buildKey("cart", slotKey),
		logger: logg,
	}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (r *Redis) Load(ctx context.Context) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warn(ctx, "cart slot unreadable, starting empty", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (r *Redis) Save(ctx context.Context, record []byte) {
	if err := r.client.Set(ctx, r.key, record, 0).Err(); err != nil {
		r.warn(ctx, "cart slot not writable, save skipped", err)
	}
}

func (r *Redis) Available() bool { return true }

// Key exposes the namespaced slot key.
func (r *Redis) Key() string { return r.key }

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) warn(ctx context.Context, msg string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(r.logger.WithField(ctx, "error", err.Error()), msg)
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
