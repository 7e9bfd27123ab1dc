package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/AGLOP-1354/taskboard/internal/config"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/logging"
)

// Open builds the backend selected by cfg.Store.Backend. The redis backend
// is pinged before it is returned.
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Store, error) {
	opts := []Option{
		WithLogger(logger),
		WithWatchDebounce(cfg.Store.WatchDebounce()),
	}
	collection := cfg.Store.Collection

	switch cfg.Store.Backend {
	case BackendMemory:
		return NewMemory(collection, opts...), nil

	case BackendFile, "":
		return NewFile(cfg.Store.ResolveDir(), collection, opts...)

	case BackendRedis:
		client, err := newRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedis(client, cfg.Redis.KeyPrefix, collection, opts...), nil

	case BackendRemote:
		return NewRemote(RemoteConfig{
			BaseURL:        cfg.Remote.URL,
			RequestTimeout: cfg.Remote.RequestTimeout(),
			ReconnectDelay: cfg.Remote.ReconnectDelay(),
		}, opts...)

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownBackend, cfg.Store.Backend)
	}
}

func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}
