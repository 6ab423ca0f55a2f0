package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/config"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/database"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open connects the backend selected by cfg.Storage.Driver and wraps it in
// a SnapshotRepository. Connection attempts are retried with a constant backoff.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (SnapshotRepository, error) {
	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Storage backend ready", zap.String("driver", cfg.Storage.Driver))
	return NewSnapshotRepository(kv), nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KeyValueStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Storage.DataDir)

	case config.DriverPostgres:
		var db database.Service
		err := withRetry(ctx, cfg.Storage, logger, func(ctx context.Context) error {
			var err error
			db, err = database.New(ctx, cfg.Database)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db.DB(), logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresStore(db.DB()), nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := withRetry(ctx, cfg.Storage, logger, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		if err != nil {
			client.Close()
			return nil, err
		}
		return NewRedisStore(client), nil

	case config.DriverMongo:
		var store *MongoStore
		err := withRetry(ctx, cfg.Storage, logger, func(ctx context.Context) error {
			var err error
			store, err = NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
			return err
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// withRetry runs connect until it succeeds or the attempts are exhausted.
// Each attempt is bounded by the configured connect timeout.
func withRetry(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger, connect func(ctx context.Context) error) error {
	retry := retrier.New(retrier.ConstantBackoff(cfg.ConnectTries-1, cfg.ConnectTimeout), nil)

	attempt := 0
	err := retry.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout(cfg.ConnectTimeout))
		defer cancel()

		if err := connect(attemptCtx); err != nil {
			logger.Warn("Storage connection attempt failed",
				zap.String("driver", cfg.Driver),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s storage after %d attempts: %w", cfg.Driver, attempt, err)
	}
	return nil
}

func attemptTimeout(backoff time.Duration) time.Duration {
	if backoff < time.Second {
		return time.Second
	}
	return 2 * backoff
}
