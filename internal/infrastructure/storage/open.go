package storage

import (
	"context"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"pedant-server/internal/repositories"
	"pedant-server/migrations"
	"pedant-server/pkg/config"
	"pedant-server/pkg/database/postgresql"
)

const (
	DriverPostgres = "postgres"
	DriverFile     = "file"
	DriverMemory   = "memory"

	// RedisInMemory - значение REDIS_ADDRESS для встроенного Redis без внешнего сервера.
	RedisInMemory = "memory"
)

// Handle - открытое хранилище. Pool заполнен только для postgres.
type Handle struct {
	Store repositories.DocumentStore
	Pool  *pgxpool.Pool
}

// Ping - проверка доступности для /api/health.
func (h *Handle) Ping(ctx context.Context) error {
	if h.Pool == nil {
		return nil
	}
	return h.Pool.Ping(ctx)
}

// Open выбирает реализацию DocumentStore по STORAGE_DRIVER.
// Для postgres при DB_AUTO_MIGRATE применяет миграции.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Handle, error) {
	switch cfg.Storage.Driver {
	case DriverPostgres:
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.AutoMigrate {
			if err := migrations.Up(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("миграции не применились: %w", err)
			}
			logger.Info("Миграции применены")
		}
		return &Handle{Store: repositories.NewPostgresStore(pool, logger), Pool: pool}, nil
	case DriverFile, "":
		store, err := repositories.NewFileStore(cfg.Storage.DataFile, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: store}, nil
	case DriverMemory:
		logger.Warn("Хранилище в памяти: данные пропадут после перезапуска")
		return &Handle{Store: repositories.NewMemoryStore(logger)}, nil
	default:
		return nil, fmt.Errorf("неизвестный STORAGE_DRIVER: %q", cfg.Storage.Driver)
	}
}

// OpenRedis подключается к Redis. Пустой адрес или "memory" поднимает
// встроенный miniredis: сессии живут только пока жив процесс.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, func(), error) {
	addr := cfg.Address
	var embedded *miniredis.Miniredis
	if addr == "" || addr == RedisInMemory {
		var err error
		if embedded, err = miniredis.Run(); err != nil {
			return nil, nil, fmt.Errorf("не удалось запустить встроенный Redis: %w", err)
		}
		addr = embedded.Addr()
		logger.Warn("Используется встроенный Redis", zap.String("address", addr))
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password, DB: cfg.DB})
	closeFn := func() {
		_ = client.Close()
		if embedded != nil {
			embedded.Close()
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", addr, err)
	}
	return client, closeFn, nil
}
