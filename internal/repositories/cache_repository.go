package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface - ключ-значение с TTL. Get отсутствующего ключа
// возвращает NOT_FOUND.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	SAdd(ctx context.Context, key string, members ...interface{}) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...interface{}) error
}
