package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedant-server/internal/repositories"
	"pedant-server/pkg/config"
)

func TestOpen_FileAndMemory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.StorageConfig{Driver: DriverFile, DataFile: filepath.Join(t.TempDir(), "db.json")}}

	h, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repositories.MemoryStore{}, h.Store)
	assert.Nil(t, h.Pool)
	assert.NoError(t, h.Ping(ctx))
	require.NoError(t, h.Store.Close())

	cfg.Storage.Driver = DriverMemory
	h, err = Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, h.Store)

	cfg.Storage.Driver = "mongo"
	_, err = Open(ctx, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenRedis(t *testing.T) {
	ctx := context.Background()

	client, closeFn, err := OpenRedis(ctx, config.RedisConfig{Address: RedisInMemory}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	closeFn()

	mr := miniredis.RunT(t)
	client, closeFn, err = OpenRedis(ctx, config.RedisConfig{Address: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.NoError(t, client.Ping(ctx).Err())
}
