package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenantportal/pkg/config"
)

func TestEmptyURLsYieldNil(t *testing.T) {
	ctx := context.Background()
	pool, err := Open(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, pool)

	cli, err := OpenRedis(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, cli)

	log := zap.NewNop().Sugar()
	assert.Nil(t, MustConnect(ctx, config.Config{}, log))
	assert.Nil(t, MustRedis(ctx, config.Config{}, log))
}

func TestOpenRejectsBadURLs(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, "postgres://%zz")
	assert.ErrorContains(t, err, "parse database url")

	_, err = OpenRedis(ctx, "mysql://nope")
	assert.ErrorContains(t, err, "parse redis url")
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cli, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	require.NoError(t, cli.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}
