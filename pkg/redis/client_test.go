package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/cocktail-bot/pkg/config"
)

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), config.RedisConfig{Enabled: true, Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNew_FailsOnUnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{Enabled: true, Addr: addr})
	assert.Error(t, err)
}

func TestMetricsClient_Commands(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewMetricsClient(Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()})))
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()

	_, err := client.Get(ctx, "missing")
	assert.ErrorIs(t, err, Nil)

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, client.Set(ctx, "k", "v3", time.Minute))
	value, err = client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v3", value)

	require.NoError(t, client.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}
