package transient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb, "test:"), mr
}

func stores(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemory(time.Hour),
		"redis":  rs,
	}
}

func TestPutGetTake(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "k", []byte("v"), time.Minute))

			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v"), v)

			v, ok, err = s.Take(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v"), v)

			_, ok, err = s.Take(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, _ = s.Get(ctx, "k")
			assert.False(t, ok)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "k", []byte("v"), time.Minute))
			require.NoError(t, s.Delete(ctx, "k"))
			_, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestTakeConcurrentSingleWinner(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "once", []byte("x"), time.Minute))

			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, ok, _ := s.Take(ctx, "once"); ok {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins)
		})
	}
}

func TestRedisTTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "short", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)
	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTTL(t *testing.T) {
	s := NewMemory(time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "short", []byte("v"), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}
