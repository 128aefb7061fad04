package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, NewRedisKV(c)
}

func TestRedisKV_GetSetMiss(t *testing.T) {
	mr, kv := setupRedisKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "agsavn:stats:30")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, kv.Set(ctx, "agsavn:stats:30", "cached", time.Minute))
	v, err := kv.Get(ctx, "agsavn:stats:30")
	require.NoError(t, err)
	assert.Equal(t, "cached", v)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "agsavn:stats:30")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestJSONHelpers(t *testing.T) {
	_, kv := setupRedisKV(t)
	ctx := context.Background()

	type payload struct {
		Total int            `json:"total"`
		By    map[string]int `json:"by"`
	}
	require.NoError(t, SetJSON(ctx, kv, "k", payload{Total: 3, By: map[string]int{"high": 3}}, time.Minute))

	var got payload
	require.NoError(t, GetJSON(ctx, kv, "k", &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 3, got.By["high"])
}

func TestDeletePattern(t *testing.T) {
	mr, kv := setupRedisKV(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("agsavn:stats:7", "a"))
	require.NoError(t, mr.Set("agsavn:stats:30", "b"))
	require.NoError(t, mr.Set("agsavn:other", "c"))

	n, err := DeletePattern(ctx, kv, "agsavn:stats:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists("agsavn:stats:7"))
	assert.True(t, mr.Exists("agsavn:other"))

	n, err = DeletePattern(ctx, kv, "agsavn:stats:*")
	require.NoError(t, err)
	assert.Zero(t, n)
}
