package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cinestream/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T, prefix string) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()}, prefix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t, "")

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, cache.Set("user:1", expected, time.Minute))

	var actual testStruct
	found, err := cache.Get("user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t, "")

	var out testStruct
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPrefix(t *testing.T) {
	cache, mr := setupTestCache(t, "cli:")

	require.NoError(t, cache.Set("cs_token", "abc", 0))

	assert.True(t, mr.Exists("cli:cs_token"))
	assert.False(t, mr.Exists("cs_token"))
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t, "")

	require.NoError(t, cache.Set("key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateMany(t *testing.T) {
	cache, _ := setupTestCache(t, "")

	require.NoError(t, cache.Set("a", 1, 0))
	require.NoError(t, cache.Set("b", 2, 0))
	require.NoError(t, cache.Set("c", 3, 0))

	require.NoError(t, cache.Invalidate("a", "b", "missing"))
	require.NoError(t, cache.Invalidate())

	var out int
	found, err := cache.Get("a", &out)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = cache.Get("c", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, out)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t, "")

	require.NoError(t, cache.Db.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err())

	var out testStruct
	found, err := cache.Get("bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cache, err := InitServer(context.Background(), config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	}, "")
	assert.Nil(t, cache)
	assert.Error(t, err)
}
