package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOptionsFromConfig(t *testing.T) {
	cfg := defaultRedisConfig()
	for _, opt := range []RedisOption{
		WithRedisHost("cache.internal"),
		WithRedisPort(6380),
		WithRedisDB(2),
		WithRedisPool(20, 4, time.Second),
	} {
		opt(cfg)
	}
	o := cfg.options()
	assert.Equal(t, "cache.internal:6380", o.Addr)
	assert.Equal(t, 2, o.DB)
	assert.Equal(t, 20, o.PoolSize)
	assert.Equal(t, 4, o.MinIdleConns)
}

func TestRedisCacheKeys(t *testing.T) {
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	assert.Equal(t, "tradepulse:news:abc", c.key("news:abc"))
	assert.Equal(t, []string{"tradepulse:a", "tradepulse:b"}, c.keys([]string{"a", "b"}))
	assert.NoError(t, c.Close())
}

func TestValueCodec(t *testing.T) {
	raw, err := encodeValue("plain")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), raw)

	js, err := encodeValue(map[string]int{"n": 1})
	require.NoError(t, err)

	var m map[string]int
	require.NoError(t, decodeValue(js, &m))
	assert.Equal(t, 1, m["n"])

	var b []byte
	require.NoError(t, decodeValue([]byte("xy"), &b))
	assert.Equal(t, "xy", string(b))

	assert.Error(t, decodeValue([]byte("{"), &m))
}
