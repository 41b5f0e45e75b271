package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions(t *testing.T) {
	cfg := Config{
		Host:             "ch.local",
		Database:         "tradepulse",
		User:             "writer",
		Password:         "pw",
		HTTP:             true,
		Compression:      "zstd",
		AsyncInsert:      true,
		WaitForAsync:     true,
		MaxExecutionTime: 30 * time.Second,
		MaxOpenConns:     8,
		MaxIdleConns:     20,
	}.withDefaults()
	require.NoError(t, cfg.validate())

	o := cfg.options()
	assert.Equal(t, []string{"ch.local:8123"}, o.Addr)
	assert.Equal(t, ch.HTTP, o.Protocol)
	assert.Equal(t, "tradepulse", o.Auth.Database)
	assert.Equal(t, "writer", o.Auth.Username)
	require.NotNil(t, o.Compression)
	assert.Equal(t, ch.CompressionZSTD, o.Compression.Method)
	assert.Equal(t, 30, o.Settings["max_execution_time"])
	assert.Equal(t, 1, o.Settings["async_insert"])
	assert.Equal(t, 1, o.Settings["wait_for_async_insert"])
	assert.Equal(t, 8, o.MaxOpenConns)
	assert.Equal(t, 8, o.MaxIdleConns, "idle pool never exceeds open")
}

func TestConfigNativeDefaults(t *testing.T) {
	cfg := Config{Host: "localhost"}.withDefaults()
	o := cfg.options()

	assert.Equal(t, ch.Native, o.Protocol)
	assert.Equal(t, []string{"localhost:9000"}, o.Addr)
	assert.Equal(t, ch.CompressionLZ4, o.Compression.Method)
	assert.Equal(t, "default", o.Auth.Database)
	assert.Equal(t, 5*time.Second, o.DialTimeout)
	assert.Empty(t, o.Settings)
}

func TestConfigIPv6Addr(t *testing.T) {
	cfg := Config{Host: "::1", Port: 9440}.withDefaults()
	assert.Equal(t, "[::1]:9440", cfg.addr())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing host", Config{}},
		{"bad port", Config{Host: "h", Port: 70000}},
		{"unknown compression", Config{Host: "h", Compression: "snappy"}},
		{"wait without async", Config{Host: "h", WaitForAsync: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.withDefaults().validate())
		})
	}

	none := Config{Host: "h", Compression: "none"}.withDefaults()
	require.NoError(t, none.validate())
	assert.Nil(t, none.options().Compression)
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Compression: "brotli"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
	assert.Contains(t, err.Error(), "unknown compression")
}
